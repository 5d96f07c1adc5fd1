/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 */

// Package protocol defines the small closed set of network dial kinds
// (unix/tcp/udp/ip families) used by transport and the syslog logger hook.
package protocol

import (
	"strconv"
	"strings"
)

// NetworkProtocol is the dial network kind, as accepted by net.Dial.
type NetworkProtocol uint8

const (
	NetworkEmpty NetworkProtocol = iota
	NetworkUnix
	NetworkTCP
	NetworkTCP4
	NetworkTCP6
	NetworkUDP
	NetworkUDP4
	NetworkUDP6
	NetworkIP
	NetworkIP4
	NetworkIP6
	NetworkUnixGram
)

// String returns the net.Dial-compatible network name.
func (n NetworkProtocol) String() string {
	switch n {
	case NetworkUnix:
		return "unix"
	case NetworkTCP:
		return "tcp"
	case NetworkTCP4:
		return "tcp4"
	case NetworkTCP6:
		return "tcp6"
	case NetworkUDP:
		return "udp"
	case NetworkUDP4:
		return "udp4"
	case NetworkUDP6:
		return "udp6"
	case NetworkIP:
		return "ip"
	case NetworkIP4:
		return "ip4"
	case NetworkIP6:
		return "ip6"
	case NetworkUnixGram:
		return "unixgram"
	default:
		return ""
	}
}

func (n NetworkProtocol) isValid() bool {
	return n >= NetworkUnix && n <= NetworkUnixGram
}

// Int returns the protocol's ordinal, or 0 when out of the valid range.
func (n NetworkProtocol) Int() int {
	if !n.isValid() {
		return 0
	}
	return int(n)
}

// Int64 returns the protocol's ordinal as int64, or 0 when out of range.
func (n NetworkProtocol) Int64() int64 {
	if !n.isValid() {
		return 0
	}
	return int64(n)
}

// Uint returns the protocol's ordinal as uint, or 0 when out of range.
func (n NetworkProtocol) Uint() uint {
	if !n.isValid() {
		return 0
	}
	return uint(n)
}

// Uint16 returns the protocol's ordinal as uint16, or 0 when out of range.
func (n NetworkProtocol) Uint16() uint16 {
	if !n.isValid() {
		return 0
	}
	return uint16(n)
}

// IsTCP reports whether the protocol dials a TCP socket (any address family).
func (n NetworkProtocol) IsTCP() bool {
	return n == NetworkTCP || n == NetworkTCP4 || n == NetworkTCP6
}

// IsUDP reports whether the protocol dials a UDP socket (any address family).
func (n NetworkProtocol) IsUDP() bool {
	return n == NetworkUDP || n == NetworkUDP4 || n == NetworkUDP6
}

// IsUnix reports whether the protocol dials a UNIX-domain socket.
func (n NetworkProtocol) IsUnix() bool {
	return n == NetworkUnix || n == NetworkUnixGram
}

// Parse maps a case-insensitive network name to a NetworkProtocol, returning
// NetworkEmpty for anything it does not recognize.
func Parse(s string) NetworkProtocol {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unix":
		return NetworkUnix
	case "tcp":
		return NetworkTCP
	case "tcp4":
		return NetworkTCP4
	case "tcp6":
		return NetworkTCP6
	case "udp":
		return NetworkUDP
	case "udp4":
		return NetworkUDP4
	case "udp6":
		return NetworkUDP6
	case "ip":
		return NetworkIP
	case "ip4":
		return NetworkIP4
	case "ip6":
		return NetworkIP6
	case "unixgram":
		return NetworkUnixGram
	default:
		return NetworkEmpty
	}
}

// ParseInt64 maps an ordinal back to a NetworkProtocol, returning
// NetworkEmpty when the value is out of range.
func ParseInt64(i int64) NetworkProtocol {
	if i < int64(NetworkUnix) || i > int64(NetworkUnixGram) {
		return NetworkEmpty
	}
	return NetworkProtocol(i)
}

// MarshalJSON encodes the protocol as its lowercase string form.
func (n NetworkProtocol) MarshalJSON() ([]byte, error) {
	return []byte(`"` + n.String() + `"`), nil
}

// UnmarshalJSON decodes a quoted protocol name, or an integer ordinal. Single
// quotes are trimmed first, then double quotes.
func (n *NetworkProtocol) UnmarshalJSON(p []byte) error {
	s := strings.Trim(strings.Trim(string(p), "'"), `"`)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		*n = ParseInt64(i)
		return nil
	}
	*n = Parse(s)
	return nil
}

// MarshalText implements encoding.TextMarshaler for YAML/TOML/env decoding.
func (n NetworkProtocol) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for YAML/TOML/env decoding.
func (n *NetworkProtocol) UnmarshalText(p []byte) error {
	*n = Parse(strings.Trim(string(p), "'"))
	return nil
}
