/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
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

// Package transport provides a bounded byte-stream abstraction over TCP,
// UDP, UNIX and TLS flavors of the same connection, used by the probes in
// package probe.
package transport

import (
	"net"
	"time"

	"github.com/sabouaram/monitord/certificates"
	"github.com/sabouaram/monitord/network/protocol"
)

// Family selects the IP family used to resolve a host.
type Family uint8

const (
	FamilyAuto Family = iota
	FamilyV4
	FamilyV6
)

// network returns the net.Dial-compatible network string for a given base
// protocol (tcp/udp) and family selection.
func (f Family) network(base protocol.NetworkProtocol) string {
	switch base {
	case protocol.NetworkUDP:
		switch f {
		case FamilyV4:
			return "udp4"
		case FamilyV6:
			return "udp6"
		default:
			return "udp"
		}
	default:
		switch f {
		case FamilyV4:
			return "tcp4"
		case FamilyV6:
			return "tcp6"
		default:
			return "tcp"
		}
	}
}

// Transport is a connected byte stream with a bounded deadline, matching the
// spec's Transport contract: every blocking call respects the transport's
// current timeout and signals failure uniformly via GetError/-1 returns.
type Transport interface {
	// Print formats and writes to the connection, analogous to fmt.Fprintf.
	Print(format string, args ...interface{}) (int, error)

	// WriteBytes writes buf and returns the count written, or -1 with an
	// error when the write fails.
	WriteBytes(buf []byte) (int, error)

	// ReadBytes reads up to n bytes into buf, bounded by the current timeout.
	ReadBytes(buf []byte, n int) (int, error)

	// ReadLine reads up to size-1 bytes into buf, stopping at (and
	// including) '\n'; buf is always NUL-terminated after size-1.
	ReadLine(buf []byte, size int) (int, error)

	// ReadByte reads a single byte.
	ReadByte() (byte, error)

	// IsReady reports whether the transport is connected and error-free.
	IsReady() bool

	// Reset clears the last captured error.
	Reset()

	// ShutdownWrite half-closes the write side (TCP only).
	ShutdownWrite() error

	// SetNoDelay toggles TCP_NODELAY (TCP only, ignored otherwise).
	SetNoDelay(on bool) error

	// SwitchToTLS upgrades an already-connected TCP transport in place,
	// used by STARTTLS-style protocols.
	SwitchToTLS(cfg certificates.TLSConfig, serverName string) error

	// SetError records a protocol-level failure message without panicking
	// or returning an error from the calling probe.
	SetError(format string, args ...interface{})

	// GetError returns the last error captured by SetError or by an I/O
	// operation, or nil.
	GetError() error

	// SetDeadline updates the transport's current timeout for all
	// subsequent blocking calls.
	SetDeadline(d time.Duration)

	// Conn exposes the underlying net.Conn for probes (e.g. LDAP) that
	// need to hand it to a third-party client library.
	Conn() net.Conn

	// Close releases the transport. Safe to call more than once.
	Close() error
}
