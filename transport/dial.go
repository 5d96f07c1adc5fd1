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

package transport

import (
	"crypto/tls"
	"errors"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/sabouaram/monitord/certificates"
	"github.com/sabouaram/monitord/network/protocol"
)

// New resolves and connects to host:port over the given base protocol
// (TCP or UDP) and family, completing a TLS handshake too when cfg is
// non-nil, all within timeoutMs. Matches spec.md §4.A `new`.
func New(host string, port int, base protocol.NetworkProtocol, fam Family, cfg certificates.TLSConfig, timeoutMs int) (Transport, error) {
	if host == "" || port <= 0 {
		return nil, ErrorParamsEmpty.Error(nil)
	}

	d := time.Duration(timeoutMs) * time.Millisecond
	if d <= 0 {
		d = 5 * time.Second
	}

	network := fam.network(base)
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	dialer := &net.Dialer{Timeout: d}

	conn, err := dialer.Dial(network, addr)
	if err != nil {
		return nil, classifyDialError(err)
	}

	t := &transport{
		conn:    conn,
		udp:     base == protocol.NetworkUDP,
		timeout: d,
	}

	if cfg != nil {
		if err = t.switchToTLS(cfg, host, d); err != nil {
			_ = conn.Close()
			return nil, err
		}
	}

	return t, nil
}

// NewUnix connects to a UNIX-domain socket at path. Matches spec.md §4.A
// `newUnix`.
func NewUnix(path string, base protocol.NetworkProtocol, timeoutMs int) (Transport, error) {
	if path == "" {
		return nil, ErrorParamsEmpty.Error(nil)
	}

	d := time.Duration(timeoutMs) * time.Millisecond
	if d <= 0 {
		d = 5 * time.Second
	}

	network := "unix"
	if base == protocol.NetworkUnixGram {
		network = "unixgram"
	}

	dialer := &net.Dialer{Timeout: d}

	conn, err := dialer.Dial(network, path)
	if err != nil {
		return nil, classifyDialError(err)
	}

	return &transport{conn: conn, timeout: d}, nil
}

// FromAccepted wraps a server-accepted connection, optionally completing a
// server-side TLS handshake. Matches spec.md §4.A `fromAccepted`.
func FromAccepted(conn net.Conn, cfg certificates.TLSConfig, timeoutMs int) (Transport, error) {
	if conn == nil {
		return nil, ErrorParamsEmpty.Error(nil)
	}

	d := time.Duration(timeoutMs) * time.Millisecond
	if d <= 0 {
		d = 5 * time.Second
	}

	_, isUDP := conn.(*net.UDPConn)

	t := &transport{conn: conn, udp: isUDP, timeout: d}

	if cfg != nil {
		tlsConn := tls.Server(conn, cfg.TLS(""))

		_ = tlsConn.SetDeadline(time.Now().Add(d))
		if err := tlsConn.Handshake(); err != nil {
			return nil, ErrorTLS.Error(err)
		}
		_ = tlsConn.SetDeadline(time.Time{})

		t.conn = tlsConn
	}

	return t, nil
}

func classifyDialError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrorTimeout.Error(err)
	}

	if strings.Contains(err.Error(), "connection refused") {
		return ErrorRefused.Error(err)
	}

	if strings.Contains(err.Error(), "no such host") || strings.Contains(err.Error(), "lookup") {
		return ErrorResolve.Error(err)
	}

	return ErrorResolve.Error(err)
}
