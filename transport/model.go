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
	"bufio"
	"crypto/md5"
	"crypto/tls"
	"encoding/hex"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/sabouaram/monitord/certificates"
	liberr "github.com/sabouaram/monitord/socket"
)

type transport struct {
	mu  sync.Mutex
	rd  *bufio.Reader
	rdo sync.Once

	conn    net.Conn
	udp     bool
	timeout time.Duration
	lastErr error
}

func (t *transport) reader() *bufio.Reader {
	t.rdo.Do(func() {
		t.rd = bufio.NewReaderSize(t.conn, liberr.DefaultBufferSize)
	})

	return t.rd
}

func (t *transport) deadline() time.Time {
	if t.timeout <= 0 {
		return time.Time{}
	}

	return time.Now().Add(t.timeout)
}

func (t *transport) Print(format string, args ...interface{}) (int, error) {
	return t.WriteBytes([]byte(fmt.Sprintf(format, args...)))
}

func (t *transport) WriteBytes(buf []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn == nil {
		t.lastErr = ErrorClosed.Error(nil)
		return -1, t.lastErr
	}

	_ = t.conn.SetWriteDeadline(t.deadline())

	n, err := t.conn.Write(buf)
	if err = liberr.ErrorFilter(err); err != nil {
		t.lastErr = classifyIOError(err)
		return -1, t.lastErr
	}

	return n, nil
}

func (t *transport) ReadBytes(buf []byte, n int) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn == nil {
		t.lastErr = ErrorClosed.Error(nil)
		return -1, t.lastErr
	}

	if n > len(buf) {
		n = len(buf)
	}

	_ = t.conn.SetReadDeadline(t.deadline())

	read, err := t.reader().Read(buf[:n])
	if err = liberr.ErrorFilter(err); err != nil && read == 0 {
		t.lastErr = classifyIOError(err)
		return -1, t.lastErr
	}

	return read, nil
}

// ReadLine reads up to size-1 bytes, stopping at (and including) '\n', and
// always NUL-terminates buf, per spec.md §4.A.
func (t *transport) ReadLine(buf []byte, size int) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn == nil {
		t.lastErr = ErrorClosed.Error(nil)
		return -1, t.lastErr
	}

	if size > len(buf) {
		size = len(buf)
	}

	if size <= 1 {
		if size == 1 {
			buf[0] = 0
		}
		return 0, nil
	}

	_ = t.conn.SetReadDeadline(t.deadline())

	r := t.reader()
	i := 0

	for i < size-1 {
		b, err := r.ReadByte()
		if err != nil {
			if err = liberr.ErrorFilter(err); err != nil && i == 0 {
				t.lastErr = classifyIOError(err)
				buf[0] = 0
				return -1, t.lastErr
			}
			break
		}

		buf[i] = b
		i++

		if b == '\n' {
			break
		}
	}

	buf[i] = 0
	return i, nil
}

func (t *transport) ReadByte() (byte, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn == nil {
		t.lastErr = ErrorClosed.Error(nil)
		return 0, t.lastErr
	}

	_ = t.conn.SetReadDeadline(t.deadline())

	b, err := t.reader().ReadByte()
	if err != nil {
		t.lastErr = classifyIOError(err)
		return 0, t.lastErr
	}

	return b, nil
}

func (t *transport) IsReady() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.conn != nil && t.lastErr == nil
}

func (t *transport) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lastErr = nil
}

func (t *transport) ShutdownWrite() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.udp {
		t.lastErr = ErrorUnsupportedForUDP.Error(nil)
		return t.lastErr
	}

	if c, ok := t.conn.(interface{ CloseWrite() error }); ok {
		return c.CloseWrite()
	}

	return nil
}

func (t *transport) SetNoDelay(on bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.udp {
		return nil
	}

	if c, ok := t.conn.(*net.TCPConn); ok {
		return c.SetNoDelay(on)
	}

	return nil
}

// SwitchToTLS upgrades an already-connected TCP transport to TLS in place,
// used by protocols negotiating STARTTLS.
func (t *transport) SwitchToTLS(cfg certificates.TLSConfig, serverName string) error {
	if t.udp {
		t.lastErr = ErrorUnsupportedForUDP.Error(nil)
		return t.lastErr
	}

	return t.switchToTLS(cfg, serverName, t.timeout)
}

func (t *transport) switchToTLS(cfg certificates.TLSConfig, serverName string, d time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	tlsConn := tls.Client(t.conn, cfg.TLS(serverName))

	if d > 0 {
		_ = tlsConn.SetDeadline(time.Now().Add(d))
	}

	if err := tlsConn.Handshake(); err != nil {
		t.lastErr = ErrorTLS.Error(err)
		return t.lastErr
	}

	_ = tlsConn.SetDeadline(time.Time{})

	if err := verifyFingerprint(cfg, tlsConn.ConnectionState()); err != nil {
		t.lastErr = err
		return err
	}

	t.conn = tlsConn
	t.rd = nil
	t.rdo = sync.Once{}

	return nil
}

// verifyFingerprint implements spec.md §4.B's MD5 pinning: a configured
// expected MD5 (hex, case-insensitive) must match the peer leaf byte-for-
// byte; the historical short-prefix-match bug (§9 Open Question) is fixed
// here by requiring full-length comparison.
func verifyFingerprint(cfg certificates.TLSConfig, state tls.ConnectionState) error {
	fp, ok := cfg.(interface{ GetFingerprintMD5() string })
	if !ok {
		return nil
	}

	expect := strings.ToLower(strings.TrimSpace(fp.GetFingerprintMD5()))
	if expect == "" {
		return nil
	}

	if len(state.PeerCertificates) == 0 {
		return ErrorFingerprintMismatch.Error(nil)
	}

	sum := md5.Sum(state.PeerCertificates[0].Raw)
	got := hex.EncodeToString(sum[:])

	if len(expect) != len(got) || got != expect {
		return ErrorFingerprintMismatch.Error(nil)
	}

	return nil
}

func (t *transport) SetError(format string, args ...interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lastErr = fmt.Errorf(format, args...)
}

func (t *transport) GetError() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.lastErr
}

func (t *transport) SetDeadline(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.timeout = d
}

func (t *transport) Conn() net.Conn {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.conn
}

func (t *transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.conn == nil {
		return nil
	}

	err := t.conn.Close()
	t.conn = nil

	return liberr.ErrorFilter(err)
}

func classifyIOError(err error) error {
	if ne, ok := err.(net.Error); ok && ne.Timeout() {
		return ErrorTimeout.Error(err)
	}

	return err
}
