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

package probe

import (
	"context"
	"strings"

	"github.com/sabouaram/monitord/transport"
)

// CheckHTTP issues a bare "GET / HTTP/1.0" and requires the status line to
// start with "HTTP/".
func CheckHTTP(ctx context.Context, t transport.Transport, host string) error {
	if err := sendLine(t, "GET / HTTP/1.0\r\nHost: %s\r\nConnection: close", host); err != nil {
		t.SetError("write failed: %s", err.Error())
		return err
	}
	if err := sendLine(t, ""); err != nil {
		t.SetError("write failed: %s", err.Error())
		return err
	}

	line, err := readLine(t)
	if err != nil {
		t.SetError("read failed: %s", err.Error())
		return err
	}

	if !strings.HasPrefix(line, "HTTP/") {
		t.SetError("unexpected status line: %q", line)
		return ErrorProtocolMismatch.Error(nil)
	}

	return nil
}

// CheckGeneric sends a literal probe line and requires the first response
// line to carry the given prefix, the shape used for Memcache ("version"
// -> "VERSION"), Redis ("PING" -> "+PONG"), Sieve, SIP, and WebSocket
// liveness checks that don't need a dedicated state machine.
func CheckGeneric(ctx context.Context, t transport.Transport, send, wantPrefix string) error {
	if send != "" {
		if err := sendLine(t, "%s", send); err != nil {
			t.SetError("write failed: %s", err.Error())
			return err
		}
	}

	line, err := readLine(t)
	if err != nil {
		t.SetError("read failed: %s", err.Error())
		return err
	}

	if !strings.HasPrefix(line, wantPrefix) {
		t.SetError("unexpected response: %q (want prefix %q)", line, wantPrefix)
		return ErrorProtocolMismatch.Error(nil)
	}

	return nil
}
