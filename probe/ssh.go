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

	"golang.org/x/crypto/ssh"

	"github.com/sabouaram/monitord/transport"
)

// CheckSSH drives golang.org/x/crypto/ssh's client handshake over the
// transport's connection far enough to exchange identification banners and
// negotiate algorithms; an authentication failure after a completed key
// exchange still counts as liveness, so only a transport-level or
// handshake-level error is treated as a probe failure.
func CheckSSH(ctx context.Context, t transport.Transport) error {
	cfg := &ssh.ClientConfig{
		User:            "monitprobe",
		Auth:            []ssh.AuthMethod{ssh.Password("")},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
	}

	conn, _, _, err := ssh.NewClientConn(t.Conn(), t.Conn().RemoteAddr().String(), cfg)
	if err != nil {
		if strings.Contains(err.Error(), "unable to authenticate") {
			return nil
		}

		t.SetError("ssh handshake failed: %s", err.Error())
		return err
	}

	_ = conn.Close()
	return nil
}
