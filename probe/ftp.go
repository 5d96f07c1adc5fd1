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

// CheckFTP performs a bare send/expect control-channel greeting check
// ("220" welcome banner), for deployments that only want a control-port
// liveness signal.
func CheckFTP(ctx context.Context, t transport.Transport) error {
	line, err := readLine(t)
	if err != nil {
		t.SetError("read failed: %s", err.Error())
		return err
	}

	if !strings.HasPrefix(line, "220") {
		t.SetError("unexpected ftp greeting: %q", line)
		return ErrorProtocolMismatch.Error(nil)
	}

	return nil
}

// CheckFTPLogin performs a full login cycle via jlaffaye/ftp against addr,
// for deployments that want to verify authenticated access rather than
// just the control-port banner.
func CheckFTPLogin(ctx context.Context, addr, user, pass string) error {
	c, err := ftpDial(ctx, addr)
	if err != nil {
		return err
	}
	defer c.Quit()

	return c.Login(user, pass)
}
