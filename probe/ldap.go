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

	"github.com/go-ldap/ldap/v3"

	"github.com/sabouaram/monitord/transport"
)

// CheckLDAP hands the transport's already-connected net.Conn to
// go-ldap/ldap/v3 and performs an anonymous bind, the liveness contract a
// plain TCP connect cannot distinguish from a hung directory server.
func CheckLDAP(ctx context.Context, t transport.Transport) error {
	conn := ldap.NewConn(t.Conn(), false)
	conn.Start()

	// conn.Close() is deliberately not called here: it would close the
	// underlying net.Conn, and probes never close the transport they are
	// given. The ldap client's internal read goroutine exits once the
	// transport itself is torn down by its owner.
	if err := conn.UnauthenticatedBind(""); err != nil {
		t.SetError("ldap bind failed: %s", err.Error())
		return err
	}

	return nil
}
