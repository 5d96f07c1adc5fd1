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
	"time"

	"github.com/miekg/dns"

	"github.com/sabouaram/monitord/transport"
)

// CheckDNS issues an SOA query for "." over the transport's connection
// (reused as the dns.Conn's net.Conn) and requires a response code other
// than SERVFAIL.
func CheckDNS(ctx context.Context, t transport.Transport) error {
	msg := new(dns.Msg)
	msg.SetQuestion(".", dns.TypeSOA)

	co := &dns.Conn{Conn: t.Conn()}
	defer func() {
		// only detach the read/write deadlines dns.Conn may have set;
		// the connection itself stays owned by the transport.
		_ = co.Conn.SetDeadline(time.Time{})
	}()

	if err := co.WriteMsg(msg); err != nil {
		t.SetError("dns write failed: %s", err.Error())
		return err
	}

	resp, err := co.ReadMsg()
	if err != nil {
		t.SetError("dns read failed: %s", err.Error())
		return err
	}

	if resp.Rcode == dns.RcodeServerFailure {
		t.SetError("dns server returned SERVFAIL")
		return ErrorProtocolMismatch.Error(nil)
	}

	return nil
}
