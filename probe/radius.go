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
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/md5"
	"crypto/rand"
	"encoding/binary"

	"github.com/sabouaram/monitord/transport"
)

const (
	radiusCodeStatusServer  = 0x0c
	radiusCodeAccessAccept  = 0x02
	radiusCodeAccessReject  = 0x05
	radiusPacketLen         = 0x0026
	radiusAttrMessageAuthMC = 0x50
	radiusAuthenticatorLen  = 16
)

// CheckRADIUS builds and sends a 38-byte Status-Server request over UDP,
// HMAC-MD5-signed via the Message-Authenticator attribute, then validates
// the response's header and attribute framing. A response authenticator
// mismatch is a soft failure: recorded via SetError but the check still
// returns ok, matching the historical RADIUS probe's quirk.
func CheckRADIUS(ctx context.Context, t transport.Transport, secret string) error {
	reqAuth := make([]byte, radiusAuthenticatorLen)
	if _, err := rand.Read(reqAuth); err != nil {
		t.SetError("entropy read failed: %s", err.Error())
		return err
	}

	pkt := make([]byte, 0, radiusPacketLen)
	pkt = append(pkt, radiusCodeStatusServer, 0x00)
	pkt = binary.BigEndian.AppendUint16(pkt, radiusPacketLen)
	pkt = append(pkt, reqAuth...)
	pkt = append(pkt, radiusAttrMessageAuthMC, 0x12)
	pkt = append(pkt, make([]byte, radiusAuthenticatorLen)...)

	mac := hmac.New(md5.New, []byte(secret))
	mac.Write(pkt)
	sum := mac.Sum(nil)
	copy(pkt[len(pkt)-radiusAuthenticatorLen:], sum)

	if _, err := t.WriteBytes(pkt); err != nil {
		t.SetError("write failed: %s", err.Error())
		return err
	}

	resp := make([]byte, 512)
	n, err := t.ReadBytes(resp, len(resp))
	if err != nil {
		t.SetError("read failed: %s", err.Error())
		return err
	}

	if n < 20 {
		t.SetError("short radius response: %d bytes", n)
		return ErrorShortRead.Error(nil)
	}

	resp = resp[:n]

	code := resp[0]
	if code != radiusCodeAccessAccept && code != radiusCodeAccessReject {
		t.SetError("unexpected radius response code: %d", code)
		return ErrorProtocolMismatch.Error(nil)
	}

	if resp[1] != 0x00 {
		t.SetError("unexpected radius response id: %d", resp[1])
		return ErrorProtocolMismatch.Error(nil)
	}

	length := binary.BigEndian.Uint16(resp[2:4])
	if int(length) != n {
		t.SetError("radius length field %d does not match received %d bytes", length, n)
		return ErrorProtocolMismatch.Error(nil)
	}

	respAuth := append([]byte(nil), resp[4:20]...)

	if err = walkRadiusAttrs(resp[20:]); err != nil {
		t.SetError("malformed radius attribute: %s", err.Error())
		return err
	}

	verify := append([]byte(nil), resp...)
	copy(verify[4:20], reqAuth)
	verify = append(verify, []byte(secret)...)
	check := md5.Sum(verify)

	if !bytes.Equal(check[:], respAuth) {
		t.SetError("radius response authenticator mismatch")
	}

	return nil
}

// walkRadiusAttrs validates TLV framing (type, length>=2, length<=remaining)
// without interpreting attribute semantics.
func walkRadiusAttrs(b []byte) error {
	for len(b) > 0 {
		if len(b) < 2 {
			return ErrorShortRead.Error(nil)
		}

		l := int(b[1])
		if l < 2 || l > len(b) {
			return ErrorProtocolMismatch.Error(nil)
		}

		b = b[l:]
	}

	return nil
}
