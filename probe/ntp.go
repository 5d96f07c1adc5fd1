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

	"github.com/sabouaram/monitord/transport"
)

const (
	ntpLeapNotSync = 3
	ntpVersion3    = 3
	ntpModeClient  = 3
	ntpModeServer  = 4
	ntpPacketSize  = 48
)

// CheckNTPv3 sends a 48-byte NTPv3 client request and validates the
// server's mode, version, and leap indicator fields bit-exactly.
func CheckNTPv3(ctx context.Context, t transport.Transport) error {
	req := make([]byte, ntpPacketSize)
	req[0] = (ntpLeapNotSync << 6) | (ntpVersion3 << 3) | ntpModeClient

	if _, err := t.WriteBytes(req); err != nil {
		t.SetError("write failed: %s", err.Error())
		return err
	}

	resp := make([]byte, ntpPacketSize)
	n, err := t.ReadBytes(resp, ntpPacketSize)
	if err != nil {
		t.SetError("read failed: %s", err.Error())
		return err
	}

	if n != ntpPacketSize {
		t.SetError("short ntp packet: got %d bytes, want %d", n, ntpPacketSize)
		return ErrorShortRead.Error(nil)
	}

	leap := (resp[0] >> 6) & 0x03
	version := (resp[0] >> 3) & 0x07
	mode := resp[0] & 0x07

	if mode != ntpModeServer {
		t.SetError("unexpected ntp mode: %d", mode)
		return ErrorProtocolMismatch.Error(nil)
	}

	if version != ntpVersion3 {
		t.SetError("unexpected ntp version: %d", version)
		return ErrorProtocolMismatch.Error(nil)
	}

	if leap == ntpLeapNotSync {
		t.SetError("ntp server reports leap indicator not-synchronized")
		return ErrorProtocolMismatch.Error(nil)
	}

	return nil
}
