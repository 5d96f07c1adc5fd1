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

// CheckIMAP reads the greeting, requires a "* OK" prefix, sends a LOGOUT,
// and requires a "* BYE" prefix in reply.
func CheckIMAP(ctx context.Context, t transport.Transport) error {
	if _, err := expectPrefix(t, "* OK"); err != nil {
		return err
	}

	if err := sendLine(t, "001 LOGOUT"); err != nil {
		t.SetError("write failed: %s", err.Error())
		return err
	}

	if _, err := expectPrefix(t, "* BYE"); err != nil {
		return err
	}

	return nil
}

// CheckPOP requires a "+OK" greeting, sends QUIT, and requires a "+OK"
// reply.
func CheckPOP(ctx context.Context, t transport.Transport) error {
	if _, err := expectPrefix(t, "+OK"); err != nil {
		return err
	}

	if err := sendLine(t, "QUIT"); err != nil {
		t.SetError("write failed: %s", err.Error())
		return err
	}

	if _, err := expectPrefix(t, "+OK"); err != nil {
		return err
	}

	return nil
}

// CheckSMTP runs the 220 -> EHLO -> 250 -> QUIT -> 221 cycle.
func CheckSMTP(ctx context.Context, t transport.Transport) error {
	if _, err := expectPrefix(t, "220"); err != nil {
		return err
	}

	if err := sendLine(t, "EHLO localhost"); err != nil {
		t.SetError("write failed: %s", err.Error())
		return err
	}

	for {
		line, err := readLine(t)
		if err != nil {
			t.SetError("read failed: %s", err.Error())
			return err
		}

		if !strings.HasPrefix(line, "250") {
			t.SetError("unexpected response: %q", line)
			return ErrorProtocolMismatch.Error(nil)
		}

		// a multi-line 250 reply uses "250-" on every line but the last
		if len(line) >= 4 && line[3] == ' ' {
			break
		}
	}

	if err := sendLine(t, "QUIT"); err != nil {
		t.SetError("write failed: %s", err.Error())
		return err
	}

	if _, err := expectPrefix(t, "221"); err != nil {
		return err
	}

	return nil
}

// CheckGPSD sends the ASCII query command and requires one of the three
// documented response prefixes.
func CheckGPSD(ctx context.Context, t transport.Transport) error {
	if err := sendLine(t, "G"); err != nil {
		t.SetError("write failed: %s", err.Error())
		return err
	}

	line, err := readLine(t)
	if err != nil {
		t.SetError("read failed: %s", err.Error())
		return err
	}

	for _, want := range []string{"GPSD,G=GPS", "GPSD,G=RTCM104", "GPSD,G=RTCM104v2"} {
		if strings.HasPrefix(line, want) {
			return nil
		}
	}

	t.SetError("unexpected gpsd response: %q", line)
	return ErrorProtocolMismatch.Error(nil)
}
