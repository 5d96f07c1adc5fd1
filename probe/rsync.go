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
	"fmt"
	"strings"

	"github.com/sabouaram/monitord/transport"
)

// CheckRSYNC reads the greeting, requires the "@RSYNCD: <major>.<minor>"
// shape, echoes it back verbatim, requests the module list, discards list
// output until a further "@RSYNCD:" line, and requires that line to be
// "@RSYNCD: EXIT".
func CheckRSYNC(ctx context.Context, t transport.Transport) error {
	greeting, err := readLine(t)
	if err != nil {
		t.SetError("read failed: %s", err.Error())
		return err
	}

	var major, minor int
	if _, err = fmt.Sscanf(greeting, "@RSYNCD: %d.%d", &major, &minor); err != nil {
		t.SetError("unexpected greeting: %q", greeting)
		return ErrorProtocolMismatch.Error(nil)
	}

	if _, err = t.Print("%s\n", greeting); err != nil {
		t.SetError("write failed: %s", err.Error())
		return err
	}

	if err = sendLine(t, "#list"); err != nil {
		t.SetError("write failed: %s", err.Error())
		return err
	}

	for {
		line, err := readLine(t)
		if err != nil {
			t.SetError("read failed: %s", err.Error())
			return err
		}

		if strings.HasPrefix(line, "@RSYNCD:") {
			if line == "@RSYNCD: EXIT" {
				return nil
			}

			t.SetError("unexpected closing line: %q", line)
			return ErrorProtocolMismatch.Error(nil)
		}
	}
}
