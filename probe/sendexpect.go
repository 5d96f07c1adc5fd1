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
	"strings"

	"github.com/sabouaram/monitord/transport"
)

const maxLineLen = 512

// readLine reads one line (up to maxLineLen bytes) from t, trimming any
// trailing CR/LF, the shape every send/expect probe below builds on.
func readLine(t transport.Transport) (string, error) {
	buf := make([]byte, maxLineLen)

	n, err := t.ReadLine(buf, maxLineLen)
	if err != nil {
		return "", err
	}

	return strings.TrimRight(string(buf[:n]), "\r\n"), nil
}

// expectPrefix reads one line and requires it to start with prefix
// (case-insensitive), the pattern IMAP/POP/SMTP share.
func expectPrefix(t transport.Transport, prefix string) (string, error) {
	line, err := readLine(t)
	if err != nil {
		t.SetError("read failed: %s", err.Error())
		return "", err
	}

	if !strings.HasPrefix(strings.ToUpper(line), strings.ToUpper(prefix)) {
		t.SetError("unexpected response: %q (want prefix %q)", line, prefix)
		return line, ErrorProtocolMismatch.Error(nil)
	}

	return line, nil
}

// sendLine writes format+args terminated by CRLF.
func sendLine(t transport.Transport, format string, args ...interface{}) error {
	_, err := t.Print(format+"\r\n", args...)
	return err
}
