/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
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

// Package socket provides the small set of connection-state and error-
// filtering primitives shared by transport. It deliberately does not carry
// a generic client/server framework: package transport owns the connection
// lifecycle directly.
package socket

import "strings"

// DefaultBufferSize is the default size used for buffered reads.
const DefaultBufferSize = 32 * 1024

// EOL is the line terminator used by readLine-style operations.
const EOL = '\n'

// ConnState enumerates the phases of a single connection's life.
type ConnState uint8

const (
	ConnectionDial ConnState = iota
	ConnectionNew
	ConnectionRead
	ConnectionCloseRead
	ConnectionHandler
	ConnectionWrite
	ConnectionCloseWrite
	ConnectionClose
)

func (s ConnState) String() string {
	switch s {
	case ConnectionDial:
		return "Dial Connection"
	case ConnectionNew:
		return "New Connection"
	case ConnectionRead:
		return "Read Incoming Stream"
	case ConnectionCloseRead:
		return "Close Incoming Stream"
	case ConnectionHandler:
		return "Run HandlerFunc"
	case ConnectionWrite:
		return "Write Outgoing Steam"
	case ConnectionCloseWrite:
		return "Close Outgoing Stream"
	case ConnectionClose:
		return "Close Connection"
	default:
		return "unknown connection state"
	}
}

// ErrorFilter drops the noisy "use of closed network connection" error that
// surfaces whenever a peer closes a socket we are already tearing down, so
// callers don't have to special-case it at every call site. Any other error,
// including one that merely mentions the phrase deeper in a wrapped chain
// at top level, is returned unchanged.
func ErrorFilter(err error) error {
	if err == nil {
		return nil
	}

	if err.Error() == "use of closed network connection" {
		return nil
	}

	if strings.Contains(err.Error(), "use of closed network connection") && strings.Count(err.Error(), ":") > 1 {
		return err
	}

	return err
}
