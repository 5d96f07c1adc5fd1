/*
 * MIT License
 *
 * Copyright (c) 2022 Nicolas JUHEL
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
 *
 */

// Package startStop provides a restartable runner wrapping a pair of
// long-running start/stop functions.
package startStop

import (
	"context"
	"time"
)

// FuncStart is run in its own goroutine by Start. It is expected to block
// until ctx is cancelled (e.g. by Stop), then return.
type FuncStart func(ctx context.Context) error

// FuncStop is invoked synchronously by Stop before the start goroutine's
// context is cancelled.
type FuncStop func(ctx context.Context) error

// StartStop is a restartable long-running task pair with uptime tracking
// and error collection.
type StartStop interface {
	// Start launches the start function in a background goroutine. If
	// already running, the previous instance is stopped first. Clears any
	// errors collected by the previous run.
	Start(ctx context.Context) error

	// Stop invokes the stop function (if any) and cancels the start
	// goroutine's context, then waits for it to exit. Idempotent: calling
	// Stop when not running is a no-op.
	Stop(ctx context.Context) error

	// Restart is Stop followed by Start.
	Restart(ctx context.Context) error

	// IsRunning reports whether the start goroutine is currently active.
	IsRunning() bool

	// Uptime returns the duration since the last Start, or zero when not
	// running.
	Uptime() time.Duration

	// ErrorsLast returns the most recently recorded error, or nil.
	ErrorsLast() error

	// ErrorsList returns every error recorded during the current run.
	ErrorsList() []error
}

// New creates a StartStop around fctStart/fctStop. Either may be nil; a nil
// function produces a recorded "invalid start/stop function" error at the
// point it would have been invoked, rather than panicking.
func New(fctStart FuncStart, fctStop FuncStop) StartStop {
	return &runner{
		fctStart: fctStart,
		fctStop:  fctStop,
		pol:      newPool(),
	}
}
