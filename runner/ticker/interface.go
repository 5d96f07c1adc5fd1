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

// Package ticker provides a restartable, periodic background runner built on
// top of time.Ticker, used to drive the validator's polling cycle.
package ticker

import (
	"context"
	"fmt"
	"time"
)

// DefaultDuration is used whenever New is given a duration <= 0.
const DefaultDuration = 1 * time.Second

// FuncTick is invoked on every tick. A returned error is recorded in the
// pool retrievable through ErrorsLast/ErrorsList; it does not stop the
// ticker.
type FuncTick func(ctx context.Context, tck *time.Ticker) error

// Runner is a restartable periodic task driven by a time.Ticker.
type Runner interface {
	// Start launches the ticker loop in a background goroutine. Calling
	// Start on an already-running instance stops it first. Start clears the
	// recorded errors, and returns an error for a nil ctx.
	Start(ctx context.Context) error

	// Stop halts the ticker loop and waits for the running goroutine to
	// exit. Calling Stop on a non-running instance is a no-op.
	Stop(ctx context.Context) error

	// Restart is Stop followed by Start.
	Restart(ctx context.Context) error

	// IsRunning reports whether the ticker loop is currently active.
	IsRunning() bool

	// Uptime returns the duration elapsed since the last Start, or zero
	// when not running.
	Uptime() time.Duration
}

// Errors exposes the errors returned by FuncTick invocations.
type Errors interface {
	// ErrorsLast returns the most recently recorded error, or nil.
	ErrorsLast() error

	// ErrorsList returns every recorded error, oldest first.
	ErrorsList() []error
}

// Ticker combines Runner and Errors.
type Ticker interface {
	Runner
	Errors
}

// New creates a Ticker that invokes fct every d. A d <= 0 falls back to
// DefaultDuration. A nil fct is accepted; on every tick it records an
// "invalid function ticker" error.
func New(d time.Duration, fct FuncTick) Ticker {
	if d <= 0 {
		d = DefaultDuration
	}

	if fct == nil {
		fct = func(_ context.Context, _ *time.Ticker) error {
			return fmt.Errorf("invalid function ticker")
		}
	}

	return &run{
		dur: d,
		fct: fct,
		pol: newPool(),
	}
}
