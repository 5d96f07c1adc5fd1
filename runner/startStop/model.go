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

package startStop

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	liberr "github.com/sabouaram/monitord/errors/pool"
)

func newPool() liberr.Pool {
	return liberr.New()
}

type runner struct {
	mu sync.Mutex

	fctStart FuncStart
	fctStop  FuncStop
	pol      liberr.Pool

	cnl context.CancelFunc
	run atomic.Bool
	sta atomic.Int64
	wg  sync.WaitGroup
}

func (o *runner) Start(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.stopLocked(ctx)
	o.pol = newPool()

	cctx, cancel := context.WithCancel(ctx)
	o.cnl = cancel
	o.sta.Store(time.Now().UnixNano())
	o.run.Store(true)

	o.wg.Add(1)
	go o.runStart(cctx)

	return nil
}

func (o *runner) Stop(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.stopLocked(ctx)
	return nil
}

func (o *runner) stopLocked(ctx context.Context) {
	if !o.run.Load() {
		return
	}

	o.runStop(ctx)

	if o.cnl != nil {
		o.cnl()
	}

	o.wg.Wait()
}

func (o *runner) Restart(ctx context.Context) error {
	if err := o.Stop(ctx); err != nil {
		return err
	}

	return o.Start(ctx)
}

func (o *runner) IsRunning() bool {
	return o.run.Load()
}

func (o *runner) Uptime() time.Duration {
	if !o.run.Load() {
		return 0
	}

	s := o.sta.Load()
	if s == 0 {
		return 0
	}

	return time.Since(time.Unix(0, s))
}

func (o *runner) ErrorsLast() error {
	return o.pol.Last()
}

func (o *runner) ErrorsList() []error {
	return o.pol.Slice()
}

func (o *runner) runStart(ctx context.Context) {
	defer o.wg.Done()
	defer o.run.Store(false)
	defer o.sta.Store(0)

	defer func() {
		if r := recover(); r != nil {
			o.pol.Add(panicError("start", r))
		}
	}()

	if o.fctStart == nil {
		o.pol.Add(errors.New("invalid start function: nil"))
		return
	}

	if err := o.fctStart(ctx); err != nil {
		o.pol.Add(err)
	}
}

func (o *runner) runStop(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			o.pol.Add(panicError("stop", r))
		}
	}()

	if o.fctStop == nil {
		o.pol.Add(errors.New("invalid stop function: nil"))
		return
	}

	if err := o.fctStop(ctx); err != nil {
		o.pol.Add(err)
	}
}

func panicError(phase string, r interface{}) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("startStop: recovered panic in %s function: %w", phase, err)
	}

	return fmt.Errorf("startStop: recovered panic in %s function: %v", phase, r)
}
