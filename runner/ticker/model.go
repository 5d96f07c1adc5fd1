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

package ticker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	liberr "github.com/sabouaram/monitord/errors/pool"
)

func newPool() liberr.Pool {
	return liberr.New()
}

type run struct {
	mu sync.Mutex

	dur time.Duration
	fct FuncTick
	pol liberr.Pool

	cnl context.CancelFunc
	run atomic.Bool
	sta atomic.Int64
	wg  sync.WaitGroup
}

func (o *run) Start(ctx context.Context) error {
	if ctx == nil {
		return errors.New("ticker: nil context")
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if o.run.Load() {
		o.stopLocked()
	}

	o.pol.Clear()

	cctx, cancel := context.WithCancel(ctx)
	o.cnl = cancel
	o.sta.Store(time.Now().UnixNano())
	o.run.Store(true)

	o.wg.Add(1)
	go o.loop(cctx)

	return nil
}

func (o *run) Stop(_ context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.stopLocked()
	return nil
}

func (o *run) stopLocked() {
	if !o.run.Load() {
		return
	}

	if o.cnl != nil {
		o.cnl()
	}

	o.wg.Wait()
}

func (o *run) Restart(ctx context.Context) error {
	if err := o.Stop(ctx); err != nil {
		return err
	}

	return o.Start(ctx)
}

func (o *run) IsRunning() bool {
	return o.run.Load()
}

func (o *run) Uptime() time.Duration {
	if !o.run.Load() {
		return 0
	}

	s := o.sta.Load()
	if s == 0 {
		return 0
	}

	return time.Since(time.Unix(0, s))
}

func (o *run) ErrorsLast() error {
	return o.pol.Last()
}

func (o *run) ErrorsList() []error {
	return o.pol.Slice()
}

func (o *run) loop(ctx context.Context) {
	defer o.wg.Done()
	defer o.run.Store(false)
	defer o.sta.Store(0)

	tck := time.NewTicker(o.dur)
	defer tck.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tck.C:
			o.runOnce(ctx, tck)
		}
	}
}

func (o *run) runOnce(ctx context.Context, tck *time.Ticker) {
	defer func() {
		if r := recover(); r != nil {
			o.pol.Add(panicError(r))
		}
	}()

	if err := o.fct(ctx, tck); err != nil {
		o.pol.Add(err)
	}
}
