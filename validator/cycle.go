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

package validator

import (
	"context"
	"sync"
	"time"

	"github.com/sabouaram/monitord/control"
	"github.com/sabouaram/monitord/logger"
	"github.com/sabouaram/monitord/runner/ticker"
	"github.com/sabouaram/monitord/service"
)

// Validator runs the periodic monitoring cycle described in spec.md §4.E,
// serialized through the same global lock as the control engine.
type Validator struct {
	mu  sync.Mutex
	reg *service.Registry
	ctl *control.Engine
	log logger.Logger
	run ticker.Ticker

	events []service.Event
}

// New builds a Validator over reg, sharing ctl's global lock per the
// concurrency model's "validator and control engine serialize through the
// same global lock" requirement.
func New(reg *service.Registry, ctl *control.Engine, log logger.Logger, polltime time.Duration) *Validator {
	v := &Validator{
		reg: reg,
		ctl: ctl,
		log: log,
	}

	v.run = ticker.New(polltime, v.cycle)

	return v
}

// Start begins the periodic cycle.
func (v *Validator) Start(ctx context.Context) error {
	return v.run.Start(ctx)
}

// Stop halts the periodic cycle.
func (v *Validator) Stop(ctx context.Context) error {
	return v.run.Stop(ctx)
}

// Wake forces an immediate extra cycle without waiting for the next tick,
// matching spec.md §5's SIGUSR1 "dowakeup" contract. The ticker itself has
// no sub-tick wakeup primitive, so this runs the cycle body directly.
func (v *Validator) Wake(ctx context.Context) {
	_ = v.cycle(ctx, nil)
}

// cycle is invoked once per polltime tick by the ticker.Runner. It holds the
// control engine's global lock only while resetting the visited marks: fact
// refresh and rule
// evaluation need no exclusion, and each dispatched action acquires the
// shared lock inside the corresponding control.Engine call, which is
// what actually serializes validator-triggered actions against control
// channel requests.
func (v *Validator) cycle(ctx context.Context, _ *time.Ticker) error {
	// clear the marks left by the previous cycle, under the shared lock so
	// an in-flight control walk never sees them reset mid-walk.
	v.ctl.Lock.Lock()
	v.reg.ResetVisited()
	v.ctl.Lock.Unlock()

	for _, s := range v.reg.All() {
		if s.State != service.MonitorYes {
			continue
		}

		if s.Visited() {
			continue
		}
		s.SetVisited(true)

		v.evaluate(ctx, s)
	}

	return nil
}

// evaluate refreshes a service's facts and runs its rule set, handing off
// any triggered action to the control engine.
func (v *Validator) evaluate(ctx context.Context, s *service.Service) {
	switch s.Kind {
	case service.KindProcess:
		if s.Inf.PID > 0 {
			if inf, err := harvestProcess(ctx, s.Inf.PID); err == nil {
				s.Inf = inf
			}
		}
	case service.KindSystem:
		if inf, err := harvestSystem(ctx); err == nil {
			s.Inf = inf
		}
	}

	for _, r := range s.Rules {
		ev, fire := r.Eval(metric(s, r), 0, s.Name)
		if !fire {
			continue
		}

		v.post(*ev)
		v.dispatch(ctx, s, ev.Action)
	}
}

// metric extracts the measured value a Rule.Eval compares against its
// threshold, based on the rule's kind.
func metric(s *service.Service, r *service.Rule) float64 {
	switch r.Kind {
	case service.RuleResource:
		return float64(s.Inf.MemoryBytes)
	case service.RuleUptime:
		return float64(s.Inf.UptimeSecs)
	default:
		return 0
	}
}

// post records an emitted Event for later retrieval (e.g. by a status
// summary CLI command).
func (v *Validator) post(ev service.Event) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.events = append(v.events, ev)
}

// Events returns every Event recorded so far.
func (v *Validator) Events() []service.Event {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make([]service.Event, len(v.events))
	copy(out, v.events)

	return out
}

// dispatch hands a rule-triggered action off to the control engine, per
// spec.md §4.D step 3.
func (v *Validator) dispatch(ctx context.Context, s *service.Service, act service.Action) {
	var err error

	switch act {
	case service.ActionRestart:
		err = v.ctl.Restart(ctx, s.Name)
	case service.ActionStart:
		err = v.ctl.Start(ctx, s.Name)
	case service.ActionStop:
		err = v.ctl.Stop(ctx, s.Name)
	case service.ActionMonitor:
		err = v.ctl.Monitor(ctx, s.Name)
	case service.ActionUnmonitor:
		err = v.ctl.Unmonitor(ctx, s.Name)
	default:
		return
	}

	if err != nil && v.log != nil {
		v.log.Error("control action dispatch failed", err)
	}
}
