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

// Package control implements the dependency-graph walk engine that starts,
// stops, restarts, and (un)monitors services and everything they transitively
// depend on, serialized through a single global lock shared with the
// validator.
package control

import (
	"context"
	"fmt"
	"sync"

	"github.com/sabouaram/monitord/logger"
	"github.com/sabouaram/monitord/service"
)

// Engine is the control entrypoint. Its Lock is the single global lock the
// validator must also serialize through, per the concurrency model.
type Engine struct {
	Lock sync.Mutex

	reg *service.Registry
	log logger.Logger
}

// New builds an Engine over the given service registry.
func New(reg *service.Registry, log logger.Logger) *Engine {
	return &Engine{
		reg: reg,
		log: log,
	}
}

// reset zeroes the visited/depend_visited marks before a top-level walk.
func (e *Engine) reset() {
	e.reg.ResetVisited()
}

// Start walks: stop dependants (in-fix), start s and its prerequisites
// (post-fix), then restart the dependants that were stopped.
func (e *Engine) Start(ctx context.Context, name string) error {
	e.Lock.Lock()
	defer e.Lock.Unlock()

	s, ok := e.reg.Get(name)
	if !ok {
		return ErrorUnknownService.Error(nil)
	}

	e.reset()
	e.doDepend(ctx, s, service.ActionStop, false)
	e.reset()
	e.doStart(ctx, s)
	e.reset()
	e.doDepend(ctx, s, service.ActionStart, false)

	return nil
}

// Stop walks: disable monitoring and stop every dependant (in-fix), then
// stop s itself.
func (e *Engine) Stop(ctx context.Context, name string) error {
	e.Lock.Lock()
	defer e.Lock.Unlock()

	s, ok := e.reg.Get(name)
	if !ok {
		return ErrorUnknownService.Error(nil)
	}

	e.reset()
	e.doDepend(ctx, s, service.ActionStop, true)
	e.reset()
	e.doStop(ctx, s, true)

	return nil
}

// Restart prefers the configured restart command; falling back to a
// stop-then-start sequence, re-arming monitoring on stop failure so a later
// validator cycle retries.
func (e *Engine) Restart(ctx context.Context, name string) error {
	e.Lock.Lock()
	defer e.Lock.Unlock()

	s, ok := e.reg.Get(name)
	if !ok {
		return ErrorUnknownService.Error(nil)
	}

	e.reset()
	e.doDepend(ctx, s, service.ActionStop, false)

	if s.Restart != nil {
		e.doRestart(ctx, s)
		e.reset()
		e.doDepend(ctx, s, service.ActionStart, false)
		return nil
	}

	if err := e.doStop(ctx, s, false); err == nil {
		e.doStart(ctx, s)
		e.reset()
		e.doDepend(ctx, s, service.ActionStart, false)
	} else {
		s.State = service.MonitorYes
	}

	return nil
}

// Monitor enables monitoring for s and every prerequisite (post-fix).
func (e *Engine) Monitor(ctx context.Context, name string) error {
	e.Lock.Lock()
	defer e.Lock.Unlock()

	s, ok := e.reg.Get(name)
	if !ok {
		return ErrorUnknownService.Error(nil)
	}

	e.reset()
	e.doMonitor(ctx, s)

	return nil
}

// Unmonitor disables monitoring for s and every dependant.
func (e *Engine) Unmonitor(ctx context.Context, name string) error {
	e.Lock.Lock()
	defer e.Lock.Unlock()

	s, ok := e.reg.Get(name)
	if !ok {
		return ErrorUnknownService.Error(nil)
	}

	e.reset()
	e.doDepend(ctx, s, service.ActionUnmonitor, false)
	e.reset()
	e.doUnmonitor(ctx, s)

	return nil
}

// doDepend walks services that declare s as a dependency, applying act to
// each. When stopOnly is true it also disables their monitoring first.
func (e *Engine) doDepend(ctx context.Context, s *service.Service, act service.Action, stopOnly bool) {
	if s.DependVisited() {
		return
	}
	s.SetDependVisited(true)

	for _, other := range e.reg.All() {
		if other.Name == s.Name {
			continue
		}

		for _, dep := range other.Dependants {
			if dep != s.Name {
				continue
			}

			if stopOnly {
				other.State = service.MonitorNot
				e.doStop(ctx, other, true)
			} else {
				switch act {
				case service.ActionStart:
					e.doStart(ctx, other)
				case service.ActionStop:
					e.doStop(ctx, other, true)
				case service.ActionUnmonitor:
					e.doUnmonitor(ctx, other)
				}
			}

			e.doDepend(ctx, other, act, stopOnly)
		}
	}
}

// doStart recursively starts every prerequisite first (post-fix), then
// executes s's start command.
func (e *Engine) doStart(ctx context.Context, s *service.Service) error {
	if s.Visited() {
		return nil
	}
	s.SetVisited(true)

	for _, depName := range s.Dependants {
		if dep, ok := e.reg.Get(depName); ok {
			e.doStart(ctx, dep)
		}
	}

	res := runCommand(s.Start, s, service.EventInit, "starting")

	if res.Succeeded {
		if s.Kind == service.KindProcess {
			waitStart(ctx, s.Inf.PID)
		}
	}

	s.State = service.MonitorYes

	if e.log != nil {
		if res.Succeeded {
			e.log.Info(fmt.Sprintf("service %q started", s.Name), nil)
		} else {
			e.log.Error(fmt.Sprintf("service %q start failed: %s", s.Name, res.Message), nil)
		}
	}

	if !res.Succeeded {
		return ErrorExecFailed.Error(nil)
	}

	return nil
}

// doStop executes s's stop command. flag additionally disables monitoring;
// when false only transient info is cleared.
func (e *Engine) doStop(ctx context.Context, s *service.Service, flag bool) error {
	if s.Visited() {
		return nil
	}
	s.SetVisited(true)

	res := runCommand(s.Stop, s, service.EventInit, "stopping")

	if res.Succeeded && s.Kind == service.KindProcess {
		waitStop(ctx, s.Inf.PID)
	}

	if flag {
		s.State = service.MonitorNot
	} else {
		s.Inf = service.Info{}
	}

	if e.log != nil {
		if res.Succeeded {
			e.log.Info(fmt.Sprintf("service %q stopped", s.Name), nil)
		} else {
			e.log.Error(fmt.Sprintf("service %q stop failed: %s", s.Name, res.Message), nil)
		}
	}

	if !res.Succeeded {
		return ErrorStopFailed.Error(nil)
	}

	return nil
}

func (e *Engine) doRestart(ctx context.Context, s *service.Service) error {
	if s.Visited() {
		return nil
	}
	s.SetVisited(true)

	res := runCommand(s.Restart, s, service.EventInit, "restarting")

	s.State = service.MonitorYes

	if e.log != nil {
		if res.Succeeded {
			e.log.Info(fmt.Sprintf("service %q restarted", s.Name), nil)
		} else {
			e.log.Error(fmt.Sprintf("service %q restart failed: %s", s.Name, res.Message), nil)
		}
	}

	if !res.Succeeded {
		return ErrorExecFailed.Error(nil)
	}

	return nil
}

func (e *Engine) doMonitor(ctx context.Context, s *service.Service) {
	if s.Visited() {
		return
	}
	s.SetVisited(true)

	for _, depName := range s.Dependants {
		if dep, ok := e.reg.Get(depName); ok {
			e.doMonitor(ctx, dep)
		}
	}

	s.State = service.MonitorYes
}

func (e *Engine) doUnmonitor(ctx context.Context, s *service.Service) {
	if s.Visited() {
		return
	}
	s.SetVisited(true)

	s.State = service.MonitorNot
}
