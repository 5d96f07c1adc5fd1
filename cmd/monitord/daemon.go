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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sabouaram/monitord/channel"
	"github.com/sabouaram/monitord/config"
	"github.com/sabouaram/monitord/control"
	"github.com/sabouaram/monitord/logger"
	"github.com/sabouaram/monitord/service"
	"github.com/sabouaram/monitord/state"
	"github.com/sabouaram/monitord/validator"
)

// daemon is the running instance assembled by runDaemon: the service graph,
// the control engine and validator that mutate it, and the optional control
// channel in front of them.
type daemon struct {
	opts options

	log logger.Logger
	reg *service.Registry
	ctl *control.Engine
	val *validator.Validator
	srv *channel.Server
}

// runDaemon loads the configuration, wires every component together, and
// blocks until a termination signal (SIGTERM or SIGINT) is received. SIGHUP triggers a drain-reload-restart cycle per spec.md
// §5; SIGTERM/SIGINT trigger a graceful stop and a final state save.
//
// This daemon never self-daemonizes (double-fork into the background): the
// language runtime makes that unsafe to do after goroutines and file
// descriptors are already in play, so -I is accepted but has no effect
// beyond being parsed — the process always runs in the foreground of
// whatever supervises it (init system, container runtime, terminal).
func runDaemon(opts options) error {
	d, err := newDaemon(opts)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err = d.start(ctx); err != nil {
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT, syscall.SIGHUP, syscall.SIGUSR1)

	for {
		sig := <-sigCh

		switch sig {
		case syscall.SIGTERM, syscall.SIGINT:
			d.log.Info("received shutdown signal, stopping", nil)
			return d.stop(ctx)

		case syscall.SIGHUP:
			d.log.Info("received reload signal, reloading configuration", nil)
			if err = d.reload(ctx); err != nil {
				d.log.Error(fmt.Sprintf("reload failed: %s", err), nil)
			}

		case syscall.SIGUSR1:
			d.log.Info("received wakeup signal", nil)
			d.val.Wake(ctx)
		}
	}
}

func newDaemon(opts options) (*daemon, error) {
	log := logger.New(context.Background())
	log.SetLevel(verboseToLevel(opts.verbose))

	cfg, err := config.Load(opts.confFile)
	if err != nil {
		return nil, ErrorConfigLoad.Error(err)
	}

	reg, err := cfg.Registry()
	if err != nil {
		return nil, ErrorConfigLoad.Error(err)
	}

	ctl := control.New(reg, log)

	poll := cfg.Poll
	if opts.pollSec > 0 {
		poll = time.Duration(opts.pollSec) * time.Second
	}

	val := validator.New(reg, ctl, log, poll)

	d := &daemon{
		opts: opts,
		log:  log,
		reg:  reg,
		ctl:  ctl,
		val:  val,
	}

	chCfg, err := cfg.ChannelConfig()
	if err != nil {
		return nil, ErrorConfigLoad.Error(err)
	}

	if chCfg.Listen != "" {
		srv, err := channel.New(chCfg, reg, ctl)
		if err != nil {
			return nil, ErrorConfigLoad.Error(err)
		}
		d.srv = srv
	}

	stateFile := opts.stateFile
	if stateFile == "" {
		stateFile = cfg.StateFile
	}
	d.opts.stateFile = stateFile

	if stateFile != "" {
		snap, err := state.Load(stateFile)
		if err != nil {
			log.Warning(fmt.Sprintf("state file unreadable, resuming with empty state: %s", err), nil)
		} else {
			state.Apply(reg, snap)
		}
	}

	return d, nil
}

func (d *daemon) start(ctx context.Context) error {
	if d.srv != nil {
		if err := d.srv.Start(ctx); err != nil {
			return ErrorConfigLoad.Error(err)
		}
	}

	return d.val.Start(ctx)
}

func (d *daemon) stop(ctx context.Context) error {
	_ = d.val.Stop(ctx)

	if d.srv != nil {
		_ = d.srv.Stop(ctx)
	}

	if d.opts.stateFile != "" {
		if err := state.Save(d.opts.stateFile, d.reg); err != nil {
			d.log.Error(fmt.Sprintf("failed to save state: %s", err), nil)
			return err
		}
	}

	return nil
}

// reload drains the current cycle, stops the control channel, saves state,
// re-parses configuration, and restarts, matching spec.md §5's SIGHUP
// contract.
func (d *daemon) reload(ctx context.Context) error {
	if err := d.stop(ctx); err != nil {
		return err
	}

	nd, err := newDaemon(d.opts)
	if err != nil {
		return err
	}

	*d = *nd

	return d.start(ctx)
}

