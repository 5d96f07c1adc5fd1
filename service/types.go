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

// Package service holds the data model shared by the validator and control
// engine: service definitions, their commands, rules and events, and the
// small enums describing monitoring state and rule outcomes.
package service

import (
	"sync"
	"time"

	"github.com/sabouaram/monitord/duration"
)

// Kind discriminates the monitored resource a Service describes.
type Kind uint8

const (
	KindFilesystem Kind = iota
	KindDirectory
	KindFile
	KindProcess
	KindRemoteHost
	KindSystem
	KindFifo
	KindProgram
	KindNetwork
)

func (k Kind) String() string {
	switch k {
	case KindFilesystem:
		return "filesystem"
	case KindDirectory:
		return "directory"
	case KindFile:
		return "file"
	case KindProcess:
		return "process"
	case KindRemoteHost:
		return "host"
	case KindSystem:
		return "system"
	case KindFifo:
		return "fifo"
	case KindProgram:
		return "program"
	case KindNetwork:
		return "network"
	default:
		return "unknown"
	}
}

// MonitorState controls whether the validator evaluates a service on its
// periodic cycle.
type MonitorState uint8

const (
	MonitorNot MonitorState = iota
	MonitorInit
	MonitorYes
)

func (m MonitorState) String() string {
	switch m {
	case MonitorNot:
		return "not monitored"
	case MonitorInit:
		return "initializing"
	case MonitorYes:
		return "monitored"
	default:
		return "unknown"
	}
}

// Command is the argv/uid/gid/timeout descriptor used for start, stop, and
// restart actions, per the data model's Command contract.
type Command struct {
	Argv    []string
	UID     *uint32
	GID     *uint32
	Timeout duration.Duration
}

// Valid reports whether the command has a non-empty argument vector, the
// invariant the data model places on argv[0].
func (c Command) Valid() bool {
	return len(c.Argv) > 0 && c.Argv[0] != ""
}

// EventKind classifies why an Event was emitted.
type EventKind uint8

const (
	EventRule EventKind = iota
	EventExec
	EventLifecycle
)

// EventState is the outcome an Event reports.
type EventState uint8

const (
	EventSucceeded EventState = iota
	EventFailed
	EventChanged
	EventInit
)

func (s EventState) String() string {
	switch s {
	case EventSucceeded:
		return "Succeeded"
	case EventFailed:
		return "Failed"
	case EventChanged:
		return "Changed"
	case EventInit:
		return "Init"
	default:
		return "Unknown"
	}
}

// Action names the operation a Rule or a channel request requests from the
// control engine.
type Action uint8

const (
	ActionIgnore Action = iota
	ActionAlert
	ActionRestart
	ActionStop
	ActionExec
	ActionUnmonitor
	ActionStart
	ActionMonitor
)

func (a Action) String() string {
	switch a {
	case ActionIgnore:
		return "ignore"
	case ActionAlert:
		return "alert"
	case ActionRestart:
		return "restart"
	case ActionStop:
		return "stop"
	case ActionExec:
		return "exec"
	case ActionUnmonitor:
		return "unmonitor"
	case ActionStart:
		return "start"
	case ActionMonitor:
		return "monitor"
	default:
		return "ignore"
	}
}

// ParseAction maps a control-channel verb to an Action.
func ParseAction(verb string) (Action, bool) {
	switch verb {
	case "start":
		return ActionStart, true
	case "stop":
		return ActionStop, true
	case "restart":
		return ActionRestart, true
	case "monitor":
		return ActionMonitor, true
	case "unmonitor":
		return ActionUnmonitor, true
	default:
		return ActionIgnore, false
	}
}

// Event is emitted when a rule crosses its trigger or a lifecycle step
// completes.
type Event struct {
	Service     string
	Kind        EventKind
	State       EventState
	Action      Action
	Message     string
	OccurredAt  time.Time
}

// Operator compares a measured value to a rule threshold.
type Operator uint8

const (
	OpGreaterThan Operator = iota
	OpLessThan
	OpEqual
	OpNotEqual
	OpChanged
)

// RuleKind groups the families of checks a Rule can express.
type RuleKind uint8

const (
	RuleChecksum RuleKind = iota
	RuleResource
	RuleConnection
	RuleUptime
	RulePermission
	RuleContent
)

// Rule is a single monitored condition: a comparison against a threshold,
// with a count-within-cycles trigger and a resulting Action.
type Rule struct {
	Kind      RuleKind
	Op        Operator
	Threshold float64
	Trigger   int
	Action    Action

	failures int
}

// Eval records whether the current cycle's measurement satisfies the rule
// and returns the Event to post together with fire == true when the trigger
// count has just been reached; otherwise it returns nil and false. The
// failure counter is reset on a passing measurement and after firing.
func (r *Rule) Eval(current, previous float64, svc string) (ev *Event, fire bool) {
	bad := false

	switch r.Op {
	case OpGreaterThan:
		bad = current > r.Threshold
	case OpLessThan:
		bad = current < r.Threshold
	case OpEqual:
		bad = current == r.Threshold
	case OpNotEqual:
		bad = current != r.Threshold
	case OpChanged:
		bad = current != previous
	}

	if !bad {
		r.failures = 0
		return nil, false
	}

	r.failures++
	if r.failures < r.Trigger {
		return nil, false
	}

	r.failures = 0

	return &Event{
		Service: svc,
		Kind:    EventRule,
		State:   EventFailed,
		Action:  r.Action,
	}, true
}

// Info carries the last-observed facts the validator attaches to a Service,
// refreshed once per cycle from the OS-specific harvester.
type Info struct {
	PID         int32
	MemoryBytes uint64
	CPUPercent  float64
	Children    int
	UptimeSecs  int64
}

// Service describes one monitored resource: its identity, optional
// lifecycle commands, dependency list, monitoring state, last-observed
// facts, and attached rules.
type Service struct {
	mu sync.Mutex

	Name       string
	Kind       Kind
	PIDFile    string
	Host       string
	Port       int
	Protocol   string

	Start   *Command
	Stop    *Command
	Restart *Command

	Dependants []string

	State MonitorState
	Inf   Info
	Rules []*Rule

	visited       bool
	dependVisited bool
}

// New constructs a Service with MonitorState = MonitorNot, matching the
// data model's default-off posture until the configuration parser (or a
// channel request) arms it.
func New(name string, kind Kind) *Service {
	return &Service{
		Name:  name,
		Kind:  kind,
		State: MonitorNot,
	}
}

func (s *Service) Lock() {
	s.mu.Lock()
}

func (s *Service) Unlock() {
	s.mu.Unlock()
}

// Group is a named set of service names used for bulk control operations.
type Group struct {
	Name     string
	Services []string
}
