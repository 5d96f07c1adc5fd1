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

// Package command models a single named, described CLI action with a
// Run function.
package command

import "io"

// RunFunc executes a command's behavior, writing normal output to out and
// diagnostics to err. args are the remaining CLI arguments after the
// command name.
type RunFunc func(out, err io.Writer, args []string)

// CommandInfo exposes a command's name and description without exposing
// how (or whether) it runs.
type CommandInfo interface {
	// Name returns the command's registered name.
	Name() string

	// Describe returns the command's one-line description.
	Describe() string
}

// Command is a CommandInfo that can also be executed.
type Command interface {
	CommandInfo

	// Run executes the command's function. A nil function is a no-op.
	Run(out, err io.Writer, args []string)
}

// New creates a Command with the given name, description, and run
// function. fn may be nil; Run then does nothing.
func New(name, describe string, fn RunFunc) Command {
	return &cmd{
		name: name,
		desc: describe,
		fn:   fn,
	}
}

// Info creates a CommandInfo-only entry, e.g. for documentation listings
// that should not be runnable.
func Info(name, describe string) CommandInfo {
	return New(name, describe, nil)
}

type cmd struct {
	name string
	desc string
	fn   RunFunc
}

func (c *cmd) Name() string {
	return c.name
}

func (c *cmd) Describe() string {
	return c.desc
}

func (c *cmd) Run(out, err io.Writer, args []string) {
	if c.fn == nil {
		return
	}

	c.fn(out, err, args)
}
