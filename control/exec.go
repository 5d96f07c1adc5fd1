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

package control

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"syscall"
	"time"

	"github.com/sabouaram/monitord/service"
)

// STRLEN bounds the reportable message captured from a spawned command's
// stderr/stdout, matching the historical "first STRLEN bytes" convention.
const STRLEN = 512

// maxCaptureBytes bounds total captured debug output while a command runs,
// independent of STRLEN's truncation of the reportable message.
const maxCaptureBytes = 2048

// pollInterval is the cadence at which a spawned command's exit status is
// polled while its timeout has not elapsed.
const pollInterval = 100 * time.Millisecond

// execResult is the outcome of runCommand.
type execResult struct {
	Succeeded bool
	TimedOut  bool
	Message   string
}

// buildEnv augments the current environment with the MONIT_* variables the
// data model requires: service identity plus, for Process services, the
// last-observed facts.
func buildEnv(svc *service.Service, ev service.EventState, desc string) []string {
	env := append(os.Environ(),
		"MONIT_DATE="+time.Now().Format(time.RFC1123Z),
		"MONIT_SERVICE="+svc.Name,
		"MONIT_HOST="+hostname(),
		"MONIT_EVENT="+ev.String(),
		"MONIT_DESCRIPTION="+desc,
	)

	if svc.Kind == service.KindProcess {
		env = append(env,
			fmt.Sprintf("MONIT_PROCESS_PID=%d", svc.Inf.PID),
			fmt.Sprintf("MONIT_PROCESS_MEMORY=%d", svc.Inf.MemoryBytes),
			fmt.Sprintf("MONIT_PROCESS_CHILDREN=%d", svc.Inf.Children),
			fmt.Sprintf("MONIT_PROCESS_CPU_PERCENT=%.2f", svc.Inf.CPUPercent),
		)
	}

	return env
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return ""
	}
	return h
}

// runCommand spawns cmd's program with the augmented environment, polling
// its exit status every pollInterval while the remaining timeout is
// positive, draining stderr and stdout into one shared bounded capture
// buffer, per spec.md §4.F.
func runCommand(c *service.Command, svc *service.Service, ev service.EventState, desc string) execResult {
	if c == nil || !c.Valid() {
		return execResult{Message: fmt.Sprintf("Program %s failed: no command configured", svc.Name)}
	}

	cmd := exec.Command(c.Argv[0], c.Argv[1:]...)
	cmd.Env = buildEnv(svc, ev, desc)

	if c.UID != nil || c.GID != nil {
		cred := &syscall.Credential{}
		if c.UID != nil {
			cred.Uid = *c.UID
		}
		if c.GID != nil {
			cred.Gid = *c.GID
		}
		cmd.SysProcAttr = &syscall.SysProcAttr{Credential: cred}
	}

	var capture syncBuffer

	stderr, errPipe := cmd.StderrPipe()
	stdout, outPipe := cmd.StdoutPipe()

	if err := cmd.Start(); err != nil {
		return execResult{Message: fmt.Sprintf("Program %s failed: %s", c.Argv[0], err.Error())}
	}

	if errPipe == nil && stderr != nil {
		go drain(stderr, &capture)
	}
	if outPipe == nil && stdout != nil {
		go drain(stdout, &capture)
	}

	timeout := time.Duration(c.Timeout)
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	deadline := time.Now().Add(timeout)

	for {
		select {
		case err := <-done:
			msg := capture.String()
			if len(msg) > STRLEN {
				msg = msg[:STRLEN]
			}
			if err != nil {
				return execResult{Message: fmt.Sprintf("Program %s failed: %s %s", c.Argv[0], err.Error(), msg)}
			}
			return execResult{Succeeded: true, Message: msg}
		case <-time.After(pollInterval):
			if time.Now().After(deadline) {
				_ = cmd.Process.Kill()
				<-done

				msg := capture.String()
				if len(msg) > STRLEN {
					msg = msg[:STRLEN]
				}

				return execResult{TimedOut: true, Message: fmt.Sprintf("Program %s timed out %s", c.Argv[0], msg)}
			}
		}
	}
}

func drain(r interface{ Read([]byte) (int, error) }, buf *syncBuffer) {
	tmp := make([]byte, 256)
	for buf.Len() < maxCaptureBytes {
		n, err := r.Read(tmp)
		if n > 0 {
			buf.Write(tmp[:n])
		}
		if err != nil {
			return
		}
	}
}

// syncBuffer guards a bytes.Buffer with a mutex: runCommand's stdout and
// stderr drain goroutines, plus the polling loop's own reads, all touch the
// same buffer concurrently.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Len()
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}
