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
	"context"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// backoffSchedule is the doubling 50ms -> 1s backoff _waitStart polls with.
var backoffSchedule = []time.Duration{
	50 * time.Millisecond,
	100 * time.Millisecond,
	200 * time.Millisecond,
	400 * time.Millisecond,
	800 * time.Millisecond,
	time.Second,
}

// waitStart polls isProcessRunning with the backoff schedule until ctx is
// done or the process is observed alive.
func waitStart(ctx context.Context, pid int32) bool {
	for _, d := range backoffSchedule {
		if isProcessRunning(pid) {
			return true
		}

		select {
		case <-ctx.Done():
			return isProcessRunning(pid)
		case <-time.After(d):
		}
	}

	for {
		if isProcessRunning(pid) {
			return true
		}

		select {
		case <-ctx.Done():
			return isProcessRunning(pid)
		case <-time.After(backoffSchedule[len(backoffSchedule)-1]):
		}
	}
}

// waitStop polls getpgid(pid) at a fixed 100ms cadence until it returns -1
// with errno != EPERM (process gone), or ctx is done.
func waitStop(ctx context.Context, pid int32) bool {
	for {
		if !pgidAlive(pid) {
			return true
		}

		select {
		case <-ctx.Done():
			return !pgidAlive(pid)
		case <-time.After(100 * time.Millisecond):
		}
	}
}

func pgidAlive(pid int32) bool {
	_, err := syscall.Getpgid(int(pid))
	if err == nil {
		return true
	}

	// getpgid failing with EPERM still means the process exists (just not
	// in a group we may inspect on some platforms); any other errno, in
	// particular ESRCH, means it is gone.
	return err == syscall.EPERM
}

func isProcessRunning(pid int32) bool {
	if pid <= 0 {
		return false
	}

	exists, err := process.PidExists(pid)
	if err != nil {
		return false
	}

	return exists
}
