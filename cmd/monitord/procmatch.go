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
	"regexp"

	"github.com/shirou/gopsutil/v3/process"
)

// matchingProcesses lists every running process whose command line matches
// the given regular expression, reusing the same shirou/gopsutil/v3 process
// enumeration the validator's harvestProcess uses for liveness facts.
func matchingProcesses(pattern string) ([]string, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid pattern: %w", err)
	}

	ctx := context.Background()

	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	var out []string

	for _, p := range procs {
		cmdline, err := p.CmdlineWithContext(ctx)
		if err != nil || cmdline == "" {
			name, nerr := p.NameWithContext(ctx)
			if nerr != nil {
				continue
			}
			cmdline = name
		}

		if re.MatchString(cmdline) {
			out = append(out, fmt.Sprintf("%d\t%s", p.Pid, cmdline))
		}
	}

	return out, nil
}
