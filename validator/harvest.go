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
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"

	"github.com/sabouaram/monitord/service"
)

// harvestProcess refreshes a Process service's Info from gopsutil/v3,
// matching spec.md §4.D's "refresh facts via the OS-specific harvester".
func harvestProcess(ctx context.Context, pid int32) (service.Info, error) {
	p, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return service.Info{}, ErrorHarvestFailed.Error(err)
	}

	inf := service.Info{PID: pid}

	if mi, err := p.MemoryInfoWithContext(ctx); err == nil && mi != nil {
		inf.MemoryBytes = mi.RSS
	}

	if cp, err := p.CPUPercentWithContext(ctx); err == nil {
		inf.CPUPercent = cp
	}

	if children, err := p.ChildrenWithContext(ctx); err == nil {
		inf.Children = len(children)
	}

	if createdMs, err := p.CreateTimeWithContext(ctx); err == nil {
		started := time.UnixMilli(createdMs)
		inf.UptimeSecs = int64(time.Since(started).Seconds())
	}

	return inf, nil
}

// harvestSystem refreshes a System service's Info with host-wide CPU and
// memory usage, the "System" variant's fact source.
func harvestSystem(ctx context.Context) (service.Info, error) {
	var inf service.Info

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil && vm != nil {
		inf.MemoryBytes = vm.Used
	}

	if pcts, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(pcts) > 0 {
		inf.CPUPercent = pcts[0]
	}

	return inf, nil
}
