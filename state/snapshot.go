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

package state

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/sabouaram/monitord/service"
)

// ServiceSnapshot is the persisted shape of one Service's monitoring state
// and last-observed facts. Rule failure counters are not persisted.
type ServiceSnapshot struct {
	Name  string             `json:"name"`
	State service.MonitorState `json:"state"`
	Inf   service.Info       `json:"info"`
}

// Snapshot is the full persisted state file contents.
type Snapshot struct {
	Services []ServiceSnapshot `json:"services"`
}

// Build captures every service in reg into a Snapshot.
func Build(reg *service.Registry) Snapshot {
	all := reg.All()

	snap := Snapshot{Services: make([]ServiceSnapshot, 0, len(all))}

	for _, s := range all {
		s.Lock()
		snap.Services = append(snap.Services, ServiceSnapshot{
			Name:  s.Name,
			State: s.State,
			Inf:   s.Inf,
		})
		s.Unlock()
	}

	return snap
}

// Apply restores a Snapshot's per-service flags and facts onto reg. Names
// not present in reg (e.g. removed from configuration since the snapshot
// was taken) are skipped; this is not a StateCorruption condition.
func Apply(reg *service.Registry, snap Snapshot) {
	for _, ss := range snap.Services {
		s, ok := reg.Get(ss.Name)
		if !ok {
			continue
		}

		s.Lock()
		s.State = ss.State
		s.Inf = ss.Inf
		s.Unlock()
	}
}

// Save atomically rewrites path with reg's current snapshot: write to a
// temp file in the same directory, then os.Rename into place, so a reader
// (or a crash mid-write) never observes a partial file. Matches spec.md
// §6's "rewritten atomically at the end of each validator cycle".
func Save(path string, reg *service.Registry) error {
	if path == "" {
		return ErrorParamsEmpty.Error(nil)
	}

	snap := Build(reg)

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return ErrorWriteFailed.Error(err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".state-*.tmp")
	if err != nil {
		return ErrorWriteFailed.Error(err)
	}

	tmpName := tmp.Name()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return ErrorWriteFailed.Error(err)
	}

	if err = tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return ErrorWriteFailed.Error(err)
	}

	if err = os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return ErrorWriteFailed.Error(err)
	}

	return nil
}

// Load reads and decodes path. A missing file is not an error: it returns
// an empty Snapshot, matching spec.md §7's StateCorruption disposition
// ("unreadable state file; logged and treated as empty, monitoring
// resumes") extended here to cover "file does not exist yet" on first run.
func Load(path string) (Snapshot, error) {
	if path == "" {
		return Snapshot{}, ErrorParamsEmpty.Error(nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, nil
		}

		return Snapshot{}, ErrorReadFailed.Error(err)
	}

	var snap Snapshot
	if err = json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, ErrorDecodeFailed.Error(err)
	}

	return snap, nil
}
