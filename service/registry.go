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

package service

import "sync"

// Registry holds every Service and Group known to the process, keyed by
// name, built once by the configuration parser (external to this package)
// and then shared read-mostly by the validator, control engine, and
// control channel.
type Registry struct {
	mu       sync.RWMutex
	services map[string]*Service
	groups   map[string]*Group
}

func NewRegistry() *Registry {
	return &Registry{
		services: make(map[string]*Service),
		groups:   make(map[string]*Group),
	}
}

func (r *Registry) Add(s *Service) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.services[s.Name] = s
}

func (r *Registry) AddGroup(g *Group) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.groups[g.Name] = g
}

func (r *Registry) Get(name string) (*Service, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.services[name]
	return s, ok
}

func (r *Registry) Group(name string) (*Group, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.groups[name]
	return g, ok
}

// All returns every registered service, in no particular order.
func (r *Registry) All() []*Service {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Service, 0, len(r.services))
	for _, s := range r.services {
		out = append(out, s)
	}

	return out
}

// ResetVisited zeroes the visited/depend_visited traversal marks on every
// service, required before each top-level control.Engine walk per the data
// model's invariant that these marks are zero between any two top-level
// operations.
func (r *Registry) ResetVisited() {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.services {
		s.Lock()
		s.visited = false
		s.dependVisited = false
		s.Unlock()
	}
}

func (s *Service) Visited() bool {
	s.Lock()
	defer s.Unlock()

	return s.visited
}

func (s *Service) SetVisited(v bool) {
	s.Lock()
	defer s.Unlock()

	s.visited = v
}

func (s *Service) DependVisited() bool {
	s.Lock()
	defer s.Unlock()

	return s.dependVisited
}

func (s *Service) SetDependVisited(v bool) {
	s.Lock()
	defer s.Unlock()

	s.dependVisited = v
}
