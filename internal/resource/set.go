/*
Copyright 2024 The kubedrift authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package resource

import "sort"

// Set is an insertion-ordered set of resources keyed by identity.
// Adding a resource whose identity is already present keeps the first
// occurrence. The zero value is not usable; call NewSet.
type Set struct {
	byID  map[ID]*Resource
	order []ID
}

// NewSet returns a set holding the given resources, first occurrence
// winning on identity collisions.
func NewSet(resources ...*Resource) *Set {
	s := &Set{byID: map[ID]*Resource{}}
	for _, r := range resources {
		s.Add(r)
	}
	return s
}

// Add inserts the resource, reporting whether it was absent before.
func (s *Set) Add(r *Resource) bool {
	id := r.ID()
	if _, ok := s.byID[id]; ok {
		return false
	}
	s.byID[id] = r
	s.order = append(s.order, id)
	return true
}

// Has reports whether a resource with the given identity is present.
func (s *Set) Has(id ID) bool {
	_, ok := s.byID[id]
	return ok
}

// Get returns the resource with the given identity, or nil.
func (s *Set) Get(id ID) *Resource {
	return s.byID[id]
}

// Len returns the number of resources in the set.
func (s *Set) Len() int { return len(s.order) }

// List returns the resources in insertion order.
func (s *Set) List() []*Resource {
	out := make([]*Resource, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.byID[id])
	}
	return out
}

// Intersect returns the resources of this set whose identity is also
// present in other, preserving this set's order and objects.
func (s *Set) Intersect(other *Set) *Set {
	out := NewSet()
	for _, id := range s.order {
		if other.Has(id) {
			out.Add(s.byID[id])
		}
	}
	return out
}

// Difference returns the resources of this set whose identity is not
// present in other.
func (s *Set) Difference(other *Set) *Set {
	out := NewSet()
	for _, id := range s.order {
		if !other.Has(id) {
			out.Add(s.byID[id])
		}
	}
	return out
}

// Union returns a set holding the resources of this set followed by
// those of other, first occurrence winning.
func (s *Set) Union(other *Set) *Set {
	out := NewSet(s.List()...)
	for _, r := range other.List() {
		out.Add(r)
	}
	return out
}

// Filter returns the resources for which keep returns true.
func (s *Set) Filter(keep func(*Resource) bool) *Set {
	out := NewSet()
	for _, id := range s.order {
		if keep(s.byID[id]) {
			out.Add(s.byID[id])
		}
	}
	return out
}

// SortedStrings returns the identity strings of the set in
// lexical order.
func (s *Set) SortedStrings() []string {
	out := make([]string, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, id.String())
	}
	sort.Strings(out)
	return out
}
