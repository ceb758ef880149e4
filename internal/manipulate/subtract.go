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

package manipulate

import "github.com/kubedrift/kubedrift/internal/resource"

// SubtractEq excludes the declared resource matching a preconfigured
// identity.
type SubtractEq struct {
	base

	// ID is the identity of the resource to exclude.
	ID resource.ID
}

// NewSubtractEq returns a subtraction matching the given identity.
func NewSubtractEq(id resource.ID) *SubtractEq {
	return &SubtractEq{ID: id}
}

// Subtract reports whether the resource's identity equals the
// configured one.
func (s *SubtractEq) Subtract(_ Context, r *resource.Resource) bool {
	return r.ID() == s.ID
}
