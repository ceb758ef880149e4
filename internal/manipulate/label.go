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

import (
	apiv1 "github.com/kubedrift/kubedrift/api/v1alpha1"
	"github.com/kubedrift/kubedrift/internal/resource"
)

// ManifestLabel ensures every resource carries the ownership label
// triple. Pre-existing unrelated labels are preserved.
type ManifestLabel struct {
	base
}

// NewManifestLabel returns the ownership labeling patch.
func NewManifestLabel() *ManifestLabel {
	return &ManifestLabel{}
}

// Apply merges the ownership labels into the resource's label set.
func (m *ManifestLabel) Apply(ctx Context, r *resource.Resource) {
	labels := r.Labels()
	for key, value := range apiv1.OwnershipLabels(ctx.Application(), ctx.ManifestName(), ctx.CurrentRelease()) {
		labels[key] = value
	}
	r.Object.SetLabels(labels)
}
