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

// Package manipulate holds the composable operations applied to a
// release's declared resources before reconciliation: additions produce
// new resources, patches mutate resources in place and subtractions
// exclude declared resources.
package manipulate

import (
	"github.com/go-logr/logr"

	"github.com/kubedrift/kubedrift/internal/resource"
)

// Config exposes the deviation settings consulted while building a
// release's resource set.
type Config interface {
	// GetString returns the configured value for the given key,
	// empty when unset.
	GetString(key string) string
}

// ConfigMap is a map-backed Config.
type ConfigMap map[string]string

// GetString implements Config.
func (c ConfigMap) GetString(key string) string { return c[key] }

// Context is the read-only view of the owning manifest set that
// manipulations consult at invocation time.
type Context interface {
	// ManifestName returns the name of the manifest set.
	ManifestName() string

	// Application returns the name of the application the manifest
	// set belongs to.
	Application() string

	// CurrentRelease returns the release the resources are being
	// built for.
	CurrentRelease() string

	// Config returns the deviation settings.
	Config() Config

	// Logger returns the manifest set's logger.
	Logger() logr.Logger
}

// Manipulation is the marker interface for pipeline operations. A
// manipulation implements at least one of Addition, Patch or
// Subtraction.
type Manipulation interface {
	isManipulation()
}

// Addition produces zero or one new resource from no input.
type Addition interface {
	Manipulation

	// Add returns the resource to prepend to the declared set, or
	// nil when nothing applies.
	Add(ctx Context) *resource.Resource
}

// Patch mutates a resource in place. Patches must be idempotent under
// repeated application.
type Patch interface {
	Manipulation

	// Apply mutates the given resource.
	Apply(ctx Context, r *resource.Resource)
}

// Subtraction decides whether a declared resource is excluded from the
// set. Subtractions never apply to added resources.
type Subtraction interface {
	Manipulation

	// Subtract reports whether the resource is excluded.
	Subtract(ctx Context, r *resource.Resource) bool
}

// base provides the Manipulation marker.
type base struct{}

func (base) isManipulation() {}
