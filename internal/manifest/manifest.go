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

// Package manifest resolves the expected resource set of a versioned
// manifest release and reconciles it against a live cluster.
//
// A manifest base directory holds a 'version' file naming the default
// release and one subdirectory per release under 'manifests':
//
//	<base>/
//	├── version
//	└── manifests/
//	    ├── v1.1.10/
//	    │   ├── manifest-1.yaml
//	    │   └── manifest-2.yaml
//	    └── v1.1.11/
//	        └── manifest-1.yml
package manifest

import (
	"fmt"
	"path/filepath"

	"github.com/go-logr/logr"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/kubedrift/kubedrift/internal/kube"
	"github.com/kubedrift/kubedrift/internal/manipulate"
	"github.com/kubedrift/kubedrift/internal/resource"
)

// ReleaseConfigKey is the configuration key overriding the release
// selection.
const ReleaseConfigKey = "release"

// ReadyFunc decides whether a condition marks its resource ready.
// A nil result means the condition is ignored entirely.
type ReadyFunc func(r *resource.Resource, cond metav1.Condition) *bool

// DefaultReady treats a condition as ready iff its status is "True".
func DefaultReady(_ *resource.Resource, cond metav1.Condition) *bool {
	ready := cond.Status == metav1.ConditionTrue
	return &ready
}

// Options configures a Manifests instance.
type Options struct {
	// Name uniquely identifies the manifest set.
	Name string

	// Application is the name of the application the manifest set
	// belongs to; part of the ownership labels.
	Application string

	// BasePath is the directory holding the 'version' file and the
	// 'manifests' release tree.
	BasePath string

	// Client is the cluster client; may be nil when only offline
	// resolution is needed.
	Client kube.Client

	// Config holds the deviation settings; may be nil.
	Config manipulate.Config

	// Manipulations is the pipeline applied to the declared
	// resources. Use DefaultManipulations for the label-only preset.
	Manipulations []manipulate.Manipulation

	// Ready overrides the per-condition readiness decision;
	// DefaultReady when nil.
	Ready ReadyFunc

	// Log is the logger; discards when zero.
	Log logr.Logger
}

// DefaultManipulations returns the label-only manipulation preset.
func DefaultManipulations() []manipulate.Manipulation {
	return []manipulate.Manipulation{manipulate.NewManifestLabel()}
}

// Manifests resolves and reconciles one named set of release
// manifests. Release listing, the default release and parsed files are
// computed once and cached for the instance lifetime; instances are
// not safe for concurrent use.
type Manifests struct {
	name          string
	application   string
	basePath      string
	client        kube.Client
	config        manipulate.Config
	manipulations []manipulate.Manipulation
	ready         ReadyFunc
	log           logr.Logger

	releases       []string
	defaultRelease *string
	fileCache      map[string][]*unstructured.Unstructured
}

// New creates a Manifests instance from the given options.
func New(opts Options) (*Manifests, error) {
	if opts.Name == "" {
		return nil, fmt.Errorf("manifest name is required")
	}
	if opts.BasePath == "" {
		return nil, fmt.Errorf("manifest base path is required")
	}
	if opts.Application == "" {
		opts.Application = opts.Name
	}
	if opts.Manipulations == nil {
		opts.Manipulations = DefaultManipulations()
	}
	if opts.Ready == nil {
		opts.Ready = DefaultReady
	}

	return &Manifests{
		name:          opts.Name,
		application:   opts.Application,
		basePath:      opts.BasePath,
		client:        opts.Client,
		config:        opts.Config,
		manipulations: opts.Manipulations,
		ready:         opts.Ready,
		log:           opts.Log.WithValues("manifest", opts.Name),
		fileCache:     map[string][]*unstructured.Unstructured{},
	}, nil
}

// Name returns the manifest set's name.
func (m *Manifests) Name() string { return m.name }

// Application returns the owning application's name.
func (m *Manifests) Application() string { return m.application }

// FieldManager returns the server-side apply field manager identity of
// this manifest set.
func (m *Manifests) FieldManager() string {
	return fmt.Sprintf("%s-%s", m.application, m.name)
}

// IsReady runs the readiness decision for the given resource
// condition.
func (m *Manifests) IsReady(r *resource.Resource, cond metav1.Condition) *bool {
	return m.ready(r, cond)
}

func (m *Manifests) manifestPath() string {
	return filepath.Join(m.basePath, "manifests")
}

// Resources resolves the expected resource set of the current release:
// addition results first, then the declared files sorted by filename
// with subtractions applied, all patched in manipulation order and
// deduplicated by identity keeping the first occurrence.
func (m *Manifests) Resources() (*resource.Set, error) {
	current, err := m.CurrentRelease()
	if err != nil {
		return nil, err
	}
	mctx := manipulationContext{m}

	var additions []*resource.Resource
	for _, man := range m.manipulations {
		if add, ok := man.(manipulate.Addition); ok {
			if r := add.Add(mctx); r != nil {
				additions = append(additions, r)
			}
		}
	}

	statics, err := m.loadRelease(current)
	if err != nil {
		return nil, err
	}
	for _, man := range m.manipulations {
		sub, ok := man.(manipulate.Subtraction)
		if !ok {
			continue
		}
		kept := statics[:0]
		for _, r := range statics {
			if !sub.Subtract(mctx, r) {
				kept = append(kept, r)
			}
		}
		statics = kept
	}

	all := append(additions, statics...)
	for _, man := range m.manipulations {
		if patch, ok := man.(manipulate.Patch); ok {
			for _, r := range all {
				patch.Apply(mctx, r)
			}
		}
	}

	return resource.NewSet(all...), nil
}

// manipulationContext is the read-only view handed to manipulations.
type manipulationContext struct {
	m *Manifests
}

func (c manipulationContext) ManifestName() string { return c.m.name }

func (c manipulationContext) Application() string { return c.m.application }

func (c manipulationContext) CurrentRelease() string {
	// Resources fails first when no release resolves, so the error
	// is unreachable from within a manipulation.
	release, _ := c.m.CurrentRelease()
	return release
}

func (c manipulationContext) Config() manipulate.Config {
	if c.m.config == nil {
		return manipulate.ConfigMap{}
	}
	return c.m.config
}

func (c manipulationContext) Logger() logr.Logger { return c.m.log }
