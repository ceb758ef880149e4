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

// Package collector aggregates multiple manifest sets, compares their
// expected resources against cluster state and drives bulk
// remediation.
package collector

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/go-logr/logr"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/kubedrift/kubedrift/internal/manifest"
	"github.com/kubedrift/kubedrift/internal/resource"
)

// ResourceAnalysis is the outcome of comparing one manifest set's
// expected resources against cluster state, recomputed fresh on every
// analysis. A conflicting resource also counts as missing, since it is
// declared but not present uncontested.
type ResourceAnalysis struct {
	// Correct resources are expected, present and uncontested.
	Correct *resource.Set

	// Extra resources carry this manifest set's ownership labels but
	// are no longer declared.
	Extra *resource.Set

	// Missing resources are declared but not present uncontested.
	Missing *resource.Set

	// Conflicting resources are expected but owned by a different
	// manifest set or application.
	Conflicting *resource.Set
}

func emptyAnalysis() ResourceAnalysis {
	return ResourceAnalysis{
		Correct:     resource.NewSet(),
		Extra:       resource.NewSet(),
		Missing:     resource.NewSet(),
		Conflicting: resource.NewSet(),
	}
}

// Filter narrows an analysis to specific manifest sets and resource
// kinds. Both fields hold space-separated, case-insensitive values;
// empty means unfiltered.
type Filter struct {
	Manifests string
	Resources string
}

func filterSet(raw string) map[string]bool {
	out := map[string]bool{}
	for _, field := range strings.Fields(raw) {
		out[strings.ToLower(field)] = true
	}
	return out
}

// Results maps '<manifest>-<class>' keys to newline-joined sorted
// resource listings; empty classes are omitted.
type Results map[string]string

// Collector aggregates named manifest sets, ordered by name.
type Collector struct {
	manifests map[string]*manifest.Manifests
	names     []string
	log       logr.Logger
}

// New creates a collector over the given manifest sets.
func New(log logr.Logger, manifests ...*manifest.Manifests) *Collector {
	c := &Collector{
		manifests: map[string]*manifest.Manifests{},
		log:       log,
	}
	for _, m := range manifests {
		c.manifests[m.Name()] = m
	}
	for name := range c.manifests {
		c.names = append(c.names, name)
	}
	sort.Strings(c.names)
	return c
}

// ListVersions returns the available releases of every manifest set,
// newline-joined under '<name>-versions' keys.
func (c *Collector) ListVersions() (Results, error) {
	results := Results{}
	for _, name := range c.names {
		releases, err := c.manifests[name].Releases()
		if err != nil {
			return nil, err
		}
		results[name+"-versions"] = strings.Join(releases, "\n")
	}
	return results, nil
}

// ListResources analyzes every manifest set matching the filter and
// returns the rendered results along with the raw per-manifest
// analysis.
func (c *Collector) ListResources(ctx context.Context, filter Filter) (Results, map[string]ResourceAnalysis, error) {
	manifestFilter := filterSet(filter.Manifests)
	if len(manifestFilter) > 0 {
		c.log.Info("filtering manifest listings", "manifests", filter.Manifests)
	}
	kindFilter := filterSet(filter.Resources)
	if len(kindFilter) > 0 {
		c.log.Info("filtering resource listings", "resources", filter.Resources)
	}

	keepKind := func(r *resource.Resource) bool {
		return len(kindFilter) == 0 || kindFilter[strings.ToLower(r.Kind())]
	}

	results := Results{}
	analyses := map[string]ResourceAnalysis{}
	for _, name := range c.names {
		if len(manifestFilter) > 0 && !manifestFilter[strings.ToLower(name)] {
			analyses[name] = emptyAnalysis()
			continue
		}

		analysis, err := c.analyze(ctx, c.manifests[name])
		if err != nil {
			return nil, nil, fmt.Errorf("analyzing %s failed: %w", name, err)
		}
		analysis = ResourceAnalysis{
			Correct:     analysis.Correct.Filter(keepKind),
			Extra:       analysis.Extra.Filter(keepKind),
			Missing:     analysis.Missing.Filter(keepKind),
			Conflicting: analysis.Conflicting.Filter(keepKind),
		}
		analyses[name] = analysis

		for class, set := range map[string]*resource.Set{
			"correct":     analysis.Correct,
			"extra":       analysis.Extra,
			"missing":     analysis.Missing,
			"conflicting": analysis.Conflicting,
		} {
			if set.Len() > 0 {
				results[name+"-"+class] = strings.Join(set.SortedStrings(), "\n")
			}
		}
	}
	return results, analyses, nil
}

// analyze computes the drift classification for one manifest set.
func (c *Collector) analyze(ctx context.Context, m *manifest.Manifests) (ResourceAnalysis, error) {
	labelled, err := m.LabelledResources(ctx)
	if err != nil {
		return ResourceAnalysis{}, err
	}
	expected, err := m.Resources()
	if err != nil {
		return ResourceAnalysis{}, err
	}
	installed, err := m.InstalledResources(ctx)
	if err != nil {
		return ResourceAnalysis{}, err
	}
	conflicting, err := m.ConflictingResources(ctx, installed)
	if err != nil {
		return ResourceAnalysis{}, err
	}

	uncontested := installed.Difference(conflicting)
	return ResourceAnalysis{
		Correct:     expected.Intersect(uncontested),
		Extra:       labelled.Difference(expected),
		Missing:     expected.Difference(uncontested),
		Conflicting: conflicting,
	}, nil
}

// ScrubResources deletes the extra resources of every matching
// manifest set, then re-analyzes and returns the post-action state.
// The two phases are independent calls; cluster state may change in
// between.
func (c *Collector) ScrubResources(ctx context.Context, filter Filter) (Results, error) {
	_, analyses, err := c.ListResources(ctx, filter)
	if err != nil {
		return nil, err
	}
	for _, name := range c.names {
		analysis := analyses[name]
		if analysis.Extra == nil || analysis.Extra.Len() == 0 {
			continue
		}
		c.log.Info("removing extra resources", "manifest", name,
			"resources", strings.Join(analysis.Extra.SortedStrings(), ","))
		if err := c.manifests[name].DeleteResources(ctx, manifest.DeleteOptions{}, analysis.Extra.List()...); err != nil {
			return nil, err
		}
	}
	results, _, err := c.ListResources(ctx, filter)
	return results, err
}

// ApplyMissingResources applies the missing resources of every
// matching manifest set, then re-analyzes and returns the post-action
// state.
func (c *Collector) ApplyMissingResources(ctx context.Context, filter Filter) (Results, error) {
	_, analyses, err := c.ListResources(ctx, filter)
	if err != nil {
		return nil, err
	}
	for _, name := range c.names {
		analysis := analyses[name]
		if analysis.Missing == nil || analysis.Missing.Len() == 0 {
			continue
		}
		c.log.Info("applying missing resources", "manifest", name,
			"resources", strings.Join(analysis.Missing.SortedStrings(), ","))
		if err := c.manifests[name].ApplyResources(ctx, analysis.Missing.List()...); err != nil {
			return nil, err
		}
	}
	results, _, err := c.ListResources(ctx, filter)
	return results, err
}

// ConditionRef ties a status condition to the manifest set and
// resource it was read from.
type ConditionRef struct {
	Manifest  string
	Resource  *resource.Resource
	Condition metav1.Condition
}

// Conditions returns every status condition of every installed
// resource across all manifest sets.
func (c *Collector) Conditions(ctx context.Context) ([]ConditionRef, error) {
	var refs []ConditionRef
	for _, name := range c.names {
		status, err := c.manifests[name].Status(ctx)
		if err != nil {
			return nil, err
		}
		for _, r := range status.List() {
			for _, cond := range r.Conditions() {
				refs = append(refs, ConditionRef{Manifest: name, Resource: r, Condition: cond})
			}
		}
	}
	return refs, nil
}

// Unready returns sorted human-readable lines for every condition its
// manifest set considers not ready. Conditions the readiness decision
// ignores are skipped.
func (c *Collector) Unready(ctx context.Context) ([]string, error) {
	var lines []string
	for _, name := range c.names {
		m := c.manifests[name]
		status, err := m.Status(ctx)
		if err != nil {
			return nil, err
		}
		for _, r := range status.List() {
			for _, cond := range r.Conditions() {
				ready := m.IsReady(r, cond)
				if ready == nil || *ready {
					continue
				}
				lines = append(lines, fmt.Sprintf("%s: %s is not %s", name, r, cond.Type))
			}
		}
	}
	sort.Strings(lines)
	return lines, nil
}

// ShortVersion renders the current release of every manifest set,
// comma-joined.
func (c *Collector) ShortVersion() (string, error) {
	var versions []string
	for _, name := range c.names {
		release, err := c.manifests[name].CurrentRelease()
		if err != nil {
			return "", err
		}
		versions = append(versions, release)
	}
	return strings.Join(versions, ","), nil
}

// LongVersion renders the current release of every manifest set with
// its name.
func (c *Collector) LongVersion() (string, error) {
	var versions []string
	for _, name := range c.names {
		release, err := c.manifests[name].CurrentRelease()
		if err != nil {
			return "", err
		}
		versions = append(versions, fmt.Sprintf("%s=%s", name, release))
	}
	return "Versions: " + strings.Join(versions, ", "), nil
}
