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

package manifest

import (
	"context"
	"fmt"

	"k8s.io/apimachinery/pkg/runtime/schema"

	apiv1 "github.com/kubedrift/kubedrift/api/v1alpha1"
	"github.com/kubedrift/kubedrift/internal/kube"
	"github.com/kubedrift/kubedrift/internal/resource"
)

// DeleteOptions control the behavior of DeleteResources.
type DeleteOptions struct {
	// Namespace is used for resources that carry no namespace of
	// their own.
	Namespace string

	// IgnoreNotFound logs and continues when a resource is already
	// absent.
	IgnoreNotFound bool

	// IgnoreUnauthorized logs and continues on permission failures.
	// Workaround for https://bugs.launchpad.net/juju/+bug/1941655.
	IgnoreUnauthorized bool

	// IgnoreLabels deletes by identity directly instead of the safe
	// path that re-lists by ownership labels first.
	IgnoreLabels bool
}

// ApplyManifests applies the full resource set of the current release.
func (m *Manifests) ApplyManifests(ctx context.Context) error {
	current, err := m.CurrentRelease()
	if err != nil {
		return err
	}
	m.log.Info("applying manifest", "release", current)

	resources, err := m.Resources()
	if err != nil {
		return err
	}
	return m.ApplyResources(ctx, resources.List()...)
}

// DeleteManifests deletes every resource this manifest set has ever
// installed, as found by its ownership labels.
func (m *Manifests) DeleteManifests(ctx context.Context, opts DeleteOptions) error {
	installed, err := m.LabelledResources(ctx)
	if err != nil {
		return err
	}
	return m.DeleteResources(ctx, opts, installed.List()...)
}

// ApplyResources creates or updates the given resources in input
// order with server-side apply, forcing ownership on conflicts. The
// first failure aborts the remaining batch; resources already applied
// stay applied.
func (m *Manifests) ApplyResources(ctx context.Context, resources ...*resource.Resource) error {
	client, err := m.clusterClient()
	if err != nil {
		return err
	}
	for _, r := range resources {
		m.log.Info("applying resource", "resource", r.String())
		if err := client.Apply(ctx, r.Object, true); err != nil {
			return kube.NewResourceError("apply", r.String(), err)
		}
	}
	m.log.Info("applied resources", "count", len(resources))
	return nil
}

// DeleteResources deletes the given resources in input order. Unless
// IgnoreLabels is set, each deletion re-lists resources of the same
// kind and name scoped by this manifest set's ownership labels and
// deletes only the matches, so a same-named foreign resource is never
// touched. Failures abort the batch unless matched by an ignore flag.
func (m *Manifests) DeleteResources(ctx context.Context, opts DeleteOptions, resources ...*resource.Resource) error {
	if _, err := m.clusterClient(); err != nil {
		return err
	}
	for _, r := range resources {
		m.log.Info("deleting resource", "resource", r.String())
		err := m.deleteResource(ctx, r, opts)
		if err == nil {
			continue
		}
		switch {
		case opts.IgnoreNotFound && kube.IsNotFound(err):
			m.log.Info("ignored failed delete of resource", "resource", r.String(), "reason", err.Error())
		case opts.IgnoreUnauthorized && kube.IsUnauthorized(err):
			m.log.Info("ignored failed delete of resource", "resource", r.String(), "reason", err.Error())
		default:
			return kube.NewResourceError("delete", r.String(), err)
		}
	}
	return nil
}

func (m *Manifests) deleteResource(ctx context.Context, r *resource.Resource, opts DeleteOptions) error {
	namespace := r.Namespace()
	if namespace == "" {
		namespace = opts.Namespace
	}

	if opts.IgnoreLabels {
		obj := r.Object.DeepCopy()
		obj.SetNamespace(namespace)
		return m.client.Delete(ctx, obj)
	}

	matches, err := m.client.List(ctx, r.Object.GroupVersionKind(), namespace,
		apiv1.SelectorLabels(m.application, m.name),
		map[string]string{"metadata.name": r.Name()})
	if err != nil {
		return err
	}
	for _, item := range matches {
		if err := m.client.Delete(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

// InstalledResources returns the expected resources actually present
// in the cluster, in their live representation. A resource whose fetch
// fails for any reason is treated as absent.
func (m *Manifests) InstalledResources(ctx context.Context) (*resource.Set, error) {
	client, err := m.clusterClient()
	if err != nil {
		return nil, err
	}
	expected, err := m.Resources()
	if err != nil {
		return nil, err
	}

	installed := resource.NewSet()
	for _, r := range expected.List() {
		live, err := client.Get(ctx, r.Object)
		if err != nil {
			m.log.Info("expected resource not installed", "resource", r.String(), "reason", err.Error())
			continue
		}
		installed.Add(resource.New(live))
	}
	return installed, nil
}

// Status returns the installed resources exposing at least one status
// condition.
func (m *Manifests) Status(ctx context.Context) (*resource.Set, error) {
	installed, err := m.InstalledResources(ctx)
	if err != nil {
		return nil, err
	}
	return installed.Filter(func(r *resource.Resource) bool {
		return len(r.Conditions()) > 0
	}), nil
}

// LabelledResources returns every live resource bearing this manifest
// set's ownership labels, for each distinct namespace and kind of the
// expected set. This captures resources installed by older releases
// that the current release no longer declares.
func (m *Manifests) LabelledResources(ctx context.Context) (*resource.Set, error) {
	client, err := m.clusterClient()
	if err != nil {
		return nil, err
	}
	expected, err := m.Resources()
	if err != nil {
		return nil, err
	}

	type nsKind struct {
		namespace string
		gvk       schema.GroupVersionKind
	}
	seen := map[nsKind]bool{}
	labelled := resource.NewSet()
	for _, r := range expected.List() {
		key := nsKind{r.Namespace(), r.Object.GroupVersionKind()}
		if seen[key] {
			continue
		}
		seen[key] = true

		items, err := client.List(ctx, key.gvk, key.namespace,
			apiv1.SelectorLabels(m.application, m.name), nil)
		if err != nil {
			m.log.Info("listing labelled resources failed", "kind", key.gvk.Kind, "namespace", key.namespace, "reason", err.Error())
			continue
		}
		for _, item := range items {
			labelled.Add(resource.New(item))
		}
	}
	return labelled, nil
}

// ConflictingResources returns the expected resources whose live
// counterpart carries foreign ownership labels, meaning another
// manifest set or application installed them. Every installed resource
// must stem from the expected set; anything else is an invariant
// violation.
func (m *Manifests) ConflictingResources(ctx context.Context, installed *resource.Set) (*resource.Set, error) {
	expected, err := m.Resources()
	if err != nil {
		return nil, err
	}

	conflicting := resource.NewSet()
	for _, live := range installed.List() {
		match := expected.Get(live.ID())
		if match == nil {
			return nil, fmt.Errorf("unexpected resource installed: %s", live)
		}
		liveLabels, matchLabels := live.Labels(), match.Labels()
		if liveLabels[apiv1.ApplicationLabelKey] != matchLabels[apiv1.ApplicationLabelKey] ||
			liveLabels[apiv1.ManifestLabelKey] != matchLabels[apiv1.ManifestLabelKey] {
			conflicting.Add(match)
		}
	}
	return conflicting, nil
}

func (m *Manifests) clusterClient() (kube.Client, error) {
	if m.client == nil {
		return nil, fmt.Errorf("manifest %s has no cluster client configured", m.name)
	}
	return m.client, nil
}
