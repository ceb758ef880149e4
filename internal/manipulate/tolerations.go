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
	"fmt"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"

	"github.com/kubedrift/kubedrift/internal/resource"
)

// TolerationAdjuster maps a pod spec's toleration list to its
// replacement.
type TolerationAdjuster func([]corev1.Toleration) []corev1.Toleration

// AdjustTolerations is a Patch applying a TolerationAdjuster to every
// pod-template-bearing resource of the set.
type AdjustTolerations struct {
	base

	// Adjuster rewrites the toleration list.
	Adjuster TolerationAdjuster
}

// NewAdjustTolerations returns the toleration rewriting patch.
func NewAdjustTolerations(adjuster TolerationAdjuster) *AdjustTolerations {
	return &AdjustTolerations{Adjuster: adjuster}
}

// Apply rewrites the resource's tolerations, logging failures instead
// of propagating them so one malformed pod spec does not abort the
// whole resolution.
func (a *AdjustTolerations) Apply(ctx Context, r *resource.Resource) {
	if a.Adjuster == nil {
		return
	}
	if err := UpdateTolerations(r, a.Adjuster); err != nil {
		ctx.Logger().Error(err, "adjusting tolerations failed", "resource", r.String())
	}
}

// tolerationKinds are the pod-template-bearing kinds subject to
// toleration adjustment.
var tolerationKinds = map[string][]string{
	"Pod":         {"spec"},
	"DaemonSet":   {"spec", "template", "spec"},
	"Deployment":  {"spec", "template", "spec"},
	"StatefulSet": {"spec", "template", "spec"},
}

// UpdateTolerations replaces the resource's toleration list with the
// adjuster's output, deduplicated by the full toleration field tuple
// preserving first occurrence. No-op for kinds without a pod template.
func UpdateTolerations(r *resource.Resource, adjuster TolerationAdjuster) error {
	specPath, ok := tolerationKinds[r.Kind()]
	if !ok {
		return nil
	}
	path := append(append([]string{}, specPath...), "tolerations")

	items, _, err := unstructured.NestedSlice(r.Object.Object, path...)
	if err != nil {
		return fmt.Errorf("reading tolerations of %s failed: %w", r, err)
	}

	tolerations := make([]corev1.Toleration, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		var t corev1.Toleration
		if err := runtime.DefaultUnstructuredConverter.FromUnstructured(entry, &t); err != nil {
			return fmt.Errorf("decoding toleration of %s failed: %w", r, err)
		}
		tolerations = append(tolerations, t)
	}

	updated := dedupeTolerations(adjuster(tolerations))
	out := make([]interface{}, 0, len(updated))
	for _, t := range updated {
		entry, err := runtime.DefaultUnstructuredConverter.ToUnstructured(&t)
		if err != nil {
			return fmt.Errorf("encoding toleration of %s failed: %w", r, err)
		}
		out = append(out, entry)
	}

	if err := unstructured.SetNestedSlice(r.Object.Object, out, path...); err != nil {
		return fmt.Errorf("updating tolerations of %s failed: %w", r, err)
	}
	return nil
}

func dedupeTolerations(in []corev1.Toleration) []corev1.Toleration {
	type key struct {
		k, op, v, effect string
		seconds          int64
		hasSeconds       bool
	}
	seen := map[key]bool{}
	out := make([]corev1.Toleration, 0, len(in))
	for _, t := range in {
		k := key{
			k:      t.Key,
			op:     string(t.Operator),
			v:      t.Value,
			effect: string(t.Effect),
		}
		if t.TolerationSeconds != nil {
			k.seconds = *t.TolerationSeconds
			k.hasSeconds = true
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, t)
	}
	return out
}
