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

import (
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// ID is the identity tuple that distinguishes a resource for
// reconciliation purposes. Two resources with equal IDs are considered
// the same resource regardless of their remaining content.
type ID struct {
	Kind      string
	Namespace string
	Name      string
}

// String renders the identity as 'kind[/namespace]/name',
// omitting empty parts.
func (id ID) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{id.Kind, id.Namespace, id.Name} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "/")
}

// Resource wraps a Kubernetes object so it carries a stable identity.
// The identity must not be mutated after wrapping; manipulations are
// free to change any other part of the underlying object in place.
type Resource struct {
	Object *unstructured.Unstructured
}

// New wraps the given object.
func New(obj *unstructured.Unstructured) *Resource {
	return &Resource{Object: obj}
}

// ID returns the (kind, namespace, name) identity of the resource.
func (r *Resource) ID() ID {
	return ID{
		Kind:      r.Object.GetKind(),
		Namespace: r.Object.GetNamespace(),
		Name:      r.Object.GetName(),
	}
}

// Kind returns the resource's kind.
func (r *Resource) Kind() string { return r.Object.GetKind() }

// Namespace returns the resource's namespace, empty for
// cluster-scoped resources.
func (r *Resource) Namespace() string { return r.Object.GetNamespace() }

// Name returns the resource's name.
func (r *Resource) Name() string { return r.Object.GetName() }

// Labels returns the resource's labels, never nil.
func (r *Resource) Labels() map[string]string {
	labels := r.Object.GetLabels()
	if labels == nil {
		labels = map[string]string{}
	}
	return labels
}

// String renders the resource identity as 'kind[/namespace]/name'.
func (r *Resource) String() string {
	return r.ID().String()
}

// Equal reports whether the other resource shares this resource's
// identity. The remaining content takes no part in the comparison.
func (r *Resource) Equal(other *Resource) bool {
	return other != nil && r.ID() == other.ID()
}

// Conditions returns the entries of '.status.conditions', tolerating
// loosely-typed content. Entries without both a type and a status are
// dropped.
func (r *Resource) Conditions() []metav1.Condition {
	items, found, err := unstructured.NestedSlice(r.Object.Object, "status", "conditions")
	if !found || err != nil {
		return nil
	}

	var conditions []metav1.Condition
	for _, item := range items {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		condType, _ := entry["type"].(string)
		condStatus, _ := entry["status"].(string)
		if condType == "" || condStatus == "" {
			continue
		}
		cond := metav1.Condition{
			Type:   condType,
			Status: metav1.ConditionStatus(condStatus),
		}
		if msg, ok := entry["message"].(string); ok {
			cond.Message = msg
		}
		if reason, ok := entry["reason"].(string); ok {
			cond.Reason = reason
		}
		if ts, ok := entry["lastTransitionTime"].(string); ok {
			var t metav1.Time
			if err := t.UnmarshalQueryParameter(ts); err == nil {
				cond.LastTransitionTime = t
			}
		}
		conditions = append(conditions, cond)
	}
	return conditions
}
