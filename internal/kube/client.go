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

// Package kube holds the cluster client surface the manifest engine
// consumes, its error taxonomy, and the server-side apply backed
// implementation.
package kube

import (
	"context"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

// Client is the minimal cluster surface consumed by the manifest
// engine. All operations are blocking; retry and timeout policy belong
// to the caller.
type Client interface {
	// Get fetches the live resource matching the given object's
	// group/version/kind, namespace and name.
	Get(ctx context.Context, obj *unstructured.Unstructured) (*unstructured.Unstructured, error)

	// List returns the live resources of the given kind in the given
	// namespace, filtered by the given label and field selectors.
	List(ctx context.Context, gvk schema.GroupVersionKind, namespace string, labels, fields map[string]string) ([]*unstructured.Unstructured, error)

	// Apply creates or updates the resource with server-side apply
	// semantics under the client's field manager. With force set,
	// field ownership conflicts are overridden.
	Apply(ctx context.Context, obj *unstructured.Unstructured, force bool) error

	// Delete removes the resource matching the given object's
	// group/version/kind, namespace and name.
	Delete(ctx context.Context, obj *unstructured.Unstructured) error
}
