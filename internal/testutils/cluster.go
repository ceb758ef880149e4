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

// Package testutils provides an in-memory cluster client for exercising
// reconciliation paths without a live API server.
package testutils

import (
	"context"
	"fmt"
	"strings"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"sigs.k8s.io/yaml"

	"github.com/kubedrift/kubedrift/internal/kube"
)

// Cluster is an in-memory kube.Client. Objects are keyed by
// 'kind/namespace/name'; error injection maps use the same keys.
type Cluster struct {
	objects map[string]*unstructured.Unstructured

	// Applied and Deleted record the identity keys of every apply
	// and delete call, in order.
	Applied []string
	Deleted []string

	// GetErrors, ApplyErrors and DeleteErrors inject failures per
	// identity key.
	GetErrors    map[string]error
	ApplyErrors  map[string]error
	DeleteErrors map[string]error

	// ListError fails every list call when set.
	ListError error
}

var _ kube.Client = (*Cluster)(nil)

// NewCluster returns a cluster seeded with the given objects.
func NewCluster(objects ...*unstructured.Unstructured) *Cluster {
	c := &Cluster{
		objects:      map[string]*unstructured.Unstructured{},
		GetErrors:    map[string]error{},
		ApplyErrors:  map[string]error{},
		DeleteErrors: map[string]error{},
	}
	for _, obj := range objects {
		c.Put(obj)
	}
	return c
}

// Key returns the identity key of the given object.
func Key(obj *unstructured.Unstructured) string {
	return fmt.Sprintf("%s/%s/%s", obj.GetKind(), obj.GetNamespace(), obj.GetName())
}

// Put stores a copy of the object, replacing any previous state.
func (c *Cluster) Put(obj *unstructured.Unstructured) {
	c.objects[Key(obj)] = obj.DeepCopy()
}

// Has reports whether an object with the given identity key is stored.
func (c *Cluster) Has(key string) bool {
	_, ok := c.objects[key]
	return ok
}

// Get implements kube.Client.
func (c *Cluster) Get(_ context.Context, obj *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	key := Key(obj)
	if err, ok := c.GetErrors[key]; ok {
		return nil, err
	}
	stored, ok := c.objects[key]
	if !ok {
		return nil, notFound(obj.GetKind(), obj.GetName())
	}
	return stored.DeepCopy(), nil
}

// List implements kube.Client.
func (c *Cluster) List(_ context.Context, gvk schema.GroupVersionKind, namespace string, labels, fields map[string]string) ([]*unstructured.Unstructured, error) {
	if c.ListError != nil {
		return nil, c.ListError
	}
	var out []*unstructured.Unstructured
	for _, obj := range c.objects {
		if obj.GetKind() != gvk.Kind {
			continue
		}
		if namespace != "" && obj.GetNamespace() != namespace {
			continue
		}
		if !subset(labels, obj.GetLabels()) {
			continue
		}
		if name, ok := fields["metadata.name"]; ok && obj.GetName() != name {
			continue
		}
		out = append(out, obj.DeepCopy())
	}
	return out, nil
}

// Apply implements kube.Client.
func (c *Cluster) Apply(_ context.Context, obj *unstructured.Unstructured, _ bool) error {
	key := Key(obj)
	c.Applied = append(c.Applied, key)
	if err, ok := c.ApplyErrors[key]; ok {
		return err
	}
	c.objects[key] = obj.DeepCopy()
	return nil
}

// Delete implements kube.Client.
func (c *Cluster) Delete(_ context.Context, obj *unstructured.Unstructured) error {
	key := Key(obj)
	c.Deleted = append(c.Deleted, key)
	if err, ok := c.DeleteErrors[key]; ok {
		return err
	}
	if _, ok := c.objects[key]; !ok {
		return notFound(obj.GetKind(), obj.GetName())
	}
	delete(c.objects, key)
	return nil
}

func notFound(kind, name string) error {
	resource := strings.ToLower(kind) + "s"
	return apierrors.NewNotFound(schema.GroupResource{Resource: resource}, name)
}

func subset(want, have map[string]string) bool {
	for k, v := range want {
		if have[k] != v {
			return false
		}
	}
	return true
}

// MustObject parses a single YAML document into an object, panicking
// on malformed input. Intended for test fixtures only.
func MustObject(doc string) *unstructured.Unstructured {
	var content map[string]interface{}
	if err := yaml.Unmarshal([]byte(doc), &content); err != nil {
		panic(err)
	}
	return &unstructured.Unstructured{Object: content}
}
