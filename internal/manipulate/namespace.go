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
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/kubedrift/kubedrift/internal/resource"
)

// CreateNamespace prepends a Namespace resource for the configured
// namespace name.
type CreateNamespace struct {
	base

	// Namespace is the namespace to create. When empty, nothing
	// is added.
	Namespace string
}

// NewCreateNamespace returns a namespace addition for the given name.
func NewCreateNamespace(namespace string) *CreateNamespace {
	return &CreateNamespace{Namespace: namespace}
}

// Add returns the Namespace resource, or nil when no namespace is
// configured.
func (c *CreateNamespace) Add(ctx Context) *resource.Resource {
	if c.Namespace == "" {
		return nil
	}
	ctx.Logger().Info("creating namespace", "namespace", c.Namespace)
	return resource.New(&unstructured.Unstructured{Object: map[string]interface{}{
		"apiVersion": "v1",
		"kind":       "Namespace",
		"metadata": map[string]interface{}{
			"name": c.Namespace,
		},
	}})
}
