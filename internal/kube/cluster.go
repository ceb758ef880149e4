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

package kube

import (
	"context"
	"fmt"

	"github.com/fluxcd/cli-utils/pkg/kstatus/polling"
	"github.com/fluxcd/pkg/ssa"
	corev1 "k8s.io/api/core/v1"
	apiextensionsv1 "k8s.io/apiextensions-apiserver/pkg/apis/apiextensions/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	apiruntime "k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/cli-runtime/pkg/genericclioptions"
	"sigs.k8s.io/controller-runtime/pkg/client"

	apiv1 "github.com/kubedrift/kubedrift/api/v1alpha1"
)

// ClusterClient implements Client against a live cluster using
// server-side apply under a stable field manager identity.
type ClusterClient struct {
	manager *ssa.ResourceManager
}

// NewClusterClient creates a cluster client for the given kubeconfig
// with the given field manager identity.
func NewClusterClient(rcg genericclioptions.RESTClientGetter, fieldManager string) (*ClusterClient, error) {
	cfg, err := rcg.ToRESTConfig()
	if err != nil {
		return nil, fmt.Errorf("loading kubeconfig failed: %w", err)
	}

	// bump limits
	cfg.QPS = 100.0
	cfg.Burst = 300

	restMapper, err := rcg.ToRESTMapper()
	if err != nil {
		return nil, fmt.Errorf("initializing cluster client failed: %w", err)
	}

	kubeClient, err := client.New(cfg, client.Options{Mapper: restMapper, Scheme: defaultScheme()})
	if err != nil {
		return nil, fmt.Errorf("initializing cluster client failed: %w", err)
	}

	kubePoller := polling.NewStatusPoller(kubeClient, restMapper, polling.Options{})

	owner := ssa.Owner{
		Field: fieldManager,
		Group: apiv1.Group,
	}
	return &ClusterClient{manager: ssa.NewResourceManager(kubeClient, kubePoller, owner)}, nil
}

// Get implements Client.
func (c *ClusterClient) Get(ctx context.Context, obj *unstructured.Unstructured) (*unstructured.Unstructured, error) {
	live := &unstructured.Unstructured{}
	live.SetGroupVersionKind(obj.GroupVersionKind())
	key := client.ObjectKey{Namespace: obj.GetNamespace(), Name: obj.GetName()}
	if err := c.manager.Client().Get(ctx, key, live); err != nil {
		return nil, err
	}
	return live, nil
}

// List implements Client.
func (c *ClusterClient) List(ctx context.Context, gvk schema.GroupVersionKind, namespace string, labels, fields map[string]string) ([]*unstructured.Unstructured, error) {
	list := &unstructured.UnstructuredList{}
	list.SetGroupVersionKind(schema.GroupVersionKind{
		Group:   gvk.Group,
		Version: gvk.Version,
		Kind:    gvk.Kind + "List",
	})

	opts := []client.ListOption{}
	if namespace != "" {
		opts = append(opts, client.InNamespace(namespace))
	}
	if len(labels) > 0 {
		opts = append(opts, client.MatchingLabels(labels))
	}
	if len(fields) > 0 {
		opts = append(opts, client.MatchingFields(fields))
	}

	if err := c.manager.Client().List(ctx, list, opts...); err != nil {
		return nil, err
	}

	items := make([]*unstructured.Unstructured, 0, len(list.Items))
	for i := range list.Items {
		items = append(items, &list.Items[i])
	}
	return items, nil
}

// Apply implements Client.
func (c *ClusterClient) Apply(ctx context.Context, obj *unstructured.Unstructured, force bool) error {
	opts := ssa.DefaultApplyOptions()
	opts.Force = force
	_, err := c.manager.Apply(ctx, obj, opts)
	return err
}

// Delete implements Client.
func (c *ClusterClient) Delete(ctx context.Context, obj *unstructured.Unstructured) error {
	return c.manager.Client().Delete(ctx, obj, client.PropagationPolicy(metav1.DeletePropagationBackground))
}

func defaultScheme() *apiruntime.Scheme {
	scheme := apiruntime.NewScheme()
	_ = apiextensionsv1.AddToScheme(scheme)
	_ = corev1.AddToScheme(scheme)
	return scheme
}
