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
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/kubedrift/kubedrift/internal/resource"
)

// RegistryConfigKey is the configuration key holding the image
// registry override.
const RegistryConfigKey = "image-registry"

// podSpecFields maps each pod-template-bearing kind to the nested path
// of its pod spec.
var podSpecFields = map[string][]string{
	"Pod":                   {"spec"},
	"DaemonSet":             {"spec", "template", "spec"},
	"Deployment":            {"spec", "template", "spec"},
	"Job":                   {"spec", "template", "spec"},
	"ReplicaSet":            {"spec", "template", "spec"},
	"ReplicationController": {"spec", "template", "spec"},
	"StatefulSet":           {"spec", "template", "spec"},
	"CronJob":               {"spec", "jobTemplate", "spec", "template", "spec"},
}

// ConfigRegistry rewrites the registry host of every container image
// when the 'image-registry' configuration value is set. The reference
// is split on its first '/' and the remainder is prefixed with the new
// registry; a reference without a '/' is prefixed whole. Reapplying
// with the same registry yields the same reference.
type ConfigRegistry struct {
	base
}

// NewConfigRegistry returns the image registry rewriting patch.
func NewConfigRegistry() *ConfigRegistry {
	return &ConfigRegistry{}
}

// Apply rewrites the images of the resource's containers and init
// containers. No-op when the registry is unset or the kind carries no
// pod template.
func (c *ConfigRegistry) Apply(ctx Context, r *resource.Resource) {
	registry := ctx.Config().GetString(RegistryConfigKey)
	if registry == "" {
		return
	}
	specPath, ok := podSpecFields[r.Kind()]
	if !ok {
		return
	}

	for _, field := range []string{"containers", "initContainers"} {
		path := append(append([]string{}, specPath...), field)
		containers, found, err := unstructured.NestedSlice(r.Object.Object, path...)
		if !found || err != nil {
			continue
		}
		for _, item := range containers {
			container, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			image, _ := container["image"].(string)
			if image == "" {
				continue
			}
			rewritten := rewriteImage(image, registry)
			ctx.Logger().Info("replacing image", "from", image, "to", rewritten)
			container["image"] = rewritten
		}
		if err := unstructured.SetNestedSlice(r.Object.Object, containers, path...); err != nil {
			ctx.Logger().Error(err, "updating containers failed", "resource", r.String())
		}
	}
}

// rewriteImage replaces the registry segment of an image reference,
// the segment being everything before the first '/'.
func rewriteImage(image, registry string) string {
	if _, remainder, found := strings.Cut(image, "/"); found {
		return registry + "/" + remainder
	}
	return registry + "/" + image
}
