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
	"testing"

	. "github.com/onsi/gomega"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	apiv1 "github.com/kubedrift/kubedrift/api/v1alpha1"
	"github.com/kubedrift/kubedrift/internal/manipulate"
	"github.com/kubedrift/kubedrift/internal/resource"
)

func resourceImage(r *resource.Resource) (string, bool, error) {
	items, found, err := unstructured.NestedSlice(r.Object.Object, "spec", "containers")
	if !found || err != nil {
		return "", found, err
	}
	container := items[0].(map[string]interface{})
	image, _ := container["image"].(string)
	return image, true, nil
}

func TestResources_OrderAndDedup(t *testing.T) {
	g := NewWithT(t)

	base := writeTree(t, "v1", map[string]map[string]string{
		"v1": {
			// filenames sort b-core before z-extra regardless of
			// creation order
			"z-extra.yaml": `
apiVersion: v1
kind: ConfigMap
metadata:
  name: settings
  namespace: apps
---
apiVersion: v1
kind: Service
metadata:
  name: web
  namespace: apps
`,
			"b-core.yaml": `
apiVersion: v1
kind: ConfigMap
metadata:
  name: settings
  namespace: apps
  annotations:
    origin: core
`,
		},
	})

	m := newManifests(t, base, nil)
	set, err := m.Resources()
	g.Expect(err).ToNot(HaveOccurred())

	var got []string
	for _, r := range set.List() {
		got = append(got, r.String())
	}
	g.Expect(got).To(Equal([]string{
		"ConfigMap/apps/settings",
		"Service/apps/web",
	}))

	// the first occurrence by filename order wins on duplicate identity
	settings := set.Get(resource.ID{Kind: "ConfigMap", Namespace: "apps", Name: "settings"})
	g.Expect(settings.Object.GetAnnotations()).To(HaveKeyWithValue("origin", "core"))
}

func TestResources_FlattensLists(t *testing.T) {
	g := NewWithT(t)

	base := writeTree(t, "v1", map[string]map[string]string{
		"v1": {
			"list.yaml": `
apiVersion: v1
kind: List
items:
- apiVersion: v1
  kind: List
  items:
  - apiVersion: v1
    kind: Pod
    metadata:
      name: nested
      namespace: apps
`,
		},
	})

	m := newManifests(t, base, nil)
	set, err := m.Resources()
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(set.Len()).To(Equal(1))
	g.Expect(set.List()[0].String()).To(Equal("Pod/apps/nested"))
}

func TestResources_SkipsForeignContent(t *testing.T) {
	g := NewWithT(t)

	base := writeTree(t, "v1", map[string]map[string]string{
		"v1": {
			"mixed.yaml": `
just a scalar
---
kind: MissingApiVersion
metadata:
  name: ignored
---
apiVersion: v1
kind: ConfigMap
metadata:
  name: kept
  namespace: apps
---
`,
		},
	})

	m := newManifests(t, base, nil)
	set, err := m.Resources()
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(set.Len()).To(Equal(1))
	g.Expect(set.List()[0].String()).To(Equal("ConfigMap/apps/kept"))
}

func TestResources_Pipeline(t *testing.T) {
	g := NewWithT(t)

	base := writeTree(t, "v2", map[string]map[string]string{
		"v2": {
			"core.yaml": `
apiVersion: v1
kind: ConfigMap
metadata:
  name: settings
  namespace: apps
---
apiVersion: v1
kind: ConfigMap
metadata:
  name: legacy
  namespace: apps
`,
		},
	})

	m, err := New(Options{
		Name:     "cni",
		BasePath: base,
		Manipulations: []manipulate.Manipulation{
			manipulate.NewCreateNamespace("apps"),
			manipulate.NewSubtractEq(resource.ID{Kind: "ConfigMap", Namespace: "apps", Name: "legacy"}),
			manipulate.NewManifestLabel(),
		},
	})
	g.Expect(err).ToNot(HaveOccurred())

	set, err := m.Resources()
	g.Expect(err).ToNot(HaveOccurred())

	var got []string
	for _, r := range set.List() {
		got = append(got, r.String())
	}
	// additions come first, subtracted resources are gone
	g.Expect(got).To(Equal([]string{
		"Namespace/apps",
		"ConfigMap/apps/settings",
	}))

	// patches cover added resources too
	for _, r := range set.List() {
		g.Expect(r.Labels()).To(HaveKeyWithValue(apiv1.ApplicationLabelKey, "cni"))
		g.Expect(r.Labels()).To(HaveKeyWithValue(apiv1.ManifestVersionLabelKey, "cni-v2"))
	}
}

func TestResources_CacheIsolation(t *testing.T) {
	g := NewWithT(t)

	base := writeTree(t, "v1", map[string]map[string]string{
		"v1": {
			"pod.yaml": `
apiVersion: v1
kind: Pod
metadata:
  name: probe
  namespace: apps
spec:
  containers:
  - name: probe
    image: quay.io/app/probe:v1
`,
		},
	})

	config := manipulate.ConfigMap{manipulate.RegistryConfigKey: "mirror.internal"}
	m, err := New(Options{
		Name:     "cni",
		BasePath: base,
		Config:   config,
		Manipulations: []manipulate.Manipulation{
			manipulate.NewConfigRegistry(),
		},
	})
	g.Expect(err).ToNot(HaveOccurred())

	// repeated resolution starts from pristine file content every time
	for i := 0; i < 2; i++ {
		set, err := m.Resources()
		g.Expect(err).ToNot(HaveOccurred())

		image, _, err := resourceImage(set.List()[0])
		g.Expect(err).ToNot(HaveOccurred())
		g.Expect(image).To(Equal("mirror.internal/app/probe:v1"))
	}
}
