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
	"errors"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/kubedrift/kubedrift/internal/kube"
	"github.com/kubedrift/kubedrift/internal/resource"
	"github.com/kubedrift/kubedrift/internal/testutils"
)

const reconcileRelease = `
apiVersion: v1
kind: ConfigMap
metadata:
  name: settings
  namespace: apps
---
apiVersion: v1
kind: Secret
metadata:
  name: token
  namespace: apps
`

func newClusterManifests(t *testing.T, cluster *testutils.Cluster) *Manifests {
	t.Helper()
	base := writeTree(t, "v1", map[string]map[string]string{
		"v1": {"core.yaml": reconcileRelease},
	})
	m, err := New(Options{
		Name:     "cni",
		BasePath: base,
		Client:   cluster,
	})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestApplyManifests(t *testing.T) {
	g := NewWithT(t)

	cluster := testutils.NewCluster()
	m := newClusterManifests(t, cluster)

	err := m.ApplyManifests(context.Background())
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(cluster.Applied).To(Equal([]string{
		"ConfigMap/apps/settings",
		"Secret/apps/token",
	}))

	// applied objects carry the ownership labels
	obj, err := cluster.Get(context.Background(), testutils.MustObject(`
apiVersion: v1
kind: ConfigMap
metadata:
  name: settings
  namespace: apps
`))
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(obj.GetLabels()).To(HaveKeyWithValue("juju.io/manifest-version", "cni-v1"))
}

func TestApplyResources_AbortsOnFailure(t *testing.T) {
	g := NewWithT(t)

	cluster := testutils.NewCluster()
	cluster.ApplyErrors["ConfigMap/apps/settings"] = errors.New("admission denied")
	m := newClusterManifests(t, cluster)

	err := m.ApplyManifests(context.Background())
	g.Expect(err).To(HaveOccurred())
	g.Expect(err.Error()).To(ContainSubstring("failed to apply resource ConfigMap/apps/settings"))

	var resErr *kube.ResourceError
	g.Expect(errors.As(err, &resErr)).To(BeTrue())
	g.Expect(resErr.Op).To(Equal("apply"))

	// the failing resource aborts the remaining batch
	g.Expect(cluster.Applied).To(Equal([]string{"ConfigMap/apps/settings"}))
}

func TestInstalledResources_SkipsAbsent(t *testing.T) {
	g := NewWithT(t)

	cluster := testutils.NewCluster(testutils.MustObject(`
apiVersion: v1
kind: ConfigMap
metadata:
  name: settings
  namespace: apps
`))
	m := newClusterManifests(t, cluster)

	installed, err := m.InstalledResources(context.Background())
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(installed.SortedStrings()).To(Equal([]string{"ConfigMap/apps/settings"}))
}

func TestStatus_FiltersConditionless(t *testing.T) {
	g := NewWithT(t)

	cluster := testutils.NewCluster(
		testutils.MustObject(`
apiVersion: v1
kind: ConfigMap
metadata:
  name: settings
  namespace: apps
`),
		testutils.MustObject(`
apiVersion: v1
kind: Secret
metadata:
  name: token
  namespace: apps
status:
  conditions:
  - type: Ready
    status: "False"
`),
	)
	m := newClusterManifests(t, cluster)

	status, err := m.Status(context.Background())
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(status.SortedStrings()).To(Equal([]string{"Secret/apps/token"}))
}

func TestLabelledResources_FindsLeftovers(t *testing.T) {
	g := NewWithT(t)

	// a leftover from an older release, same labels but no longer
	// declared
	leftover := testutils.MustObject(`
apiVersion: v1
kind: ConfigMap
metadata:
  name: deprecated
  namespace: apps
  labels:
    juju.io/application: cni
    juju.io/manifest: cni
    juju.io/manifest-version: cni-v0
`)
	// a foreign object of the same kind without the labels
	foreign := testutils.MustObject(`
apiVersion: v1
kind: ConfigMap
metadata:
  name: unrelated
  namespace: apps
`)
	cluster := testutils.NewCluster(leftover, foreign)
	m := newClusterManifests(t, cluster)

	labelled, err := m.LabelledResources(context.Background())
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(labelled.SortedStrings()).To(Equal([]string{"ConfigMap/apps/deprecated"}))
}

func TestConflictingResources(t *testing.T) {
	g := NewWithT(t)

	conflicting := testutils.MustObject(`
apiVersion: v1
kind: ConfigMap
metadata:
  name: settings
  namespace: apps
  labels:
    juju.io/application: other-app
    juju.io/manifest: other
`)
	cluster := testutils.NewCluster(conflicting)
	m := newClusterManifests(t, cluster)

	installed, err := m.InstalledResources(context.Background())
	g.Expect(err).ToNot(HaveOccurred())

	conflicts, err := m.ConflictingResources(context.Background(), installed)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(conflicts.SortedStrings()).To(Equal([]string{"ConfigMap/apps/settings"}))
}

func TestConflictingResources_RejectsUnexpected(t *testing.T) {
	g := NewWithT(t)

	m := newClusterManifests(t, testutils.NewCluster())

	unexpected := testutils.MustObject(`
apiVersion: v1
kind: ConfigMap
metadata:
  name: rogue
  namespace: apps
`)
	installed, err := m.InstalledResources(context.Background())
	g.Expect(err).ToNot(HaveOccurred())
	installed.Add(resource.New(unexpected))

	_, err = m.ConflictingResources(context.Background(), installed)
	g.Expect(err).To(HaveOccurred())
	g.Expect(err.Error()).To(ContainSubstring("unexpected resource installed"))
}

func TestDeleteResources_IgnoreFlags(t *testing.T) {
	g := NewWithT(t)

	cluster := testutils.NewCluster()
	cluster.DeleteErrors["ConfigMap/apps/settings"] = errors.New(`the operation is not allowed (unauthorized)`)
	m := newClusterManifests(t, cluster)

	expected, err := m.Resources()
	g.Expect(err).ToNot(HaveOccurred())

	ctx := context.Background()

	// without ignore flags the first failure aborts
	err = m.DeleteResources(ctx, DeleteOptions{IgnoreLabels: true}, expected.List()...)
	g.Expect(err).To(HaveOccurred())
	g.Expect(err.Error()).To(ContainSubstring("failed to delete resource"))

	// with both flags set the batch completes
	opts := DeleteOptions{IgnoreLabels: true, IgnoreNotFound: true, IgnoreUnauthorized: true}
	err = m.DeleteResources(ctx, opts, expected.List()...)
	g.Expect(err).ToNot(HaveOccurred())
}

func TestDeleteResources_LabelScoped(t *testing.T) {
	g := NewWithT(t)

	owned := testutils.MustObject(`
apiVersion: v1
kind: ConfigMap
metadata:
  name: settings
  namespace: apps
  labels:
    juju.io/application: cni
    juju.io/manifest: cni
    juju.io/manifest-version: cni-v1
`)
	cluster := testutils.NewCluster(owned)
	m := newClusterManifests(t, cluster)

	expected, err := m.Resources()
	g.Expect(err).ToNot(HaveOccurred())

	err = m.DeleteResources(context.Background(), DeleteOptions{}, expected.List()...)
	g.Expect(err).ToNot(HaveOccurred())

	// only the labelled ConfigMap matched; the Secret was never
	// installed and the label-scoped list finds nothing to delete
	g.Expect(cluster.Deleted).To(Equal([]string{"ConfigMap/apps/settings"}))
	g.Expect(cluster.Has("ConfigMap/apps/settings")).To(BeFalse())
}

func TestDeleteResources_PreservesForeign(t *testing.T) {
	g := NewWithT(t)

	// same identity as a declared resource, foreign labels
	foreign := testutils.MustObject(`
apiVersion: v1
kind: ConfigMap
metadata:
  name: settings
  namespace: apps
  labels:
    juju.io/application: other-app
    juju.io/manifest: other
`)
	cluster := testutils.NewCluster(foreign)
	m := newClusterManifests(t, cluster)

	expected, err := m.Resources()
	g.Expect(err).ToNot(HaveOccurred())

	err = m.DeleteResources(context.Background(), DeleteOptions{}, expected.List()...)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(cluster.Deleted).To(BeEmpty())
	g.Expect(cluster.Has("ConfigMap/apps/settings")).To(BeTrue())
}

func TestDeleteManifests(t *testing.T) {
	g := NewWithT(t)

	leftover := testutils.MustObject(`
apiVersion: v1
kind: ConfigMap
metadata:
  name: deprecated
  namespace: apps
  labels:
    juju.io/application: cni
    juju.io/manifest: cni
    juju.io/manifest-version: cni-v0
`)
	cluster := testutils.NewCluster(leftover)
	m := newClusterManifests(t, cluster)

	err := m.DeleteManifests(context.Background(), DeleteOptions{})
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(cluster.Has("ConfigMap/apps/deprecated")).To(BeFalse())
}

func TestReconcile_RequiresClient(t *testing.T) {
	g := NewWithT(t)

	m := newManifests(t, writeTree(t, "v1", map[string]map[string]string{
		"v1": {"core.yaml": nsDoc},
	}), nil)

	_, err := m.InstalledResources(context.Background())
	g.Expect(err).To(HaveOccurred())
	g.Expect(err.Error()).To(ContainSubstring("no cluster client configured"))
}
