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
	"testing"

	. "github.com/onsi/gomega"

	apiv1 "github.com/kubedrift/kubedrift/api/v1alpha1"
	"github.com/kubedrift/kubedrift/internal/resource"
	"github.com/kubedrift/kubedrift/internal/testutils"
)

func TestManifestLabel(t *testing.T) {
	g := NewWithT(t)

	ctx := fakeContext{name: "cni", app: "kubedrift", release: "v0.3.1"}
	r := resource.New(testutils.MustObject(`
apiVersion: apps/v1
kind: DaemonSet
metadata:
  name: calico-node
  namespace: kube-system
  labels:
    k8s-app: calico-node
`))

	patch := NewManifestLabel()
	patch.Apply(ctx, r)

	labels := r.Labels()
	g.Expect(labels).To(HaveKeyWithValue(apiv1.ApplicationLabelKey, "kubedrift"))
	g.Expect(labels).To(HaveKeyWithValue(apiv1.ManifestLabelKey, "cni"))
	g.Expect(labels).To(HaveKeyWithValue(apiv1.ManifestVersionLabelKey, "cni-v0.3.1"))
	g.Expect(labels).To(HaveKeyWithValue("k8s-app", "calico-node"))

	// reapplication changes nothing
	before := r.Labels()
	patch.Apply(ctx, r)
	g.Expect(r.Labels()).To(Equal(before))
}
