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
	"testing"

	. "github.com/onsi/gomega"
)

func TestSet_FirstOccurrenceWins(t *testing.T) {
	g := NewWithT(t)

	first := New(makeObject("ConfigMap", "default", "config"))
	first.Object.SetLabels(map[string]string{"origin": "first"})
	second := New(makeObject("ConfigMap", "default", "config"))
	second.Object.SetLabels(map[string]string{"origin": "second"})

	s := NewSet(first, second)
	g.Expect(s.Len()).To(Equal(1))
	g.Expect(s.Get(first.ID()).Labels()).To(HaveKeyWithValue("origin", "first"))
	g.Expect(s.Add(second)).To(BeFalse())
}

func TestSet_ListPreservesOrder(t *testing.T) {
	g := NewWithT(t)

	ns := New(makeObject("Namespace", "", "apps"))
	cm := New(makeObject("ConfigMap", "apps", "config"))
	dp := New(makeObject("Deployment", "apps", "web"))

	s := NewSet(ns, cm, dp)
	var got []string
	for _, r := range s.List() {
		got = append(got, r.String())
	}
	g.Expect(got).To(Equal([]string{
		"Namespace/apps",
		"ConfigMap/apps/config",
		"Deployment/apps/web",
	}))
}

func TestSet_Operations(t *testing.T) {
	g := NewWithT(t)

	a := New(makeObject("ConfigMap", "default", "a"))
	b := New(makeObject("ConfigMap", "default", "b"))
	c := New(makeObject("ConfigMap", "default", "c"))

	left := NewSet(a, b)
	right := NewSet(b, c)

	g.Expect(left.Intersect(right).SortedStrings()).To(Equal([]string{"ConfigMap/default/b"}))
	g.Expect(left.Difference(right).SortedStrings()).To(Equal([]string{"ConfigMap/default/a"}))
	g.Expect(left.Union(right).SortedStrings()).To(Equal([]string{
		"ConfigMap/default/a",
		"ConfigMap/default/b",
		"ConfigMap/default/c",
	}))

	filtered := left.Filter(func(r *Resource) bool { return r.Name() == "b" })
	g.Expect(filtered.SortedStrings()).To(Equal([]string{"ConfigMap/default/b"}))
}

func TestSet_HasAndGet(t *testing.T) {
	g := NewWithT(t)

	r := New(makeObject("Service", "default", "web"))
	s := NewSet(r)

	g.Expect(s.Has(r.ID())).To(BeTrue())
	g.Expect(s.Has(ID{Kind: "Service", Namespace: "other", Name: "web"})).To(BeFalse())
	g.Expect(s.Get(r.ID())).To(BeIdenticalTo(r))
	g.Expect(s.Get(ID{Kind: "Secret"})).To(BeNil())
}
