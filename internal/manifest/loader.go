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
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	utilyaml "k8s.io/apimachinery/pkg/util/yaml"
	"sigs.k8s.io/yaml"

	"github.com/kubedrift/kubedrift/internal/resource"
)

// loadRelease loads every declaration file of the given release,
// sorted by filename, into fresh resource objects. The per-file parse
// is memoized for the process lifetime; each call returns deep copies
// so that manipulations never leak into the cache.
func (m *Manifests) loadRelease(release string) ([]*resource.Resource, error) {
	dir := filepath.Join(m.manifestPath(), release)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading release %s of %s failed: %w", release, m.name, err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && isManifestFile(entry.Name()) {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)

	var resources []*resource.Resource
	for _, file := range files {
		objects, err := m.loadFile(filepath.Join(dir, file))
		if err != nil {
			return nil, err
		}
		for _, obj := range objects {
			resources = append(resources, resource.New(obj.DeepCopy()))
		}
	}
	return resources, nil
}

// loadFile parses a declaration file into objects, flattening List
// wrappers recursively. Results are cached per path.
func (m *Manifests) loadFile(path string) ([]*unstructured.Unstructured, error) {
	if objects, ok := m.fileCache[path]; ok {
		return objects, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest file failed: %w", err)
	}
	defer f.Close()

	var objects []*unstructured.Unstructured
	reader := utilyaml.NewYAMLReader(bufio.NewReader(f))
	for {
		doc, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading manifest file %s failed: %w", path, err)
		}
		if len(strings.TrimSpace(string(doc))) == 0 {
			continue
		}

		var raw interface{}
		if err := yaml.Unmarshal(doc, &raw); err != nil {
			return nil, fmt.Errorf("parsing manifest file %s failed: %w", path, err)
		}
		objects = append(objects, m.flatten(path, raw)...)
	}

	m.fileCache[path] = objects
	return objects, nil
}

// flatten turns a parsed document into objects, recursing into
// List-kind wrappers. Documents that are not mappings or lack a kind
// or apiVersion are skipped with a warning, tolerating stray YAML
// content mixed into manifest directories.
func (m *Manifests) flatten(path string, doc interface{}) []*unstructured.Unstructured {
	entry, ok := doc.(map[string]interface{})
	if !ok {
		m.log.Info("ignoring non-dictionary resource", "file", path)
		return nil
	}
	kind, _ := entry["kind"].(string)
	apiVersion, _ := entry["apiVersion"].(string)
	if kind == "" || apiVersion == "" {
		m.log.Info("ignoring non-kubernetes resource", "file", path)
		return nil
	}

	if strings.HasSuffix(kind, "List") {
		items, _ := entry["items"].([]interface{})
		var objects []*unstructured.Unstructured
		for _, item := range items {
			objects = append(objects, m.flatten(path, item)...)
		}
		return objects
	}

	return []*unstructured.Unstructured{{Object: entry}}
}
