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

package v1alpha1

import "fmt"

// Group is the API group used for server-side apply ownership annotations.
const Group = "manifests.kubedrift.dev"

// The ownership label triple written to every managed resource.
// These keys are the sole mechanism for ownership and conflict detection
// and must stay stable across releases, as clusters managed by previous
// versions carry them already.
const (
	// ApplicationLabelKey holds the name of the application that
	// installed the resource.
	ApplicationLabelKey = "juju.io/application"

	// ManifestLabelKey holds the name of the manifest set that
	// declared the resource.
	ManifestLabelKey = "juju.io/manifest"

	// ManifestVersionLabelKey holds the '<manifest>-<release>' pair
	// the resource was installed from.
	ManifestVersionLabelKey = "juju.io/manifest-version"
)

// OwnershipLabels returns the label set marking a resource as managed
// by the given application and manifest at the given release.
func OwnershipLabels(application, manifest, release string) map[string]string {
	return map[string]string{
		ApplicationLabelKey:     application,
		ManifestLabelKey:        manifest,
		ManifestVersionLabelKey: fmt.Sprintf("%s-%s", manifest, release),
	}
}

// SelectorLabels returns the label subset used when listing resources
// ever installed by the given application and manifest. The version label
// is deliberately excluded so that resources installed from older
// releases still match.
func SelectorLabels(application, manifest string) map[string]string {
	return map[string]string{
		ApplicationLabelKey: application,
		ManifestLabelKey:    manifest,
	}
}

// FieldManager returns the server-side apply field manager identity
// for the given application and manifest pair.
func FieldManager(application, manifest string) string {
	return fmt.Sprintf("%s-%s", application, manifest)
}
