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
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// fileTypes are the recognized declaration file extensions.
var fileTypes = []string{".yaml", ".yml"}

func isManifestFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, t := range fileTypes {
		if ext == t {
			return true
		}
	}
	return false
}

// Releases enumerates the release directories under '<base>/manifests'
// that contain at least one declaration file, sorted highest version
// first. The result is computed once per Manifests instance.
func (m *Manifests) Releases() ([]string, error) {
	if m.releases != nil {
		return m.releases, nil
	}

	entries, err := os.ReadDir(m.manifestPath())
	if err != nil {
		if os.IsNotExist(err) {
			m.releases = []string{}
			return m.releases, nil
		}
		return nil, fmt.Errorf("listing releases of %s failed: %w", m.name, err)
	}

	var releases []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		files, err := os.ReadDir(filepath.Join(m.manifestPath(), entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("listing releases of %s failed: %w", m.name, err)
		}
		for _, f := range files {
			if !f.IsDir() && isManifestFile(f.Name()) {
				releases = append(releases, entry.Name())
				break
			}
		}
	}

	sort.SliceStable(releases, func(i, j int) bool {
		return compareVersions(releases[i], releases[j]) > 0
	})
	m.releases = releases
	return m.releases, nil
}

// DefaultRelease returns the content of the '<base>/version' file,
// trimmed. A missing or empty file yields an empty string.
func (m *Manifests) DefaultRelease() string {
	if m.defaultRelease == nil {
		content, err := os.ReadFile(filepath.Join(m.basePath, "version"))
		version := ""
		if err == nil {
			version = strings.TrimSpace(string(content))
		}
		m.defaultRelease = &version
	}
	return *m.defaultRelease
}

// LatestRelease returns the highest available release.
func (m *Manifests) LatestRelease() (string, error) {
	releases, err := m.Releases()
	if err != nil {
		return "", err
	}
	if len(releases) == 0 {
		return "", fmt.Errorf("no releases found in %s", m.manifestPath())
	}
	return releases[0], nil
}

// CurrentRelease determines the release to operate on: the 'release'
// configuration override, else the default release, else the latest.
func (m *Manifests) CurrentRelease() (string, error) {
	if m.config != nil {
		if release := m.config.GetString(ReleaseConfigKey); release != "" {
			return release, nil
		}
	}
	if release := m.DefaultRelease(); release != "" {
		return release, nil
	}
	return m.LatestRelease()
}

// versionToken is one segment of a version string, either a digit run
// or a literal separator.
type versionToken struct {
	text  string
	num   int
	isNum bool
}

func tokenizeVersion(v string) []versionToken {
	var tokens []versionToken
	start := 0
	digits := false
	flush := func(end int) {
		if end == start {
			return
		}
		text := v[start:end]
		token := versionToken{text: text}
		if digits {
			if n, err := strconv.Atoi(text); err == nil {
				token.num = n
				token.isNum = true
			}
		}
		tokens = append(tokens, token)
		start = end
	}
	for i, r := range v {
		if unicode.IsDigit(r) != digits {
			flush(i)
			digits = !digits
		}
	}
	flush(len(v))
	return tokens
}

// compareVersions orders version strings piecewise over digit runs and
// literal separators, numeric segments comparing numerically. Segments
// of differing shape compare as strings; a version that is a strict
// prefix of another sorts lower.
func compareVersions(a, b string) int {
	at, bt := tokenizeVersion(a), tokenizeVersion(b)
	for i := 0; i < len(at) && i < len(bt); i++ {
		x, y := at[i], bt[i]
		if x.isNum && y.isNum {
			if x.num != y.num {
				if x.num < y.num {
					return -1
				}
				return 1
			}
			continue
		}
		if c := strings.Compare(x.text, y.text); c != 0 {
			return c
		}
	}
	return len(at) - len(bt)
}
