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

package main

import (
	"context"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kubedrift/kubedrift/internal/collector"
	"github.com/kubedrift/kubedrift/internal/logger"
)

var resourcesCmd = &cobra.Command{
	Use:   "resources",
	Short: "Compares the declared resources against cluster state",
	Long: `The resources command resolves every manifest set and classifies each
declared resource as correct, extra, missing or conflicting.`,
	Example: `  # Analyze every manifest set
  kubedrift resources --path ./deploy/cni --path ./deploy/storage

  # Restrict the analysis to one manifest set and kind
  kubedrift resources --path ./deploy/cni --manifests cni --resources DaemonSet
`,
	RunE: runResourcesCmd,
}

type resourcesFlags struct {
	manifests string
	resources string
}

var resourcesArgs resourcesFlags

func init() {
	resourcesCmd.Flags().StringVar(&resourcesArgs.manifests, "manifests", "",
		"Space-separated manifest set names to analyze. (defaults to all)")
	resourcesCmd.Flags().StringVar(&resourcesArgs.resources, "resources", "",
		"Space-separated resource kinds to report on. (defaults to all)")
	rootCmd.AddCommand(resourcesCmd)
}

func runResourcesCmd(cmd *cobra.Command, args []string) error {
	c, err := newCollector(false)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), rootArgs.timeout)
	defer cancel()

	results, _, err := c.ListResources(ctx, collector.Filter{
		Manifests: resourcesArgs.manifests,
		Resources: resourcesArgs.resources,
	})
	if err != nil {
		return err
	}

	printResults(results)
	return nil
}

// printResults renders '<manifest>-<class>' keyed listings as a table,
// one row per resource.
func printResults(results collector.Results) {
	var rows [][]string
	for _, key := range sortedKeys(results) {
		name, class := splitResultKey(key)
		for _, line := range strings.Split(results[key], "\n") {
			rows = append(rows, []string{
				logger.ColorizeManifest(name),
				logger.ColorizeClass(class),
				line,
			})
		}
	}
	printTable(rootCmd.OutOrStdout(), []string{"manifest", "class", "resource"}, rows)
}

func sortedKeys(results collector.Results) []string {
	keys := make([]string, 0, len(results))
	for key := range results {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// splitResultKey separates a '<manifest>-<class>' result key on its
// last dash, since manifest names may themselves contain dashes.
func splitResultKey(key string) (string, string) {
	if i := strings.LastIndex(key, "-"); i >= 0 {
		return key[:i], key[i+1:]
	}
	return key, ""
}
