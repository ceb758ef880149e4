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
	"github.com/spf13/cobra"
)

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "Prints a table of the releases available for each manifest set",
	Example: `  # List the releases of a manifest base directory
  kubedrift versions --path ./deploy/cni
`,
	RunE: runVersionsCmd,
}

func init() {
	rootCmd.AddCommand(versionsCmd)
}

func runVersionsCmd(cmd *cobra.Command, args []string) error {
	manifests, err := buildManifests(true)
	if err != nil {
		return err
	}

	var rows [][]string
	for _, m := range manifests {
		releases, err := m.Releases()
		if err != nil {
			return err
		}
		current, err := m.CurrentRelease()
		if err != nil {
			return err
		}
		for _, release := range releases {
			marker := ""
			if release == current {
				marker = "*"
			}
			rows = append(rows, []string{m.Name(), release, marker})
		}
	}

	printTable(rootCmd.OutOrStdout(), []string{"manifest", "release", "current"}, rows)
	return nil
}
