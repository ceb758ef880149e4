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

	"github.com/spf13/cobra"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Applies the current release of every manifest set to the cluster",
	Long: `The apply command resolves the current release of every manifest set
and server-side applies each resource in manifest order. The first
failure aborts the run.`,
	Example: `  # Apply the release named in the version file
  kubedrift apply --path ./deploy/cni

  # Apply a specific release
  kubedrift apply --path ./deploy/cni --release v0.3.1
`,
	RunE: runApplyCmd,
}

func init() {
	rootCmd.AddCommand(applyCmd)
}

func runApplyCmd(cmd *cobra.Command, args []string) error {
	manifests, err := buildManifests(false)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), rootArgs.timeout)
	defer cancel()

	for _, m := range manifests {
		if err := m.ApplyManifests(ctx); err != nil {
			return err
		}
	}
	return nil
}
