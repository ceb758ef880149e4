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

	"github.com/kubedrift/kubedrift/internal/manifest"
)

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Deletes every labelled resource of every manifest set from the cluster",
	Long: `The delete command queries the cluster for resources carrying each
manifest set's ownership labels and deletes them. Resources that were
never applied are therefore skipped without error.`,
	Example: `  # Delete the current release, tolerating already-gone resources
  kubedrift delete --path ./deploy/cni --ignore-not-found
`,
	RunE: runDeleteCmd,
}

type deleteFlags struct {
	ignoreNotFound     bool
	ignoreUnauthorized bool
	ignoreLabels       bool
}

var deleteArgs deleteFlags

func init() {
	deleteCmd.Flags().BoolVar(&deleteArgs.ignoreNotFound, "ignore-not-found", false,
		"Treat resources that are already gone as deleted.")
	deleteCmd.Flags().BoolVar(&deleteArgs.ignoreUnauthorized, "ignore-unauthorized", false,
		"Skip resources the client is not allowed to delete.")
	deleteCmd.Flags().BoolVar(&deleteArgs.ignoreLabels, "ignore-labels", false,
		"Delete by name without matching the ownership labels.")
	rootCmd.AddCommand(deleteCmd)
}

func runDeleteCmd(cmd *cobra.Command, args []string) error {
	manifests, err := buildManifests(false)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), rootArgs.timeout)
	defer cancel()

	opts := manifest.DeleteOptions{
		Namespace:          *kubeconfigArgs.Namespace,
		IgnoreNotFound:     deleteArgs.ignoreNotFound,
		IgnoreUnauthorized: deleteArgs.ignoreUnauthorized,
		IgnoreLabels:       deleteArgs.ignoreLabels,
	}
	for _, m := range manifests {
		if err := m.DeleteManifests(ctx, opts); err != nil {
			return err
		}
	}
	return nil
}
