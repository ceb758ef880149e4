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

	"github.com/kubedrift/kubedrift/internal/collector"
)

var scrubCmd = &cobra.Command{
	Use:   "scrub",
	Short: "Deletes labelled resources that are no longer declared",
	Long: `The scrub command analyzes every manifest set and deletes the extra
resources, i.e. those carrying the set's ownership labels but absent
from the current release. It prints the post-remediation analysis.`,
	Example: `  # Remove leftovers after a release downgrade
  kubedrift scrub --path ./deploy/cni
`,
	RunE: runScrubCmd,
}

type scrubFlags struct {
	manifests string
	resources string
}

var scrubArgs scrubFlags

func init() {
	scrubCmd.Flags().StringVar(&scrubArgs.manifests, "manifests", "",
		"Space-separated manifest set names to scrub. (defaults to all)")
	scrubCmd.Flags().StringVar(&scrubArgs.resources, "resources", "",
		"Space-separated resource kinds to report on. (defaults to all)")
	rootCmd.AddCommand(scrubCmd)
}

func runScrubCmd(cmd *cobra.Command, args []string) error {
	c, err := newCollector(false)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), rootArgs.timeout)
	defer cancel()

	results, err := c.ScrubResources(ctx, collector.Filter{
		Manifests: scrubArgs.manifests,
		Resources: scrubArgs.resources,
	})
	if err != nil {
		return err
	}

	printResults(results)
	return nil
}
