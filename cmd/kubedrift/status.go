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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kubedrift/kubedrift/internal/kube"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Reports the readiness of every installed resource",
	Long: `The status command prints the cluster version, the current release of
every manifest set and one line per installed resource whose status
conditions report it unready.`,
	Example: `  # Check readiness after an apply
  kubedrift status --path ./deploy/cni
`,
	RunE: runStatusCmd,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatusCmd(cmd *cobra.Command, args []string) error {
	c, err := newCollector(false)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), rootArgs.timeout)
	defer cancel()

	version, err := kube.ServerVersion(kubeconfigArgs)
	if err != nil {
		return err
	}
	cliLogger.Info(fmt.Sprintf("Kubernetes %s", version))

	long, err := c.LongVersion()
	if err != nil {
		return err
	}
	cliLogger.Info(long)

	unready, err := c.Unready(ctx)
	if err != nil {
		return err
	}
	if len(unready) == 0 {
		cliLogger.Info("all resources are ready")
		return nil
	}
	for _, line := range unready {
		cliLogger.Info(line)
	}
	return fmt.Errorf("%d resources are not ready", len(unready))
}
