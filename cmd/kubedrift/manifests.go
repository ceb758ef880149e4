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
	"fmt"
	"io"
	"path/filepath"

	"github.com/olekukonko/tablewriter"

	apiv1 "github.com/kubedrift/kubedrift/api/v1alpha1"
	"github.com/kubedrift/kubedrift/internal/collector"
	"github.com/kubedrift/kubedrift/internal/kube"
	"github.com/kubedrift/kubedrift/internal/manifest"
	"github.com/kubedrift/kubedrift/internal/manipulate"
)

// buildManifests constructs one Manifests instance per --path value.
// With offline set no cluster client is created, which keeps
// resolution-only commands usable without a kubeconfig.
func buildManifests(offline bool) ([]*manifest.Manifests, error) {
	if len(rootArgs.paths) == 0 {
		return nil, fmt.Errorf("at least one --path is required")
	}

	config := manipulate.ConfigMap{}
	if rootArgs.release != "" {
		config[manifest.ReleaseConfigKey] = rootArgs.release
	}
	if rootArgs.registry != "" {
		config[manipulate.RegistryConfigKey] = rootArgs.registry
	}

	var manifests []*manifest.Manifests
	for _, path := range rootArgs.paths {
		name := filepath.Base(filepath.Clean(path))

		manipulations := manifest.DefaultManipulations()
		if rootArgs.createNamespace != "" {
			manipulations = append([]manipulate.Manipulation{
				manipulate.NewCreateNamespace(rootArgs.createNamespace),
			}, manipulations...)
		}
		if rootArgs.registry != "" {
			manipulations = append(manipulations, manipulate.NewConfigRegistry())
		}

		var client kube.Client
		if !offline {
			cc, err := kube.NewClusterClient(kubeconfigArgs, apiv1.FieldManager(rootArgs.app, name))
			if err != nil {
				return nil, err
			}
			client = cc
		}

		m, err := manifest.New(manifest.Options{
			Name:          name,
			Application:   rootArgs.app,
			BasePath:      path,
			Client:        client,
			Config:        config,
			Manipulations: manipulations,
			Log:           cliLogger,
		})
		if err != nil {
			return nil, err
		}
		manifests = append(manifests, m)
	}
	return manifests, nil
}

// newCollector builds a collector over every configured manifest set.
func newCollector(offline bool) (*collector.Collector, error) {
	manifests, err := buildManifests(offline)
	if err != nil {
		return nil, err
	}
	return collector.New(cliLogger, manifests...), nil
}

func printTable(writer io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(writer)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	table.SetNoWhiteSpace(true)
	table.AppendBulk(rows)
	table.Render()
}
