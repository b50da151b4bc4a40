/*
Copyright © 2025 Gagrio
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/Gagrio/suse-support-material/pkg/defaults"
	"github.com/Gagrio/suse-support-material/pkg/serializer"
)

func detectCmd() *cli.Command {
	return &cli.Command{
		Name:                  "detect",
		EnableShellCompletion: true,
		Usage:                 "Detect installed SUSE Edge components",
		Description: `Capture the cluster state needed for component analysis and report the
detected SUSE Edge components with a confidence score and cluster topology.

Detection looks at the Kubernetes distribution (K3s, RKE2), installed CRD
groups, known deployments, and SUSE registry image usage.

# Examples

Report to stdout as YAML:
  ketchup detect --kubeconfig ~/.kube/config -n cattle-system

Write a JSON report to a file:
  ketchup detect -n cattle-system,fleet-default --format json --report detection.json

Store the report in a ConfigMap:
  ketchup detect --report cm://support/ketchup-analysis`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "report",
				Usage:   "Report destination: file path, cm://namespace/name, or empty for stdout",
				Sources: cli.EnvVars("KETCHUP_REPORT"),
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Report format (yaml, json, table)",
				Sources: cli.EnvVars("KETCHUP_FORMAT"),
				Value:   "yaml",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Timeout for the whole detection run",
				Value: defaults.CLISnapshotTimeout,
			},
			kubeconfigFlag,
			namespacesFlag,
			rateLimitFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			outFormat, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
			defer cancel()

			snap, err := capture(ctx, cmd)
			if err != nil {
				return err
			}

			slog.Info("detection completed",
				"components", snap.Analysis.Total,
				"confidence", snap.Analysis.Confidence,
				"topology", snap.Analysis.Topology)

			writer := serializer.NewFileWriterOrStdout(outFormat, cmd.String("report"))
			if err := writer.Serialize(ctx, snap.Analysis); err != nil {
				return err
			}
			if closer, ok := writer.(serializer.Closer); ok {
				return closer.Close()
			}
			return nil
		},
	}
}
