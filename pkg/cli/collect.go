/*
Copyright © 2025 Gagrio
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/Gagrio/suse-support-material/pkg/bundle"
	"github.com/Gagrio/suse-support-material/pkg/defaults"
	"github.com/Gagrio/suse-support-material/pkg/k8s/client"
	"github.com/Gagrio/suse-support-material/pkg/oci"
	"github.com/Gagrio/suse-support-material/pkg/snapshotter"
)

func collectCmd() *cli.Command {
	return &cli.Command{
		Name:                  "collect",
		EnableShellCompletion: true,
		Usage:                 "Capture cluster state into a support bundle",
		Description: `Capture sanitized resource state from a running cluster and write it as
a reviewable support bundle:
  - Pods, Services, Deployments, ConfigMaps, Secrets, Ingresses,
    PersistentVolumeClaims, NetworkPolicies, and custom resource instances
    from the requested namespaces
  - Nodes, PersistentVolumes, StorageClasses, ClusterRoles, and
    CustomResourceDefinitions at cluster scope
  - SUSE Edge component analysis with confidence scoring
  - A collection summary with per-namespace resource counts

Sensitive and server-managed fields (managedFields, resourceVersion, secrets
annotations, auto-assigned node ports) are removed unless --raw is set.

# Examples

Collect the default namespace:
  ketchup collect --kubeconfig ~/.kube/config

Collect several namespaces as YAML only, keep just the archive:
  ketchup collect -n cattle-system,longhorn-system -f yaml --compression compressed

Push the bundle tree to an OCI registry:
  ketchup collect -n default --push oci://registry.example.com/support/cluster-a:latest`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "compression",
				Usage:   "What remains on disk (compressed, uncompressed, both)",
				Sources: cli.EnvVars("KETCHUP_COMPRESSION"),
				Value:   "both",
			},
			&cli.StringFlag{
				Name: "push",
				Usage: `OCI reference to push the bundle to (oci://registry/repository:tag).
	Requires an uncompressed bundle tree on disk.`,
				Sources: cli.EnvVars("KETCHUP_PUSH"),
			},
			&cli.BoolFlag{
				Name:  "plain-http",
				Usage: "Use HTTP for the registry connection (lab registries only)",
			},
			&cli.BoolFlag{
				Name:  "insecure-tls",
				Usage: "Skip registry TLS certificate verification (lab registries only)",
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Timeout for the whole collection run",
				Value: defaults.CLISnapshotTimeout,
			},
			kubeconfigFlag,
			namespacesFlag,
			outputFlag,
			formatFlag,
			rateLimitFlag,
			rawFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format := bundle.Format(cmd.String("format"))
			compression := bundle.Compression(cmd.String("compression"))

			writer, err := bundle.NewWriter(cmd.String("output"), format, compression, version)
			if err != nil {
				return err
			}

			// Validate the push target before any collection work.
			var pushRef *oci.Reference
			if target := cmd.String("push"); target != "" {
				pushRef, err = oci.ParseOutputTarget(target)
				if err != nil {
					return fmt.Errorf("invalid push target: %w", err)
				}
				if !pushRef.IsOCI {
					return fmt.Errorf("push target must use the %s scheme: %q", oci.URIScheme, target)
				}
				if compression == bundle.CompressionCompressed {
					return fmt.Errorf("push requires an uncompressed bundle tree, use --compression uncompressed or both")
				}
			}

			ctx, cancel := context.WithTimeout(ctx, cmd.Duration("timeout"))
			defer cancel()

			snap, err := capture(ctx, cmd)
			if err != nil {
				return err
			}

			dir, archive, err := writer.Write(
				snap.NamespacedResources,
				snap.ClusterResources,
				snap.Sanitization,
				snap.Analysis,
			)
			if err != nil {
				return fmt.Errorf("failed to write bundle: %w", err)
			}

			slog.Info("collection completed",
				"namespaces", snap.Namespaces,
				"resources", snap.TotalResources(),
				"failures", len(snap.Failures),
				"dir", dir,
				"archive", archive)

			if pushRef != nil {
				pushCtx, cancelPush := context.WithTimeout(ctx, defaults.OCIPushTimeout)
				defer cancelPush()

				result, err := oci.Push(pushCtx, oci.PushOptions{
					BundleDir:   dir,
					Registry:    pushRef.Registry,
					Repository:  pushRef.Repository,
					Tag:         pushRef.Tag,
					Version:     version,
					PlainHTTP:   cmd.Bool("plain-http"),
					InsecureTLS: cmd.Bool("insecure-tls"),
				})
				if err != nil {
					return fmt.Errorf("failed to push bundle: %w", err)
				}
				slog.Info("bundle pushed", "reference", result.Reference, "digest", result.Digest)
			}

			return nil
		},
	}
}

// capture builds the cluster clients from CLI flags and runs one snapshot.
func capture(ctx context.Context, cmd *cli.Command) (*snapshotter.Snapshot, error) {
	start := time.Now()

	clientset, config, err := client.BuildKubeClient(cmd.String("kubeconfig"))
	if err != nil {
		return nil, err
	}
	dyn, err := client.BuildDynamicClient(config)
	if err != nil {
		return nil, err
	}

	s := &snapshotter.ClusterSnapshotter{
		Version:    version,
		ClientSet:  clientset,
		Dynamic:    dyn,
		Discovery:  clientset.Discovery(),
		Namespaces: parseNamespaces(cmd.StringSlice("namespaces")),
		Limiter:    buildLimiter(float64(cmd.Int("rate-limit"))),
		Raw:        cmd.Bool("raw"),
	}

	snap, err := s.Capture(ctx)
	if err != nil {
		return nil, err
	}

	slog.Debug("capture finished", "duration", time.Since(start))
	return snap, nil
}
