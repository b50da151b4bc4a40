// Package cli implements the command-line interface for the ketchup tool.
//
// # Overview
//
// The ketchup CLI captures sanitized resource state from a running Kubernetes
// cluster and packages it as a reviewable support bundle. It is designed for
// support engineers and cluster administrators collecting material for SUSE
// Edge support cases.
//
// # Commands
//
// collect - Capture cluster state into a support bundle:
//
//	ketchup collect --kubeconfig ~/.kube/config -n cattle-system,longhorn-system
//
// Collects built-in resources (pods, services, deployments, config maps,
// secrets, ingresses, PVCs, network policies) from the requested namespaces,
// plus cluster-scoped resources (nodes, PVs, storage classes, cluster roles,
// CRDs) and every custom resource instance resolvable through discovery. Writes a
// timestamped bundle directory and a tar.gz archive.
//
// detect - Detect installed SUSE Edge components:
//
//	ketchup detect -n cattle-system [--report FILE] [--format yaml|json|table]
//
// Runs the same capture and emits only the component analysis: detected
// components with versions, a confidence score, and the cluster topology.
//
// # Global Flags
//
//	--log-level    Logging verbosity: debug, info, warn, error (default: info)
//	--help, -h     Show command help
//	--version, -v  Show version information
//
// # Environment Variables
//
// Every flag can also be set through a KETCHUP_-prefixed environment
// variable, for example KETCHUP_KUBECONFIG or KETCHUP_NAMESPACES.
//
// # Exit Codes
//
//	0  Success
//	1  General error (invalid arguments, unreachable cluster, no valid namespaces)
//
// # Architecture
//
// The CLI uses the urfave/cli/v3 framework and delegates to specialized packages:
//   - pkg/snapshotter - Capture orchestration
//   - pkg/collector - Namespace verification and resource collection
//   - pkg/sanitize - Sensitive-field removal
//   - pkg/detect - SUSE Edge component analysis
//   - pkg/bundle - Bundle layout and archiving
//   - pkg/oci - Registry push
//
// Version information is embedded at build time using ldflags:
//
//	go build -ldflags="-X 'github.com/Gagrio/suse-support-material/pkg/cli.version=1.0.0'"
package cli
