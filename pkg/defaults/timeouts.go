/*
Copyright © 2025 Gagrio
SPDX-License-Identifier: Apache-2.0
*/
package defaults

import "time"

// ConfigMap timeouts for Kubernetes ConfigMap operations.
const (
	// ConfigMapWriteTimeout is the timeout for writing to ConfigMaps.
	ConfigMapWriteTimeout = 30 * time.Second
)

// CLI timeouts for command-line operations.
const (
	// CLISnapshotTimeout is the default timeout for a full collection run.
	// Large clusters with many CRDs can take minutes to list.
	CLISnapshotTimeout = 5 * time.Minute
)

// Registry timeouts for OCI operations.
const (
	// OCIPushTimeout bounds one bundle push, including layer upload.
	OCIPushTimeout = 2 * time.Minute
)
