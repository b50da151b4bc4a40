/*
Copyright © 2025 Gagrio
SPDX-License-Identifier: Apache-2.0
*/
package snapshotter

import (
	"context"

	"github.com/Gagrio/suse-support-material/pkg/detect"
	"github.com/Gagrio/suse-support-material/pkg/header"
	"github.com/Gagrio/suse-support-material/pkg/resource"
	"github.com/Gagrio/suse-support-material/pkg/sanitize"
)

// FullAPIVersion tags serialized snapshots with their envelope version.
const FullAPIVersion = "ketchup.gagrio.dev/v1"

// Snapshotter captures one cluster state snapshot.
type Snapshotter interface {
	Capture(ctx context.Context) (*Snapshot, error)
}

// Snapshot is one captured cluster state: the namespaced and cluster-scoped
// resource maps, what sanitization did to them, the component analysis, and
// every contained failure encountered along the way.
type Snapshot struct {
	header.Header `json:",inline" yaml:",inline"`

	// Namespaces is the verified namespace set the capture ran against.
	Namespaces []string `json:"namespaces" yaml:"namespaces"`

	// NamespacedResources maps resource-type keys to captured documents from
	// the target namespaces. Custom types use "<plural>.<group>" keys.
	NamespacedResources resource.Map `json:"namespacedResources" yaml:"namespacedResources"`

	// ClusterResources holds the cluster-scoped captures.
	ClusterResources resource.Map `json:"clusterResources" yaml:"clusterResources"`

	// Sanitization aggregates what the sanitizer processed, when enabled.
	Sanitization sanitize.Stats `json:"sanitization" yaml:"sanitization"`

	// Analysis is the vendor component report for the captured set.
	Analysis detect.Report `json:"suseEdgeAnalysis" yaml:"suseEdgeAnalysis"`

	// Failures lists every contained sub-operation failure, so a reviewer
	// can tell a sparse cluster from a capture that was denied access.
	Failures []string `json:"failures,omitempty" yaml:"failures,omitempty"`
}

// NewSnapshot creates a Snapshot with initialized resource maps.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		NamespacedResources: make(resource.Map),
		ClusterResources:    make(resource.Map),
	}
}

// TotalResources counts every captured document across both maps.
func (s *Snapshot) TotalResources() int {
	return s.NamespacedResources.Total() + s.ClusterResources.Total()
}
