/*
Copyright © 2025 Gagrio
SPDX-License-Identifier: Apache-2.0
*/
package detect

// Signal weights applied when computing the raw confidence score.
const (
	weightDistribution = 20
	weightDefinition   = 15
	weightDeployment   = 10
	weightRegistry     = 5
)

// definitionSignal maps an API-group substring found in custom resource
// definition names to the vendor component it evidences.
type definitionSignal struct {
	group     string
	component string
	category  string
}

// definitionSignals is checked in order; each group with at least one
// matching definition contributes one observation.
var definitionSignals = []definitionSignal{
	{"longhorn.io", "SUSE Storage (Longhorn)", "Storage"},
	{"neuvector.com", "SUSE Security (NeuVector)", "Security"},
	{"kubevirt.io", "KubeVirt", "Virtualization"},
	{"cdi.kubevirt.io", "Containerized Data Importer", "Virtualization"},
	{"metal3.io", "Metal3", "Infrastructure"},
	{"elemental.cattle.io", "Elemental", "Infrastructure"},
	{"akri.sh", "Akri", "IoT"},
}

// deploymentSignal maps a deployment-name substring within a well-known
// namespace to a vendor component.
type deploymentSignal struct {
	namespace string
	namePart  string
	component string
	category  string
}

var deploymentSignals = []deploymentSignal{
	{"cattle-system", "rancher", "SUSE Rancher Prime", "Management"},
	{"longhorn-system", "longhorn", "SUSE Storage (Longhorn)", "Storage"},
}

// vendorRegistries are the image registry hosts counted by the
// registry-usage signal.
var vendorRegistries = []string{
	"registry.suse.com",
	"registry.opensuse.org",
}

// confidenceTier pairs a score threshold with a component-count threshold.
type confidenceTier struct {
	score      int
	components int
	label      string
}

// confidenceTiers is ordered most specific first; the first tier whose both
// thresholds are met wins. The boundaries are deliberate and the tie-break
// order matters because the ranges overlap.
var confidenceTiers = []confidenceTier{
	{60, 5, "Very High"},
	{40, 3, "High"},
	{20, 2, "Medium"},
	{10, 1, "Low"},
}

const minimalConfidence = "Minimal"

// Sentinel values for a cluster with no vendor components at all. Distinct
// from the Minimal tier, which still implies something was found.
const (
	EmptyConfidence = "None - Standard Kubernetes"
	EmptyTopology   = "Standard Kubernetes Cluster"
)

// Deployment topology labels derived from the observation set.
const (
	topologyManagement          = "Management Cluster"
	topologyElementalManagement = "Elemental Management Cluster"
	topologyRancherManagement   = "Rancher Management Cluster"
	topologyDownstream          = "Downstream Cluster"
	topologyStandalone          = "Standalone Cluster"
)
