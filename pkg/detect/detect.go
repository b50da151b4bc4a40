/*
Copyright © 2025 Gagrio
SPDX-License-Identifier: Apache-2.0
*/
package detect

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/distribution/reference"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/Gagrio/suse-support-material/pkg/collector"
	"github.com/Gagrio/suse-support-material/pkg/resource"
)

// Observation is one detected component with the evidence that produced it.
type Observation struct {
	Name     string   `json:"name" yaml:"name"`
	Version  string   `json:"version,omitempty" yaml:"version,omitempty"`
	Category string   `json:"category" yaml:"category"`
	FoundIn  []string `json:"foundIn" yaml:"foundIn"`
}

// Report is the outcome of scanning a captured resource set for vendor
// components and the Kubernetes distribution underneath them. Confidence is
// always derived from the signal score, never set independently.
type Report struct {
	Observations []Observation `json:"components" yaml:"components"`
	Total        int           `json:"totalComponents" yaml:"totalComponents"`
	Confidence   string        `json:"confidence" yaml:"confidence"`
	Topology     string        `json:"deploymentType" yaml:"deploymentType"`
	Distribution string        `json:"kubernetesDistribution,omitempty" yaml:"kubernetesDistribution,omitempty"`
}

// EmptyReport is the explicit result for a cluster with no vendor signal at
// all.
func EmptyReport() Report {
	return Report{
		Observations: []Observation{},
		Confidence:   EmptyConfidence,
		Topology:     EmptyTopology,
	}
}

// Detect scans the aggregated namespaced and cluster-scoped resource maps
// and produces a component report. It never fails: absence of signal yields
// the explicit empty report.
func Detect(namespaced, cluster resource.Map) Report {
	var observations []Observation
	score := 0
	distribution := ""

	if obs := detectDistribution(cluster); obs != nil {
		score += weightDistribution
		distribution = obs.Name
		observations = append(observations, *obs)
	}

	definitionObs := detectDefinitionGroups(cluster)
	score += weightDefinition * len(definitionObs)
	observations = append(observations, definitionObs...)

	deploymentObs := detectDeployments(namespaced)
	score += weightDeployment * len(deploymentObs)
	observations = append(observations, deploymentObs...)

	if obs := detectRegistryUsage(namespaced); obs != nil {
		score += weightRegistry
		observations = append(observations, *obs)
	}

	if len(observations) == 0 {
		slog.Debug("no vendor components detected")
		return EmptyReport()
	}

	report := Report{
		Observations: observations,
		Total:        len(observations),
		Confidence:   confidenceLabel(score, len(observations)),
		Topology:     topologyLabel(observations),
		Distribution: distribution,
	}

	slog.Info("component scan complete",
		slog.Int("components", report.Total),
		slog.String("confidence", report.Confidence),
		slog.String("topology", report.Topology))
	return report
}

// detectDistribution identifies the Kubernetes distribution, strongest
// evidence first: the K3s controller cluster role, then RKE2 node labels,
// then an RKE2 substring in any kubelet version. At most one observation.
func detectDistribution(cluster resource.Map) *Observation {
	nodes := cluster[collector.KeyNodes]

	for _, role := range cluster[collector.KeyClusterRoles] {
		if role.Name != "system:k3s-controller" {
			continue
		}
		version := "detected"
		if v := kubeletVersionContaining(nodes, "k3s"); v != "" {
			version = v
		}
		return &Observation{
			Name:     "K3s",
			Version:  version,
			Category: "Core",
			FoundIn:  []string{"Detected via cluster roles and node version"},
		}
	}

	for _, node := range nodes {
		labels, _, _ := unstructured.NestedStringMap(node.Object, "metadata", "labels")
		if !hasRKE2Label(labels) {
			continue
		}
		version := "detected"
		if v := kubeletVersionContaining(nodes, ""); v != "" {
			version = v
		}
		return &Observation{
			Name:     "RKE2",
			Version:  version,
			Category: "Core",
			FoundIn:  []string{"Detected via node labels and version"},
		}
	}

	if v := kubeletVersionContaining(nodes, "rke2"); v != "" {
		return &Observation{
			Name:     "RKE2",
			Version:  v,
			Category: "Core",
			FoundIn:  []string{"Detected via kubelet version"},
		}
	}

	return nil
}

func hasRKE2Label(labels map[string]string) bool {
	if _, ok := labels["rke2.io/hostname"]; ok {
		return true
	}
	for _, value := range labels {
		if strings.Contains(value, "rke2") {
			return true
		}
	}
	return false
}

// kubeletVersionContaining returns the first node's kubelet version that
// contains the substring; an empty substring matches any version.
func kubeletVersionContaining(nodes []resource.Record, substring string) string {
	for _, node := range nodes {
		version, _, _ := unstructured.NestedString(node.Object, "status", "nodeInfo", "kubeletVersion")
		if version != "" && strings.Contains(version, substring) {
			return version
		}
	}
	return ""
}

// detectDefinitionGroups counts custom resource definitions per known vendor
// API group.
func detectDefinitionGroups(cluster resource.Map) []Observation {
	definitions := cluster[collector.KeyCustomResourceDefinitions]
	if len(definitions) == 0 {
		return nil
	}

	var observations []Observation
	for _, signal := range definitionSignals {
		count := 0
		for _, def := range definitions {
			if strings.Contains(def.Name, signal.group) {
				count++
			}
		}
		if count == 0 {
			continue
		}
		observations = append(observations, Observation{
			Name:     signal.component,
			Category: signal.category,
			FoundIn:  []string{fmt.Sprintf("%d CRDs detected", count)},
		})
	}
	return observations
}

// detectDeployments matches deployments by name within their well-known
// vendor namespaces.
func detectDeployments(namespaced resource.Map) []Observation {
	var observations []Observation
	for _, signal := range deploymentSignals {
		for _, dep := range namespaced[collector.KeyDeployments] {
			if dep.Namespace != signal.namespace || !strings.Contains(dep.Name, signal.namePart) {
				continue
			}
			observations = append(observations, Observation{
				Name:     signal.component,
				Version:  deploymentVersion(dep),
				Category: signal.category,
				FoundIn:  []string{fmt.Sprintf("%s/%s", dep.Namespace, dep.Name)},
			})
		}
	}
	return observations
}

// deploymentVersion extracts a semantic version from the first container
// image tag that carries one.
func deploymentVersion(dep resource.Record) string {
	for _, image := range containerImages(dep) {
		if v := semanticVersion(image); v != "" {
			return v
		}
	}
	return ""
}

// semanticVersion returns the image's tag when it looks like a release
// version: starts with "v", contains a dot, and is not a digest-style tag.
func semanticVersion(image string) string {
	named, err := reference.ParseNormalizedNamed(image)
	if err != nil {
		return ""
	}
	tagged, ok := named.(reference.Tagged)
	if !ok {
		return ""
	}
	tag := tagged.Tag()
	if strings.HasPrefix(tag, "v") && strings.Contains(tag, ".") && !strings.Contains(tag, "sha256") {
		return tag
	}
	return ""
}

// detectRegistryUsage counts container images pulled from vendor registries
// across pods and deployments, yielding a single aggregate observation.
func detectRegistryUsage(namespaced resource.Map) *Observation {
	count := 0
	for _, key := range []string{collector.KeyPods, collector.KeyDeployments} {
		for _, rec := range namespaced[key] {
			for _, image := range containerImages(rec) {
				if fromVendorRegistry(image) {
					count++
				}
			}
		}
	}
	if count == 0 {
		return nil
	}
	return &Observation{
		Name:     "SUSE Container Images",
		Category: "Infrastructure",
		FoundIn:  []string{fmt.Sprintf("%d SUSE images in use", count)},
	}
}

func fromVendorRegistry(image string) bool {
	named, err := reference.ParseNormalizedNamed(image)
	if err != nil {
		return false
	}
	domain := reference.Domain(named)
	for _, registry := range vendorRegistries {
		if domain == registry {
			return true
		}
	}
	return false
}

// containerImages lists the image references of a workload document, looking
// at the pod template first (deployments) and the pod spec second (pods).
func containerImages(rec resource.Record) []string {
	containers, found, err := unstructured.NestedSlice(rec.Object, "spec", "template", "spec", "containers")
	if err != nil || !found {
		containers, found, err = unstructured.NestedSlice(rec.Object, "spec", "containers")
		if err != nil || !found {
			return nil
		}
	}

	images := make([]string, 0, len(containers))
	for _, entry := range containers {
		container, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		if image, ok := container["image"].(string); ok && image != "" {
			images = append(images, image)
		}
	}
	return images
}

// confidenceLabel walks the tier table most specific first and returns the
// first tier whose score and component-count thresholds are both met.
func confidenceLabel(score, components int) string {
	for _, tier := range confidenceTiers {
		if score >= tier.score && components >= tier.components {
			return tier.label
		}
	}
	return minimalConfidence
}

// topologyLabel classifies the cluster's role from which components are
// present.
func topologyLabel(observations []Observation) string {
	var hasRancher, hasMetal3, hasElemental, hasDistribution bool
	for _, obs := range observations {
		switch {
		case strings.Contains(obs.Name, "Rancher"):
			hasRancher = true
		case strings.Contains(obs.Name, "Metal3"):
			hasMetal3 = true
		case strings.Contains(obs.Name, "Elemental"):
			hasElemental = true
		}
		if obs.Name == "K3s" || obs.Name == "RKE2" {
			hasDistribution = true
		}
	}

	switch {
	case hasRancher && hasMetal3:
		return topologyManagement
	case hasRancher && hasElemental:
		return topologyElementalManagement
	case hasRancher:
		return topologyRancherManagement
	case hasDistribution:
		return topologyDownstream
	default:
		return topologyStandalone
	}
}
