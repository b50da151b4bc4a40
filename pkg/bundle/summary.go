/*
Copyright © 2025 Gagrio
SPDX-License-Identifier: Apache-2.0
*/
package bundle

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Gagrio/suse-support-material/pkg/resource"
	"github.com/Gagrio/suse-support-material/pkg/sanitize"
)

// Summary is the collection-summary.yaml document describing what one run
// captured.
type Summary struct {
	CollectionInfo   CollectionInfo             `yaml:"collection_info" json:"collection_info"`
	ClusterSummary   ClusterSummary             `yaml:"cluster_summary" json:"cluster_summary"`
	NamespaceDetails map[string]NamespaceDetail `yaml:"namespace_details" json:"namespace_details"`
	Sanitization     sanitize.Stats             `yaml:"sanitization" json:"sanitization"`
}

type CollectionInfo struct {
	Timestamp string `yaml:"timestamp" json:"timestamp"`
	Tool      string `yaml:"tool" json:"tool"`
	Version   string `yaml:"version" json:"version"`
}

type ClusterSummary struct {
	TotalNamespaces     int            `yaml:"total_namespaces" json:"total_namespaces"`
	TotalResources      int            `yaml:"total_resources" json:"total_resources"`
	TotalClusterScoped  int            `yaml:"total_cluster_scoped" json:"total_cluster_scoped"`
	ResourcesByType     map[string]int `yaml:"resources_by_type" json:"resources_by_type"`
	ClusterScopedByType map[string]int `yaml:"cluster_scoped_by_type" json:"cluster_scoped_by_type"`
}

// NamespaceDetail breaks one namespace's capture down by resource type. The
// Heading is a human-readable rendering of the namespace name for the
// summary document.
type NamespaceDetail struct {
	Heading        string         `yaml:"heading" json:"heading"`
	ByType         map[string]int `yaml:"resources_by_type" json:"resources_by_type"`
	TotalResources int            `yaml:"total_resources" json:"total_resources"`
}

var headingCaser = cases.Title(language.English)

// heading renders "longhorn-system" as "Longhorn System".
func heading(name string) string {
	return headingCaser.String(strings.ReplaceAll(name, "-", " "))
}

func buildSummary(timestamp time.Time, version string, namespaced, cluster resource.Map, stats sanitize.Stats) Summary {
	details := make(map[string]NamespaceDetail)
	byType := make(map[string]int)
	total := 0

	for key, records := range namespaced {
		byType[key] += len(records)
		total += len(records)
		for _, rec := range records {
			detail, ok := details[rec.Namespace]
			if !ok {
				detail = NamespaceDetail{Heading: heading(rec.Namespace), ByType: make(map[string]int)}
			}
			detail.ByType[key]++
			detail.TotalResources++
			details[rec.Namespace] = detail
		}
	}

	clusterByType := make(map[string]int)
	clusterTotal := 0
	for key, records := range cluster {
		clusterByType[key] = len(records)
		clusterTotal += len(records)
	}

	return Summary{
		CollectionInfo: CollectionInfo{
			Timestamp: timestamp.Format(time.RFC3339),
			Tool:      "ketchup",
			Version:   version,
		},
		ClusterSummary: ClusterSummary{
			TotalNamespaces:     len(details),
			TotalResources:      total,
			TotalClusterScoped:  clusterTotal,
			ResourcesByType:     byType,
			ClusterScopedByType: clusterByType,
		},
		NamespaceDetails: details,
		Sanitization:     stats,
	}
}
