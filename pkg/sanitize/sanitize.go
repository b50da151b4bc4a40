/*
Copyright © 2025 Gagrio
SPDX-License-Identifier: Apache-2.0
*/
package sanitize

import (
	"fmt"
	"log/slog"
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"

	apperrors "github.com/Gagrio/suse-support-material/pkg/errors"
	"github.com/Gagrio/suse-support-material/pkg/resource"
)

// Cluster-assigned metadata fields that can never be re-applied.
var removedMetadataFields = []string{
	"uid",
	"resourceVersion",
	"creationTimestamp",
	"generation",
	"managedFields",
	"selfLink",
}

// Annotation keys dropped by prefix, plus the one leader-election key that is
// matched exactly.
var droppedAnnotationPrefixes = []string{
	"kubectl.kubernetes.io/",
	"deployment.kubernetes.io/",
}

const leaderElectionAnnotation = "control-plane.alpha.kubernetes.io/leader"

const droppedFinalizerPrefix = "kubernetes.io/"

// Node spec fields that survive sanitization; everything else under a Node's
// spec is cluster-assigned.
var keptNodeSpecFields = map[string]bool{
	"podCIDR":  true,
	"podCIDRs": true,
	"taints":   true,
}

// Service node ports at or above this value are auto-assigned by the API
// server and dropped.
const autoAssignedNodePortFloor = 30000

// kindRules maps a declared kind to its extra sanitization step. Kinds not
// listed here only get the generic rules.
var kindRules = map[string]func(doc map[string]any){
	"Node":                  sanitizeNode,
	"Service":               sanitizeService,
	"PersistentVolume":      sanitizePersistentVolume,
	"PersistentVolumeClaim": sanitizePersistentVolumeClaim,
}

// Sanitize returns a copy of the record with every cluster-assigned or
// run-time-only field removed, so the document can be submitted again to
// create an equivalent object. The source record is never mutated. A document
// that cannot be processed yields an error carrying the record's identifier;
// the caller records it and discards the resource, never emitting a partially
// sanitized document.
func Sanitize(rec resource.Record) (resource.Record, error) {
	if rec.Object == nil {
		return resource.Record{}, apperrors.New(
			apperrors.ErrCodeInvalidRequest,
			fmt.Sprintf("document is not a structured object: %s", rec.ID()),
		)
	}

	doc := runtime.DeepCopyJSON(rec.Object)

	unstructured.RemoveNestedField(doc, "status")
	for _, field := range removedMetadataFields {
		unstructured.RemoveNestedField(doc, "metadata", field)
	}
	sanitizeAnnotations(doc)
	sanitizeFinalizers(doc)

	if rule, ok := kindRules[rec.Kind]; ok {
		rule(doc)
	}

	out := rec
	out.Object = doc
	return out, nil
}

func sanitizeAnnotations(doc map[string]any) {
	annotations, found, err := unstructured.NestedStringMap(doc, "metadata", "annotations")
	if err != nil || !found {
		return
	}

	for key := range annotations {
		if key == leaderElectionAnnotation || hasAnyPrefix(key, droppedAnnotationPrefixes) {
			delete(annotations, key)
		}
	}

	if len(annotations) == 0 {
		unstructured.RemoveNestedField(doc, "metadata", "annotations")
		return
	}
	_ = unstructured.SetNestedStringMap(doc, annotations, "metadata", "annotations")
}

func sanitizeFinalizers(doc map[string]any) {
	finalizers, found, err := unstructured.NestedStringSlice(doc, "metadata", "finalizers")
	if err != nil || !found {
		return
	}

	kept := make([]string, 0, len(finalizers))
	for _, f := range finalizers {
		if !strings.HasPrefix(f, droppedFinalizerPrefix) {
			kept = append(kept, f)
		}
	}

	if len(kept) == 0 {
		unstructured.RemoveNestedField(doc, "metadata", "finalizers")
		return
	}
	_ = unstructured.SetNestedStringSlice(doc, kept, "metadata", "finalizers")
}

func sanitizeNode(doc map[string]any) {
	spec, found, err := unstructured.NestedMap(doc, "spec")
	if err != nil || !found {
		return
	}
	for key := range spec {
		if !keptNodeSpecFields[key] {
			delete(spec, key)
		}
	}
	_ = unstructured.SetNestedMap(doc, spec, "spec")
}

func sanitizeService(doc map[string]any) {
	unstructured.RemoveNestedField(doc, "spec", "clusterIP")
	unstructured.RemoveNestedField(doc, "spec", "clusterIPs")

	ports, found, err := unstructured.NestedSlice(doc, "spec", "ports")
	if err != nil || !found {
		return
	}
	for _, entry := range ports {
		port, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		if nodePort, ok := numericValue(port["nodePort"]); ok && nodePort >= autoAssignedNodePortFloor {
			delete(port, "nodePort")
		}
	}
	_ = unstructured.SetNestedSlice(doc, ports, "spec", "ports")
}

func sanitizePersistentVolume(doc map[string]any) {
	unstructured.RemoveNestedField(doc, "spec", "claimRef")
}

func sanitizePersistentVolumeClaim(doc map[string]any) {
	unstructured.RemoveNestedField(doc, "spec", "volumeName")
}

// numericValue normalizes JSON and unstructured number representations.
func numericValue(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

// Stats aggregates sanitization outcomes across a run. Counters only ever
// grow; merging partial stats is additive.
type Stats struct {
	Processed  int      `json:"processed" yaml:"processed"`
	Sanitized  int      `json:"sanitized" yaml:"sanitized"`
	Skipped    int      `json:"skipped" yaml:"skipped"`
	SkippedIDs []string `json:"skippedResources,omitempty" yaml:"skippedResources,omitempty"`
}

// Merge folds another aggregate into this one.
func (s *Stats) Merge(other Stats) {
	s.Processed += other.Processed
	s.Sanitized += other.Sanitized
	s.Skipped += other.Skipped
	s.SkippedIDs = append(s.SkippedIDs, other.SkippedIDs...)
}

// Apply sanitizes every record in the slice, dropping the ones that fail.
// A single malformed document never stops the rest of the batch.
func Apply(records []resource.Record) ([]resource.Record, Stats) {
	stats := Stats{Processed: len(records)}
	out := make([]resource.Record, 0, len(records))

	for _, rec := range records {
		sanitized, err := Sanitize(rec)
		if err != nil {
			slog.Warn("skipping resource that failed sanitization",
				slog.String("resource", rec.ID()),
				slog.String("error", err.Error()))
			stats.Skipped++
			stats.SkippedIDs = append(stats.SkippedIDs, rec.ID())
			continue
		}
		out = append(out, sanitized)
		stats.Sanitized++
	}

	return out, stats
}

// ApplyMap sanitizes every record in every resource-type slot of the map,
// returning a new map and the additive stats across all slots.
func ApplyMap(resources resource.Map) (resource.Map, Stats) {
	var stats Stats
	out := make(resource.Map, len(resources))
	for key, records := range resources {
		sanitized, s := Apply(records)
		stats.Merge(s)
		if len(sanitized) > 0 {
			out[key] = sanitized
		}
	}
	return out, stats
}
