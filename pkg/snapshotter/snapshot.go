/*
Copyright © 2025 Gagrio
SPDX-License-Identifier: Apache-2.0
*/

// Package snapshotter orchestrates a full cluster capture: namespace
// verification, built-in and custom resource collection, sanitization, and
// component analysis, assembled into one Snapshot.
package snapshotter

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"

	"github.com/Gagrio/suse-support-material/pkg/collector"
	"github.com/Gagrio/suse-support-material/pkg/detect"
	"github.com/Gagrio/suse-support-material/pkg/header"
	"github.com/Gagrio/suse-support-material/pkg/resource"
	"github.com/Gagrio/suse-support-material/pkg/sanitize"
)

// ClusterSnapshotter captures the state of one cluster. Built-in resource
// kinds are collected concurrently; custom resource types are resolved
// sequentially afterwards, sharing one discovery snapshot.
type ClusterSnapshotter struct {
	// Version is stamped into the snapshot header and summary.
	Version string

	ClientSet kubernetes.Interface
	Dynamic   dynamic.Interface
	Discovery discovery.DiscoveryInterface

	// Namespaces is the requested namespace set, verified before collection.
	Namespaces []string

	// Limiter optionally throttles list calls. Nil means unlimited.
	Limiter *rate.Limiter

	// Raw skips sanitization, keeping documents exactly as the API server
	// returned them.
	Raw bool
}

// Capture runs the full collection pipeline. It fails only on fatal
// conditions: an unreachable cluster or an empty verified namespace set.
// Every other failure is contained and reported through the snapshot.
func (s *ClusterSnapshotter) Capture(ctx context.Context) (*Snapshot, error) {
	start := time.Now()
	defer func() {
		captureDuration.Observe(time.Since(start).Seconds())
	}()

	resolver := &collector.NamespaceResolver{ClientSet: s.ClientSet}
	verified, err := resolver.Verify(ctx, s.Namespaces)
	if err != nil {
		captureTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	slog.Info("collecting from namespaces", slog.Any("namespaces", verified))

	snap := NewSnapshot()
	snap.Init(header.KindSupportBundle, FullAPIVersion, s.Version)
	snap.Namespaces = verified

	col := &collector.Collector{ClientSet: s.ClientSet, Dynamic: s.Dynamic, Limiter: s.Limiter}

	var mu sync.Mutex
	var failures []collector.Failure
	g, gctx := errgroup.WithContext(ctx)

	namespacedKinds := []struct {
		key     string
		collect func(context.Context, []string) collector.Result
	}{
		{collector.KeyPods, col.CollectPods},
		{collector.KeyServices, col.CollectServices},
		{collector.KeyDeployments, col.CollectDeployments},
		{collector.KeyConfigMaps, col.CollectConfigMaps},
		{collector.KeySecrets, col.CollectSecrets},
		{collector.KeyIngresses, col.CollectIngresses},
		{collector.KeyPersistentVolumeClaims, col.CollectPersistentVolumeClaims},
		{collector.KeyNetworkPolicies, col.CollectNetworkPolicies},
	}
	for _, kind := range namespacedKinds {
		g.Go(func() error {
			collectorStart := time.Now()
			defer func() {
				collectorDuration.WithLabelValues(kind.key).Observe(time.Since(collectorStart).Seconds())
			}()
			res := kind.collect(gctx, verified)
			mu.Lock()
			snap.NamespacedResources.Add(kind.key, res.Records)
			failures = append(failures, res.Failures...)
			mu.Unlock()
			return nil
		})
	}

	clusterKinds := []struct {
		key     string
		collect func(context.Context) collector.Result
	}{
		{collector.KeyNodes, col.CollectNodes},
		{collector.KeyPersistentVolumes, col.CollectPersistentVolumes},
		{collector.KeyStorageClasses, col.CollectStorageClasses},
		{collector.KeyClusterRoles, col.CollectClusterRoles},
		{collector.KeyCustomResourceDefinitions, col.CollectCustomResourceDefinitions},
	}
	for _, kind := range clusterKinds {
		g.Go(func() error {
			collectorStart := time.Now()
			defer func() {
				collectorDuration.WithLabelValues(kind.key).Observe(time.Since(collectorStart).Seconds())
			}()
			res := kind.collect(gctx)
			mu.Lock()
			snap.ClusterResources.Add(kind.key, res.Records)
			failures = append(failures, res.Failures...)
			mu.Unlock()
			return nil
		})
	}

	// Collectors contain their own failures; the group only propagates
	// context cancellation.
	if err := g.Wait(); err != nil {
		captureTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	failures = append(failures, s.resolveCustomResources(ctx, snap, verified)...)

	// Detection runs on the documents as the API server returned them; the
	// sanitizer removes status fields the distribution probes read.
	snap.Analysis = detect.Detect(snap.NamespacedResources, snap.ClusterResources)

	if !s.Raw {
		var stats sanitize.Stats
		snap.NamespacedResources, stats = sanitize.ApplyMap(snap.NamespacedResources)
		clusterSanitized, clusterStats := sanitize.ApplyMap(snap.ClusterResources)
		snap.ClusterResources = clusterSanitized
		stats.Merge(clusterStats)
		snap.Sanitization = stats
	}

	for _, f := range failures {
		snap.Failures = append(snap.Failures, f.String())
	}

	captureTotal.WithLabelValues("success").Inc()
	captureResourceCount.Set(float64(snap.TotalResources()))
	slog.Info("capture complete",
		slog.Int("resources", snap.TotalResources()),
		slog.Int("failures", len(snap.Failures)))
	return snap, nil
}

// resolveCustomResources builds a descriptor per captured definition and
// collects each type's instances independently. Malformed definitions and
// empty types are skipped without affecting the rest.
func (s *ClusterSnapshotter) resolveCustomResources(ctx context.Context, snap *Snapshot, namespaces []string) []collector.Failure {
	definitions := snap.ClusterResources[collector.KeyCustomResourceDefinitions]
	if len(definitions) == 0 {
		return nil
	}

	resolver := &collector.CustomResourceResolver{
		Dynamic:   s.Dynamic,
		Discovery: s.Discovery,
		Limiter:   s.Limiter,
	}

	var failures []collector.Failure
	for _, def := range definitions {
		desc, err := collector.DescriptorFromDocument(def.Object)
		if err != nil {
			slog.Warn("skipping custom resource definition",
				slog.String("crd", def.Name),
				slog.String("error", err.Error()))
			failures = append(failures, collector.Failure{Kind: def.Name, Err: err})
			continue
		}

		collectorStart := time.Now()
		res := resolver.Resolve(ctx, desc, namespaces)
		key := resource.CustomTypeKey(desc.Plural, desc.Group)
		collectorDuration.WithLabelValues(key).Observe(time.Since(collectorStart).Seconds())

		failures = append(failures, res.Failures...)
		if len(res.Records) == 0 {
			// Partially provisioned clusters expose definitions without
			// working endpoints for every type; that is not an error.
			slog.Debug("no instances for custom resource type", slog.String("type", key))
			continue
		}

		if desc.Namespaced {
			snap.NamespacedResources.Add(key, res.Records)
		} else {
			snap.ClusterResources.Add(key, res.Records)
		}
	}
	return failures
}
