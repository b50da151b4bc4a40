/*
Copyright © 2025 Gagrio
SPDX-License-Identifier: Apache-2.0
*/
package collector

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/time/rate"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/dynamic"

	apperrors "github.com/Gagrio/suse-support-material/pkg/errors"
	"github.com/Gagrio/suse-support-material/pkg/resource"
)

// locator resolves a Descriptor to a concrete GroupVersionResource. Locators
// form a prioritized strategy chain: each is tried in order, the first one
// that locates the type wins, and all location failures are aggregated for
// diagnostics.
type locator interface {
	name() string
	locate(desc *Descriptor) (schema.GroupVersionResource, error)
}

// discoveryLocator finds the type in the cluster discovery snapshot. It fails
// only when no discovery entry matches the descriptor's plural and scope,
// which happens with stale discovery caches, unavailable aggregated
// endpoints, or very recently created types.
type discoveryLocator struct {
	resources []*metav1.APIResourceList
}

func (l *discoveryLocator) name() string { return "discovery" }

func (l *discoveryLocator) locate(desc *Descriptor) (schema.GroupVersionResource, error) {
	for _, list := range l.resources {
		if list == nil {
			continue
		}
		gv, err := schema.ParseGroupVersion(list.GroupVersion)
		if err != nil || gv.Group != desc.Group {
			continue
		}
		for _, res := range list.APIResources {
			// Subresources carry a slash ("volumes/status") and never match.
			if res.Name != desc.Plural || strings.Contains(res.Name, "/") {
				continue
			}
			if res.Namespaced != desc.Namespaced {
				continue
			}
			return schema.GroupVersionResource{Group: gv.Group, Version: gv.Version, Resource: res.Name}, nil
		}
	}
	return schema.GroupVersionResource{}, apperrors.NewWithContext(
		apperrors.ErrCodeDiscoveryEntryNotFound,
		"no discovery entry matches the descriptor",
		map[string]any{"group": desc.Group, "plural": desc.Plural},
	)
}

// endpointLocator constructs the API endpoint directly from the descriptor
// without consulting discovery. It cannot fail to locate; listing itself may
// still fail per namespace.
type endpointLocator struct{}

func (endpointLocator) name() string { return "endpoint" }

func (endpointLocator) locate(desc *Descriptor) (schema.GroupVersionResource, error) {
	return schema.GroupVersionResource{Group: desc.Group, Version: desc.Version, Resource: desc.Plural}, nil
}

// CustomResourceResolver discovers and collects instances of arbitrary custom
// resource types. Resolution per descriptor is two-phase: a discovery-based
// lookup first, then a definition-based fallback that builds the endpoint
// from {group, version, plural}. Both phases contain per-namespace failures
// identically; one descriptor's failure never affects another's resolution.
type CustomResourceResolver struct {
	Dynamic   dynamic.Interface
	Discovery discovery.DiscoveryInterface

	// Limiter optionally throttles dynamic list calls. Nil means unlimited.
	Limiter *rate.Limiter

	// Snapshot is the discovery document used by phase 1. When nil it is
	// fetched once from Discovery on first use and shared, read-only, across
	// every descriptor resolved in this run. Pre-seed it in tests.
	Snapshot []*metav1.APIResourceList

	snapshotOnce sync.Once
}

// snapshot returns the per-run discovery document, fetching it at most once.
// Partial discovery results are tolerated: aggregated API servers routinely
// fail for single groups while the rest of the document stays usable.
func (r *CustomResourceResolver) snapshot() []*metav1.APIResourceList {
	r.snapshotOnce.Do(func() {
		if r.Snapshot != nil || r.Discovery == nil {
			return
		}
		lists, err := r.Discovery.ServerPreferredResources()
		if err != nil {
			slog.Debug("partial discovery results",
				slog.Int("groups", len(lists)),
				slog.String("error", err.Error()))
		}
		r.Snapshot = lists
	})
	return r.Snapshot
}

// Resolve collects all instances of the type described by desc from the
// target namespaces (or cluster-wide for cluster-scoped types). An empty
// result is not an error: the caller omits the type from the output map.
func (r *CustomResourceResolver) Resolve(ctx context.Context, desc *Descriptor, namespaces []string) Result {
	key := resource.CustomTypeKey(desc.Plural, desc.Group)
	chain := []locator{
		&discoveryLocator{resources: r.snapshot()},
		endpointLocator{},
	}

	var locateFailures []Failure
	for _, loc := range chain {
		gvr, err := loc.locate(desc)
		if err != nil {
			slog.Debug("custom resource location failed, trying next strategy",
				slog.String("type", key),
				slog.String("strategy", loc.name()),
				slog.String("error", err.Error()))
			locateFailures = append(locateFailures, Failure{Kind: key, Err: err})
			continue
		}

		slog.Debug("located custom resource type",
			slog.String("type", key),
			slog.String("strategy", loc.name()),
			slog.String("gvr", gvr.String()))

		res := r.listInstances(ctx, key, gvr, desc.Namespaced, namespaces)
		res.Failures = append(locateFailures, res.Failures...)
		return res
	}

	// Unreachable with the current chain: endpointLocator always locates.
	return Result{Failures: locateFailures}
}

// listInstances lists the located type once per target namespace, or once
// cluster-wide, with identical per-namespace failure containment in both
// cases.
func (r *CustomResourceResolver) listInstances(ctx context.Context, key string, gvr schema.GroupVersionResource, namespaced bool, namespaces []string) Result {
	var res Result

	if !namespaced {
		if err := r.wait(ctx); err != nil {
			res.fail(key, "", err)
			return res
		}
		list, err := r.Dynamic.Resource(gvr).List(ctx, metav1.ListOptions{})
		if err != nil {
			slog.Warn("failed to list cluster-scoped custom resources",
				slog.String("type", key),
				slog.String("error", err.Error()))
			res.fail(key, "", err)
			return res
		}
		for _, item := range list.Items {
			res.Records = append(res.Records, resource.FromUnstructured(item))
		}
		return res
	}

	for _, ns := range namespaces {
		if err := r.wait(ctx); err != nil {
			res.fail(key, ns, err)
			return res
		}
		list, err := r.Dynamic.Resource(gvr).Namespace(ns).List(ctx, metav1.ListOptions{})
		if err != nil {
			slog.Warn("failed to list custom resources in namespace",
				slog.String("type", key),
				slog.String("namespace", ns),
				slog.String("error", err.Error()))
			res.fail(key, ns, err)
			continue
		}
		for _, item := range list.Items {
			res.Records = append(res.Records, resource.FromUnstructured(item))
		}
	}
	return res
}

func (r *CustomResourceResolver) wait(ctx context.Context) error {
	if r.Limiter == nil {
		return ctx.Err()
	}
	return r.Limiter.Wait(ctx)
}
