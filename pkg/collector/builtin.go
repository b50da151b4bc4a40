/*
Copyright © 2025 Gagrio
SPDX-License-Identifier: Apache-2.0
*/
package collector

import (
	"context"
	"log/slog"

	"golang.org/x/time/rate"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"

	"github.com/Gagrio/suse-support-material/pkg/resource"
)

// Resource-type keys used in the collected resource maps. Built-in kinds use
// their lowercase plural name; custom types use "<plural>.<group>".
const (
	KeyPods                      = "pods"
	KeyServices                  = "services"
	KeyDeployments               = "deployments"
	KeyConfigMaps                = "configmaps"
	KeySecrets                   = "secrets"
	KeyIngresses                 = "ingresses"
	KeyPersistentVolumeClaims    = "persistentvolumeclaims"
	KeyNetworkPolicies           = "networkpolicies"
	KeyNodes                     = "nodes"
	KeyPersistentVolumes         = "persistentvolumes"
	KeyStorageClasses            = "storageclasses"
	KeyClusterRoles              = "clusterroles"
	KeyCustomResourceDefinitions = "customresourcedefinitions"
)

// crdGVR addresses CustomResourceDefinition objects through the dynamic
// client, keeping them as raw documents like every other captured resource.
var crdGVR = schema.GroupVersionResource{
	Group:    "apiextensions.k8s.io",
	Version:  "v1",
	Resource: "customresourcedefinitions",
}

// Collector lists built-in resource kinds, namespaced or cluster-scoped.
// Every per-namespace failure is contained: it is logged, recorded in the
// Result, and never suppresses another namespace's success.
type Collector struct {
	ClientSet kubernetes.Interface

	// Dynamic is used for kinds without a typed client (CRD documents).
	Dynamic dynamic.Interface

	// Limiter optionally throttles list calls against the API server.
	// A nil limiter means no throttling.
	Limiter *rate.Limiter
}

// wait blocks until the rate limiter admits another API call.
func (c *Collector) wait(ctx context.Context) error {
	if c.Limiter == nil {
		return ctx.Err()
	}
	return c.Limiter.Wait(ctx)
}

// listFunc lists one namespace's worth of records for a single kind.
type listFunc func(ctx context.Context, namespace string) ([]resource.Record, error)

// collectNamespaced issues one list call per namespace and concatenates the
// results. One namespace's failure never aborts the loop.
func (c *Collector) collectNamespaced(ctx context.Context, key string, namespaces []string, list listFunc) Result {
	var res Result
	for _, ns := range namespaces {
		if err := c.wait(ctx); err != nil {
			res.fail(key, ns, err)
			return res
		}

		records, err := list(ctx, ns)
		if err != nil {
			slog.Warn("failed to collect resources from namespace",
				slog.String("kind", key),
				slog.String("namespace", ns),
				slog.String("error", err.Error()))
			res.fail(key, ns, err)
			continue
		}

		res.Records = append(res.Records, records...)
		slog.Debug("collected namespaced resources",
			slog.String("kind", key),
			slog.String("namespace", ns),
			slog.Int("count", len(records)))
	}
	return res
}

// collectCluster issues a single cluster-scoped list call. Cluster-scoped
// absence is not fatal: a failure yields an empty record list plus a recorded
// failure, never an error.
func (c *Collector) collectCluster(ctx context.Context, key string, list func(ctx context.Context) ([]resource.Record, error)) Result {
	var res Result
	if err := c.wait(ctx); err != nil {
		res.fail(key, "", err)
		return res
	}

	records, err := list(ctx)
	if err != nil {
		slog.Warn("failed to collect cluster-scoped resources",
			slog.String("kind", key),
			slog.String("error", err.Error()))
		res.fail(key, "", err)
		return res
	}

	res.Records = records
	slog.Debug("collected cluster-scoped resources",
		slog.String("kind", key),
		slog.Int("count", len(records)))
	return res
}

// records converts a typed item slice into resource records, stamping the
// declared kind and apiVersion.
func records[T any, PT interface {
	*T
	runtime.Object
}](items []T, kind, apiVersion string) []resource.Record {
	out := make([]resource.Record, 0, len(items))
	for i := range items {
		rec, err := resource.FromTyped(PT(&items[i]), kind, apiVersion)
		if err != nil {
			slog.Warn("skipping unconvertible object",
				slog.String("kind", kind),
				slog.String("error", err.Error()))
			continue
		}
		out = append(out, rec)
	}
	return out
}

// CollectPods lists pods in each target namespace.
func (c *Collector) CollectPods(ctx context.Context, namespaces []string) Result {
	return c.collectNamespaced(ctx, KeyPods, namespaces, func(ctx context.Context, ns string) ([]resource.Record, error) {
		list, err := c.ClientSet.CoreV1().Pods(ns).List(ctx, metav1.ListOptions{})
		if err != nil {
			return nil, err
		}
		return records(list.Items, "Pod", "v1"), nil
	})
}

// CollectServices lists services in each target namespace.
func (c *Collector) CollectServices(ctx context.Context, namespaces []string) Result {
	return c.collectNamespaced(ctx, KeyServices, namespaces, func(ctx context.Context, ns string) ([]resource.Record, error) {
		list, err := c.ClientSet.CoreV1().Services(ns).List(ctx, metav1.ListOptions{})
		if err != nil {
			return nil, err
		}
		return records(list.Items, "Service", "v1"), nil
	})
}

// CollectDeployments lists deployments in each target namespace.
func (c *Collector) CollectDeployments(ctx context.Context, namespaces []string) Result {
	return c.collectNamespaced(ctx, KeyDeployments, namespaces, func(ctx context.Context, ns string) ([]resource.Record, error) {
		list, err := c.ClientSet.AppsV1().Deployments(ns).List(ctx, metav1.ListOptions{})
		if err != nil {
			return nil, err
		}
		return records(list.Items, "Deployment", "apps/v1"), nil
	})
}

// CollectConfigMaps lists configmaps in each target namespace.
func (c *Collector) CollectConfigMaps(ctx context.Context, namespaces []string) Result {
	return c.collectNamespaced(ctx, KeyConfigMaps, namespaces, func(ctx context.Context, ns string) ([]resource.Record, error) {
		list, err := c.ClientSet.CoreV1().ConfigMaps(ns).List(ctx, metav1.ListOptions{})
		if err != nil {
			return nil, err
		}
		return records(list.Items, "ConfigMap", "v1"), nil
	})
}

// CollectSecrets lists secrets in each target namespace.
func (c *Collector) CollectSecrets(ctx context.Context, namespaces []string) Result {
	return c.collectNamespaced(ctx, KeySecrets, namespaces, func(ctx context.Context, ns string) ([]resource.Record, error) {
		list, err := c.ClientSet.CoreV1().Secrets(ns).List(ctx, metav1.ListOptions{})
		if err != nil {
			return nil, err
		}
		return records(list.Items, "Secret", "v1"), nil
	})
}

// CollectIngresses lists ingresses in each target namespace.
func (c *Collector) CollectIngresses(ctx context.Context, namespaces []string) Result {
	return c.collectNamespaced(ctx, KeyIngresses, namespaces, func(ctx context.Context, ns string) ([]resource.Record, error) {
		list, err := c.ClientSet.NetworkingV1().Ingresses(ns).List(ctx, metav1.ListOptions{})
		if err != nil {
			return nil, err
		}
		return records(list.Items, "Ingress", "networking.k8s.io/v1"), nil
	})
}

// CollectPersistentVolumeClaims lists PVCs in each target namespace.
func (c *Collector) CollectPersistentVolumeClaims(ctx context.Context, namespaces []string) Result {
	return c.collectNamespaced(ctx, KeyPersistentVolumeClaims, namespaces, func(ctx context.Context, ns string) ([]resource.Record, error) {
		list, err := c.ClientSet.CoreV1().PersistentVolumeClaims(ns).List(ctx, metav1.ListOptions{})
		if err != nil {
			return nil, err
		}
		return records(list.Items, "PersistentVolumeClaim", "v1"), nil
	})
}

// CollectNetworkPolicies lists network policies in each target namespace.
func (c *Collector) CollectNetworkPolicies(ctx context.Context, namespaces []string) Result {
	return c.collectNamespaced(ctx, KeyNetworkPolicies, namespaces, func(ctx context.Context, ns string) ([]resource.Record, error) {
		list, err := c.ClientSet.NetworkingV1().NetworkPolicies(ns).List(ctx, metav1.ListOptions{})
		if err != nil {
			return nil, err
		}
		return records(list.Items, "NetworkPolicy", "networking.k8s.io/v1"), nil
	})
}

// CollectNodes lists all cluster nodes.
func (c *Collector) CollectNodes(ctx context.Context) Result {
	return c.collectCluster(ctx, KeyNodes, func(ctx context.Context) ([]resource.Record, error) {
		list, err := c.ClientSet.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
		if err != nil {
			return nil, err
		}
		return records(list.Items, "Node", "v1"), nil
	})
}

// CollectPersistentVolumes lists all persistent volumes.
func (c *Collector) CollectPersistentVolumes(ctx context.Context) Result {
	return c.collectCluster(ctx, KeyPersistentVolumes, func(ctx context.Context) ([]resource.Record, error) {
		list, err := c.ClientSet.CoreV1().PersistentVolumes().List(ctx, metav1.ListOptions{})
		if err != nil {
			return nil, err
		}
		return records(list.Items, "PersistentVolume", "v1"), nil
	})
}

// CollectStorageClasses lists all storage classes.
func (c *Collector) CollectStorageClasses(ctx context.Context) Result {
	return c.collectCluster(ctx, KeyStorageClasses, func(ctx context.Context) ([]resource.Record, error) {
		list, err := c.ClientSet.StorageV1().StorageClasses().List(ctx, metav1.ListOptions{})
		if err != nil {
			return nil, err
		}
		return records(list.Items, "StorageClass", "storage.k8s.io/v1"), nil
	})
}

// CollectClusterRoles lists all cluster roles.
func (c *Collector) CollectClusterRoles(ctx context.Context) Result {
	return c.collectCluster(ctx, KeyClusterRoles, func(ctx context.Context) ([]resource.Record, error) {
		list, err := c.ClientSet.RbacV1().ClusterRoles().List(ctx, metav1.ListOptions{})
		if err != nil {
			return nil, err
		}
		return records(list.Items, "ClusterRole", "rbac.authorization.k8s.io/v1"), nil
	})
}

// CollectCustomResourceDefinitions lists all CRD documents through the
// dynamic client, keeping them as raw structured documents.
func (c *Collector) CollectCustomResourceDefinitions(ctx context.Context) Result {
	return c.collectCluster(ctx, KeyCustomResourceDefinitions, func(ctx context.Context) ([]resource.Record, error) {
		list, err := c.Dynamic.Resource(crdGVR).List(ctx, metav1.ListOptions{})
		if err != nil {
			return nil, err
		}
		out := make([]resource.Record, 0, len(list.Items))
		for _, item := range list.Items {
			out = append(out, resource.FromUnstructured(item))
		}
		return out, nil
	})
}
