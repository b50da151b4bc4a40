/*
Copyright © 2025 Gagrio
SPDX-License-Identifier: Apache-2.0
*/

// Package k8s provides Kubernetes integration for ketchup.
//
// # Sub-packages
//
// client: Singleton Kubernetes client with automatic authentication
//
//	clientset, config, err := client.GetKubeClient()
//	if err != nil {
//	    return err
//	}
//	dyn, err := client.BuildDynamicClient(config)
//
// # Architecture
//
//   - Singleton Pattern: the client package uses sync.Once so one shared
//     client instance serves the whole process, preventing connection
//     exhaustion and reducing API server load.
//
//   - Automatic Authentication: the client detects whether it is running
//     in-cluster (service account) or out-of-cluster (kubeconfig file,
//     discovered via KUBECONFIG or ~/.kube/config).
//
//   - Three client surfaces: the typed clientset for built-in kinds, the
//     dynamic client for custom resource instances, and the discovery
//     client for resolving served API resources.
package k8s
