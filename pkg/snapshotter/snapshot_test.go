/*
Copyright © 2025 Gagrio
SPDX-License-Identifier: Apache-2.0
*/
package snapshotter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	corev1 "k8s.io/api/core/v1"
	rbacv1 "k8s.io/api/rbac/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	dynamicfake "k8s.io/client-go/dynamic/fake"
	"k8s.io/client-go/kubernetes/fake"

	"github.com/Gagrio/suse-support-material/pkg/collector"
	apperrors "github.com/Gagrio/suse-support-material/pkg/errors"
	"github.com/Gagrio/suse-support-material/pkg/header"
)

var (
	crdGVR    = schema.GroupVersionResource{Group: "apiextensions.k8s.io", Version: "v1", Resource: "customresourcedefinitions"}
	volumeGVR = schema.GroupVersionResource{Group: "longhorn.io", Version: "v1beta2", Resource: "volumes"}
)

func fixtureClientset() *fake.Clientset {
	return fake.NewClientset(
		&corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "default"}},
		&corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "longhorn-system"}},
		&corev1.Pod{ObjectMeta: metav1.ObjectMeta{Namespace: "default", Name: "web"}},
		&corev1.Node{ObjectMeta: metav1.ObjectMeta{Name: "node-1"}},
	)
}

func fixtureDynamic() *dynamicfake.FakeDynamicClient {
	crdDoc := &unstructured.Unstructured{Object: map[string]any{
		"apiVersion": "apiextensions.k8s.io/v1",
		"kind":       "CustomResourceDefinition",
		"metadata":   map[string]any{"name": "volumes.longhorn.io"},
		"spec": map[string]any{
			"group": "longhorn.io",
			"names": map[string]any{"plural": "volumes", "kind": "Volume"},
			"scope": "Namespaced",
			"versions": []any{
				map[string]any{"name": "v1beta2", "served": true},
			},
		},
	}}
	volume := &unstructured.Unstructured{Object: map[string]any{
		"apiVersion": "longhorn.io/v1beta2",
		"kind":       "Volume",
		"metadata":   map[string]any{"namespace": "default", "name": "pvc-1"},
	}}
	return dynamicfake.NewSimpleDynamicClientWithCustomListKinds(runtime.NewScheme(),
		map[schema.GroupVersionResource]string{
			crdGVR:    "CustomResourceDefinitionList",
			volumeGVR: "VolumeList",
		},
		crdDoc, volume)
}

func TestCaptureFullPipeline(t *testing.T) {
	clientset := fixtureClientset()
	s := &ClusterSnapshotter{
		Version:    "test",
		ClientSet:  clientset,
		Dynamic:    fixtureDynamic(),
		Discovery:  clientset.Discovery(),
		Namespaces: []string{"default"},
	}

	snap, err := s.Capture(context.TODO())
	assert.NoError(t, err)

	assert.Equal(t, header.KindSupportBundle, snap.GetKind())
	assert.Equal(t, []string{"default"}, snap.Namespaces)

	assert.Len(t, snap.NamespacedResources[collector.KeyPods], 1)
	assert.Len(t, snap.ClusterResources[collector.KeyNodes], 1)
	assert.Len(t, snap.ClusterResources[collector.KeyCustomResourceDefinitions], 1)

	// custom resource instances keyed by "<plural>.<group>"
	assert.Len(t, snap.NamespacedResources["volumes.longhorn.io"], 1)

	assert.Positive(t, snap.Sanitization.Processed)
	assert.Zero(t, snap.Sanitization.Skipped)

	// the Longhorn CRD drives the component analysis
	assert.Equal(t, 1, snap.Analysis.Total)
	assert.Equal(t, "SUSE Storage (Longhorn)", snap.Analysis.Observations[0].Name)
}

func TestCaptureSanitizesByDefault(t *testing.T) {
	clientset := fixtureClientset()
	s := &ClusterSnapshotter{
		ClientSet:  clientset,
		Dynamic:    fixtureDynamic(),
		Discovery:  clientset.Discovery(),
		Namespaces: []string{"default"},
	}

	snap, err := s.Capture(context.TODO())
	assert.NoError(t, err)

	pod := snap.NamespacedResources[collector.KeyPods][0]
	assert.NotContains(t, pod.Object, "status")
}

func TestCaptureRawKeepsStatus(t *testing.T) {
	clientset := fixtureClientset()
	s := &ClusterSnapshotter{
		ClientSet:  clientset,
		Dynamic:    fixtureDynamic(),
		Discovery:  clientset.Discovery(),
		Namespaces: []string{"default"},
		Raw:        true,
	}

	snap, err := s.Capture(context.TODO())
	assert.NoError(t, err)

	pod := snap.NamespacedResources[collector.KeyPods][0]
	assert.Contains(t, pod.Object, "status")
	assert.Zero(t, snap.Sanitization.Processed)
}

func TestCaptureDetectsDistributionBeforeSanitization(t *testing.T) {
	clientset := fake.NewClientset(
		&corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: "default"}},
		&corev1.Node{
			ObjectMeta: metav1.ObjectMeta{Name: "node-1"},
			Status: corev1.NodeStatus{
				NodeInfo: corev1.NodeSystemInfo{KubeletVersion: "v1.30.8+k3s1"},
			},
		},
		&rbacv1.ClusterRole{ObjectMeta: metav1.ObjectMeta{Name: "system:k3s-controller"}},
	)
	s := &ClusterSnapshotter{
		ClientSet:  clientset,
		Dynamic:    fixtureDynamic(),
		Discovery:  clientset.Discovery(),
		Namespaces: []string{"default"},
	}

	snap, err := s.Capture(context.TODO())
	assert.NoError(t, err)

	// the analysis keeps the kubelet version even though the sanitizer
	// strips the node status from the written documents
	node := snap.ClusterResources[collector.KeyNodes][0]
	assert.NotContains(t, node.Object, "status")

	assert.Equal(t, "K3s", snap.Analysis.Observations[0].Name)
	assert.Equal(t, "v1.30.8+k3s1", snap.Analysis.Observations[0].Version)
	assert.Equal(t, "K3s", snap.Analysis.Distribution)
	assert.Equal(t, "Downstream Cluster", snap.Analysis.Topology)
}

func TestCaptureFailsWithoutValidNamespaces(t *testing.T) {
	clientset := fixtureClientset()
	s := &ClusterSnapshotter{
		ClientSet:  clientset,
		Dynamic:    fixtureDynamic(),
		Discovery:  clientset.Discovery(),
		Namespaces: []string{"does-not-exist"},
	}

	_, err := s.Capture(context.TODO())
	assert.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeNoValidNamespaces))
}
