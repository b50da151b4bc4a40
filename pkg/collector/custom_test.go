/*
Copyright © 2025 Gagrio
SPDX-License-Identifier: Apache-2.0
*/
package collector

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
	dynamicfake "k8s.io/client-go/dynamic/fake"
	k8stesting "k8s.io/client-go/testing"

	apperrors "github.com/Gagrio/suse-support-material/pkg/errors"
	"github.com/Gagrio/suse-support-material/pkg/resource"
)

var volumeGVR = schema.GroupVersionResource{Group: "longhorn.io", Version: "v1beta2", Resource: "volumes"}

func volumeFixture(namespace, name string) *unstructured.Unstructured {
	return &unstructured.Unstructured{Object: map[string]any{
		"apiVersion": "longhorn.io/v1beta2",
		"kind":       "Volume",
		"metadata":   map[string]any{"namespace": namespace, "name": name},
	}}
}

func fakeVolumeDynamic(objects ...runtime.Object) dynamic.Interface {
	return dynamicfake.NewSimpleDynamicClientWithCustomListKinds(runtime.NewScheme(),
		map[schema.GroupVersionResource]string{volumeGVR: "VolumeList"},
		objects...)
}

func volumeDescriptor() *Descriptor {
	return &Descriptor{Group: "longhorn.io", Version: "v1beta2", Plural: "volumes", Namespaced: true}
}

func volumeDiscovery() []*metav1.APIResourceList {
	return []*metav1.APIResourceList{{
		GroupVersion: "longhorn.io/v1beta2",
		APIResources: []metav1.APIResource{
			{Name: "volumes", Namespaced: true, Kind: "Volume"},
			{Name: "volumes/status", Namespaced: true, Kind: "Volume"},
		},
	}}
}

func recordIDs(records []resource.Record) []string {
	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ID())
	}
	return ids
}

// Both resolution phases must independently reach the same instance set for
// the same live objects.
func TestResolvePhasesAgree(t *testing.T) {
	objects := []runtime.Object{
		volumeFixture("longhorn-system", "pvc-1"),
		volumeFixture("longhorn-system", "pvc-2"),
	}
	namespaces := []string{"longhorn-system"}

	viaDiscovery := &CustomResourceResolver{
		Dynamic:  fakeVolumeDynamic(objects...),
		Snapshot: volumeDiscovery(),
	}
	viaEndpoint := &CustomResourceResolver{
		Dynamic:  fakeVolumeDynamic(objects...),
		Snapshot: []*metav1.APIResourceList{},
	}

	first := viaDiscovery.Resolve(context.TODO(), volumeDescriptor(), namespaces)
	second := viaEndpoint.Resolve(context.TODO(), volumeDescriptor(), namespaces)

	assert.Len(t, first.Records, 2)
	assert.ElementsMatch(t, recordIDs(first.Records), recordIDs(second.Records))
	assert.Empty(t, first.Failures)
}

func TestResolveFallsBackWithoutDiscoveryEntry(t *testing.T) {
	resolver := &CustomResourceResolver{
		Dynamic:  fakeVolumeDynamic(volumeFixture("longhorn-system", "pvc-1")),
		Snapshot: []*metav1.APIResourceList{},
	}

	res := resolver.Resolve(context.TODO(), volumeDescriptor(), []string{"longhorn-system"})

	assert.Len(t, res.Records, 1)
	// the discovery miss is carried for diagnostics even though fallback worked
	assert.Len(t, res.Failures, 1)
	assert.True(t, apperrors.HasCode(res.Failures[0].Err, apperrors.ErrCodeDiscoveryEntryNotFound))
}

func TestResolveContainsNamespaceFailure(t *testing.T) {
	client := dynamicfake.NewSimpleDynamicClientWithCustomListKinds(runtime.NewScheme(),
		map[schema.GroupVersionResource]string{volumeGVR: "VolumeList"},
		volumeFixture("longhorn-system", "pvc-1"))
	client.PrependReactor("list", "volumes", func(action k8stesting.Action) (bool, runtime.Object, error) {
		if action.GetNamespace() == "forbidden" {
			return true, nil, errors.New("volumes is forbidden")
		}
		return false, nil, nil
	})

	resolver := &CustomResourceResolver{Dynamic: client, Snapshot: volumeDiscovery()}
	res := resolver.Resolve(context.TODO(), volumeDescriptor(), []string{"forbidden", "longhorn-system"})

	assert.Len(t, res.Records, 1)
	assert.Len(t, res.Failures, 1)
	assert.Equal(t, "forbidden", res.Failures[0].Namespace)
	assert.Equal(t, "volumes.longhorn.io", res.Failures[0].Kind)
}

func TestResolveClusterScoped(t *testing.T) {
	registrationGVR := schema.GroupVersionResource{
		Group: "elemental.cattle.io", Version: "v1beta1", Resource: "machineregistrations",
	}
	client := dynamicfake.NewSimpleDynamicClientWithCustomListKinds(runtime.NewScheme(),
		map[schema.GroupVersionResource]string{registrationGVR: "MachineRegistrationList"},
		&unstructured.Unstructured{Object: map[string]any{
			"apiVersion": "elemental.cattle.io/v1beta1",
			"kind":       "MachineRegistration",
			"metadata":   map[string]any{"name": "fleet-default"},
		}})

	resolver := &CustomResourceResolver{Dynamic: client, Snapshot: []*metav1.APIResourceList{}}
	desc := &Descriptor{Group: "elemental.cattle.io", Version: "v1beta1", Plural: "machineregistrations"}

	res := resolver.Resolve(context.TODO(), desc, []string{"default"})
	assert.Len(t, res.Records, 1)
	assert.Equal(t, "MachineRegistration/fleet-default", res.Records[0].ID())
}

func TestDiscoveryLocatorScopeMismatch(t *testing.T) {
	loc := &discoveryLocator{resources: volumeDiscovery()}
	desc := volumeDescriptor()
	desc.Namespaced = false

	_, err := loc.locate(desc)
	assert.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeDiscoveryEntryNotFound))
}
