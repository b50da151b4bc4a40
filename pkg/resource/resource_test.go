/*
Copyright © 2025 Gagrio
SPDX-License-Identifier: Apache-2.0
*/
package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

func TestRecordID(t *testing.T) {
	namespaced := Record{Kind: "Pod", Namespace: "default", Name: "web-0"}
	assert.Equal(t, "Pod/web-0 (default)", namespaced.ID())

	clusterScoped := Record{Kind: "Node", Name: "edge-1"}
	assert.Equal(t, "Node/edge-1", clusterScoped.ID())
}

func TestFromTyped(t *testing.T) {
	pod := &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{Name: "web-0", Namespace: "default"},
		Spec: corev1.PodSpec{
			Containers: []corev1.Container{{Name: "web", Image: "nginx:1.27"}},
		},
	}

	rec, err := FromTyped(pod, "Pod", "v1")
	assert.NoError(t, err)
	assert.Equal(t, "Pod", rec.Kind)
	assert.Equal(t, "default", rec.Namespace)
	assert.Equal(t, "web-0", rec.Name)
	assert.Equal(t, "Pod", rec.Object["kind"])
	assert.Equal(t, "v1", rec.Object["apiVersion"])
}

func TestFromUnstructured(t *testing.T) {
	u := unstructured.Unstructured{Object: map[string]any{
		"apiVersion": "longhorn.io/v1beta2",
		"kind":       "Volume",
		"metadata": map[string]any{
			"name":      "pvc-1234",
			"namespace": "longhorn-system",
		},
	}}

	rec := FromUnstructured(u)
	assert.Equal(t, "Volume", rec.Kind)
	assert.Equal(t, "longhorn-system", rec.Namespace)
	assert.Equal(t, "pvc-1234", rec.Name)
}

func TestMapAddAndTotal(t *testing.T) {
	m := Map{}
	m.Add("pods", []Record{{Kind: "Pod", Name: "a"}, {Kind: "Pod", Name: "b"}})
	m.Add("services", nil) // empty sets stay out

	assert.Equal(t, 2, m.Total())
	assert.Contains(t, m, "pods")
	assert.NotContains(t, m, "services")
}

func TestCustomTypeKey(t *testing.T) {
	assert.Equal(t, "volumes.longhorn.io", CustomTypeKey("volumes", "longhorn.io"))
	assert.Equal(t, "examples", CustomTypeKey("examples", ""))
}
