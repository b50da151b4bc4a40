/*
Copyright © 2025 Gagrio
SPDX-License-Identifier: Apache-2.0
*/

// Package resource defines the records exchanged between the collectors, the
// sanitizer, the component detector, and the bundle writer.
package resource

import (
	"fmt"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
)

// Record is a single captured cluster resource. The identity of a record is
// (Kind, Namespace, Name); Namespace is empty for cluster-scoped resources.
// Records are immutable once produced; transforms operate on copies.
type Record struct {
	// Kind is the declared Kubernetes kind (e.g. "Pod", "ClusterRole").
	Kind string `json:"kind" yaml:"kind"`

	// Namespace is the resource namespace, empty for cluster scope.
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`

	// Name is the resource name.
	Name string `json:"name" yaml:"name"`

	// Object is the raw structured document as returned by the API server.
	Object map[string]any `json:"object" yaml:"object"`
}

// ID returns a human-readable identifier: "kind/name" for cluster-scoped
// records, "kind/name (namespace)" for namespaced ones.
func (r Record) ID() string {
	if r.Namespace == "" {
		return fmt.Sprintf("%s/%s", r.Kind, r.Name)
	}
	return fmt.Sprintf("%s/%s (%s)", r.Kind, r.Name, r.Namespace)
}

// Map associates a resource-type key with the records collected for it.
// Built-in kinds use their lowercase plural name (e.g. "pods"); custom types
// use "<plural>.<group>".
type Map map[string][]Record

// Total returns the number of records across all resource types.
func (m Map) Total() int {
	n := 0
	for _, records := range m {
		n += len(records)
	}
	return n
}

// Add appends records under the given resource-type key, skipping empty sets
// so absent types stay out of the map entirely.
func (m Map) Add(key string, records []Record) {
	if len(records) == 0 {
		return
	}
	m[key] = append(m[key], records...)
}

// CustomTypeKey returns the map key used for a custom resource type.
func CustomTypeKey(plural, group string) string {
	if group == "" {
		return plural
	}
	return fmt.Sprintf("%s.%s", plural, group)
}

// FromTyped converts a typed API object into a Record, stamping the declared
// kind and apiVersion into the document. List calls return objects with empty
// TypeMeta, so the caller supplies both.
func FromTyped(obj runtime.Object, kind, apiVersion string) (Record, error) {
	doc, err := runtime.DefaultUnstructuredConverter.ToUnstructured(obj)
	if err != nil {
		return Record{}, fmt.Errorf("failed to convert %s to unstructured: %w", kind, err)
	}
	doc["kind"] = kind
	doc["apiVersion"] = apiVersion

	u := unstructured.Unstructured{Object: doc}
	return Record{
		Kind:      kind,
		Namespace: u.GetNamespace(),
		Name:      u.GetName(),
		Object:    doc,
	}, nil
}

// FromUnstructured converts an unstructured API object into a Record.
func FromUnstructured(u unstructured.Unstructured) Record {
	return Record{
		Kind:      u.GetKind(),
		Namespace: u.GetNamespace(),
		Name:      u.GetName(),
		Object:    u.Object,
	}
}
