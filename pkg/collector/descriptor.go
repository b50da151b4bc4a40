/*
Copyright © 2025 Gagrio
SPDX-License-Identifier: Apache-2.0
*/
package collector

import (
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	apperrors "github.com/Gagrio/suse-support-material/pkg/errors"
)

// Descriptor identifies one custom resource type well enough to list its
// instances: API group, a served version, the plural resource name, and the
// scope. Descriptors are derived once per CRD document per run.
type Descriptor struct {
	Group      string
	Version    string
	Plural     string
	Namespaced bool
}

// DescriptorFromDocument parses a CustomResourceDefinition document into a
// Descriptor. The version is taken from the first entry in the definition's
// version list marked "served"; if metadata.name, spec.names.plural, or a
// served version is missing, the document fails with MALFORMED_DESCRIPTOR and
// the caller skips the type.
func DescriptorFromDocument(doc map[string]any) (*Descriptor, error) {
	name, _, _ := unstructured.NestedString(doc, "metadata", "name")
	if name == "" {
		return nil, apperrors.New(apperrors.ErrCodeMalformedDescriptor,
			"custom resource definition has no metadata.name")
	}

	plural, _, _ := unstructured.NestedString(doc, "spec", "names", "plural")
	if plural == "" {
		return nil, apperrors.NewWithContext(apperrors.ErrCodeMalformedDescriptor,
			"custom resource definition has no spec.names.plural",
			map[string]any{"crd": name})
	}

	group, _, _ := unstructured.NestedString(doc, "spec", "group")
	scope, _, _ := unstructured.NestedString(doc, "spec", "scope")

	version, ok := firstServedVersion(doc)
	if !ok {
		return nil, apperrors.NewWithContext(apperrors.ErrCodeMalformedDescriptor,
			"custom resource definition has no served version",
			map[string]any{"crd": name})
	}

	return &Descriptor{
		Group:      group,
		Version:    version,
		Plural:     plural,
		Namespaced: scope == "Namespaced",
	}, nil
}

// firstServedVersion walks spec.versions in order and returns the name of the
// first entry marked served.
func firstServedVersion(doc map[string]any) (string, bool) {
	versions, found, err := unstructured.NestedSlice(doc, "spec", "versions")
	if err != nil || !found {
		return "", false
	}

	for _, entry := range versions {
		version, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		served, _, _ := unstructured.NestedBool(version, "served")
		name, _, _ := unstructured.NestedString(version, "name")
		if served && name != "" {
			return name, true
		}
	}
	return "", false
}
