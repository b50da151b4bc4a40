/*
Copyright © 2025 Gagrio
SPDX-License-Identifier: Apache-2.0
*/
package collector

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/Gagrio/suse-support-material/pkg/errors"
)

func TestDescriptorFromDocument(t *testing.T) {
	desc, err := DescriptorFromDocument(crdDocument("volumes.longhorn.io", "longhorn.io", "volumes", "Volume").Object)
	assert.NoError(t, err)
	assert.Equal(t, "longhorn.io", desc.Group)
	assert.Equal(t, "v1beta2", desc.Version)
	assert.Equal(t, "volumes", desc.Plural)
	assert.True(t, desc.Namespaced)
}

func TestDescriptorFromDocumentClusterScoped(t *testing.T) {
	doc := crdDocument("machineregistrations.elemental.cattle.io", "elemental.cattle.io", "machineregistrations", "MachineRegistration").Object
	doc["spec"].(map[string]any)["scope"] = "Cluster"

	desc, err := DescriptorFromDocument(doc)
	assert.NoError(t, err)
	assert.False(t, desc.Namespaced)
}

func TestDescriptorFromDocumentSkipsUnservedVersions(t *testing.T) {
	doc := crdDocument("volumes.longhorn.io", "longhorn.io", "volumes", "Volume").Object
	doc["spec"].(map[string]any)["versions"] = []any{
		map[string]any{"name": "v1beta1", "served": false},
		map[string]any{"name": "v1beta2", "served": true},
	}

	desc, err := DescriptorFromDocument(doc)
	assert.NoError(t, err)
	assert.Equal(t, "v1beta2", desc.Version)
}

func TestDescriptorFromDocumentNoServedVersion(t *testing.T) {
	doc := crdDocument("volumes.longhorn.io", "longhorn.io", "volumes", "Volume").Object
	doc["spec"].(map[string]any)["versions"] = []any{
		map[string]any{"name": "v1beta1", "served": false},
	}

	_, err := DescriptorFromDocument(doc)
	assert.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeMalformedDescriptor))
}

func TestDescriptorFromDocumentMissingPlural(t *testing.T) {
	doc := crdDocument("volumes.longhorn.io", "longhorn.io", "volumes", "Volume").Object
	delete(doc["spec"].(map[string]any)["names"].(map[string]any), "plural")

	_, err := DescriptorFromDocument(doc)
	assert.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeMalformedDescriptor))
}

func TestDescriptorFromDocumentMissingName(t *testing.T) {
	_, err := DescriptorFromDocument(map[string]any{"spec": map[string]any{}})
	assert.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeMalformedDescriptor))
}
