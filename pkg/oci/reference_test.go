/*
Copyright © 2025 Gagrio
SPDX-License-Identifier: Apache-2.0
*/
package oci

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseOutputTarget(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantIsOCI bool
		wantReg   string
		wantRepo  string
		wantTag   string
		wantDir   string
		wantErr   bool
	}{
		{
			name:    "local path",
			input:   "./tmp",
			wantDir: "./tmp",
		},
		{
			name:      "oci with tag",
			input:     "oci://ghcr.io/gagrio/bundles:v0.1.0",
			wantIsOCI: true,
			wantReg:   "ghcr.io",
			wantRepo:  "gagrio/bundles",
			wantTag:   "v0.1.0",
		},
		{
			name:      "oci without tag",
			input:     "oci://localhost:5000/bundles",
			wantIsOCI: true,
			wantReg:   "localhost:5000",
			wantRepo:  "bundles",
		},
		{
			name:    "invalid oci reference",
			input:   "oci://UPPERCASE/IS/INVALID:::",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := ParseOutputTarget(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantIsOCI, ref.IsOCI)
			assert.Equal(t, tt.wantReg, ref.Registry)
			assert.Equal(t, tt.wantRepo, ref.Repository)
			assert.Equal(t, tt.wantTag, ref.Tag)
			assert.Equal(t, tt.wantDir, ref.LocalPath)
		})
	}
}

func TestReferenceString(t *testing.T) {
	ref := &Reference{IsOCI: true, Registry: "ghcr.io", Repository: "gagrio/bundles", Tag: "v0.1.0"}
	assert.Equal(t, "oci://ghcr.io/gagrio/bundles:v0.1.0", ref.String())
	assert.Equal(t, "ghcr.io/gagrio/bundles:v0.1.0", ref.ImageReference())

	untagged := &Reference{IsOCI: true, Registry: "ghcr.io", Repository: "gagrio/bundles"}
	assert.Equal(t, "oci://ghcr.io/gagrio/bundles", untagged.String())

	local := &Reference{LocalPath: "./out"}
	assert.Equal(t, "./out", local.String())
	assert.Empty(t, local.ImageReference())
}

func TestReferenceWithTag(t *testing.T) {
	ref := &Reference{IsOCI: true, Registry: "ghcr.io", Repository: "gagrio/bundles"}
	tagged := ref.WithTag("latest")
	assert.Equal(t, "latest", tagged.Tag)
	assert.Empty(t, ref.Tag)

	local := &Reference{LocalPath: "./out"}
	assert.Same(t, local, local.WithTag("latest"))
}
