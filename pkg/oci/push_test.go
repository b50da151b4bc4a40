/*
Copyright © 2025 Gagrio
SPDX-License-Identifier: Apache-2.0
*/
package oci

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPushRequiresTag(t *testing.T) {
	_, err := Push(context.TODO(), PushOptions{
		BundleDir:  t.TempDir(),
		Registry:   "ghcr.io",
		Repository: "gagrio/bundles",
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "tag is required")
}

func TestPushRejectsInvalidReference(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, os.WriteFile(filepath.Join(dir, "collection-summary.yaml"), []byte("tool: ketchup\n"), 0o644))

	_, err := Push(context.TODO(), PushOptions{
		BundleDir:  dir,
		Registry:   "ghcr.io",
		Repository: "Invalid Repo Name",
		Tag:        "v0.1.0",
	})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid image reference")
}

func TestNewAuthClient(t *testing.T) {
	client := newAuthClient(false, true)
	assert.NotNil(t, client)
	assert.NotNil(t, client.Cache)

	plain := newAuthClient(true, false)
	assert.NotNil(t, plain)
}
