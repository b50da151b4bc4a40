/*
Copyright © 2025 Gagrio
SPDX-License-Identifier: Apache-2.0
*/
package client

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const kubeconfigFixture = `apiVersion: v1
kind: Config
clusters:
- cluster:
    server: https://127.0.0.1:6443
  name: test
contexts:
- context:
    cluster: test
    user: test
  name: test
current-context: test
users:
- name: test
  user:
    token: test-token
`

func writeKubeconfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "kubeconfig")
	require.NoError(t, os.WriteFile(path, []byte(kubeconfigFixture), 0o600))
	return path
}

func TestBuildKubeClientFromPath(t *testing.T) {
	path := writeKubeconfig(t)

	client, config, err := BuildKubeClient(path)
	assert.NoError(t, err)
	assert.NotNil(t, client)
	require.NotNil(t, config)
	assert.Equal(t, "https://127.0.0.1:6443", config.Host)
}

func TestBuildKubeClientFromEnv(t *testing.T) {
	t.Setenv("KUBECONFIG", writeKubeconfig(t))

	client, config, err := BuildKubeClient("")
	assert.NoError(t, err)
	assert.NotNil(t, client)
	assert.NotNil(t, config)
}

func TestBuildKubeClientMissingFile(t *testing.T) {
	_, _, err := BuildKubeClient(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}

func TestBuildDynamicClient(t *testing.T) {
	path := writeKubeconfig(t)
	_, config, err := BuildKubeClient(path)
	require.NoError(t, err)

	dyn, err := BuildDynamicClient(config)
	assert.NoError(t, err)
	assert.NotNil(t, dyn)
}
