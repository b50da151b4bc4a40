/*
Copyright © 2025 Gagrio
SPDX-License-Identifier: Apache-2.0
*/
package serializer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	accorev1 "k8s.io/client-go/applyconfigurations/core/v1"

	"github.com/Gagrio/suse-support-material/pkg/defaults"
	"github.com/Gagrio/suse-support-material/pkg/header"
	"github.com/Gagrio/suse-support-material/pkg/k8s/client"
)

// ConfigMapURIScheme prefixes output paths that target a ConfigMap instead
// of the filesystem, as cm://namespace/name.
const ConfigMapURIScheme = "cm://"

// fieldManager identifies this tool to the API server for server-side apply.
const fieldManager = "ketchup"

// ConfigMapWriter stores a serialized capture in a Kubernetes ConfigMap,
// created or updated via server-side apply.
type ConfigMapWriter struct {
	namespace string
	name      string
	format    Format
}

// NewConfigMapWriter creates a writer targeting the named ConfigMap.
func NewConfigMapWriter(namespace, name string, format Format) *ConfigMapWriter {
	return &ConfigMapWriter{
		namespace: namespace,
		name:      name,
		format:    format.normalized(),
	}
}

// Serialize applies the payload into the ConfigMap. The data holds the
// rendered capture under capture.<ext>, plus the format and timestamp.
func (w *ConfigMapWriter) Serialize(ctx context.Context, payload any) error {
	writeCtx, cancel := context.WithTimeout(ctx, defaults.ConfigMapWriteTimeout)
	defer cancel()

	clientset, _, err := client.GetKubeClient()
	if err != nil {
		return fmt.Errorf("failed to get kubernetes client: %w", err)
	}

	content, err := Marshal(w.format, payload)
	if err != nil {
		return fmt.Errorf("failed to serialize capture: %w", err)
	}

	extension := "txt"
	switch w.format {
	case FormatJSON:
		extension = "json"
	case FormatYAML:
		extension = "yaml"
	}

	kind := header.KindSupportBundle.String()
	version := "unknown"
	timestamp := time.Now().UTC().Format(time.RFC3339)
	if envelope, ok := payload.(interface {
		GetKind() header.Kind
		GetMetadata() map[string]string
	}); ok {
		kind = envelope.GetKind().String()
		metadata := envelope.GetMetadata()
		if v := metadata["version"]; v != "" {
			version = v
		}
		if ts := metadata["timestamp"]; ts != "" {
			timestamp = ts
		}
	}

	configMap := accorev1.ConfigMap(w.name, w.namespace).
		WithLabels(map[string]string{
			"app.kubernetes.io/name":      "ketchup",
			"app.kubernetes.io/component": kind,
			"app.kubernetes.io/version":   version,
		}).
		WithData(map[string]string{
			fmt.Sprintf("capture.%s", extension): string(content),
			"format":                             string(w.format),
			"timestamp":                          timestamp,
		})

	slog.Info("applying ConfigMap",
		"namespace", w.namespace,
		"name", w.name,
		"format", w.format)

	_, err = clientset.CoreV1().ConfigMaps(w.namespace).Apply(
		writeCtx,
		configMap,
		metav1.ApplyOptions{FieldManager: fieldManager, Force: true},
	)
	if err != nil {
		return fmt.Errorf("failed to apply ConfigMap: %w", err)
	}
	return nil
}

// Close is a no-op; the writer holds no resources.
func (w *ConfigMapWriter) Close() error {
	return nil
}

// parseConfigMapURI splits cm://namespace/name into its components.
func parseConfigMapURI(uri string) (namespace, name string, err error) {
	if !strings.HasPrefix(uri, ConfigMapURIScheme) {
		return "", "", fmt.Errorf("invalid ConfigMap URI: must start with %s", ConfigMapURIScheme)
	}

	path := strings.TrimPrefix(uri, ConfigMapURIScheme)
	parts := strings.SplitN(path, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid ConfigMap URI format: expected %snamespace/name, got %s", ConfigMapURIScheme, uri)
	}
	return parts[0], parts[1], nil
}
