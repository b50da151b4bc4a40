/*
Copyright © 2025 Gagrio
SPDX-License-Identifier: Apache-2.0
*/

// Package serializer writes capture payloads to files, stdout, or a
// Kubernetes ConfigMap, in JSON, YAML, or a flattened table layout.
//
// Destinations are chosen by path: an empty path means stdout, a
// cm://namespace/name URI means a ConfigMap, anything else is a file path.
// Writers that hold a file handle must be closed.
package serializer

import "context"

// Serializer writes one payload to its destination. The context carries
// cancellation for destinations that perform remote I/O.
type Serializer interface {
	Serialize(ctx context.Context, payload any) error
}

// Closer is implemented by serializers that hold releasable resources.
type Closer interface {
	Close() error
}
