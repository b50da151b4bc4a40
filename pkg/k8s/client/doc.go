// Package client builds the typed and dynamic Kubernetes clients used by the
// collectors. Configuration discovery follows the standard order: explicit
// kubeconfig path, KUBECONFIG environment variable, ~/.kube/config, then
// in-cluster service account credentials.
package client
