/*
Copyright © 2025 Gagrio
SPDX-License-Identifier: Apache-2.0
*/
package collector

import (
	"context"
	"log/slog"
	"slices"

	"github.com/agnivade/levenshtein"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	apperrors "github.com/Gagrio/suse-support-material/pkg/errors"
)

// suggestionMaxDistance caps how far a "did you mean" hint may be from the
// requested name before it stops being useful.
const suggestionMaxDistance = 3

// NamespaceResolver verifies a requested namespace set against live cluster
// state before any collection starts.
type NamespaceResolver struct {
	ClientSet kubernetes.Interface
}

// ListNamespaces returns the names of all namespaces visible to the caller.
func (r *NamespaceResolver) ListNamespaces(ctx context.Context) ([]string, error) {
	list, err := r.ClientSet.CoreV1().Namespaces().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeUnreachable, "failed to list namespaces", err)
	}

	names := make([]string, 0, len(list.Items))
	for i := range list.Items {
		names = append(names, list.Items[i].Name)
	}

	slog.Debug("listed namespaces", slog.Int("count", len(names)))
	return names, nil
}

// Verify keeps each requested namespace that exists in the cluster and drops
// the rest with a warning. It fails with NO_VALID_NAMESPACES when the
// resulting set is empty.
func (r *NamespaceResolver) Verify(ctx context.Context, requested []string) ([]string, error) {
	available, err := r.ListNamespaces(ctx)
	if err != nil {
		return nil, err
	}

	verified := make([]string, 0, len(requested))
	for _, ns := range requested {
		if slices.Contains(available, ns) {
			verified = append(verified, ns)
			continue
		}

		if hint := closestName(ns, available); hint != "" {
			slog.Warn("namespace does not exist, skipping",
				slog.String("namespace", ns),
				slog.String("did_you_mean", hint))
			continue
		}
		slog.Warn("namespace does not exist, skipping", slog.String("namespace", ns))
	}

	if len(verified) == 0 {
		return nil, apperrors.NewWithContext(
			apperrors.ErrCodeNoValidNamespaces,
			"no requested namespace exists in the cluster",
			map[string]any{"requested": requested},
		)
	}

	return verified, nil
}

// closestName returns the candidate closest to name by edit distance, or an
// empty string when nothing is close enough to be a plausible typo.
func closestName(name string, candidates []string) string {
	best := ""
	bestDistance := suggestionMaxDistance + 1
	for _, candidate := range candidates {
		if d := levenshtein.ComputeDistance(name, candidate); d < bestDistance {
			best = candidate
			bestDistance = d
		}
	}
	return best
}
