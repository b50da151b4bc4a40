/*
Copyright © 2025 Gagrio
SPDX-License-Identifier: Apache-2.0
*/

// Package oci pushes support bundles to OCI registries so captures can be
// shared through the same infrastructure that serves container images.
package oci

import (
	"fmt"
	"strings"

	"github.com/distribution/reference"

	apperrors "github.com/Gagrio/suse-support-material/pkg/errors"
)

// URIScheme prefixes output targets that name an OCI registry, as
// oci://registry/repository:tag.
const URIScheme = "oci://"

// Reference is a parsed output target: either an OCI registry reference or a
// local directory path.
type Reference struct {
	// IsOCI distinguishes a registry reference from a local path.
	IsOCI bool

	// Registry, Repository, and Tag are set only for registry references.
	// An empty Tag means none was given; the caller applies a default.
	Registry   string
	Repository string
	Tag        string

	// LocalPath is set only for non-OCI targets.
	LocalPath string
}

// ParseOutputTarget classifies an output target string. Targets without the
// oci:// scheme are local directories; the rest are parsed as image
// references.
func ParseOutputTarget(target string) (*Reference, error) {
	if !strings.HasPrefix(target, URIScheme) {
		return &Reference{LocalPath: target}, nil
	}

	ref, err := reference.ParseNormalizedNamed(strings.TrimPrefix(target, URIScheme))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidRequest, "invalid OCI reference", err)
	}

	out := &Reference{
		IsOCI:      true,
		Registry:   reference.Domain(ref),
		Repository: reference.Path(ref),
	}
	if tagged, ok := ref.(reference.Tagged); ok {
		out.Tag = tagged.Tag()
	}
	return out, nil
}

// String renders the reference back to its target form.
func (r *Reference) String() string {
	if !r.IsOCI {
		return r.LocalPath
	}
	if r.Tag == "" {
		return fmt.Sprintf("%s%s/%s", URIScheme, r.Registry, r.Repository)
	}
	return fmt.Sprintf("%s%s/%s:%s", URIScheme, r.Registry, r.Repository, r.Tag)
}

// ImageReference returns the docker-style reference without the scheme, or
// an empty string for local paths.
func (r *Reference) ImageReference() string {
	if !r.IsOCI {
		return ""
	}
	if r.Tag == "" {
		return fmt.Sprintf("%s/%s", r.Registry, r.Repository)
	}
	return fmt.Sprintf("%s/%s:%s", r.Registry, r.Repository, r.Tag)
}

// WithTag returns a copy carrying the given tag. Local paths are returned
// unchanged.
func (r *Reference) WithTag(tag string) *Reference {
	if !r.IsOCI {
		return r
	}
	return &Reference{IsOCI: true, Registry: r.Registry, Repository: r.Repository, Tag: tag}
}
