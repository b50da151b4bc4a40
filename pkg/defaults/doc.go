/*
Copyright © 2025 Gagrio
SPDX-License-Identifier: Apache-2.0
*/

// Package defaults provides centralized configuration constants for ketchup.
//
// This package defines timeout values used across the codebase. Centralizing
// these values ensures consistency and makes tuning easier.
//
// # Usage
//
// Import and use constants directly:
//
//	import "github.com/Gagrio/suse-support-material/pkg/defaults"
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.CLISnapshotTimeout)
//	defer cancel()
package defaults
