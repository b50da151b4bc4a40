/*
Copyright © 2025 Gagrio
SPDX-License-Identifier: Apache-2.0
*/
package cli

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"
	"golang.org/x/time/rate"

	"github.com/Gagrio/suse-support-material/pkg/serializer"
)

// Flags shared across subcommands.
var (
	kubeconfigFlag = &cli.StringFlag{
		Name:    "kubeconfig",
		Aliases: []string{"k"},
		Usage: `Path to kubeconfig file.
	Empty falls back to $KUBECONFIG, ~/.kube/config, then in-cluster config.`,
		Sources: cli.EnvVars("KETCHUP_KUBECONFIG"),
	}

	namespacesFlag = &cli.StringSliceFlag{
		Name:    "namespaces",
		Aliases: []string{"n"},
		Usage:   "Namespaces to collect from (can be repeated or comma-separated)",
		Sources: cli.EnvVars("KETCHUP_NAMESPACES"),
		Value:   []string{"default"},
	}

	outputFlag = &cli.StringFlag{
		Name:    "output",
		Aliases: []string{"o"},
		Usage:   "Output directory for the bundle",
		Sources: cli.EnvVars("KETCHUP_OUTPUT"),
		Value:   "./tmp",
	}

	formatFlag = &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Resource file format (json, yaml, both)",
		Sources: cli.EnvVars("KETCHUP_FORMAT"),
		Value:   "both",
	}

	rateLimitFlag = &cli.IntFlag{
		Name:  "rate-limit",
		Usage: "Maximum list calls per second against the API server (0 disables)",
	}

	rawFlag = &cli.BoolFlag{
		Name:  "raw",
		Usage: "Skip sanitization and keep documents exactly as returned",
	}
)

// parseOutputFormat extracts and validates the report format from CLI flags.
// Returns the validated format or an error if the format is unknown.
func parseOutputFormat(cmd *cli.Command) (serializer.Format, error) {
	outFormat := serializer.Format(cmd.String("format"))
	if outFormat.IsUnknown() {
		return "", fmt.Errorf("unknown output format: %q, valid formats are: %s",
			outFormat, strings.Join(serializer.SupportedFormats(), ", "))
	}
	return outFormat, nil
}

// parseNamespaces flattens repeated and comma-separated namespace values into
// one trimmed list.
func parseNamespaces(values []string) []string {
	var namespaces []string
	for _, v := range values {
		for _, ns := range strings.Split(v, ",") {
			ns = strings.TrimSpace(ns)
			if ns != "" {
				namespaces = append(namespaces, ns)
			}
		}
	}
	return namespaces
}

// buildLimiter returns a rate limiter for the given calls-per-second value,
// or nil when throttling is disabled.
func buildLimiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}
