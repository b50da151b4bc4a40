// Package collector gathers live cluster state: namespace verification,
// typed listing of built-in resource kinds, and two-phase discovery/fallback
// resolution of custom resource types.
//
// All listing operations are independent read-only calls. Failures are
// contained at the unit that produced them (one namespace, one kind, one
// custom resource definition) and surfaced through Result.Failures; only an
// unreachable cluster or an empty verified namespace set aborts a run.
package collector
