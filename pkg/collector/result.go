/*
Copyright © 2025 Gagrio
SPDX-License-Identifier: Apache-2.0
*/
package collector

import (
	"fmt"

	"github.com/Gagrio/suse-support-material/pkg/resource"
)

// Failure records one contained sub-operation failure: a single namespace or
// cluster-scope listing that did not succeed. Failures never abort a run;
// they are carried alongside the records that were collected.
type Failure struct {
	// Kind is the resource-type key the failure belongs to.
	Kind string

	// Namespace is the namespace whose listing failed, empty at cluster scope.
	Namespace string

	// Err is the underlying cause.
	Err error
}

func (f Failure) String() string {
	if f.Namespace == "" {
		return fmt.Sprintf("%s: %v", f.Kind, f.Err)
	}
	return fmt.Sprintf("%s in %s: %v", f.Kind, f.Namespace, f.Err)
}

// Result is the outcome of collecting one resource type. It carries both the
// records that were gathered and the sub-operations that failed, so callers
// and tests can assert on failure content instead of log output.
type Result struct {
	Records  []resource.Record
	Failures []Failure
}

// Partial reports whether the collection succeeded for some units and failed
// for others.
func (r Result) Partial() bool {
	return len(r.Records) > 0 && len(r.Failures) > 0
}

// fail records a contained failure.
func (r *Result) fail(kind, namespace string, err error) {
	r.Failures = append(r.Failures, Failure{Kind: kind, Namespace: namespace, Err: err})
}
