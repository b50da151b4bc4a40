/*
Copyright © 2025 Gagrio
SPDX-License-Identifier: Apache-2.0
*/
package defaults

import (
	"testing"
	"time"
)

func TestTimeoutConstants(t *testing.T) {
	tests := []struct {
		name     string
		timeout  time.Duration
		minValue time.Duration
		maxValue time.Duration
	}{
		{"ConfigMapWriteTimeout", ConfigMapWriteTimeout, 10 * time.Second, 60 * time.Second},
		{"CLISnapshotTimeout", CLISnapshotTimeout, 1 * time.Minute, 10 * time.Minute},
		{"OCIPushTimeout", OCIPushTimeout, 30 * time.Second, 5 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.timeout < tt.minValue {
				t.Errorf("%s (%v) is below minimum expected value (%v)", tt.name, tt.timeout, tt.minValue)
			}
			if tt.timeout > tt.maxValue {
				t.Errorf("%s (%v) is above maximum expected value (%v)", tt.name, tt.timeout, tt.maxValue)
			}
		})
	}
}

func TestPushTimeoutWithinSnapshotTimeout(t *testing.T) {
	// The push runs inside the same command invocation as the capture, so it
	// must fit well within the overall run budget.
	if OCIPushTimeout >= CLISnapshotTimeout {
		t.Errorf("OCIPushTimeout (%v) should be less than CLISnapshotTimeout (%v)",
			OCIPushTimeout, CLISnapshotTimeout)
	}
}
