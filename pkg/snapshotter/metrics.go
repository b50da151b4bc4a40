/*
Copyright © 2025 Gagrio
SPDX-License-Identifier: Apache-2.0
*/
package snapshotter

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	captureDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ketchup_capture_duration_seconds",
			Help:    "Time taken to capture a complete cluster snapshot",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	captureTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ketchup_capture_total",
			Help: "Total number of capture attempts",
		},
		[]string{"status"}, // success or error
	)

	collectorDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ketchup_collector_duration_seconds",
			Help:    "Time taken to collect one resource type",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30},
		},
		[]string{"kind"},
	)

	captureResourceCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ketchup_capture_resources",
			Help: "Number of resources in the last captured snapshot",
		},
	)
)
