// SPDX-License-Identifier: EPL-2.0

// Package metrics holds the process-wide prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DriverCallbacks counts device pull callbacks.
	DriverCallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dawcore_driver_callbacks_total",
			Help: "Total number of device output callbacks",
		},
	)

	// DriverUnderruns counts callbacks that padded a playing ring with silence.
	DriverUnderruns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dawcore_driver_underruns_total",
			Help: "Total number of callbacks that ran short of queued samples",
		},
		[]string{"ring"},
	)

	PipelinePacketErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dawcore_pipeline_packet_errors_total",
			Help: "Total number of skipped packet read errors",
		},
	)

	PreviewStarts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dawcore_preview_starts_total",
			Help: "Total number of preview workers started",
		},
	)

	PreviewFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dawcore_preview_failures_total",
			Help: "Total number of preview workers that ended in error",
		},
	)

	AssetPoolAssets = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dawcore_assetpool_assets",
			Help: "Number of assets currently held by asset pools",
		},
	)

	NotifyDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dawcore_notify_dropped_total",
			Help: "Total number of notifications dropped for slow subscribers",
		},
	)
)
