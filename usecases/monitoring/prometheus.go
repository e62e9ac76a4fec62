//                           _       _
// __      _____  __ ___   ___  __ _| |_ ___
// \ \ /\ / / _ \/ _` \ \ / / |/ _` | __/ _ \
//  \ V  V /  __/ (_| |\ V /| | (_| | ||  __/
//   \_/\_/ \___|\__,_| \_/ |_|\__,_|\__\___|
//
//  Copyright © 2016 - 2025 Weaviate B.V. All rights reserved.
//
//  CONTACT: hello@weaviate.io
//

package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics groups the metrics of the bucket maintenance layer. A
// nil *PrometheusMetrics is valid everywhere and turns all observations into
// no-ops, so callers never need to branch on whether monitoring is enabled.
type PrometheusMetrics struct {
	BucketMoveDocsMoved       *prometheus.CounterVec
	BucketMoveStalls          prometheus.Counter
	MoveOperationsOutstanding prometheus.Gauge
	MaintenanceCycleDuration  prometheus.Histogram
}

func NewPrometheusMetrics(r prometheus.Registerer) *PrometheusMetrics {
	pm := &PrometheusMetrics{
		BucketMoveDocsMoved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "bucket_move_docs_moved_total",
			Help: "Documents relocated between sub dbs, by direction",
		}, []string{"source", "target"}),
		BucketMoveStalls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bucket_move_stalls_total",
			Help: "Moves deferred because the document had a commit in flight",
		}),
		MoveOperationsOutstanding: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "move_operations_outstanding",
			Help: "Move operations handed to the move handler but not yet durably applied",
		}),
		MaintenanceCycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "maintenance_cycle_duration_seconds",
			Help:    "Wall time of one bucket move maintenance cycle",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
	}

	r.MustRegister(
		pm.BucketMoveDocsMoved,
		pm.BucketMoveStalls,
		pm.MoveOperationsOutstanding,
		pm.MaintenanceCycleDuration,
	)

	return pm
}

// One move operation started
func (pm *PrometheusMetrics) StartMoveOperation() {
	if pm == nil {
		return
	}

	pm.MoveOperationsOutstanding.Inc()
}

// One move operation durably applied
func (pm *PrometheusMetrics) FinishMoveOperation() {
	if pm == nil {
		return
	}

	pm.MoveOperationsOutstanding.Dec()
}

// One move deferred due to a pending commit
func (pm *PrometheusMetrics) MoveStalled() {
	if pm == nil {
		return
	}

	pm.BucketMoveStalls.Inc()
}

func (pm *PrometheusMetrics) ObserveCycleDuration(seconds float64) {
	if pm == nil {
		return
	}

	pm.MaintenanceCycleDuration.Observe(seconds)
}
