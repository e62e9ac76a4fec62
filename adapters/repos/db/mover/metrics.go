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

package mover

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/weaviate/stratum/usecases/monitoring"
)

type moverMetrics struct {
	pm        *monitoring.PrometheusMetrics
	docsMoved prometheus.Counter
}

// newMoverMetrics curries the docs-moved counter once per bucket setup to
// prevent label lookups on the hot path.
func newMoverMetrics(pm *monitoring.PrometheusMetrics, source, target string) *moverMetrics {
	if pm == nil {
		return nil
	}
	return &moverMetrics{
		pm: pm,
		docsMoved: pm.BucketMoveDocsMoved.With(prometheus.Labels{
			"source": source,
			"target": target,
		}),
	}
}

func (m *moverMetrics) moved() {
	if m == nil {
		return
	}
	m.docsMoved.Inc()
}

func (m *moverMetrics) stalled() {
	if m == nil {
		return
	}
	m.pm.MoveStalled()
}
