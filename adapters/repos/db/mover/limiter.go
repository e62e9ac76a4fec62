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
	"sync"

	"github.com/pkg/errors"

	"github.com/weaviate/stratum/usecases/monitoring"
)

// Token is a scope-bound permit. Whoever ends up completing the permitted
// work releases it; releasing twice is safe, never releasing is a resource
// leak.
type Token interface {
	Release()
}

// OperationLimiter admits move operations. One token is obtained per started
// move and released once that move's effects are durably applied, not merely
// enqueued.
type OperationLimiter interface {
	BeginOperation() Token
}

// MoveOperationLimiter caps the number of concurrently outstanding move
// operations system-wide. BeginOperation blocks until a slot frees; a
// scheduler that prefers to back off instead of blocking can consult
// Outstanding before starting work.
type MoveOperationLimiter struct {
	sem     chan struct{}
	metrics *monitoring.PrometheusMetrics
}

func NewMoveOperationLimiter(maxOutstanding int, pm *monitoring.PrometheusMetrics) *MoveOperationLimiter {
	if maxOutstanding < 1 {
		panic(errors.Errorf("mover: limiter requires a positive cap, got %d", maxOutstanding))
	}
	return &MoveOperationLimiter{
		sem:     make(chan struct{}, maxOutstanding),
		metrics: pm,
	}
}

func (l *MoveOperationLimiter) BeginOperation() Token {
	l.sem <- struct{}{}
	l.metrics.StartMoveOperation()
	return &limiterToken{limiter: l}
}

// Outstanding returns the number of currently admitted, unreleased
// operations. Always within [0, maxOutstanding].
func (l *MoveOperationLimiter) Outstanding() int {
	return len(l.sem)
}

type limiterToken struct {
	limiter *MoveOperationLimiter
	once    sync.Once
}

func (t *limiterToken) Release() {
	t.once.Do(func() {
		<-t.limiter.sem
		t.limiter.metrics.FinishMoveOperation()
	})
}
