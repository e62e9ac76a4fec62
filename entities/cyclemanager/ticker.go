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

package cyclemanager

import (
	"sync"
	"time"
)

// CycleTicker delivers the ticks that drive a CycleManager. CycleExecuted is
// called after every cycle with the information whether any actual work was
// done, allowing adaptive implementations to slow down idle cycles.
type CycleTicker interface {
	Start()
	Stop()
	C() <-chan time.Time
	CycleExecuted(executed bool)
}

// FixedTicker ticks at a constant interval regardless of cycle outcomes.
type FixedTicker struct {
	sync.Mutex

	interval time.Duration
	c        chan time.Time
	ticker   *time.Ticker
	done     chan struct{}
}

func NewFixedTicker(interval time.Duration) *FixedTicker {
	return &FixedTicker{
		interval: interval,
		c:        make(chan time.Time, 1),
	}
}

func (t *FixedTicker) Start() {
	t.Lock()
	defer t.Unlock()

	if t.ticker != nil {
		return
	}
	t.ticker = time.NewTicker(t.interval)
	t.done = make(chan struct{})

	go t.forward(t.ticker, t.done)
}

// forward decouples the consumer channel from time.Ticker so that a stopped
// and restarted ticker keeps a single stable C() channel. Ticks that find
// the channel full are dropped, not queued.
func (t *FixedTicker) forward(ticker *time.Ticker, done chan struct{}) {
	for {
		select {
		case <-done:
			return
		case tick := <-ticker.C:
			select {
			case t.c <- tick:
			default:
			}
		}
	}
}

func (t *FixedTicker) Stop() {
	t.Lock()
	defer t.Unlock()

	if t.ticker == nil {
		return
	}
	t.ticker.Stop()
	close(t.done)
	t.ticker = nil

	// drop a tick that may have been delivered before the stop
	select {
	case <-t.c:
	default:
	}
}

func (t *FixedTicker) C() <-chan time.Time {
	return t.c
}

func (t *FixedTicker) CycleExecuted(bool) {}
