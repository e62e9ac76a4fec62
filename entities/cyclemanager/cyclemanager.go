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
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	enterrors "github.com/weaviate/stratum/entities/errors"
)

type (
	// indicates whether the cyclemanager's stop was requested, to allow
	// safely breaking execution of a CycleFunc mid-cycle
	ShouldBreakFunc func() bool
	// return value indicates whether actual work was done in the cycle
	CycleFunc func(shouldBreak ShouldBreakFunc) bool
)

// CycleManager runs one CycleFunc on every tick of its ticker until stopped.
type CycleManager struct {
	sync.RWMutex

	cycleFunc CycleFunc
	ticker    CycleTicker
	logger    logrus.FieldLogger

	running       bool
	stopRequested chan struct{}
	stopped       chan struct{}
	stopOnce      *sync.Once
}

func New(ticker CycleTicker, cycleFunc CycleFunc, logger logrus.FieldLogger) *CycleManager {
	return &CycleManager{
		cycleFunc: cycleFunc,
		ticker:    ticker,
		logger:    logger,
	}
}

// Start begins ticking, does not block. Does nothing if already started.
func (c *CycleManager) Start() {
	c.Lock()
	defer c.Unlock()

	if c.running {
		return
	}

	c.running = true
	c.stopRequested = make(chan struct{})
	c.stopped = make(chan struct{})
	c.stopOnce = &sync.Once{}
	c.ticker.Start()

	enterrors.GoWrapper(c.loop, c.logger)
}

func (c *CycleManager) loop() {
	defer func() {
		c.Lock()
		c.running = false
		c.Unlock()
		close(c.stopped)
	}()
	defer c.ticker.Stop()

	for {
		select {
		case <-c.stopRequested:
			return
		case <-c.ticker.C():
			c.ticker.CycleExecuted(c.cycleFunc(c.shouldBreak))
		}
	}
}

func (c *CycleManager) shouldBreak() bool {
	select {
	case <-c.stopRequested:
		return true
	default:
		return false
	}
}

// StopAndWait requests a stop and waits for the running cycle, if any, to
// finish. Returns the context's error if it expires first; the manager still
// stops eventually in that case.
func (c *CycleManager) StopAndWait(ctx context.Context) error {
	c.Lock()
	if !c.running {
		c.Unlock()
		return nil
	}
	stopOnce, stopRequested, stopped := c.stopOnce, c.stopRequested, c.stopped
	c.Unlock()

	stopOnce.Do(func() { close(stopRequested) })

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-stopped:
		return nil
	}
}

func (c *CycleManager) Running() bool {
	c.RLock()
	defer c.RUnlock()

	return c.running
}
