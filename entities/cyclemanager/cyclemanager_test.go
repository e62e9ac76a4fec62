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
	"sync/atomic"
	"testing"
	"time"

	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCycleManager(t *testing.T) {
	logger, _ := logrustest.NewNullLogger()

	t.Run("executes the cycle func on every tick", func(t *testing.T) {
		var cycles atomic.Int32
		cm := New(NewFixedTicker(5*time.Millisecond), func(shouldBreak ShouldBreakFunc) bool {
			cycles.Add(1)
			return true
		}, logger)

		cm.Start()
		require.True(t, cm.Running())

		assert.Eventually(t, func() bool { return cycles.Load() >= 3 },
			time.Second, time.Millisecond)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.NoError(t, cm.StopAndWait(ctx))
		assert.False(t, cm.Running())
	})

	t.Run("start is idempotent", func(t *testing.T) {
		var cycles atomic.Int32
		cm := New(NewFixedTicker(5*time.Millisecond), func(shouldBreak ShouldBreakFunc) bool {
			cycles.Add(1)
			return false
		}, logger)

		cm.Start()
		cm.Start()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.NoError(t, cm.StopAndWait(ctx))
	})

	t.Run("stop on a stopped manager is a no-op", func(t *testing.T) {
		cm := New(NewFixedTicker(time.Millisecond), func(ShouldBreakFunc) bool {
			return false
		}, logger)

		require.NoError(t, cm.StopAndWait(context.Background()))
	})

	t.Run("shouldBreak flips once a stop is requested", func(t *testing.T) {
		started := make(chan struct{})
		release := make(chan struct{})
		var sawBreak atomic.Bool

		cm := New(NewFixedTicker(time.Millisecond), func(shouldBreak ShouldBreakFunc) bool {
			select {
			case started <- struct{}{}:
				<-release
				sawBreak.Store(shouldBreak())
			default:
			}
			return false
		}, logger)

		cm.Start()
		<-started

		go func() {
			// the stop request arrives while the cycle is mid-flight
			time.Sleep(5 * time.Millisecond)
			close(release)
		}()

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.NoError(t, cm.StopAndWait(ctx))
		assert.True(t, sawBreak.Load())
	})

	t.Run("a panicking cycle does not kill the process", func(t *testing.T) {
		var cycles atomic.Int32
		cm := New(NewFixedTicker(time.Millisecond), func(ShouldBreakFunc) bool {
			cycles.Add(1)
			panic("boom")
		}, logger)

		cm.Start()
		assert.Eventually(t, func() bool { return cycles.Load() >= 1 },
			time.Second, time.Millisecond)
		// the loop goroutine died with the panic, recovered by the wrapper;
		// the manager can be started again
	})
}

func TestFixedTicker(t *testing.T) {
	t.Run("does not tick before start", func(t *testing.T) {
		ticker := NewFixedTicker(time.Millisecond)
		select {
		case <-ticker.C():
			t.Fatal("tick before Start")
		case <-time.After(20 * time.Millisecond):
		}
	})

	t.Run("ticks after start, stops ticking after stop", func(t *testing.T) {
		ticker := NewFixedTicker(time.Millisecond)
		ticker.Start()

		select {
		case <-ticker.C():
		case <-time.After(time.Second):
			t.Fatal("no tick after Start")
		}

		ticker.Stop()
		// drain whatever raced with Stop, then expect silence
		select {
		case <-ticker.C():
		default:
		}
		select {
		case <-ticker.C():
			t.Fatal("tick after Stop")
		case <-time.After(20 * time.Millisecond):
		}
	})

	t.Run("ticker starts again", func(t *testing.T) {
		ticker := NewFixedTicker(time.Millisecond)
		ticker.Start()
		ticker.Stop()
		ticker.Start()
		defer ticker.Stop()

		select {
		case <-ticker.C():
		case <-time.After(time.Second):
			t.Fatal("no tick after restart")
		}
	})
}
