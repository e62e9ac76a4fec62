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

package docid

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestPendingLidTracker(t *testing.T) {
	t.Run("producing a token makes the lid pending", func(t *testing.T) {
		tracker := NewPendingLidTracker()

		token := tracker.Produce(17)
		assert.True(t, tracker.IsPending(17))
		assert.False(t, tracker.IsPending(18))

		token.Release()
		assert.False(t, tracker.IsPending(17))
	})

	t.Run("pending markers are reference counted", func(t *testing.T) {
		tracker := NewPendingLidTracker()

		first := tracker.Produce(17)
		second := tracker.Produce(17)
		assert.True(t, tracker.IsPending(17))

		first.Release()
		assert.True(t, tracker.IsPending(17), "still one token outstanding")

		second.Release()
		assert.False(t, tracker.IsPending(17))
	})

	t.Run("release is idempotent", func(t *testing.T) {
		tracker := NewPendingLidTracker()

		first := tracker.Produce(17)
		second := tracker.Produce(17)

		first.Release()
		first.Release()
		first.Release()
		assert.True(t, tracker.IsPending(17),
			"double release must not consume the second token")

		second.Release()
		assert.False(t, tracker.IsPending(17))
	})

	t.Run("independent lids do not interfere", func(t *testing.T) {
		tracker := NewPendingLidTracker()

		token := tracker.Produce(17)
		assert.False(t, tracker.IsPending(49), "same shard, different lid")

		token.Release()
	})
}

func TestPendingLidTrackerConcurrency(t *testing.T) {
	tracker := NewPendingLidTracker()

	var eg errgroup.Group
	for worker := 0; worker < 8; worker++ {
		worker := worker
		eg.Go(func() error {
			for i := 0; i < 1000; i++ {
				lid := uint64(worker*1000 + i)
				token := tracker.Produce(lid)
				if !tracker.IsPending(lid) {
					return assert.AnError
				}
				token.Release()
			}
			return nil
		})
	}
	require.NoError(t, eg.Wait())

	for lid := uint64(0); lid < 8000; lid++ {
		require.False(t, tracker.IsPending(lid), "lid %d leaked", lid)
	}
}
