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

package bucket

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketKey(t *testing.T) {
	t.Run("key roundtrips through FromKey", func(t *testing.T) {
		ids := []ID{
			New(MinUsedBits, 0),
			New(MinUsedBits, 0xff),
			New(16, 0xabcd),
			New(32, 0xdeadbeef),
			New(58, 0x123456789abcdef),
		}
		for _, id := range ids {
			assert.Equal(t, id, FromKey(id.Key()))
		}
	})

	t.Run("keys of distinct buckets are distinct", func(t *testing.T) {
		seen := map[uint64]ID{}
		for raw := uint64(0); raw < 256; raw++ {
			b := New(MinUsedBits, raw)
			prev, ok := seen[b.Key()]
			require.False(t, ok, "key collision between %v and %v", prev, b)
			seen[b.Key()] = b
		}
	})

	t.Run("buckets with equal super key sort contiguously", func(t *testing.T) {
		// two subdivisions of the same 8-bit bucket plus an unrelated bucket
		parentRaw := uint64(0x2a)
		subA := New(16, parentRaw|0x0100)
		subB := New(16, parentRaw|0xef00)
		other := New(16, 0x0117)

		assert.Equal(t, subA.SuperKey(), subB.SuperKey())
		assert.NotEqual(t, subA.SuperKey(), other.SuperKey())

		keys := []uint64{subA.Key(), other.Key(), subB.Key()}
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
		// the unrelated bucket must not sort between the two subdivisions
		assert.NotEqual(t, other.Key(), keys[1])
	})

	t.Run("super key uses the most significant key bits", func(t *testing.T) {
		b := New(MinUsedBits, 0x2a)
		assert.Equal(t, b.Key()>>(64-MinUsedBits), b.SuperKey())
	})

	t.Run("super key panics below min used bits", func(t *testing.T) {
		b := New(MinUsedBits-1, 0x2a)
		assert.Panics(t, func() { b.SuperKey() })
	})

	t.Run("zero value is invalid", func(t *testing.T) {
		var b ID
		assert.False(t, b.Valid())
		assert.True(t, New(MinUsedBits, 1).Valid())
	})

	t.Run("insignificant id bits are masked", func(t *testing.T) {
		assert.Equal(t, New(8, 0x12).Key(), New(8, 0xff12).Key())
	})
}

func TestFromDocID(t *testing.T) {
	t.Run("derivation is deterministic", func(t *testing.T) {
		a := FromDocID("doc-1", 16)
		b := FromDocID("doc-1", 16)
		assert.Equal(t, a, b)
		assert.Equal(t, uint32(16), a.UsedBits())
	})

	t.Run("documents spread over buckets", func(t *testing.T) {
		buckets := map[uint64]struct{}{}
		docIDs := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
		for _, docID := range docIDs {
			buckets[FromDocID(docID, 16).Key()] = struct{}{}
		}
		assert.Greater(t, len(buckets), 1)
	})
}
