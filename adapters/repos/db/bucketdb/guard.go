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

package bucketdb

import (
	"github.com/google/btree"
	"github.com/pkg/errors"

	"github.com/weaviate/stratum/entities/bucket"
)

// Guard is a scoped read snapshot of the BucketDB. All reads through one
// guard observe the same point-in-time state, no matter how the live
// database is mutated concurrently. A guard needs to be closed using the
// .Close() method once the reader is done with it, and anything derived from
// it (lookups, scan iterators) must not be used afterwards.
type Guard struct {
	tree   *btree.BTree
	cached *entry
}

// Lookup returns the state of the given bucket in the snapshot.
func (g *Guard) Lookup(b bucket.ID) (State, bool) {
	g.mustBeOpen()

	item := g.tree.Get(&entry{key: b.Key()})
	if item == nil {
		return State{}, false
	}
	return item.(*entry).state(), true
}

// IsCachedBucket reports whether b is the bucket whose pre-relocation entry
// was pinned via CacheBucket at the time this guard was taken.
func (g *Guard) IsCachedBucket(b bucket.ID) bool {
	g.mustBeOpen()

	return g.cached != nil && g.cached.key == b.Key()
}

// CachedState returns the pinned pre-relocation state, if any.
func (g *Guard) CachedState() (State, bool) {
	g.mustBeOpen()

	if g.cached == nil {
		return State{}, false
	}
	return g.cached.state(), true
}

// Close releases the snapshot. Any further use of the guard or of iterators
// derived from it is a programming error.
func (g *Guard) Close() {
	g.tree = nil
	g.cached = nil
}

// firstAtOrAfter returns the first entry with key >= from, or nil if the
// snapshot holds none.
func (g *Guard) firstAtOrAfter(from uint64) *entry {
	g.mustBeOpen()

	var res *entry
	g.tree.AscendGreaterOrEqual(&entry{key: from}, func(i btree.Item) bool {
		res = i.(*entry)
		return false
	})
	return res
}

func (g *Guard) mustBeOpen() {
	if g.tree == nil {
		panic(errors.New("bucketdb: guard used after Close"))
	}
}
