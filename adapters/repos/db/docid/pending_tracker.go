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

import "sync"

const trackerShards = 32 // power of two, so the shard pick is a single AND

// PendingLidTracker is a reference-counted registry of in-flight commit
// markers keyed by local doc id. The commit path produces a token per write,
// the maintenance path asks IsPending before touching a document. The map is
// sharded so that commits on unrelated lids never contend on one lock.
type PendingLidTracker struct {
	shards [trackerShards]trackerShard
}

type trackerShard struct {
	sync.RWMutex
	pending map[uint64]uint32
}

func NewPendingLidTracker() *PendingLidTracker {
	t := &PendingLidTracker{}
	for i := range t.shards {
		t.shards[i].pending = map[uint64]uint32{}
	}
	return t
}

func (t *PendingLidTracker) shard(lid uint64) *trackerShard {
	return &t.shards[lid&(trackerShards-1)]
}

// Produce registers one outstanding commit for lid. The returned token must
// be released once the commit's effects are applied; releasing is idempotent.
// The lid stays pending until every token produced for it has been released.
func (t *PendingLidTracker) Produce(lid uint64) *Token {
	s := t.shard(lid)
	s.Lock()
	defer s.Unlock()

	s.pending[lid]++
	return &Token{tracker: t, lid: lid}
}

// IsPending is a thread-safe way to check whether at least one commit is
// outstanding for lid, it uses "only" a ReadLock, so concurrent reads on the
// same shard are possible.
func (t *PendingLidTracker) IsPending(lid uint64) bool {
	s := t.shard(lid)
	s.RLock()
	defer s.RUnlock()

	_, ok := s.pending[lid]
	return ok
}

func (t *PendingLidTracker) consume(lid uint64) {
	s := t.shard(lid)
	s.Lock()
	defer s.Unlock()

	if s.pending[lid] <= 1 {
		delete(s.pending, lid)
		return
	}
	s.pending[lid]--
}

// Token is a scope-bound commit marker. Dropping it without calling Release
// leaves the lid pending forever, which stalls relocation of that document.
type Token struct {
	tracker *PendingLidTracker
	lid     uint64
	once    sync.Once
}

func (t *Token) Release() {
	t.once.Do(func() {
		t.tracker.consume(t.lid)
	})
}
