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
	"sync"

	"github.com/google/btree"
	"github.com/pkg/errors"

	"github.com/weaviate/stratum/entities/bucket"
)

// SubDB identifies one of the two document collections a bucket's documents
// may live in.
type SubDB uint8

const (
	// SubDBReady holds documents that are indexed and searchable.
	SubDBReady SubDB = iota
	// SubDBNotReady holds documents that are indexed but not yet promoted
	// into the searchable set.
	SubDBNotReady
)

func (s SubDB) String() string {
	if s == SubDBReady {
		return "ready"
	}
	return "notready"
}

// entry is one bucket's aggregate state, keyed by the bucket's sort key.
// Entries are treated as immutable once inserted: mutators replace the whole
// entry so that guard snapshots never observe a torn update.
type entry struct {
	key          uint64
	bucket       bucket.ID
	readyDocs    uint32
	notReadyDocs uint32
	active       bool
}

func (e *entry) Less(than btree.Item) bool {
	return e.key < than.(*entry).key
}

func (e *entry) clone() *entry {
	c := *e
	return &c
}

func (e *entry) docs(subDB SubDB) uint32 {
	if subDB == SubDBReady {
		return e.readyDocs
	}
	return e.notReadyDocs
}

func (e *entry) state() State {
	return State{
		Bucket:       e.bucket,
		ReadyDocs:    e.readyDocs,
		NotReadyDocs: e.notReadyDocs,
		Active:       e.active,
	}
}

// State is the read-only view of one bucket entry as served through a guard.
type State struct {
	Bucket       bucket.ID
	ReadyDocs    uint32
	NotReadyDocs uint32
	Active       bool
}

// BucketDB is the per-node ordered index from bucket key to per-bucket
// aggregate state. It is shared between the write/commit path and the
// maintenance path; readers go through TakeGuard, writers through the
// mutators below. There is never raw concurrent mutation of an entry.
type BucketDB struct {
	mu     sync.Mutex
	tree   *btree.BTree
	cached *entry
}

func New() *BucketDB {
	return &BucketDB{
		tree: btree.New(32),
	}
}

// TakeGuard returns a consistent point-in-time view of the database. The
// clone is copy-on-write, so writers keep mutating the live tree without
// affecting reads through the guard. Iterators constructed from a guard must
// not outlive it.
func (db *BucketDB) TakeGuard() *Guard {
	db.mu.Lock()
	defer db.mu.Unlock()

	return &Guard{
		tree:   db.tree.Clone(),
		cached: db.cached,
	}
}

// Add accounts docs additional documents for bucket in the given sub db,
// creating the entry if it does not exist yet.
func (db *BucketDB) Add(b bucket.ID, subDB SubDB, docs uint32) {
	if !b.Valid() {
		panic(errors.New("bucketdb: add on invalid bucket"))
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	e := db.get(b)
	if e == nil {
		e = &entry{key: b.Key(), bucket: b}
	} else {
		e = e.clone()
	}
	if subDB == SubDBReady {
		e.readyDocs += docs
	} else {
		e.notReadyDocs += docs
	}
	db.tree.ReplaceOrInsert(e)
}

// Remove accounts docs removed documents for bucket in the given sub db. An
// entry whose counts reach zero in both sub dbs is dropped from the index.
func (db *BucketDB) Remove(b bucket.ID, subDB SubDB, docs uint32) {
	db.mu.Lock()
	defer db.mu.Unlock()

	e := db.get(b)
	if e == nil || e.docs(subDB) < docs {
		panic(errors.Errorf("bucketdb: remove %d %s docs from %v holding %d",
			docs, subDB, b, db.docsLocked(e, subDB)))
	}

	e = e.clone()
	if subDB == SubDBReady {
		e.readyDocs -= docs
	} else {
		e.notReadyDocs -= docs
	}

	if e.readyDocs == 0 && e.notReadyDocs == 0 {
		db.tree.Delete(e)
		return
	}
	db.tree.ReplaceOrInsert(e)
}

func (db *BucketDB) docsLocked(e *entry, subDB SubDB) uint32 {
	if e == nil {
		return 0
	}
	return e.docs(subDB)
}

// SetActive flags the bucket as (in)active for search. A no-op for buckets
// not present in the index.
func (db *BucketDB) SetActive(b bucket.ID, active bool) {
	db.mu.Lock()
	defer db.mu.Unlock()

	e := db.get(b)
	if e == nil {
		return
	}
	e = e.clone()
	e.active = active
	db.tree.ReplaceOrInsert(e)
}

// CacheBucket pins a stable copy of the bucket's current entry. While a
// bucket is being drained by the mover its live counts change with every
// applied move; the cached copy gives readers the pre-move view until
// UncacheBucket is called. Only one bucket is cached at a time.
func (db *BucketDB) CacheBucket(b bucket.ID) {
	db.mu.Lock()
	defer db.mu.Unlock()

	e := db.get(b)
	if e == nil {
		e = &entry{key: b.Key(), bucket: b}
	} else {
		e = e.clone()
	}
	db.cached = e
}

func (db *BucketDB) UncacheBucket() {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.cached = nil
}

func (db *BucketDB) get(b bucket.ID) *entry {
	item := db.tree.Get(&entry{key: b.Key()})
	if item == nil {
		return nil
	}
	return item.(*entry)
}
