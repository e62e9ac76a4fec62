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
	"github.com/pkg/errors"

	"github.com/weaviate/stratum/entities/bucket"
)

// Pass selects which half of a wrap-around scan an iterator covers. A
// maintenance job that stopped a FIRST pass mid-index resumes with a fresh
// FIRST iterator from the last visited bucket; once the FIRST pass runs off
// the end, the job constructs a SECOND pass iterator to cover the keys it
// skipped before its original starting point. The transition is always
// caller-driven, a FIRST iterator never chains into SECOND by itself.
type Pass uint8

const (
	PassFirst Pass = iota
	PassSecond
)

// ScanIterator walks the buckets of one guard snapshot in ascending key
// order. Buckets with zero documents in both sub dbs are served too, so that
// callers can detect and prune empty entries; the Has*Docs predicates are
// the filter. The iterator borrows the guard and must not outlive it.
type ScanIterator struct {
	guard  *Guard
	endKey uint64
	hasEnd bool
	cur    *entry
}

// NewScanIterator creates an iterator over guard for the given pass.
//
// PassFirst covers [start, end) when a valid end bucket beyond start is
// given, otherwise [start, end-of-index]. An invalid start means the
// beginning of the index.
//
// PassSecond covers [beginning, end), the wrapped remainder of a scan whose
// FIRST pass began at end.
func NewScanIterator(guard *Guard, pass Pass, start, end bucket.ID) *ScanIterator {
	it := &ScanIterator{guard: guard}

	var fromKey uint64
	if pass == PassFirst && start.Valid() {
		fromKey = start.Key()
	}
	if end.Valid() {
		endKey := end.Key()
		if pass == PassSecond || endKey > fromKey {
			it.endKey = endKey
			it.hasEnd = true
		}
	}

	it.cur = it.clamp(guard.firstAtOrAfter(fromKey))
	return it
}

// NewFullScanIterator covers the entire snapshot in one pass.
func NewFullScanIterator(guard *Guard) *ScanIterator {
	return NewScanIterator(guard, PassFirst, bucket.ID{}, bucket.ID{})
}

func (it *ScanIterator) clamp(e *entry) *entry {
	if e == nil {
		return nil
	}
	if it.hasEnd && e.key >= it.endKey {
		return nil
	}
	return e
}

// Valid reports whether the iterator currently points at a bucket.
func (it *ScanIterator) Valid() bool {
	return it.cur != nil
}

// Bucket returns the bucket at the cursor. Panics if the iterator is no
// longer valid.
func (it *ScanIterator) Bucket() bucket.ID {
	if it.cur == nil {
		panic(errors.New("bucketdb: Bucket() on invalid scan iterator"))
	}
	return it.cur.bucket
}

// HasReadyDocs reports whether the current bucket holds documents in the
// ready sub db.
func (it *ScanIterator) HasReadyDocs() bool {
	return it.cur != nil && it.cur.readyDocs > 0
}

// HasNotReadyDocs reports whether the current bucket holds documents in the
// not-ready sub db.
func (it *ScanIterator) HasNotReadyDocs() bool {
	return it.cur != nil && it.cur.notReadyDocs > 0
}

// Next advances to the next bucket of the pass, if any.
func (it *ScanIterator) Next() {
	if it.cur == nil {
		return
	}
	it.cur = it.clamp(it.guard.firstAtOrAfter(it.cur.key + 1))
}
