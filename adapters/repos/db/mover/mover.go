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
	"github.com/weaviate/stratum/adapters/repos/db/bucketdb"
	"github.com/weaviate/stratum/entities/bucket"
	"github.com/weaviate/stratum/usecases/monitoring"
)

// DocumentBucketMover incrementally relocates the documents of one bucket
// from a source sub db to a target sub db. It performs no internal threading
// and never blocks beyond limiter admission: the maintenance scheduler calls
// MoveDocuments with a quota per tick and decides when to call again.
//
// Documents are moved in stable intra-bucket key order. A document with a
// commit in flight stalls the mover without advancing the cursor, so the
// stalled document is the first one re-attempted on the next tick.
type DocumentBucketMover struct {
	limiter OperationLimiter
	pm      *monitoring.PrometheusMetrics

	bucket   bucket.ID
	source   *DocumentSubDB
	targetID uint32
	handler  MoveHandler
	bucketDB *bucketdb.BucketDB
	metrics  *moverMetrics

	lastKey      uint64
	cacheHintSet bool
	done         bool
	stalled      bool
}

// New returns an unbound mover. It is immediately done and moving documents
// on it is a no-op until SetupForBucket binds it. pm may be nil.
func New(limiter OperationLimiter, pm *monitoring.PrometheusMetrics) *DocumentBucketMover {
	return &DocumentBucketMover{
		limiter: limiter,
		pm:      pm,
		done:    true,
	}
}

// SetupForBucket binds the mover to one bucket and sub-db pair and resets
// the document cursor to the bucket's first document in the source. Any
// partially drained previous bucket is abandoned; moves already handed to
// the handler are not retracted.
func (m *DocumentBucketMover) SetupForBucket(b bucket.ID, source, target *DocumentSubDB,
	handler MoveHandler, db *bucketdb.BucketDB,
) {
	if m.cacheHintSet {
		// rebinding mid-bucket, drop the previous bucket's cache hint
		m.bucketDB.UncacheBucket()
	}

	m.bucket = b
	m.source = source
	m.targetID = target.SubDBID
	m.handler = handler
	m.bucketDB = db
	m.metrics = newMoverMetrics(m.pm, source.Name, target.Name)
	m.lastKey = 0
	m.cacheHintSet = false
	m.done = false
	m.stalled = false
}

// Bucket returns the currently bound bucket, the zero bucket if none.
func (m *DocumentBucketMover) Bucket() bucket.ID {
	return m.bucket
}

// BucketDone reports whether the bound bucket is fully drained. An unbound
// mover is always done.
func (m *DocumentBucketMover) BucketDone() bool {
	return m.done
}

// Stalled reports whether the last MoveDocuments call ended on a document
// with a commit in flight. Lets the scheduler distinguish contention, worth
// backing off for, from plain quota exhaustion.
func (m *DocumentBucketMover) Stalled() bool {
	return m.stalled
}

// MoveDocuments relocates up to maxDocs documents of the bound bucket, in
// intra-bucket key order. It returns true iff the bucket is fully drained
// afterwards. A false return means either quota ran out with documents
// remaining, or the next document in line has a commit in flight; in both
// cases a later call resumes at exactly the first unmoved document.
func (m *DocumentBucketMover) MoveDocuments(maxDocs int) bool {
	if m.done {
		return true
	}
	m.stalled = false
	if maxDocs <= 0 {
		return false
	}

	// fetch one extra entry so that draining exactly maxDocs documents is
	// distinguishable from leaving some behind
	metas := m.source.Meta.BucketDocs(m.bucket, m.lastKey, maxDocs+1)
	if len(metas) == 0 {
		m.finishBucket()
		return true
	}

	for i, meta := range metas {
		if i == maxDocs {
			// quota exhausted, the extra entry proves more remain
			return false
		}
		if m.source.PendingLids.IsPending(meta.Lid) {
			m.stalled = true
			m.metrics.stalled()
			return false
		}
		m.moveDocument(meta)
	}

	m.finishBucket()
	return true
}

func (m *DocumentBucketMover) moveDocument(meta DocumentMeta) {
	moveDone := m.limiter.BeginOperation()
	doc := m.source.Retriever.GetFullDocument(meta.Lid)

	if !m.cacheHintSet {
		// pin the bucket's pre-move state for readers while the bucket is
		// in flux
		m.bucketDB.CacheBucket(m.bucket)
		m.cacheHintSet = true
	}

	m.handler.HandleMove(Operation{
		Bucket:      m.bucket,
		SourceSubDB: m.source.SubDBID,
		TargetSubDB: m.targetID,
		Lid:         meta.Lid,
		Document:    doc,
	}, moveDone)

	m.lastKey = meta.Key
	m.metrics.moved()
}

func (m *DocumentBucketMover) finishBucket() {
	m.done = true
	if m.cacheHintSet {
		m.bucketDB.UncacheBucket()
		m.cacheHintSet = false
	}
}
