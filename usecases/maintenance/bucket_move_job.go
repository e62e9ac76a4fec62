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

package maintenance

import (
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"

	"github.com/weaviate/stratum/adapters/repos/db/bucketdb"
	"github.com/weaviate/stratum/adapters/repos/db/mover"
	"github.com/weaviate/stratum/entities/bucket"
	"github.com/weaviate/stratum/entities/cyclemanager"
	"github.com/weaviate/stratum/usecases/monitoring"
)

// BucketStateCalculator is supplied by the distribution layer: it knows,
// from cluster state and bucket ownership, whether a bucket's documents
// should currently live in the ready sub db.
type BucketStateCalculator interface {
	ShouldBeReady(b bucket.ID) bool
}

// BucketMoveJob drives the relocation of misplaced documents: it scans the
// bucket database in key order, and for every bucket whose documents sit in
// the wrong sub db it binds the document mover and drains the bucket over
// one or more ticks. All work happens synchronously inside Run; the job owns
// no goroutines.
//
// The scan is resumable. It runs a FIRST pass from the configured start
// bucket to the end of the index, then a SECOND pass over the wrapped
// remainder, and is complete once both passes are exhausted. A cluster state
// change restarts it.
type BucketMoveJob struct {
	bucketDB *bucketdb.BucketDB
	ready    *mover.DocumentSubDB
	notReady *mover.DocumentSubDB
	handler  mover.MoveHandler
	calc     BucketStateCalculator
	mover    *mover.DocumentBucketMover

	docsPerTick int
	logger      logrus.FieldLogger
	pm          *monitoring.PrometheusMetrics

	startBucket  bucket.ID
	lastBucket   bucket.ID
	pass         bucketdb.Pass
	scanComplete bool

	stallBackoff backoff.BackOff
	retryAt      time.Time
}

func NewBucketMoveJob(cfg Config, db *bucketdb.BucketDB, ready, notReady *mover.DocumentSubDB,
	handler mover.MoveHandler, calc BucketStateCalculator,
	limiter mover.OperationLimiter, logger logrus.FieldLogger,
	pm *monitoring.PrometheusMetrics,
) (*BucketMoveJob, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 10 * time.Millisecond
	bo.MaxInterval = time.Second
	bo.MaxElapsedTime = 0 // a stall resolves eventually, keep retrying

	return &BucketMoveJob{
		bucketDB:     db,
		ready:        ready,
		notReady:     notReady,
		handler:      handler,
		calc:         calc,
		mover:        mover.New(limiter, pm),
		docsPerTick:  cfg.DocsToMovePerTick,
		logger:       logger.WithField("action", "bucket_move"),
		pm:           pm,
		startBucket:  cfg.StartBucket,
		lastBucket:   cfg.StartBucket,
		pass:         bucketdb.PassFirst,
		stallBackoff: bo,
	}, nil
}

// ScanComplete reports whether the job has covered the whole index since the
// last (re)start.
func (j *BucketMoveJob) ScanComplete() bool {
	return j.scanComplete
}

// NotifyClusterStateChanged restarts the scan from the beginning. Called by
// the distribution layer whenever bucket ownership or readiness targets may
// have changed.
func (j *BucketMoveJob) NotifyClusterStateChanged() {
	j.startBucket = bucket.ID{}
	j.lastBucket = bucket.ID{}
	j.pass = bucketdb.PassFirst
	j.scanComplete = false
	j.logger.Debug("scan restarted on cluster state change")
}

// Run performs one bounded maintenance tick. Implements
// cyclemanager.CycleFunc; the return value reports whether any work was
// done.
func (j *BucketMoveJob) Run(shouldBreak cyclemanager.ShouldBreakFunc) bool {
	begin := time.Now()
	defer func() {
		j.pm.ObserveCycleDuration(time.Since(begin).Seconds())
	}()

	if !j.mover.BucketDone() {
		return j.continueMoving()
	}
	if j.scanComplete {
		return false
	}
	return j.scanAndMove(shouldBreak)
}

// continueMoving spends the tick's quota on the bucket already bound to the
// mover. Stalls (a document with a commit in flight) defer the retry with
// exponential backoff; quota-limited progress retries on the next tick.
func (j *BucketMoveJob) continueMoving() bool {
	if time.Now().Before(j.retryAt) {
		return false
	}

	done := j.mover.MoveDocuments(j.docsPerTick)
	if j.mover.Stalled() {
		delay := j.stallBackoff.NextBackOff()
		j.retryAt = time.Now().Add(delay)
		j.logger.WithField("bucket", j.mover.Bucket().String()).
			WithField("retry_in", delay).
			Debug("move stalled on pending commit")
		return false
	}

	j.stallBackoff.Reset()
	j.retryAt = time.Time{}
	if done {
		j.logger.WithField("bucket", j.mover.Bucket().String()).
			Debug("bucket drained")
	}
	return true
}

func (j *BucketMoveJob) scanAndMove(shouldBreak cyclemanager.ShouldBreakFunc) bool {
	guard := j.bucketDB.TakeGuard()
	defer guard.Close()

	for {
		it := j.iterator(guard)
		for ; it.Valid(); it.Next() {
			if shouldBreak() {
				return false
			}

			b := it.Bucket()
			j.lastBucket = b

			source, target, ok := j.direction(b, it.HasReadyDocs(), it.HasNotReadyDocs())
			if !ok {
				continue
			}

			j.mover.SetupForBucket(b, source, target, j.handler, j.bucketDB)
			j.logger.WithField("bucket", b.String()).
				WithField("source", source.Name).
				WithField("target", target.Name).
				Debug("bucket needs moving")
			return j.continueMoving()
		}

		if j.pass == bucketdb.PassFirst && j.startBucket.Valid() {
			// wrap around to cover the part of the index before the
			// original starting point
			j.pass = bucketdb.PassSecond
			j.lastBucket = bucket.ID{}
			continue
		}

		j.scanComplete = true
		j.logger.Debug("bucket move scan complete")
		return false
	}
}

func (j *BucketMoveJob) iterator(guard *bucketdb.Guard) *bucketdb.ScanIterator {
	if j.pass == bucketdb.PassSecond {
		if j.lastBucket.Valid() {
			// resume mid second pass without rescanning from the beginning
			return bucketdb.NewScanIterator(guard, bucketdb.PassFirst, j.lastBucket, j.startBucket)
		}
		return bucketdb.NewScanIterator(guard, bucketdb.PassSecond, bucket.ID{}, j.startBucket)
	}
	return bucketdb.NewScanIterator(guard, bucketdb.PassFirst, j.lastBucket, bucket.ID{})
}

// direction decides whether b's documents are misplaced and, if so, which
// way they move.
func (j *BucketMoveJob) direction(b bucket.ID, hasReady, hasNotReady bool) (source, target *mover.DocumentSubDB, ok bool) {
	if j.calc.ShouldBeReady(b) {
		if hasNotReady {
			return j.notReady, j.ready, true
		}
		return nil, nil, false
	}
	if hasReady {
		return j.ready, j.notReady, true
	}
	return nil, nil, false
}
