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
	"github.com/weaviate/stratum/entities/bucket"
	"github.com/weaviate/stratum/entities/storobj"
)

// DocumentMeta is the per-document metadata the mover needs to relocate a
// document: its local id in the source sub db and its stable intra-bucket
// ordering key.
type DocumentMeta struct {
	Lid uint64
	// Key orders documents within their bucket. Must be nonzero, zero is
	// the cursor's before-the-first sentinel.
	Key uint64
}

// MetaStore is the mover's view of a sub db's document metadata index.
type MetaStore interface {
	// BucketDocs returns up to limit metadata entries for documents of b
	// with ordering key strictly greater than afterKey, in ascending key
	// order. The mover resumes a partially drained bucket by passing the
	// key of the last document it moved.
	BucketDocs(b bucket.ID, afterKey uint64, limit int) []DocumentMeta
}

// DocumentRetriever fetches full document payloads by local id. Lids handed
// to it come from the sub db's own meta store, so an unknown lid is an
// invariant breach upstream: implementations panic rather than return an
// error.
type DocumentRetriever interface {
	GetFullDocument(lid uint64) *storobj.Object
}

// CommitGate answers whether a document currently has a commit in flight.
// The commit path produces the markers, the mover only reads them.
type CommitGate interface {
	IsPending(lid uint64) bool
}

// DocumentSubDB is the maintenance view of one document collection: just
// enough of it to enumerate, fetch and fence documents during relocation.
type DocumentSubDB struct {
	Name        string
	SubDBID     uint32
	Meta        MetaStore
	Retriever   DocumentRetriever
	PendingLids CommitGate
}
