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
	"fmt"
	"math/bits"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
)

// MinUsedBits is the minimum number of significant id bits any bucket in the
// system may carry. It also determines the width of the super-bucket key.
const MinUsedBits = 8

// maxUsedBits leaves the low 6 bits of a sort key free for the used-bits
// count itself.
const maxUsedBits = 58

// ID identifies one partition of the document key space. The low usedBits
// bits of id are significant, everything above them is ignored. The zero
// value is the unset bucket, used as an open bound when scanning.
type ID struct {
	usedBits uint32
	id       uint64
}

func New(usedBits uint32, id uint64) ID {
	if usedBits > maxUsedBits {
		panic(errors.Errorf("bucket: used bits %d exceeds maximum %d", usedBits, maxUsedBits))
	}
	return ID{usedBits: usedBits, id: id & mask(usedBits)}
}

// FromDocID derives the bucket a document belongs to by hashing its document
// id and keeping the low usedBits bits of the hash.
func FromDocID(docID string, usedBits uint32) ID {
	return New(usedBits, xxhash.Sum64String(docID))
}

func mask(usedBits uint32) uint64 {
	if usedBits == 0 {
		return 0
	}
	return ^uint64(0) >> (64 - usedBits)
}

func (b ID) Valid() bool {
	return b.usedBits > 0
}

func (b ID) UsedBits() uint32 {
	return b.usedBits
}

func (b ID) Raw() uint64 {
	return b.id
}

// Key returns the 64-bit sort key of the bucket: the significant id bits are
// reflected into the most-significant positions and the used-bits count is
// kept in the low-order positions. A bucket and its subdivisions therefore
// sort contiguously.
func (b ID) Key() uint64 {
	return bits.Reverse64(b.id&mask(b.usedBits)) | uint64(b.usedBits)
}

// SuperKey returns the coarse partitioning key derived from the bucket's
// most-significant key bits. Panics if the bucket carries fewer than
// MinUsedBits significant bits, as such a bucket has no defined super bucket.
func (b ID) SuperKey() uint64 {
	if b.usedBits < MinUsedBits {
		panic(errors.Errorf("bucket: super key of %v requires at least %d used bits", b, MinUsedBits))
	}
	// keys carry the count bits at the LSB positions, so the super bucket
	// lives in the MSBs
	return b.Key() >> (64 - MinUsedBits)
}

// FromKey reverses Key, reconstructing the bucket id from a sort key.
func FromKey(key uint64) ID {
	usedBits := uint32(key & 0x3f)
	return ID{usedBits: usedBits, id: bits.Reverse64(key) & mask(usedBits)}
}

func (b ID) String() string {
	if !b.Valid() {
		return "BucketID(-)"
	}
	return fmt.Sprintf("BucketID(0x%x:%d)", b.id, b.usedBits)
}
