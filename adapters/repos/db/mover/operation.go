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

// Operation is one document relocation between two sub dbs. It is created by
// the mover, consumed exactly once by the move handler and then discarded.
type Operation struct {
	Bucket      bucket.ID
	SourceSubDB uint32
	TargetSubDB uint32
	Lid         uint64
	Document    *storobj.Object
}

// MoveHandler applies move operations. Implementations may be called
// concurrently from different movers and must be safe for that. moveDone has
// to be released once the move is durably applied; holding it longer than
// the HandleMove call itself is expected for handlers that apply
// asynchronously.
type MoveHandler interface {
	HandleMove(op Operation, moveDone Token)
}
