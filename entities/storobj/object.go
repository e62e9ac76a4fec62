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

package storobj

import (
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Object is the full payload of a single stored document as handed around by
// the maintenance path. The storage engine owns the persisted format; this
// type only needs a stable binary codec for transport between collections.
type Object struct {
	ID         uuid.UUID              `cbor:"1,keyasint"`
	DocID      string                 `cbor:"2,keyasint"`
	Properties map[string]interface{} `cbor:"3,keyasint"`
}

func New(docID string, props map[string]interface{}) *Object {
	return &Object{
		ID:         uuid.New(),
		DocID:      docID,
		Properties: props,
	}
}

func (o *Object) MarshalBinary() ([]byte, error) {
	data, err := cbor.Marshal(o)
	if err != nil {
		return nil, errors.Wrap(err, "marshal object")
	}
	return data, nil
}

func FromBinary(data []byte) (*Object, error) {
	var o Object
	if err := cbor.Unmarshal(data, &o); err != nil {
		return nil, errors.Wrap(err, "unmarshal object")
	}
	return &o, nil
}
