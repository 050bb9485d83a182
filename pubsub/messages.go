// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import (
	"encoding/json"
	"fmt"
)

// A batch is a JSON array of JSON documents. Every frame written to or read
// from a connection is a batch.

func CreateBatchMessage(msgs [][]byte) ([]byte, error) {
	raw := make([]json.RawMessage, len(msgs))
	for i, msg := range msgs {
		raw[i] = msg
	}
	return json.Marshal(raw)
}

func ParseBatchMessage(maxSize int64, msg []byte) ([][]byte, error) {
	if int64(len(msg)) > maxSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrMessageTooLarge, len(msg), maxSize)
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(msg, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadBatch, err)
	}
	msgs := make([][]byte, len(raw))
	for i, m := range raw {
		msgs[i] = m
	}
	return msgs, nil
}
