// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"
	"errors"

	"github.com/ava-labs/avalanchego/database"
)

var _ Mutable = (*Recorder)(nil)

// snapshot is the value a key had in the wrapped state when the recorder
// first looked at it.
type snapshot struct {
	value  []byte
	exists bool
}

// Recorder runs a call against a read-only view and records the keys it
// touched with the permissions it needed. Writes are buffered in the
// recorder and never reach the wrapped state.
type Recorder struct {
	base Immutable

	seen    map[string]snapshot
	pending map[string]*change
	keys    Keys
}

func NewRecorder(base Immutable) *Recorder {
	return &Recorder{
		base:    base,
		seen:    make(map[string]snapshot),
		pending: make(map[string]*change),
		keys:    Keys{},
	}
}

func (r *Recorder) load(ctx context.Context, key string) (snapshot, error) {
	if snap, ok := r.seen[key]; ok {
		return snap, nil
	}
	value, err := r.base.GetValue(ctx, []byte(key))
	switch {
	case err == nil:
		r.seen[key] = snapshot{value: value, exists: true}
	case errors.Is(err, database.ErrNotFound):
		r.seen[key] = snapshot{}
	default:
		return snapshot{}, err
	}
	return r.seen[key], nil
}

func (r *Recorder) GetValue(ctx context.Context, key []byte) ([]byte, error) {
	k := string(key)
	snap, err := r.load(ctx, k)
	if err != nil {
		return nil, err
	}
	r.keys.Add(k, Read)
	if ch, ok := r.pending[k]; ok {
		if ch.delete {
			return nil, database.ErrNotFound
		}
		return ch.value, nil
	}
	if !snap.exists {
		return nil, database.ErrNotFound
	}
	return snap.value, nil
}

// Insert needs Allocate on top of Write when the key did not exist before
// the call.
func (r *Recorder) Insert(ctx context.Context, key []byte, value []byte) error {
	k := string(key)
	snap, err := r.load(ctx, k)
	if err != nil {
		return err
	}
	if snap.exists {
		r.keys.Add(k, Write)
	} else {
		r.keys.Add(k, Allocate|Write)
	}
	r.pending[k] = &change{value: value}
	return nil
}

func (r *Recorder) Remove(_ context.Context, key []byte) error {
	k := string(key)
	r.keys.Add(k, Write)
	r.pending[k] = &change{delete: true}
	return nil
}

// Keys returns every key touched so far.
func (r *Recorder) Keys() Keys {
	return r.keys
}
