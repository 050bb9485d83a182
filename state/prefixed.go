// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import "context"

var _ Mutable = (*prefixedMutable)(nil)

type prefixedMutable struct {
	inner  Mutable
	prefix []byte
}

// NewPrefixed returns a [Mutable] whose keys all live under [prefix] in
// [inner]. [prefix] must be unique to keep the space isolated.
func NewPrefixed(prefix []byte, inner Mutable) Mutable {
	return &prefixedMutable{inner: inner, prefix: prefix}
}

func (s *prefixedMutable) prefixKey(key []byte) (k []byte) {
	k = make([]byte, len(s.prefix)+len(key))
	copy(k, s.prefix)
	copy(k[len(s.prefix):], key)
	return
}

func (s *prefixedMutable) GetValue(ctx context.Context, key []byte) (value []byte, err error) {
	return s.inner.GetValue(ctx, s.prefixKey(key))
}

func (s *prefixedMutable) Insert(ctx context.Context, key []byte, value []byte) error {
	return s.inner.Insert(ctx, s.prefixKey(key), value)
}

func (s *prefixedMutable) Remove(ctx context.Context, key []byte) error {
	return s.inner.Remove(ctx, s.prefixKey(key))
}

type readOnly struct {
	Immutable
}

// ReadOnly wraps [im] so that every write fails with [ErrReadOnly]. Queries
// run against it.
func ReadOnly(im Immutable) Mutable {
	return readOnly{im}
}

func (readOnly) Insert(context.Context, []byte, []byte) error {
	return ErrReadOnly
}

func (readOnly) Remove(context.Context, []byte) error {
	return ErrReadOnly
}
