// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/database"

	"github.com/ava-labs/hypercw/codec"
)

// Item is a single typed record stored under a fixed key. Every failure is
// reported as [ErrStore].
type Item[T any] struct {
	key []byte
}

func NewItem[T any](key string) Item[T] {
	return Item[T]{key: []byte(key)}
}

func (i Item[T]) Key() []byte {
	return i.key
}

// Load returns the stored record. A missing record is an error.
func (i Item[T]) Load(ctx context.Context, im Immutable) (T, error) {
	v, exists, err := i.MayLoad(ctx, im)
	if err != nil {
		return v, err
	}
	if !exists {
		return v, fmt.Errorf("%w: %q: %w", ErrStore, i.key, database.ErrNotFound)
	}
	return v, nil
}

// MayLoad returns the stored record and whether it exists.
func (i Item[T]) MayLoad(ctx context.Context, im Immutable) (T, bool, error) {
	var empty T
	raw, err := im.GetValue(ctx, i.key)
	if errors.Is(err, database.ErrNotFound) {
		return empty, false, nil
	}
	if err != nil {
		return empty, false, fmt.Errorf("%w: load %q: %w", ErrStore, i.key, err)
	}
	v, err := codec.Unmarshal[T](raw)
	if err != nil {
		return empty, false, fmt.Errorf("%w: decode %q: %w", ErrStore, i.key, err)
	}
	return v, true, nil
}

func (i Item[T]) Save(ctx context.Context, mu Mutable, v T) error {
	raw, err := codec.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: encode %q: %w", ErrStore, i.key, err)
	}
	if err := mu.Insert(ctx, i.key, raw); err != nil {
		return fmt.Errorf("%w: save %q: %w", ErrStore, i.key, err)
	}
	return nil
}

// Update loads the record, applies [f] and saves the result. Nothing is
// written when [f] fails.
func (i Item[T]) Update(ctx context.Context, mu Mutable, f func(T) (T, error)) (T, error) {
	v, err := i.Load(ctx, mu)
	if err != nil {
		return v, err
	}
	v, err = f(v)
	if err != nil {
		return v, err
	}
	return v, i.Save(ctx, mu, v)
}
