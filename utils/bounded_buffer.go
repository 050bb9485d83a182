// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package utils

import (
	"errors"
	"sync"

	"github.com/ava-labs/avalanchego/utils/buffer"
)

var errInvalidMaxSize = errors.New("maxSize must be greater than 0")

// BoundedBuffer keeps the newest [maxSize] values. Inserting into a full
// buffer evicts the oldest value and hands it to [onEvict].
//
// BoundedBuffer is safe for concurrent use. [onEvict] runs under the lock.
type BoundedBuffer[T any] struct {
	l       sync.RWMutex
	items   buffer.Deque[T]
	maxSize int
	onEvict func(T)
	evicted uint64
}

func NewBoundedBuffer[T any](maxSize int, onEvict func(T)) (*BoundedBuffer[T], error) {
	if maxSize < 1 {
		return nil, errInvalidMaxSize
	}
	if onEvict == nil {
		onEvict = func(T) {}
	}
	return &BoundedBuffer[T]{
		items:   buffer.NewUnboundedDeque[T](maxSize + 1), // never grows
		maxSize: maxSize,
		onEvict: onEvict,
	}, nil
}

func (b *BoundedBuffer[T]) Insert(elt T) {
	b.l.Lock()
	defer b.l.Unlock()

	if b.items.Len() == b.maxSize {
		oldest, _ := b.items.PopLeft()
		b.evicted++
		b.onEvict(oldest)
	}
	b.items.PushRight(elt)
}

// Last returns the newest value, if any.
func (b *BoundedBuffer[T]) Last() (T, bool) {
	b.l.RLock()
	defer b.l.RUnlock()

	return b.items.PeekRight()
}

// Items returns a copy of the buffered values, oldest first.
func (b *BoundedBuffer[T]) Items() []T {
	b.l.RLock()
	defer b.l.RUnlock()

	return b.items.List()
}

func (b *BoundedBuffer[T]) Len() int {
	b.l.RLock()
	defer b.l.RUnlock()

	return b.items.Len()
}

// Evicted returns how many values have been pushed out so far.
func (b *BoundedBuffer[T]) Evicted() uint64 {
	b.l.RLock()
	defer b.l.RUnlock()

	return b.evicted
}
