// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"

	"github.com/ava-labs/avalanchego/database"
)

var _ Mutable = (*Cache)(nil)

type change struct {
	value  []byte
	delete bool
}

// Cache buffers writes on top of a parent [Mutable]. Nothing reaches the
// parent until Commit, so a failed call can simply drop the cache.
type Cache struct {
	parent Mutable

	// insertion order is kept so Commit replays writes deterministically
	order   []string
	changes map[string]*change
}

func NewCache(parent Mutable) *Cache {
	return &Cache{
		parent:  parent,
		changes: make(map[string]*change),
	}
}

func (c *Cache) GetValue(ctx context.Context, key []byte) ([]byte, error) {
	if v, ok := c.changes[string(key)]; ok {
		if v.delete {
			return nil, database.ErrNotFound
		}
		return v.value, nil
	}
	return c.parent.GetValue(ctx, key)
}

func (c *Cache) Insert(_ context.Context, key []byte, value []byte) error {
	c.set(string(key), &change{value: value})
	return nil
}

func (c *Cache) Remove(_ context.Context, key []byte) error {
	c.set(string(key), &change{delete: true})
	return nil
}

func (c *Cache) set(k string, ch *change) {
	if _, ok := c.changes[k]; !ok {
		c.order = append(c.order, k)
	}
	c.changes[k] = ch
}

// Len returns the number of keys modified in the cache.
func (c *Cache) Len() int {
	return len(c.changes)
}

// Commit writes all buffered changes to the parent and resets the cache.
// When the parent is a [BatchWriter] the changes land atomically.
func (c *Cache) Commit(ctx context.Context) error {
	var err error
	if bw, ok := c.parent.(BatchWriter); ok {
		err = c.commitBatch(bw.NewWriteBatch())
	} else {
		err = c.commitEach(ctx)
	}
	if err != nil {
		return err
	}
	c.Discard()
	return nil
}

func (c *Cache) commitBatch(batch Batch) error {
	for _, k := range c.order {
		ch := c.changes[k]
		var err error
		if ch.delete {
			err = batch.Delete([]byte(k))
		} else {
			err = batch.Put([]byte(k), ch.value)
		}
		if err != nil {
			return err
		}
	}
	return batch.Write()
}

func (c *Cache) commitEach(ctx context.Context) error {
	for _, k := range c.order {
		ch := c.changes[k]
		var err error
		if ch.delete {
			err = c.parent.Remove(ctx, []byte(k))
		} else {
			err = c.parent.Insert(ctx, []byte(k), ch.value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Discard drops all buffered changes.
func (c *Cache) Discard() {
	c.order = nil
	c.changes = make(map[string]*change)
}
