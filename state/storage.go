// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"context"

	"github.com/ava-labs/avalanchego/database"
)

var (
	_ Immutable = ImmutableStorage(nil)
	_ Mutable   = MutableStorage(nil)
	_ Mutable   = (*DatabaseMutable)(nil)

	_ BatchWriter = (*DatabaseMutable)(nil)
)

// ImmutableStorage implements [Immutable] by wrapping a key-value map
type ImmutableStorage map[string][]byte

func (i ImmutableStorage) GetValue(_ context.Context, key []byte) (value []byte, err error) {
	if v, has := i[string(key)]; has {
		return v, nil
	}
	return nil, database.ErrNotFound
}

// MutableStorage implements [Mutable] by wrapping a key-value map
type MutableStorage map[string][]byte

func (m MutableStorage) GetValue(_ context.Context, key []byte) (value []byte, err error) {
	if v, has := m[string(key)]; has {
		return v, nil
	}
	return nil, database.ErrNotFound
}

func (m MutableStorage) Insert(_ context.Context, key []byte, value []byte) error {
	m[string(key)] = value
	return nil
}

func (m MutableStorage) Remove(_ context.Context, key []byte) error {
	delete(m, string(key))
	return nil
}

// Batch collects writes that reach the store together on Write.
type Batch interface {
	database.KeyValueWriterDeleter
	Write() error
}

// BatchWriter is implemented by stores that can apply a set of writes
// atomically.
type BatchWriter interface {
	NewWriteBatch() Batch
}

// DatabaseMutable adapts an avalanchego key-value database (memdb, pebble,
// sqlite, ...) to [Mutable]. Writes from [Cache.Commit] go through a single
// batch when the database supports one.
type DatabaseMutable struct {
	db       database.KeyValueReaderWriterDeleter
	newBatch func() Batch
}

func NewDatabaseMutable(db database.KeyValueReaderWriterDeleter) *DatabaseMutable {
	d := &DatabaseMutable{db: db}
	switch b := db.(type) {
	case BatchWriter:
		d.newBatch = b.NewWriteBatch
	case database.Batcher:
		d.newBatch = func() Batch { return b.NewBatch() }
	default:
		d.newBatch = func() Batch { return &sequentialBatch{db: db} }
	}
	return d
}

func (d *DatabaseMutable) GetValue(_ context.Context, key []byte) ([]byte, error) {
	return d.db.Get(key)
}

func (d *DatabaseMutable) Insert(_ context.Context, key []byte, value []byte) error {
	return d.db.Put(key, value)
}

func (d *DatabaseMutable) Remove(_ context.Context, key []byte) error {
	return d.db.Delete(key)
}

func (d *DatabaseMutable) NewWriteBatch() Batch {
	return d.newBatch()
}

type write struct {
	key    []byte
	value  []byte
	delete bool
}

// sequentialBatch replays writes one by one. It is only used for stores
// without batch support and is not atomic.
type sequentialBatch struct {
	db     database.KeyValueWriterDeleter
	writes []write
}

func (b *sequentialBatch) Put(key []byte, value []byte) error {
	b.writes = append(b.writes, write{key: key, value: value})
	return nil
}

func (b *sequentialBatch) Delete(key []byte) error {
	b.writes = append(b.writes, write{key: key, delete: true})
	return nil
}

func (b *sequentialBatch) Write() error {
	for _, w := range b.writes {
		var err error
		if w.delete {
			err = b.db.Delete(w.key)
		} else {
			err = b.db.Put(w.key, w.value)
		}
		if err != nil {
			return err
		}
	}
	b.writes = nil
	return nil
}
