// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"errors"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/utils/units"
	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ava-labs/hypercw/state"
)

var (
	_ database.KeyValueReaderWriterDeleter = (*Database)(nil)
	_ database.KeyValueWriterDeleter       = (*Batch)(nil)
	_ state.BatchWriter                    = (*Database)(nil)
)

type Config struct {
	CacheSize                   int  `json:"cacheSize" yaml:"cacheSize"`
	BytesPerSync                int  `json:"bytesPerSync" yaml:"bytesPerSync"`
	WALBytesPerSync             int  `json:"walBytesPerSync" yaml:"walBytesPerSync"` // 0 means no background syncing
	MemTableStopWritesThreshold int  `json:"memTableStopWritesThreshold" yaml:"memTableStopWritesThreshold"`
	MemTableSize                int  `json:"memTableSize" yaml:"memTableSize"`
	MaxOpenFiles                int  `json:"maxOpenFiles" yaml:"maxOpenFiles"`
	ConcurrentCompactions       int  `json:"concurrentCompactions" yaml:"concurrentCompactions"`
	Sync                        bool `json:"sync" yaml:"sync"`
}

func NewDefaultConfig() Config {
	return Config{
		CacheSize:                   64 * units.MiB,
		BytesPerSync:                units.MiB,
		WALBytesPerSync:             0,
		MemTableStopWritesThreshold: 8,
		MemTableSize:                16 * units.MiB,
		MaxOpenFiles:                4_096,
		ConcurrentCompactions:       1,
		Sync:                        true,
	}
}

// Database is a key-value store on top of pebble. Contract state committed
// by the runtime lands here through [state.DatabaseMutable].
type Database struct {
	db      *pebble.DB
	metrics *metrics

	writeOpts *pebble.WriteOptions

	closed  bool
	closing chan struct{}
	l       sync.RWMutex
	wg      sync.WaitGroup
}

func New(file string, cfg Config) (*Database, *prometheus.Registry, error) {
	// These default settings are based on https://github.com/ethereum/go-ethereum/blob/master/ethdb/pebble/pebble.go
	d := &Database{closing: make(chan struct{})}
	opts := &pebble.Options{
		Cache:                       pebble.NewCache(int64(cfg.CacheSize)),
		BytesPerSync:                cfg.BytesPerSync,
		Comparer:                    pebble.DefaultComparer,
		WALBytesPerSync:             cfg.WALBytesPerSync,
		MemTableStopWritesThreshold: cfg.MemTableStopWritesThreshold,
		MemTableSize:                uint64(cfg.MemTableSize),
		MaxOpenFiles:                cfg.MaxOpenFiles,
		MaxConcurrentCompactions:    func() int { return cfg.ConcurrentCompactions },
		Levels:                      make([]pebble.LevelOptions, 7),
	}
	for i := 0; i < len(opts.Levels); i++ {
		l := &opts.Levels[i]
		l.BlockSize = 32 * units.KiB
		l.IndexBlockSize = 256 * units.KiB
		l.FilterPolicy = nil
		l.FilterType = pebble.TableFilter
		if i > 0 {
			l.TargetFileSize = opts.Levels[i-1].TargetFileSize * 2
		}
		l.EnsureDefaults()
	}
	opts.Experimental.ReadSamplingMultiplier = -1 // explicitly disable seek compaction
	opts.EventListener = &pebble.EventListener{
		CompactionBegin: d.onCompactionBegin,
		CompactionEnd:   d.onCompactionEnd,
		WriteStallBegin: d.onWriteStallBegin,
		WriteStallEnd:   d.onWriteStallEnd,
	}

	registry, metrics, err := newMetrics()
	if err != nil {
		return nil, nil, err
	}
	d.metrics = metrics
	d.writeOpts = &pebble.WriteOptions{Sync: cfg.Sync}

	db, err := pebble.Open(file, opts)
	if err != nil {
		return nil, nil, err
	}
	d.db = db

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.collectMetrics()
	}()
	return d, registry, nil
}

func (db *Database) Has(key []byte) (bool, error) {
	db.l.RLock()
	defer db.l.RUnlock()

	if db.closed {
		return false, database.ErrClosed
	}
	_, closer, err := db.db.Get(key)
	if err == pebble.ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, closer.Close()
}

func (db *Database) Get(key []byte) ([]byte, error) {
	start := time.Now()
	defer func() {
		db.metrics.getLatency.Observe(float64(time.Since(start)))
	}()

	db.l.RLock()
	defer db.l.RUnlock()

	if db.closed {
		return nil, database.ErrClosed
	}
	data, closer, err := db.db.Get(key)
	if err == pebble.ErrNotFound {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	ret := make([]byte, len(data))
	copy(ret, data)
	return ret, closer.Close()
}

func (db *Database) Put(key []byte, value []byte) error {
	db.l.RLock()
	defer db.l.RUnlock()

	if db.closed {
		return database.ErrClosed
	}
	return db.db.Set(key, value, db.writeOpts)
}

func (db *Database) Delete(key []byte) error {
	db.l.RLock()
	defer db.l.RUnlock()

	if db.closed {
		return database.ErrClosed
	}
	return db.db.Delete(key, db.writeOpts)
}

func (db *Database) NewBatch() *Batch {
	return &Batch{d: db, batch: db.db.NewBatch()}
}

// NewWriteBatch returns a single use batch that is released once written.
func (db *Database) NewWriteBatch() state.Batch {
	return &commitBatch{Batch: db.NewBatch()}
}

func (db *Database) Close() error {
	db.l.Lock()
	if db.closed {
		db.l.Unlock()
		return database.ErrClosed
	}
	db.closed = true
	close(db.closing)
	err := db.db.Close()
	db.l.Unlock()

	db.wg.Wait()
	return err
}

// Batch buffers writes and applies them atomically on [Batch.Write].
type Batch struct {
	d     *Database
	batch *pebble.Batch
	size  int
	keys  int
}

func (b *Batch) Put(key []byte, value []byte) error {
	b.size += len(key) + len(value)
	b.keys++
	return b.batch.Set(key, value, nil)
}

func (b *Batch) Delete(key []byte) error {
	b.size += len(key)
	b.keys++
	return b.batch.Delete(key, nil)
}

func (b *Batch) Size() int {
	return b.size
}

func (b *Batch) Write() error {
	b.d.l.RLock()
	defer b.d.l.RUnlock()

	if b.d.closed {
		return database.ErrClosed
	}
	start := time.Now()
	if err := b.batch.Commit(b.d.writeOpts); err != nil {
		return err
	}
	b.d.metrics.commitLatency.Observe(float64(time.Since(start)))
	b.d.metrics.committedKeys.Add(float64(b.keys))
	return nil
}

var errBatchClosed = errors.New("batch closed")

// Reset discards the buffered writes so the batch can be reused.
func (b *Batch) Reset() {
	b.batch.Reset()
	b.size = 0
	b.keys = 0
}

func (b *Batch) Close() error {
	if b.batch == nil {
		return errBatchClosed
	}
	err := b.batch.Close()
	b.batch = nil
	return err
}

type commitBatch struct {
	*Batch
}

func (b *commitBatch) Write() error {
	err := b.Batch.Write()
	return errors.Join(err, b.Batch.Close())
}
