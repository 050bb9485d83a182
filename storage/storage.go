// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/ava-labs/avalanchego/api/metrics"
	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/memdb"

	"github.com/ava-labs/hypercw/pebble"
	"github.com/ava-labs/hypercw/utils"
)

const (
	MemoryBackend = "memory"
	PebbleBackend = "pebble"
	SQLiteBackend = "sqlite"

	namespace  = "statedb"
	sqliteFile = "state.sqlite"
)

var ErrUnknownBackend = errors.New("unknown storage backend")

// Database is the key-value store the runtime commits to.
type Database interface {
	database.KeyValueReaderWriterDeleter
	io.Closer
}

type Config struct {
	Backend string        `json:"backend" yaml:"backend"`
	Pebble  pebble.Config `json:"pebble" yaml:"pebble"`
}

func NewDefaultConfig() Config {
	return Config{
		Backend: PebbleBackend,
		Pebble:  pebble.NewDefaultConfig(),
	}
}

// New opens the configured backend under [dataDir]. Backend metrics, if any,
// are registered with [gatherer].
func New(cfg Config, dataDir string, gatherer metrics.MultiGatherer) (Database, error) {
	switch cfg.Backend {
	case MemoryBackend:
		return memdb.New(), nil
	case PebbleBackend:
		path, err := utils.InitSubDirectory(dataDir, namespace)
		if err != nil {
			return nil, err
		}
		db, registry, err := pebble.New(path, cfg.Pebble)
		if err != nil {
			return nil, err
		}
		if err := gatherer.Register(namespace, registry); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	case SQLiteBackend:
		path, err := utils.InitSubDirectory(dataDir, namespace)
		if err != nil {
			return nil, err
		}
		return OpenSQLite(filepath.Join(path, sqliteFile))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}
}
