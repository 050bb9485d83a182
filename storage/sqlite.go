// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ava-labs/avalanchego/database"

	"github.com/ava-labs/hypercw/state"

	_ "modernc.org/sqlite"
)

var (
	_ Database          = (*SQLite)(nil)
	_ state.BatchWriter = (*SQLite)(nil)
)

const (
	schema = `CREATE TABLE IF NOT EXISTS kv (
	key   BLOB PRIMARY KEY,
	value BLOB NOT NULL
) WITHOUT ROWID`

	upsertStmt = `INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`
	deleteStmt = `DELETE FROM kv WHERE key = ?`
)

// SQLite keeps state in a single key-value table.
type SQLite struct {
	sqlDB *sql.DB
}

func OpenSQLite(path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLite{sqlDB: sqlDB}, nil
}

func (s *SQLite) Has(key []byte) (bool, error) {
	_, err := s.Get(key)
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

func (s *SQLite) Get(key []byte) ([]byte, error) {
	var value []byte
	err := s.sqlDB.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if value == nil {
		value = []byte{}
	}
	return value, nil
}

func (s *SQLite) Put(key []byte, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	_, err := s.sqlDB.Exec(upsertStmt, key, value)
	return err
}

func (s *SQLite) Delete(key []byte) error {
	_, err := s.sqlDB.Exec(deleteStmt, key)
	return err
}

// NewWriteBatch returns a batch applied in a single transaction.
func (s *SQLite) NewWriteBatch() state.Batch {
	return &sqliteBatch{s: s}
}

type sqliteOp struct {
	key    []byte
	value  []byte
	delete bool
}

type sqliteBatch struct {
	s   *SQLite
	ops []sqliteOp
}

func (b *sqliteBatch) Put(key []byte, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	b.ops = append(b.ops, sqliteOp{key: key, value: value})
	return nil
}

func (b *sqliteBatch) Delete(key []byte) error {
	b.ops = append(b.ops, sqliteOp{key: key, delete: true})
	return nil
}

func (b *sqliteBatch) Write() error {
	tx, err := b.s.sqlDB.Begin()
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	for _, op := range b.ops {
		if op.delete {
			_, err = tx.Exec(deleteStmt, op.key)
		} else {
			_, err = tx.Exec(upsertStmt, op.key, op.value)
		}
		if err != nil {
			return errors.Join(err, tx.Rollback())
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	b.ops = nil
	return nil
}

func (s *SQLite) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}
