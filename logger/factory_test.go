// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestFactory(t *testing.T) {
	require := require.New(t)

	cfg := NewDefaultConfig()
	cfg.Directory = t.TempDir()
	cfg.Quiet = true
	lcfg, err := cfg.Parse()
	require.NoError(err)

	f := NewFactory(lcfg)
	log, err := f.Make("hypercw")
	require.NoError(err)
	_, err = f.Make("hypercw")
	require.ErrorIs(err, ErrDuplicateLogger)

	log.Info("hello", zap.String("who", "world"))
	require.NoError(f.SetLogLevel("hypercw", logging.Debug))
	require.NoError(f.SetDisplayLevel("hypercw", logging.Off))
	require.ErrorIs(f.SetLogLevel("nobody", logging.Debug), ErrUnknownLogger)
	f.Close()

	b, err := os.ReadFile(filepath.Join(cfg.Directory, "hypercw.log"))
	require.NoError(err)
	require.Contains(string(b), "hello")
}

func TestParseRejectsBadLevel(t *testing.T) {
	require := require.New(t)

	cfg := NewDefaultConfig()
	cfg.LogLevel = "loud"
	_, err := cfg.Parse()
	require.Error(err)
}
