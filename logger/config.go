// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package logger

import (
	"github.com/ava-labs/avalanchego/utils/logging"
)

// Config is the user facing logging configuration. Levels and format are
// strings so they can come from YAML or the environment.
type Config struct {
	Directory    string `json:"directory" yaml:"directory"`
	LogLevel     string `json:"logLevel" yaml:"logLevel"`
	DisplayLevel string `json:"displayLevel" yaml:"displayLevel"`
	Format       string `json:"format" yaml:"format"`
	MaxSize      int    `json:"maxSize" yaml:"maxSize"` // megabytes
	MaxFiles     int    `json:"maxFiles" yaml:"maxFiles"`
	MaxAge       int    `json:"maxAge" yaml:"maxAge"` // days
	Compress     bool   `json:"compress" yaml:"compress"`
	// Quiet disables console output entirely.
	Quiet bool `json:"quiet" yaml:"quiet"`
}

func NewDefaultConfig() Config {
	return Config{
		Directory:    "logs",
		LogLevel:     logging.Info.String(),
		DisplayLevel: logging.Info.String(),
		Format:       "auto",
		MaxSize:      8,
		MaxFiles:     7,
		MaxAge:       0,
	}
}

// Parse converts [c] to the avalanchego logging configuration.
func (c Config) Parse() (logging.Config, error) {
	logLevel, err := logging.ToLevel(c.LogLevel)
	if err != nil {
		return logging.Config{}, err
	}
	displayLevel, err := logging.ToLevel(c.DisplayLevel)
	if err != nil {
		return logging.Config{}, err
	}
	format, err := logging.ToFormat(c.Format, 0)
	if err != nil {
		return logging.Config{}, err
	}
	cfg := logging.Config{
		LogLevel:                logLevel,
		DisplayLevel:            displayLevel,
		LogFormat:               format,
		DisableWriterDisplaying: c.Quiet,
	}
	cfg.Directory = c.Directory
	cfg.MaxSize = c.MaxSize
	cfg.MaxFiles = c.MaxFiles
	cfg.MaxAge = c.MaxAge
	cfg.Compress = c.Compress
	return cfg, nil
}
