// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/ava-labs/hypercw/address"
	"github.com/ava-labs/hypercw/api/ws"
	"github.com/ava-labs/hypercw/logger"
	"github.com/ava-labs/hypercw/runtime"
	"github.com/ava-labs/hypercw/server"
	"github.com/ava-labs/hypercw/storage"
	"github.com/ava-labs/hypercw/trace"
	"github.com/ava-labs/hypercw/utils"
)

const (
	EnvPrefix = "HYPERCW_"

	Bech32Validator = "bech32"
	MockValidator   = "mock"
)

var (
	ErrUnknownValidator = errors.New("unknown address validator")
	ErrInvalidConfig    = errors.New("invalid config")
)

type MetricsConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Path    string `json:"path" yaml:"path"`
}

// Config is the node configuration. Files are layered over
// NewDefaultConfig and the environment is layered over files.
type Config struct {
	DataDir   string         `json:"dataDir" yaml:"dataDir"`
	Validator string         `json:"validator" yaml:"validator"`
	Runtime   runtime.Config `json:"runtime" yaml:"runtime"`
	Storage   storage.Config `json:"storage" yaml:"storage"`
	Server    server.Config  `json:"server" yaml:"server"`
	WebSocket ws.Config      `json:"websocket" yaml:"websocket"`
	Trace     trace.Config   `json:"trace" yaml:"trace"`
	Log       logger.Config  `json:"log" yaml:"log"`
	Metrics   MetricsConfig  `json:"metrics" yaml:"metrics"`
}

func NewDefaultConfig() Config {
	return Config{
		DataDir:   ".hypercw",
		Validator: Bech32Validator,
		Runtime:   runtime.NewDefaultConfig(),
		Storage:   storage.NewDefaultConfig(),
		Server:    server.NewDefaultConfig(),
		WebSocket: ws.NewDefaultConfig(),
		Trace:     trace.NewDefaultConfig(),
		Log: logger.NewDefaultConfig(),
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// overrides are the settings that may be supplied through the environment.
// Unset variables leave the loaded value alone.
type overrides struct {
	DataDir          *string  `env:"DATA_DIR"`
	Validator        *string  `env:"VALIDATOR"`
	HRP              *string  `env:"HRP"`
	MaxForwardDepth  *int     `env:"MAX_FORWARD_DEPTH"`
	StorageBackend   *string  `env:"STORAGE_BACKEND"`
	HTTPAddress      *string  `env:"HTTP_ADDRESS"`
	AllowedHosts     []string `env:"HTTP_ALLOWED_HOSTS" envSeparator:","`
	AllowedOrigins   []string `env:"HTTP_ALLOWED_ORIGINS" envSeparator:","`
	WebSocketEnabled *bool    `env:"WEBSOCKET_ENABLED"`
	TraceEnabled     *bool    `env:"TRACE_ENABLED"`
	TraceEndpoint    *string  `env:"TRACE_ENDPOINT"`
	TraceSampleRate  *float64 `env:"TRACE_SAMPLE_RATE"`
	LogDirectory     *string  `env:"LOG_DIR"`
	LogLevel         *string  `env:"LOG_LEVEL"`
	LogDisplayLevel  *string  `env:"LOG_DISPLAY_LEVEL"`
	MetricsEnabled   *bool    `env:"METRICS_ENABLED"`
}

// Load reads [path] (JSON or YAML) over the defaults. An empty path skips
// the file. Environment overrides are applied last.
func Load(path string) (Config, error) {
	return load(path, os.Environ())
}

func load(path string, environ []string) (Config, error) {
	c := NewDefaultConfig()
	if path != "" {
		bytes, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := utils.UnmarshalDocument(bytes, &c); err != nil {
			return Config{}, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
		}
	}
	if err := c.applyEnv(environ); err != nil {
		return Config{}, err
	}
	return c, c.Validate()
}

func (c *Config) applyEnv(environ []string) error {
	vars := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			vars[k] = v
		}
	}

	var o overrides
	if err := env.ParseWithOptions(&o, env.Options{
		Prefix:      EnvPrefix,
		Environment: vars,
	}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}

	setIf(&c.DataDir, o.DataDir)
	setIf(&c.Validator, o.Validator)
	setIf(&c.Runtime.HRP, o.HRP)
	setIf(&c.Runtime.MaxForwardDepth, o.MaxForwardDepth)
	setIf(&c.Storage.Backend, o.StorageBackend)
	setIf(&c.Server.Address, o.HTTPAddress)
	if len(o.AllowedHosts) > 0 {
		c.Server.AllowedHosts = o.AllowedHosts
	}
	if len(o.AllowedOrigins) > 0 {
		c.Server.AllowedOrigins = o.AllowedOrigins
	}
	setIf(&c.WebSocket.Enabled, o.WebSocketEnabled)
	setIf(&c.Trace.Enabled, o.TraceEnabled)
	setIf(&c.Trace.Endpoint, o.TraceEndpoint)
	setIf(&c.Trace.SampleRate, o.TraceSampleRate)
	setIf(&c.Log.Directory, o.LogDirectory)
	setIf(&c.Log.LogLevel, o.LogLevel)
	setIf(&c.Log.DisplayLevel, o.LogDisplayLevel)
	setIf(&c.Metrics.Enabled, o.MetricsEnabled)
	return nil
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func (c Config) Validate() error {
	switch {
	case c.Runtime.MaxForwardDepth < 0:
		return fmt.Errorf("%w: negative max forward depth", ErrInvalidConfig)
	case c.Runtime.OutboxSize < 1:
		return fmt.Errorf("%w: outbox size must be positive", ErrInvalidConfig)
	case c.Runtime.HRP == "":
		return fmt.Errorf("%w: empty hrp", ErrInvalidConfig)
	case c.Storage.Backend != storage.MemoryBackend && c.DataDir == "":
		return fmt.Errorf("%w: %s storage needs a data directory", ErrInvalidConfig, c.Storage.Backend)
	}
	if err := c.Trace.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, err := c.Log.Parse(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	_, err := c.AddressValidator()
	return err
}

// AddressValidator returns the validator contracts use for identities.
func (c Config) AddressValidator() (address.Validator, error) {
	switch c.Validator {
	case Bech32Validator:
		return address.NewBech32(c.Runtime.HRP), nil
	case MockValidator:
		return address.Mock{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownValidator, c.Validator)
	}
}
