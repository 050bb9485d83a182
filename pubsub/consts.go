// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import (
	"errors"
	"time"

	"github.com/ava-labs/avalanchego/utils/units"
)

var (
	ErrClosed          = errors.New("message buffer closed")
	ErrMessageTooLarge = errors.New("message too large")
	ErrBadBatch        = errors.New("malformed batch message")
)

// ServerConfig tunes the websocket transport. Zero durations are not
// allowed; start from NewDefaultServerConfig.
type ServerConfig struct {
	ReadBufferSize      int           `json:"readBufferSize" yaml:"readBufferSize"`
	WriteBufferSize     int           `json:"writeBufferSize" yaml:"writeBufferSize"`
	WriteWait           time.Duration `json:"writeWait" yaml:"writeWait"`
	PongWait            time.Duration `json:"pongWait" yaml:"pongWait"`
	PingPeriod          time.Duration `json:"pingPeriod" yaml:"pingPeriod"`
	MaxReadMessageSize  int64         `json:"maxReadMessageSize" yaml:"maxReadMessageSize"`
	MaxWriteMessageSize int           `json:"maxWriteMessageSize" yaml:"maxWriteMessageSize"`
	MaxPendingMessages  int           `json:"maxPendingMessages" yaml:"maxPendingMessages"`
	MaxMessageWait      time.Duration `json:"maxMessageWait" yaml:"maxMessageWait"`
}

func NewDefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		ReadBufferSize:      units.KiB,
		WriteBufferSize:     units.KiB,
		WriteWait:           10 * time.Second,
		PongWait:            60 * time.Second,
		PingPeriod:          54 * time.Second,
		MaxReadMessageSize:  16 * units.KiB,
		MaxWriteMessageSize: units.MiB,
		MaxPendingMessages:  1_024,
		MaxMessageWait:      10 * time.Millisecond,
	}
}
