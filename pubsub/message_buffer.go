// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import (
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/timer"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// batchOverhead is the framing of an empty batch ("[]"). Every message after
// the first adds one separator.
const batchOverhead = 2

// MessageBuffer coalesces outbound messages into batches. A batch is queued
// once the next message would push its encoded size past maxSize, or once
// timeout has passed since its first message. Batches that do not fit in
// [Queue] are dropped.
type MessageBuffer struct {
	Queue chan []byte

	log     logging.Logger
	maxSize int
	timeout time.Duration
	dropped atomic.Uint64

	l       sync.Mutex
	pending [][]byte
	size    int
	timer   *timer.Timer
	closed  bool
}

func NewMessageBuffer(log logging.Logger, pending int, maxSize int, timeout time.Duration) *MessageBuffer {
	m := &MessageBuffer{
		Queue:   make(chan []byte, pending),
		log:     log,
		maxSize: maxSize,
		timeout: timeout,
		size:    batchOverhead,
	}
	m.timer = timer.NewTimer(func() {
		m.l.Lock()
		defer m.l.Unlock()

		if !m.closed {
			m.flush("timeout")
		}
	})
	go m.timer.Dispatch()
	return m
}

// Dropped returns how many messages were discarded because [Queue] was full.
func (m *MessageBuffer) Dropped() uint64 {
	return m.dropped.Load()
}

// Close flushes what is pending and closes [Queue].
func (m *MessageBuffer) Close() error {
	m.l.Lock()
	defer m.l.Unlock()

	if m.closed {
		return ErrClosed
	}
	m.flush("close")
	m.timer.Stop()
	m.closed = true
	close(m.Queue)
	return nil
}

// flush must be called with the lock held.
func (m *MessageBuffer) flush(reason string) {
	count := len(m.pending)
	if count == 0 {
		return
	}
	defer func() {
		m.pending = nil
		m.size = batchOverhead
	}()

	batch, err := CreateBatchMessage(m.pending)
	if err != nil {
		m.dropped.Add(uint64(count))
		m.log.Debug("dropped pending messages", zap.Int("count", count), zap.Error(err))
		return
	}
	select {
	case m.Queue <- batch:
		m.log.Verbo("queued batch", zap.Int("count", count), zap.String("reason", reason))
	default:
		m.dropped.Add(uint64(count))
		m.log.Debug("dropped batch", zap.Int("count", count), zap.String("reason", reason))
	}
}

// Send buffers [msg]. It never blocks.
func (m *MessageBuffer) Send(msg []byte) error {
	m.l.Lock()
	defer m.l.Unlock()

	if m.closed {
		return ErrClosed
	}
	if len(msg)+batchOverhead > m.maxSize {
		return ErrMessageTooLarge
	}

	added := len(msg)
	if len(m.pending) > 0 {
		added++
	}
	if m.size+added > m.maxSize {
		m.timer.Cancel()
		m.flush("full")
		added = len(msg)
	}

	m.size += added
	m.pending = append(m.pending, msg)
	if len(m.pending) == 1 {
		m.timer.SetTimeoutIn(m.timeout)
	}
	return nil
}
