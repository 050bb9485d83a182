// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import (
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// Callback processes one message read from [Connection].
type Callback func([]byte, *Connection)

// Connection is a single websocket peer. It is served by exactly one read
// pump and one write pump; whichever stops first tears the connection down.
type Connection struct {
	s *Server

	id     string
	conn   *websocket.Conn
	mb     *MessageBuffer
	active atomic.Bool

	closeOnce sync.Once
}

func newConnection(s *Server, conn *websocket.Conn) *Connection {
	return &Connection{
		s:    s,
		id:   uuid.NewString(),
		conn: conn,
		mb: NewMessageBuffer(
			s.log,
			s.config.MaxPendingMessages,
			s.config.MaxWriteMessageSize,
			s.config.MaxMessageWait,
		),
	}
}

// ID identifies the connection in logs.
func (c *Connection) ID() string {
	return c.id
}

func (c *Connection) isActive() bool {
	return c.active.Load()
}

// Send queues [msg] and reports whether it was accepted.
func (c *Connection) Send(msg []byte) bool {
	if !c.isActive() {
		return false
	}
	if err := c.mb.Send(msg); err != nil {
		c.s.log.Debug("unable to send message",
			zap.String("conn", c.id),
			zap.Error(err),
		)
		return false
	}
	return true
}

func (c *Connection) close(reason string) {
	c.closeOnce.Do(func() {
		c.s.removeConnection(c)
		c.active.Store(false)
		_ = c.mb.Close()
		_ = c.conn.Close()
		c.s.log.Debug("closed connection",
			zap.String("conn", c.id),
			zap.String("reason", reason),
		)
	})
}

func (c *Connection) readPump() {
	c.close(c.read())
}

// read consumes batches until the peer goes away and returns why it stopped.
func (c *Connection) read() string {
	c.conn.SetReadLimit(c.s.config.MaxReadMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(c.s.config.PongWait)); err != nil {
		return "failed to set the read deadline"
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.s.config.PongWait))
	})
	for {
		_, reader, err := c.conn.NextReader()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.s.log.Debug("unexpected close", zap.String("conn", c.id), zap.Error(err))
			}
			return "peer closed"
		}
		if c.s.callback == nil {
			continue
		}
		raw, err := io.ReadAll(reader)
		if err != nil {
			return "failed to read message"
		}
		msgs, err := ParseBatchMessage(c.s.config.MaxReadMessageSize, raw)
		if err != nil {
			c.s.log.Debug("bad batch", zap.String("conn", c.id), zap.Error(err))
			return "malformed batch"
		}
		for _, msg := range msgs {
			c.s.callback(msg, c)
		}
	}
}

func (c *Connection) writePump() {
	c.close(c.writeLoop())
}

// writeLoop drains the message buffer and keeps the peer alive with pings.
func (c *Connection) writeLoop() string {
	ticker := time.NewTicker(c.s.config.PingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-c.mb.Queue:
			if !ok {
				_ = c.write(websocket.CloseMessage, nil)
				return "message buffer closed"
			}
			if err := c.write(websocket.TextMessage, message); err != nil {
				return "failed to write message"
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return "failed to ping"
			}
		}
	}
}

func (c *Connection) write(messageType int, data []byte) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.s.config.WriteWait)); err != nil {
		return err
	}
	return c.conn.WriteMessage(messageType, data)
}
