// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ws

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ava-labs/hypercw/pubsub"
	"github.com/ava-labs/hypercw/runtime"
)

var ErrClientClosed = errors.New("websocket client closed")

type WebSocketClient struct {
	conn *websocket.Conn

	writeL sync.Mutex

	events  chan *runtime.Event
	errOnce sync.Once
	err     error
}

// NewWebSocketClient dials [uri], which is the node's http base
// (http://host:port) or a ws:// URL of the event endpoint.
func NewWebSocketClient(uri string, handshakeTimeout time.Duration, pending int, maxRead int64) (*WebSocketClient, error) {
	uri = strings.TrimSuffix(uri, "/")
	switch {
	case strings.HasPrefix(uri, "https://"):
		uri = "wss://" + strings.TrimPrefix(uri, "https://")
	case strings.HasPrefix(uri, "http://"):
		uri = "ws://" + strings.TrimPrefix(uri, "http://")
	}
	if !strings.HasSuffix(uri, Endpoint) {
		uri += Endpoint
	}

	dialer := &websocket.Dialer{
		HandshakeTimeout: handshakeTimeout,
	}
	conn, resp, err := dialer.Dial(uri, nil)
	if err != nil {
		return nil, err
	}
	_ = resp.Body.Close()

	c := &WebSocketClient{
		conn:   conn,
		events: make(chan *runtime.Event, pending),
	}
	conn.SetReadLimit(maxRead)
	go c.readLoop()
	return c, nil
}

func (c *WebSocketClient) setErr(err error) {
	c.errOnce.Do(func() {
		c.err = err
	})
}

func (c *WebSocketClient) readLoop() {
	defer close(c.events)

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			c.setErr(err)
			return
		}
		msgs, err := pubsub.ParseBatchMessage(int64(len(frame)), frame)
		if err != nil {
			c.setErr(err)
			return
		}
		for _, msg := range msgs {
			event := &runtime.Event{}
			if err := json.Unmarshal(msg, event); err != nil {
				c.setErr(err)
				return
			}
			c.events <- event
		}
	}
}

// Subscribe registers for the events of [contract], or every event when it
// is empty.
func (c *WebSocketClient) Subscribe(contract string) error {
	sub, err := json.Marshal(Subscribe{Contract: contract})
	if err != nil {
		return err
	}
	batch, err := pubsub.CreateBatchMessage([][]byte{sub})
	if err != nil {
		return err
	}

	c.writeL.Lock()
	defer c.writeL.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, batch)
}

// ListenEvent blocks until the next event arrives.
func (c *WebSocketClient) ListenEvent(ctx context.Context) (*runtime.Event, error) {
	select {
	case event, ok := <-c.events:
		if !ok {
			if c.err != nil {
				return nil, c.err
			}
			return nil, ErrClientClosed
		}
		return event, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *WebSocketClient) Close() error {
	c.setErr(ErrClientClosed)

	c.writeL.Lock()
	_ = c.conn.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
	)
	c.writeL.Unlock()
	return c.conn.Close()
}
