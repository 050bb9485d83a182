// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ws

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"go.uber.org/zap"

	"github.com/ava-labs/hypercw/api"
	"github.com/ava-labs/hypercw/pubsub"
	"github.com/ava-labs/hypercw/runtime"
)

const (
	Endpoint  = "/ws"
	Namespace = "websocket"
)

// Subscribe is sent by a client to register for events. An empty Contract
// subscribes to every event.
type Subscribe struct {
	Contract string `json:"contract,omitempty"`
}

type Config struct {
	Enabled bool                 `json:"enabled" yaml:"enabled"`
	Server  *pubsub.ServerConfig `json:"server" yaml:"server"`
}

func NewDefaultConfig() Config {
	return Config{
		Enabled: true,
		Server:  pubsub.NewDefaultServerConfig(),
	}
}

var (
	_ runtime.Publisher            = (*WebSocketServer)(nil)
	_ api.HandlerFactory[api.Host] = (*WebSocketServerFactory)(nil)
)

func NewWebSocketServerFactory(server *pubsub.Server) *WebSocketServerFactory {
	return &WebSocketServerFactory{
		handler: server,
	}
}

type WebSocketServerFactory struct {
	handler *pubsub.Server
}

func (w WebSocketServerFactory) New(api.Host) (api.Handler, error) {
	return api.Handler{
		Path:    Endpoint,
		Handler: w.handler,
	}, nil
}

// WebSocketServer streams committed runtime events to subscribed websocket
// connections.
type WebSocketServer struct {
	logger logging.Logger
	tracer trace.Tracer

	s *pubsub.Server

	eventListeners *pubsub.Connections

	l                 sync.Mutex
	contractListeners map[string]*pubsub.Connections
}

func NewWebSocketServer(log logging.Logger, tracer trace.Tracer, cfg Config) (*WebSocketServer, *pubsub.Server) {
	w := &WebSocketServer{
		logger:            log,
		tracer:            tracer,
		eventListeners:    pubsub.NewConnections(),
		contractListeners: map[string]*pubsub.Connections{},
	}
	w.s = pubsub.New(log, cfg.Server, w.MessageCallback())
	return w, w.s
}

// Publish implements runtime.Publisher.
func (w *WebSocketServer) Publish(event *runtime.Event) {
	w.l.Lock()
	contractListeners := w.contractListeners[event.Contract]
	to := pubsub.Union(w.eventListeners, contractListeners)
	w.l.Unlock()

	if to.Len() == 0 {
		return
	}
	bytes, err := json.Marshal(event)
	if err != nil {
		w.logger.Error("failed to marshal event",
			zap.String("id", event.ID),
			zap.Error(err),
		)
		return
	}
	inactive := w.s.Publish(bytes, to)
	if len(inactive) == 0 {
		return
	}

	w.l.Lock()
	defer w.l.Unlock()
	w.eventListeners.Remove(inactive...)
	if contractListeners != nil && contractListeners.Remove(inactive...) == 0 {
		delete(w.contractListeners, event.Contract)
	}
}

func (w *WebSocketServer) addListener(sub Subscribe, c *pubsub.Connection) {
	w.l.Lock()
	defer w.l.Unlock()

	if sub.Contract == "" {
		w.eventListeners.Add(c)
		return
	}
	listeners, ok := w.contractListeners[sub.Contract]
	if !ok {
		listeners = pubsub.NewConnections()
		w.contractListeners[sub.Contract] = listeners
	}
	listeners.Add(c)
}

func (w *WebSocketServer) MessageCallback() pubsub.Callback {
	return func(msgBytes []byte, c *pubsub.Connection) {
		_, span := w.tracer.Start(context.Background(), "WebSocketServer.Callback")
		defer span.End()

		var sub Subscribe
		if err := json.Unmarshal(msgBytes, &sub); err != nil {
			w.logger.Error("failed to unmarshal subscription",
				zap.String("conn", c.ID()),
				zap.Int("len", len(msgBytes)),
				zap.Error(err),
			)
			return
		}
		w.addListener(sub, c)
		w.logger.Debug("added event listener",
			zap.String("conn", c.ID()),
			zap.String("contract", sub.Contract),
		)
	}
}
