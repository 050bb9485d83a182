// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pubsub

import (
	"net/http"
	"sync"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Server maintains the set of active connections and fans messages out to
// them. It is an http.Handler and is mounted on the node's HTTP server.
//
// Connect with websocket.DefaultDialer.Dial().
type Server struct {
	log      logging.Logger
	config   *ServerConfig
	upgrader *websocket.Upgrader

	lock     sync.RWMutex
	conns    *Connections
	callback Callback
}

// New returns a new Server. [callback] is invoked for every message read from
// a connection and may be nil.
func New(log logging.Logger, config *ServerConfig, callback Callback) *Server {
	return &Server{
		log:    log,
		config: config,
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin: func(*http.Request) bool {
				return true
			},
		},
		conns:    NewConnections(),
		callback: callback,
	}
}

// ServeHTTP upgrades the request and starts the read and write pumps of the
// new connection.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	wsConn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("failed to upgrade",
			zap.Error(err),
		)
		return
	}
	s.addConnection(newConnection(s, wsConn))
}

// Publish sends [msg] to every connection of [toConns] that is still
// attached to [s] and returns the ones that are not.
func (s *Server) Publish(msg []byte, toConns *Connections) []*Connection {
	inactive := []*Connection{}
	for _, conn := range toConns.Conns() {
		if !s.conns.Has(conn) {
			inactive = append(inactive, conn)
			continue
		}
		if !conn.Send(msg) {
			s.log.Verbo("dropping message to subscribed connection",
				zap.String("conn", conn.ID()),
			)
		}
	}
	return inactive
}

// Len returns the number of attached connections.
func (s *Server) Len() int {
	return s.conns.Len()
}

func (s *Server) addConnection(conn *Connection) {
	s.lock.Lock()
	defer s.lock.Unlock()

	conn.active.Store(true)
	s.conns.Add(conn)
	s.log.Debug("added connection",
		zap.String("conn", conn.ID()),
		zap.Stringer("remote", conn.conn.RemoteAddr()),
	)

	go conn.writePump()
	go conn.readPump()
}

func (s *Server) removeConnection(conn *Connection) {
	s.conns.Remove(conn)
}
