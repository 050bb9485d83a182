// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

var _ Server = (*server)(nil)

type PathAdder interface {
	AddRoute(handler http.Handler, base, endpoint string) error
}

type Server interface {
	PathAdder
	Handler() http.Handler
	// Dispatch serves until Shutdown is called.
	Dispatch() error
	Shutdown() error
}

type HTTPConfig struct {
	ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
	ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
	WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
	IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
}

// Config is the listener and policy configuration of the node's API.
type Config struct {
	HTTPConfig `yaml:",inline"`

	Address         string        `json:"address" yaml:"address"`
	BaseURL         string        `json:"baseURL" yaml:"baseURL"`
	AllowedOrigins  []string      `json:"allowedOrigins" yaml:"allowedOrigins"`
	AllowedHosts    []string      `json:"allowedHosts" yaml:"allowedHosts"`
	ShutdownTimeout time.Duration `json:"shutdownTimeout" yaml:"shutdownTimeout"`
}

func NewDefaultConfig() Config {
	return Config{
		HTTPConfig: HTTPConfig{
			ReadTimeout:       30 * time.Second,
			ReadHeaderTimeout: 30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		Address:         "127.0.0.1:9650",
		BaseURL:         "/ext",
		AllowedOrigins:  []string{"*"},
		AllowedHosts:    []string{"localhost"},
		ShutdownTimeout: 10 * time.Second,
	}
}

// Wrapper decorates the root handler. Later wrappers see requests first.
type Wrapper interface {
	WrapHandler(h http.Handler) http.Handler
}

type WrapperFunc func(http.Handler) http.Handler

func (f WrapperFunc) WrapHandler(h http.Handler) http.Handler {
	return f(h)
}

// LogRequests logs every request at debug level once it has been served.
func LogRequests(log logging.Logger) Wrapper {
	return WrapperFunc(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Debug("served request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("remote", r.RemoteAddr),
				zap.Duration("duration", time.Since(start)),
			)
		})
	})
}

type server struct {
	log      logging.Logger
	baseURL  string
	router   *router
	srv      *http.Server
	listener net.Listener

	shutdownTimeout time.Duration
}

// New builds a server on [listener]. Requests pass through the host filter,
// CORS and gzip before reaching the router.
func New(log logging.Logger, listener net.Listener, cfg Config, wrappers ...Wrapper) (Server, error) {
	r := newRouter()
	var handler http.Handler = gziphandler.GzipHandler(
		cors.New(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowCredentials: true,
		}).Handler(filterInvalidHosts(r, cfg.AllowedHosts)),
	)
	for _, w := range wrappers {
		handler = w.WrapHandler(handler)
	}

	log.Info("API created",
		zap.String("address", listener.Addr().String()),
		zap.Strings("allowedOrigins", cfg.AllowedOrigins),
		zap.Strings("allowedHosts", cfg.AllowedHosts),
	)
	return &server{
		log:     log,
		baseURL: cfg.BaseURL,
		router:  r,
		srv: &http.Server{
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
		},
		listener:        listener,
		shutdownTimeout: cfg.ShutdownTimeout,
	}, nil
}

func (s *server) Dispatch() error {
	return s.srv.Serve(s.listener)
}

// AddRoute mounts [handler] at baseURL/base+endpoint. An empty base mounts
// it directly under baseURL.
func (s *server) AddRoute(handler http.Handler, base, endpoint string) error {
	url := s.baseURL
	if base != "" {
		url = fmt.Sprintf("%s/%s", s.baseURL, base)
	}
	s.log.Info("adding route",
		zap.String("url", url),
		zap.String("endpoint", endpoint),
	)
	return s.router.AddRouter(url, endpoint, handler)
}

func (s *server) Handler() http.Handler {
	return s.srv.Handler
}

// Shutdown drains in-flight requests, then force closes whatever is left
// after the shutdown timeout.
func (s *server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	err := s.srv.Shutdown(ctx)
	_ = s.srv.Close()
	return err
}
