// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package node

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/ava-labs/avalanchego/api/metrics"
	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ava-labs/hypercw/api"
	"github.com/ava-labs/hypercw/api/jsonrpc"
	"github.com/ava-labs/hypercw/api/ws"
	"github.com/ava-labs/hypercw/config"
	"github.com/ava-labs/hypercw/consts"
	"github.com/ava-labs/hypercw/contracts/adminlist"
	"github.com/ava-labs/hypercw/contracts/counter"
	"github.com/ava-labs/hypercw/logger"
	"github.com/ava-labs/hypercw/pubsub"
	"github.com/ava-labs/hypercw/runtime"
	"github.com/ava-labs/hypercw/server"
	"github.com/ava-labs/hypercw/state"
	"github.com/ava-labs/hypercw/storage"

	hctrace "github.com/ava-labs/hypercw/trace"
)

const runtimeNamespace = "runtime"

// RegisterContracts registers every bundled contract with [rt].
func RegisterContracts(rt *runtime.Runtime) error {
	if err := rt.Register(counter.ContractName, counter.Contract{}); err != nil {
		return err
	}
	return rt.Register(adminlist.ContractName, adminlist.Contract{})
}

// Node wires a runtime to durable storage and serves it over HTTP.
type Node struct {
	cfg config.Config

	logFactory *logger.Factory
	log        logging.Logger
	tracer     trace.Tracer
	gatherer   metrics.MultiGatherer
	db         storage.Database
	rt         *runtime.Runtime
	feed       *ws.WebSocketServer

	listener net.Listener
	server   server.Server
}

func New(cfg config.Config) (*Node, error) {
	logConfig, err := cfg.Log.Parse()
	if err != nil {
		return nil, err
	}
	n := &Node{
		cfg:        cfg,
		logFactory: logger.NewFactory(logConfig),
		gatherer:   metrics.NewPrefixGatherer(),
	}
	if err := n.init(); err != nil {
		_ = n.Close()
		return nil, err
	}
	return n, nil
}

func (n *Node) init() error {
	var err error
	n.log, err = n.logFactory.Make(consts.Name)
	if err != nil {
		return err
	}
	if n.cfg.Trace.Version == "" {
		n.cfg.Trace.Version = consts.Version
	}
	n.tracer, err = hctrace.New(&n.cfg.Trace)
	if err != nil {
		return err
	}
	validator, err := n.cfg.AddressValidator()
	if err != nil {
		return err
	}
	n.db, err = storage.New(n.cfg.Storage, n.cfg.DataDir, n.gatherer)
	if err != nil {
		return err
	}

	opts := []runtime.Option{}
	var feedServer *pubsub.Server
	if n.cfg.WebSocket.Enabled {
		n.feed, feedServer = ws.NewWebSocketServer(n.log, n.tracer, n.cfg.WebSocket)
		opts = append(opts, runtime.WithPublisher(n.feed))
	}
	n.rt, err = runtime.New(n.log, n.tracer, state.NewDatabaseMutable(n.db), validator, n.cfg.Runtime, opts...)
	if err != nil {
		return err
	}
	if err := RegisterContracts(n.rt); err != nil {
		return err
	}
	if err := n.gatherer.Register(runtimeNamespace, n.rt.Registry()); err != nil {
		return err
	}

	n.listener, err = net.Listen("tcp", n.cfg.Server.Address)
	if err != nil {
		return err
	}
	n.server, err = server.New(n.log, n.listener, n.cfg.Server, server.LogRequests(n.log))
	if err != nil {
		return err
	}

	host := api.NewHost(n.log, n.tracer, n.rt)
	factories := []api.HandlerFactory[api.Host]{jsonrpc.JSONRPCServerFactory{}}
	if feedServer != nil {
		factories = append(factories, ws.NewWebSocketServerFactory(feedServer))
	}
	if err := api.Register(n.server, api.Name, host, factories...); err != nil {
		return err
	}
	if n.cfg.Metrics.Enabled {
		h := promhttp.HandlerFor(n.gatherer, promhttp.HandlerOpts{})
		if err := n.server.AddRoute(h, "", n.cfg.Metrics.Path); err != nil {
			return err
		}
	}

	n.log.Info("node initialized",
		zap.String("version", consts.Version),
		zap.Stringer("address", n.listener.Addr()),
		zap.String("storage", n.cfg.Storage.Backend),
		zap.Strings("codes", n.rt.Codes()),
	)
	return nil
}

// Addr is the address the API listens on.
func (n *Node) Addr() net.Addr {
	return n.listener.Addr()
}

// URI is the base of the node's API, e.g. http://127.0.0.1:9650/ext/hypercw.
func (n *Node) URI() string {
	return "http://" + n.listener.Addr().String() + n.cfg.Server.BaseURL + "/" + api.Name
}

func (n *Node) Runtime() *runtime.Runtime {
	return n.rt
}

func (n *Node) Logger() logging.Logger {
	return n.log
}

// Run serves until [ctx] is done or the server fails.
func (n *Node) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n.log.Info("serving API", zap.String("uri", n.URI()))
		if err := n.server.Dispatch(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		n.log.Info("shutting down API")
		return n.server.Shutdown()
	})
	return g.Wait()
}

func (n *Node) Close() error {
	errs := wrappers.Errs{}
	if n.listener != nil {
		// Already closed if the server was dispatched.
		_ = n.listener.Close()
	}
	if n.db != nil {
		errs.Add(n.db.Close())
	}
	if n.tracer != nil {
		errs.Add(n.tracer.Close())
	}
	n.logFactory.Close()
	return errs.Err
}
