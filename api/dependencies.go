// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"context"

	"github.com/ava-labs/avalanchego/trace"
	"github.com/ava-labs/avalanchego/utils/logging"

	"github.com/ava-labs/hypercw/runtime"
	"github.com/ava-labs/hypercw/state"
)

var _ Runtime = (*runtime.Runtime)(nil)

// Runtime is the contract host surface exposed over the API.
type Runtime interface {
	Codes() []string
	Instantiate(ctx context.Context, code string, sender string, label string, msg []byte) (string, *runtime.Response, error)
	Execute(ctx context.Context, contract string, sender string, msg []byte) (*runtime.Response, error)
	Simulate(ctx context.Context, contract string, sender string, msg []byte) (*runtime.Response, state.Keys, error)
	Query(ctx context.Context, contract string, msg []byte) ([]byte, error)
	Instance(ctx context.Context, contract string) (runtime.Instance, error)
	Instances(ctx context.Context) ([]runtime.Instance, error)
	ContractVersion(ctx context.Context, contract string) (runtime.ContractVersion, error)
	Executor() runtime.Executor
}

// Host is what API handlers are built from.
type Host interface {
	Logger() logging.Logger
	Tracer() trace.Tracer
	Runtime() Runtime
}

type host struct {
	log    logging.Logger
	tracer trace.Tracer
	rt     Runtime
}

func NewHost(log logging.Logger, tracer trace.Tracer, rt Runtime) Host {
	return &host{log: log, tracer: tracer, rt: rt}
}

func (h *host) Logger() logging.Logger { return h.log }

func (h *host) Tracer() trace.Tracer { return h.tracer }

func (h *host) Runtime() Runtime { return h.rt }
