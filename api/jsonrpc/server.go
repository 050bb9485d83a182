// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonrpc

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ava-labs/hypercw/api"
	"github.com/ava-labs/hypercw/runtime"
	"github.com/ava-labs/hypercw/state"
)

const (
	Endpoint = "/rpc"
)

var (
	ErrNoOutbox = errors.New("executor does not record forwarded messages")

	_ api.HandlerFactory[api.Host] = (*JSONRPCServerFactory)(nil)
)

type JSONRPCServerFactory struct{}

func (JSONRPCServerFactory) New(host api.Host) (api.Handler, error) {
	handler, err := api.NewJSONRPCHandler(api.Name, NewJSONRPCServer(host))
	if err != nil {
		return api.Handler{}, err
	}

	return api.Handler{
		Path:    Endpoint,
		Handler: handler,
	}, nil
}

type JSONRPCServer struct {
	host api.Host
}

func NewJSONRPCServer(host api.Host) *JSONRPCServer {
	return &JSONRPCServer{host}
}

type PingReply struct {
	Success bool `json:"success"`
}

func (j *JSONRPCServer) Ping(_ *http.Request, _ *struct{}, reply *PingReply) (err error) {
	j.host.Logger().Info("ping")
	reply.Success = true
	return nil
}

type CodesReply struct {
	Codes []string `json:"codes"`
}

func (j *JSONRPCServer) Codes(_ *http.Request, _ *struct{}, reply *CodesReply) error {
	reply.Codes = j.host.Runtime().Codes()
	return nil
}

type InstantiateArgs struct {
	Code   string          `json:"code"`
	Sender string          `json:"sender"`
	Label  string          `json:"label"`
	Msg    json.RawMessage `json:"msg"`
}

type InstantiateReply struct {
	Address  string            `json:"address"`
	Response *runtime.Response `json:"response"`
}

func (j *JSONRPCServer) Instantiate(req *http.Request, args *InstantiateArgs, reply *InstantiateReply) error {
	ctx, span := j.host.Tracer().Start(req.Context(), "JSONRPCServer.Instantiate")
	defer span.End()

	addr, resp, err := j.host.Runtime().Instantiate(ctx, args.Code, args.Sender, args.Label, args.Msg)
	if err != nil {
		j.host.Logger().Debug("instantiate rejected",
			zap.String("code", args.Code),
			zap.Error(err),
		)
		return err
	}
	reply.Address = addr
	reply.Response = resp
	return nil
}

type ExecuteArgs struct {
	Contract string          `json:"contract"`
	Sender   string          `json:"sender"`
	Msg      json.RawMessage `json:"msg"`
}

type ExecuteReply struct {
	Response *runtime.Response `json:"response"`
}

func (j *JSONRPCServer) Execute(req *http.Request, args *ExecuteArgs, reply *ExecuteReply) error {
	ctx, span := j.host.Tracer().Start(req.Context(), "JSONRPCServer.Execute")
	defer span.End()

	resp, err := j.host.Runtime().Execute(ctx, args.Contract, args.Sender, args.Msg)
	if err != nil {
		j.host.Logger().Debug("execute rejected",
			zap.String("contract", args.Contract),
			zap.Error(err),
		)
		return err
	}
	reply.Response = resp
	return nil
}

type SimulateReply struct {
	Response *runtime.Response `json:"response,omitempty"`
	Keys     state.Keys        `json:"keys"`
	Error    string            `json:"error,omitempty"`
}

// Simulate reports a failed call in the reply rather than as an RPC error so
// the touched keys are still returned.
func (j *JSONRPCServer) Simulate(req *http.Request, args *ExecuteArgs, reply *SimulateReply) error {
	ctx, span := j.host.Tracer().Start(req.Context(), "JSONRPCServer.Simulate")
	defer span.End()

	resp, keys, err := j.host.Runtime().Simulate(ctx, args.Contract, args.Sender, args.Msg)
	reply.Keys = keys
	if err != nil {
		reply.Error = err.Error()
		return nil
	}
	reply.Response = resp
	return nil
}

type QueryArgs struct {
	Contract string          `json:"contract"`
	Msg      json.RawMessage `json:"msg"`
}

type QueryReply struct {
	Data json.RawMessage `json:"data"`
}

func (j *JSONRPCServer) Query(req *http.Request, args *QueryArgs, reply *QueryReply) error {
	ctx, span := j.host.Tracer().Start(req.Context(), "JSONRPCServer.Query")
	defer span.End()

	data, err := j.host.Runtime().Query(ctx, args.Contract, args.Msg)
	if err != nil {
		return err
	}
	reply.Data = data
	return nil
}

type ContractsReply struct {
	Contracts []runtime.Instance `json:"contracts"`
}

func (j *JSONRPCServer) Contracts(req *http.Request, _ *struct{}, reply *ContractsReply) error {
	instances, err := j.host.Runtime().Instances(req.Context())
	if err != nil {
		return err
	}
	reply.Contracts = instances
	return nil
}

type ContractArgs struct {
	Contract string `json:"contract"`
}

type ContractReply struct {
	Instance runtime.Instance        `json:"instance"`
	Version  runtime.ContractVersion `json:"version"`
}

func (j *JSONRPCServer) Contract(req *http.Request, args *ContractArgs, reply *ContractReply) error {
	ctx := req.Context()
	inst, err := j.host.Runtime().Instance(ctx, args.Contract)
	if err != nil {
		return err
	}
	version, err := j.host.Runtime().ContractVersion(ctx, args.Contract)
	if err != nil {
		return err
	}
	reply.Instance = inst
	reply.Version = version
	return nil
}

type ForwardedReply struct {
	Messages []runtime.Dispatched `json:"messages"`
}

func (j *JSONRPCServer) Forwarded(_ *http.Request, _ *struct{}, reply *ForwardedReply) error {
	outbox, ok := j.host.Runtime().Executor().(*runtime.Outbox)
	if !ok {
		return ErrNoOutbox
	}
	reply.Messages = outbox.Messages()
	return nil
}
