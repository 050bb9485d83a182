// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package jsonrpc

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/ava-labs/avalanchego/utils/rpc"

	"github.com/ava-labs/hypercw/api"
	"github.com/ava-labs/hypercw/runtime"
	"github.com/ava-labs/hypercw/state"
)

type JSONRPCClient struct {
	requester rpc.EndpointRequester
}

// NewJSONRPCClient returns a client for the node API rooted at [uri], for
// example http://127.0.0.1:9650/ext/hypercw.
func NewJSONRPCClient(uri string) *JSONRPCClient {
	uri = strings.TrimSuffix(uri, "/")
	uri += Endpoint
	return &JSONRPCClient{requester: rpc.NewEndpointRequester(uri)}
}

func (cli *JSONRPCClient) send(ctx context.Context, method string, args any, reply any) error {
	return cli.requester.SendRequest(ctx, api.Name+"."+method, args, reply)
}

func (cli *JSONRPCClient) Ping(ctx context.Context) (bool, error) {
	resp := new(PingReply)
	err := cli.send(ctx,
		"ping",
		nil,
		resp,
	)
	return resp.Success, err
}

func (cli *JSONRPCClient) Codes(ctx context.Context) ([]string, error) {
	resp := new(CodesReply)
	err := cli.send(ctx, "codes", nil, resp)
	return resp.Codes, err
}

func (cli *JSONRPCClient) Instantiate(
	ctx context.Context,
	code string,
	sender string,
	label string,
	msg json.RawMessage,
) (string, *runtime.Response, error) {
	resp := new(InstantiateReply)
	err := cli.send(
		ctx,
		"instantiate",
		&InstantiateArgs{
			Code:   code,
			Sender: sender,
			Label:  label,
			Msg:    msg,
		},
		resp,
	)
	if err != nil {
		return "", nil, err
	}
	return resp.Address, resp.Response, nil
}

func (cli *JSONRPCClient) Execute(ctx context.Context, contract string, sender string, msg json.RawMessage) (*runtime.Response, error) {
	resp := new(ExecuteReply)
	err := cli.send(
		ctx,
		"execute",
		&ExecuteArgs{
			Contract: contract,
			Sender:   sender,
			Msg:      msg,
		},
		resp,
	)
	if err != nil {
		return nil, err
	}
	return resp.Response, nil
}

// Simulate returns the keys touched by the call. A call that failed is
// reported through the returned reason with a nil error.
func (cli *JSONRPCClient) Simulate(
	ctx context.Context,
	contract string,
	sender string,
	msg json.RawMessage,
) (*runtime.Response, state.Keys, string, error) {
	resp := new(SimulateReply)
	err := cli.send(
		ctx,
		"simulate",
		&ExecuteArgs{
			Contract: contract,
			Sender:   sender,
			Msg:      msg,
		},
		resp,
	)
	if err != nil {
		return nil, nil, "", err
	}
	return resp.Response, resp.Keys, resp.Error, nil
}

func (cli *JSONRPCClient) Query(ctx context.Context, contract string, msg json.RawMessage) (json.RawMessage, error) {
	resp := new(QueryReply)
	err := cli.send(
		ctx,
		"query",
		&QueryArgs{
			Contract: contract,
			Msg:      msg,
		},
		resp,
	)
	return resp.Data, err
}

func (cli *JSONRPCClient) Contracts(ctx context.Context) ([]runtime.Instance, error) {
	resp := new(ContractsReply)
	err := cli.send(ctx, "contracts", nil, resp)
	return resp.Contracts, err
}

func (cli *JSONRPCClient) Contract(ctx context.Context, contract string) (runtime.Instance, runtime.ContractVersion, error) {
	resp := new(ContractReply)
	err := cli.send(ctx, "contract", &ContractArgs{Contract: contract}, resp)
	return resp.Instance, resp.Version, err
}

func (cli *JSONRPCClient) Forwarded(ctx context.Context) ([]runtime.Dispatched, error) {
	resp := new(ForwardedReply)
	err := cli.send(ctx, "forwarded", nil, resp)
	return resp.Messages, err
}
