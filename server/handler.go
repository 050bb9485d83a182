// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"net/http"

	"github.com/ava-labs/avalanchego/utils/json"
	"github.com/gorilla/rpc/v2"

	"github.com/ava-labs/hypercw/consts"
)

// MaxRequestSize bounds a JSON-RPC request body. Contract messages are capped
// at [consts.MaxMessageSize]; the rest is envelope.
const MaxRequestSize = 2 * consts.MaxMessageSize

// NewHandler serves [service] over JSON-RPC 2.0. A method Foo on the service
// is called as "[name].foo".
func NewHandler(service any, name string) (http.Handler, error) {
	rpcServer := rpc.NewServer()
	codec := json.NewCodec()
	rpcServer.RegisterCodec(codec, "application/json")
	rpcServer.RegisterCodec(codec, "application/json;charset=UTF-8")
	if err := rpcServer.RegisterService(service, name); err != nil {
		return nil, err
	}
	return http.MaxBytesHandler(rpcServer, MaxRequestSize), nil
}
