// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package api

import (
	"net/http"

	"github.com/ava-labs/hypercw/server"
)

const Name = "hypercw"

type Handler struct {
	Path    string
	Handler http.Handler
}

type HandlerFactory[T any] interface {
	New(t T) (Handler, error)
}

// NewJSONRPCHandler serves [service] as JSON-RPC under the method namespace
// [name].
func NewJSONRPCHandler(name string, service any) (http.Handler, error) {
	return server.NewHandler(service, name)
}

// Register mounts every handler built by [factories] on [s] under [base].
func Register[T any](s server.PathAdder, base string, host T, factories ...HandlerFactory[T]) error {
	for _, factory := range factories {
		h, err := factory.New(host)
		if err != nil {
			return err
		}
		if err := s.AddRoute(h.Handler, base, h.Path); err != nil {
			return err
		}
	}
	return nil
}
