// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package server

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/ava-labs/avalanchego/utils/set"
	"github.com/gorilla/mux"
)

var errUnknownBaseURL = errors.New("unknown base url")

// router multiplexes on the full path (base+endpoint) and remembers which
// endpoints each base serves so a route is never registered twice.
type router struct {
	lock   sync.RWMutex
	router *mux.Router

	routes map[string]set.Set[string]
}

func newRouter() *router {
	return &router{
		router: mux.NewRouter(),
		routes: make(map[string]set.Set[string]),
	}
}

func (r *router) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	r.router.ServeHTTP(writer, request)
}

func (r *router) GetHandler(base, endpoint string) (http.Handler, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	urlBase, exists := r.routes[base]
	if !exists {
		return nil, errUnknownBaseURL
	}
	if !urlBase.Contains(endpoint) {
		return nil, fmt.Errorf("%w: %s%s", errUnknownBaseURL, base, endpoint)
	}
	return r.router.Get(base + endpoint).GetHandler(), nil
}

func (r *router) AddRouter(base, endpoint string, handler http.Handler) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	return r.addRouter(base, endpoint, handler)
}

func (r *router) addRouter(base, endpoint string, handler http.Handler) error {
	endpoints := r.routes[base]
	if endpoints.Contains(endpoint) {
		return fmt.Errorf("failed to create endpoint as %s already exists", base+endpoint)
	}

	endpoints.Add(endpoint)
	r.routes[base] = endpoints

	url := base + endpoint
	r.router.Handle(url, handler).Name(url)
	return nil
}
