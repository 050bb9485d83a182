// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import "time"

type Option func(*Runtime)

// WithExecutor replaces the default [Outbox] executor.
func WithExecutor(e Executor) Option {
	return func(r *Runtime) {
		r.executor = e
	}
}

func WithPublisher(p Publisher) Option {
	return func(r *Runtime) {
		r.publisher = p
	}
}

func WithClock(now func() time.Time) Option {
	return func(r *Runtime) {
		r.clock = now
	}
}
