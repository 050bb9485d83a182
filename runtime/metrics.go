// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package runtime

import (
	"github.com/ava-labs/avalanchego/utils/metric"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	instantiated prometheus.Counter
	executed     prometheus.Counter
	queried      prometheus.Counter
	failed       prometheus.Counter
	forwarded    prometheus.Counter
	stateChanges prometheus.Counter

	executeDuration metric.Averager
}

func newMetrics() (*prometheus.Registry, *metrics, error) {
	r := prometheus.NewRegistry()

	executeDuration, err := metric.NewAverager(
		"runtime_execute_duration",
		"time spent executing a contract call, including forwarded calls",
		r,
	)
	if err != nil {
		return nil, nil, err
	}

	m := &metrics{
		executeDuration: executeDuration,
		instantiated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "runtime",
			Name:      "instantiated",
			Help:      "number of contract instances created",
		}),
		executed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "runtime",
			Name:      "executed",
			Help:      "number of committed execute calls",
		}),
		queried: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "runtime",
			Name:      "queried",
			Help:      "number of queries served",
		}),
		failed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "runtime",
			Name:      "failed",
			Help:      "number of calls rolled back because of an error",
		}),
		forwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "runtime",
			Name:      "forwarded",
			Help:      "number of forwarded messages handed to the executor",
		}),
		stateChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "runtime",
			Name:      "state_changes",
			Help:      "number of keys written by committed calls",
		}),
	}
	errs := wrappers.Errs{}
	errs.Add(
		r.Register(m.instantiated),
		r.Register(m.executed),
		r.Register(m.queried),
		r.Register(m.failed),
		r.Register(m.forwarded),
		r.Register(m.stateChanges),
	)
	return r, m, errs.Err
}
