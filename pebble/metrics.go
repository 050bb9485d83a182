// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pebble

import (
	"time"

	"github.com/ava-labs/avalanchego/utils/metric"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/cockroachdb/pebble"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsInterval = 10 * time.Second

// gauge is a value sampled from [pebble.Metrics] every [metricsInterval].
type gauge struct {
	prometheus.Gauge
	sample func(*pebble.Metrics) float64
}

type metrics struct {
	stallStart time.Time
	writeStall metric.Averager

	getLatency    metric.Averager
	commitLatency metric.Averager
	committedKeys prometheus.Counter

	compactions       *prometheus.CounterVec
	activeCompactions prometheus.Gauge

	sampled []gauge
}

func newGauge(name, help string, sample func(*pebble.Metrics) float64) gauge {
	return gauge{
		Gauge: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pebble",
			Name:      name,
			Help:      help,
		}),
		sample: sample,
	}
}

func newMetrics() (*prometheus.Registry, *metrics, error) {
	r := prometheus.NewRegistry()
	errs := wrappers.Errs{}
	averager := func(name, help string) metric.Averager {
		a, err := metric.NewAverager(name, help, r)
		errs.Add(err)
		return a
	}
	m := &metrics{
		writeStall:    averager("pebble_write_stall", "time spent waiting for disk write"),
		getLatency:    averager("pebble_read_latency", "time spent reading a record"),
		commitLatency: averager("pebble_commit_latency", "time spent committing a call's state changes"),
		committedKeys: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "pebble",
			Name:      "committed_keys",
			Help:      "number of keys written or deleted through batches",
		}),
		compactions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pebble",
			Name:      "compactions",
			Help:      "number of compactions by input level",
		}, []string{"level"}),
		activeCompactions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "pebble",
			Name:      "active_compactions",
			Help:      "number of active compactions",
		}),
		sampled: []gauge{
			newGauge("tombstone_count", "approximate count of internal tombstones", func(m *pebble.Metrics) float64 {
				return float64(m.Keys.TombstoneCount)
			}),
			newGauge("obsolete_table_size", "bytes in tables no longer referenced by the db", func(m *pebble.Metrics) float64 {
				return float64(m.Table.ObsoleteSize)
			}),
			newGauge("zombie_table_size", "bytes in unreferenced tables still held by iterators", func(m *pebble.Metrics) float64 {
				return float64(m.Table.ZombieSize)
			}),
			newGauge("obsolete_wal_size", "bytes in WAL files no longer needed by the db", func(m *pebble.Metrics) float64 {
				return float64(m.WAL.ObsoletePhysicalSize)
			}),
			newGauge("obsolete_table_count", "table files no longer referenced by the db", func(m *pebble.Metrics) float64 {
				return float64(m.Table.ObsoleteCount)
			}),
		},
	}
	if errs.Err != nil {
		return nil, nil, errs.Err
	}
	errs.Add(
		r.Register(m.committedKeys),
		r.Register(m.compactions),
		r.Register(m.activeCompactions),
	)
	for _, g := range m.sampled {
		errs.Add(r.Register(g))
	}
	return r, m, errs.Err
}

func (db *Database) onCompactionBegin(info pebble.CompactionInfo) {
	db.metrics.activeCompactions.Inc()
	level := "l1+"
	if len(info.Input) > 0 && info.Input[0].Level == 0 {
		level = "l0"
	}
	db.metrics.compactions.WithLabelValues(level).Inc()
}

func (db *Database) onCompactionEnd(pebble.CompactionInfo) {
	db.metrics.activeCompactions.Dec()
}

func (db *Database) onWriteStallBegin(pebble.WriteStallBeginInfo) {
	db.metrics.stallStart = time.Now()
}

func (db *Database) onWriteStallEnd() {
	db.metrics.writeStall.Observe(float64(time.Since(db.metrics.stallStart)))
}

func (db *Database) collectMetrics() {
	t := time.NewTicker(metricsInterval)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			sample := db.db.Metrics()
			for _, g := range db.metrics.sampled {
				g.Set(g.sample(sample))
			}
		case <-db.closing:
			return
		}
	}
}
