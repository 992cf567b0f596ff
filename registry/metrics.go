/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package registry

import "github.com/prometheus/client_golang/prometheus"

// metrics bundles the Prometheus instrumentation a Registry exposes. A
// Registry may be constructed without metrics (nil-safe) for tests that
// don't want to touch the default registerer.
type metrics struct {
	snapshotsOpen    prometheus.Gauge
	batchesAbsorbed  prometheus.Counter
	listenerDispatch prometheus.Counter
	createRejected   *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		snapshotsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mdfeed",
			Subsystem: "registry",
			Name:      "snapshots_open",
			Help:      "Number of snapshots currently open in this registry.",
		}),
		batchesAbsorbed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mdfeed",
			Subsystem: "registry",
			Name:      "batches_absorbed_total",
			Help:      "Event batches handed to this registry's Absorb, whether or not any snapshot matched.",
		}),
		listenerDispatch: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mdfeed",
			Subsystem: "registry",
			Name:      "listener_dispatch_total",
			Help:      "Snapshot dispatches to listeners (one per dispatched view, regardless of listener count) across all snapshots in this registry.",
		}),
		createRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mdfeed",
			Subsystem: "registry",
			Name:      "create_rejected_total",
			Help:      "Create calls rejected, partitioned by error kind.",
		}, []string{"kind"}),
	}
	if reg != nil {
		reg.MustRegister(m.snapshotsOpen, m.batchesAbsorbed, m.listenerDispatch, m.createRejected)
	}
	return m
}
