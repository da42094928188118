// Copyright (c) 2026 Grove
// Licensed under the MIT License. See LICENSE file in the project root for details.

package druid

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts query and cancellation outcomes. Useful when the client is
// embedded in a long-running service; the CLI runs with an unregistered set.
type Metrics struct {
	queriesTotal      *prometheus.CounterVec
	remoteCancelTotal *prometheus.CounterVec
}

// NewMetrics builds the metric set. reg may be nil to keep the metrics
// unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		queriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "grove",
			Subsystem: "client",
			Name:      "queries_total",
			Help:      "Queries submitted to the engine, by terminal outcome.",
		}, []string{"outcome"}),
		remoteCancelTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "grove",
			Subsystem: "client",
			Name:      "remote_cancels_total",
			Help:      "Best-effort remote cancel notifications, by outcome.",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) query(outcome string) {
	if m != nil {
		m.queriesTotal.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) remoteCancel(outcome string) {
	if m != nil {
		m.remoteCancelTotal.WithLabelValues(outcome).Inc()
	}
}
