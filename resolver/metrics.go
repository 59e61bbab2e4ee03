// Copyright 2025 The Placefinder Authors
// SPDX-License-Identifier: Apache-2.0

package resolver

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts provider calls and resolutions. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	upstreamCalls *prometheus.CounterVec
	resolutions   *prometheus.CounterVec
}

// NewMetrics registers the resolver collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		upstreamCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "placefinder",
			Name:      "upstream_calls_total",
			Help:      "Provider calls by cascade step and outcome.",
		}, []string{"step", "outcome"}),
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "placefinder",
			Name:      "resolutions_total",
			Help:      "Completed resolutions by source and whether coordinates were found.",
		}, []string{"source", "found"}),
	}

	reg.MustRegister(m.upstreamCalls, m.resolutions)

	return m
}

func (m *Metrics) upstream(step, outcome string) {
	if m == nil {
		return
	}

	m.upstreamCalls.WithLabelValues(step, outcome).Inc()
}

func (m *Metrics) resolved(p ResolvedPlace) {
	if m == nil {
		return
	}

	m.resolutions.WithLabelValues(string(p.Source), strconv.FormatBool(p.Found())).Inc()
}
