// Copyright (c) 2026 Coope San Ramón R.L. All rights reserved.
// Author: plataforma.movil@coopesanramon.fi.cr

// Package metrics exposes Prometheus instrumentation for the transfer flow.
//
// # Architecture
//
// Metric vectors are registered once via promauto against the default
// registry and shared by reference. Label cardinality is kept low on
// purpose: rails and outcomes are closed enumerations.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// TransfersTotal counts submitted transfers by rail and outcome
	// (accepted, rejected, unavailable).
	TransfersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coopemovil_transfers_total",
		Help: "Total transfer submissions by rail and outcome",
	}, []string{"rail", "outcome"})

	// ChallengeValidations counts challenge proof validations by result
	// (validated, rejected, expired).
	ChallengeValidations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coopemovil_challenge_validations_total",
		Help: "Total challenge proof validations by result",
	}, []string{"result"})

	// SubmitLatency tracks end-to-end core submission latency per rail.
	SubmitLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "coopemovil_transfer_submit_duration_seconds",
		Help:    "Core banking submission latency per rail",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"rail"})

	// DestinationLookups counts remote destination resolutions by outcome
	// (found, not_found, unavailable).
	DestinationLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "coopemovil_destination_lookups_total",
		Help: "Total remote destination lookups by outcome",
	}, []string{"rail", "outcome"})
)

// Handler returns the HTTP handler serving the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
