/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// APIRequestsTotal counts HTTP requests by method, endpoint and status.
	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "movierazzi_api_requests_total",
		Help: "Total number of API requests.",
	}, []string{"method", "endpoint", "status"})

	// APIRequestDuration observes request latency.
	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "movierazzi_api_request_duration_seconds",
		Help:    "API request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint", "status"})

	// APIActiveConnections tracks in-flight requests.
	APIActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "movierazzi_api_active_connections",
		Help: "Number of in-flight API requests.",
	})

	// PlansCreatedTotal counts completed scheduling runs.
	PlansCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "movierazzi_plans_created_total",
		Help: "Total number of schedules created.",
	})

	// MoviesUnscheduledTotal counts movies that fit into no slot.
	MoviesUnscheduledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "movierazzi_movies_unscheduled_total",
		Help: "Total number of candidate movies left unscheduled.",
	})

	// TMDBRequestsTotal counts outbound TMDB calls by endpoint and outcome.
	TMDBRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "movierazzi_tmdb_requests_total",
		Help: "Total number of TMDB API requests.",
	}, []string{"endpoint", "outcome"})

	// CacheHitsTotal and CacheMissesTotal track runtime cache efficiency.
	CacheHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "movierazzi_cache_hits_total",
		Help: "Total number of cache hits.",
	})
	CacheMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "movierazzi_cache_misses_total",
		Help: "Total number of cache misses.",
	})
)

// Handler exposes the metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
