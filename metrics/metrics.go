// Package metrics exposes Prometheus metrics for routing activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RoutesTotal counts routing calls by outcome (primary, fallback, error).
	RoutesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routekit_routes_total",
			Help: "Total number of routing calls by outcome.",
		},
		[]string{"outcome"},
	)

	// AmbiguousTotal counts decisions flagged as ambiguous.
	AmbiguousTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "routekit_ambiguous_total",
			Help: "Total number of decisions flagged as ambiguous.",
		},
	)

	// RouteDuration records routing call latency.
	RouteDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "routekit_route_duration_seconds",
			Help:    "Latency of routing calls.",
			Buckets: prometheus.DefBuckets,
		},
	)

	// ProfilesLoaded reports the number of profiles in the served snapshot.
	ProfilesLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "routekit_profiles_loaded",
			Help: "Number of specialist profiles in the current snapshot.",
		},
	)

	// ReloadsTotal counts profile configuration reloads by status.
	ReloadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "routekit_reloads_total",
			Help: "Total number of profile configuration reloads by status (success/failed).",
		},
		[]string{"status"},
	)
)

// Register is an explicit registration point to call from process
// startup. promauto already registers everything on the default
// registerer; this anchors the import.
func Register() {}
