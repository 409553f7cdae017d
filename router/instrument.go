package router

import (
	"time"

	"routekit/metrics"
	"routekit/registry"
)

// Instrumented wraps a Router with Prometheus instrumentation. The
// wrapped Route stays deterministic; only counters and timings are
// recorded around it.
type Instrumented struct {
	router *Router
}

// NewInstrumented wraps a Router.
func NewInstrumented(r *Router) *Instrumented {
	return &Instrumented{router: r}
}

// Route routes a request and records outcome metrics.
func (i *Instrumented) Route(req TaskRequest, snap *registry.Snapshot) (*Decision, error) {
	start := time.Now()
	decision, err := i.router.Route(req, snap)
	metrics.RouteDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.RoutesTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	outcome := "primary"
	if decision.Fallback {
		outcome = "fallback"
	}
	metrics.RoutesTotal.WithLabelValues(outcome).Inc()
	if decision.Ambiguous {
		metrics.AmbiguousTotal.Inc()
	}

	return decision, nil
}
