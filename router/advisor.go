package router

import (
	"context"

	"github.com/google/uuid"

	"routekit/errors"
	"routekit/knowledge"
	"routekit/logging"
	"routekit/registry"
)

// RefSearcher finds supporting guide references for a routed request.
// *knowledge.Index satisfies it.
type RefSearcher interface {
	Search(ctx context.Context, queryText, specialist string, limit int) ([]knowledge.Reference, error)
}

// AdvisorConfig configures an Advisor.
type AdvisorConfig struct {
	// Router computes dispatch decisions. Required.
	Router *Router

	// Store serves the current registry snapshot. Required.
	Store *registry.Store

	// Knowledge supplies supporting references. Nil disables references.
	Knowledge RefSearcher

	// Logger receives routing events. Nil disables logging.
	Logger *logging.Logger

	// MaxReferences caps attached references per decision. Zero means 3.
	MaxReferences int
}

// Advice is a dispatch decision plus its supporting material.
type Advice struct {
	// RequestID tags this advice for logging and correlation.
	RequestID string `json:"request_id"`

	// Decision is the routing result.
	Decision *Decision `json:"decision"`

	// References lists supporting guides for the primary assignee.
	References []knowledge.Reference `json:"references,omitempty"`
}

// Advisor binds the pure router to the live registry snapshot and the
// guide index: the convenience surface the calling tool talks to.
type Advisor struct {
	router  *Router
	store   *registry.Store
	refs    RefSearcher
	log     *logging.Logger
	maxRefs int
}

// NewAdvisor creates an Advisor.
func NewAdvisor(cfg AdvisorConfig) (*Advisor, error) {
	if cfg.Router == nil {
		return nil, errors.Internal("advisor requires a router")
	}
	if cfg.Store == nil {
		return nil, errors.Internal("advisor requires a registry store")
	}
	maxRefs := cfg.MaxReferences
	if maxRefs <= 0 {
		maxRefs = 3
	}
	return &Advisor{
		router:  cfg.Router,
		store:   cfg.Store,
		refs:    cfg.Knowledge,
		log:     cfg.Logger,
		maxRefs: maxRefs,
	}, nil
}

// Advise routes a request against the current snapshot and attaches
// supporting guide references for the primary assignee. The reference
// lookup is best-effort: an index failure is logged and the dispatch
// decision still returned.
func (a *Advisor) Advise(ctx context.Context, req TaskRequest) (*Advice, error) {
	requestID := uuid.New().String()

	decision, err := a.router.Route(req, a.store.Current())
	if err != nil {
		if a.log != nil {
			a.log.RouteFailed(requestID, err)
		}
		return nil, errors.Wrap(err, "routing request", errors.WithRequestID(requestID))
	}

	advice := &Advice{RequestID: requestID, Decision: decision}

	if a.refs != nil {
		refs, err := a.refs.Search(ctx, req.Description, decision.Primary, a.maxRefs)
		if err != nil {
			if a.log != nil {
				a.log.ReferenceLookupFailed(requestID, decision.Primary, err)
			}
		} else {
			advice.References = refs
		}
	}

	if a.log != nil {
		a.log.RouteDecision(requestID, decision.Primary, decision.Confidence, decision.Secondary)
		if decision.Fallback {
			a.log.FallbackUsed(requestID, decision.Unmatched)
		}
	}

	return advice, nil
}
