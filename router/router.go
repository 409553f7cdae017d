package router

import (
	"sort"
	"strings"

	"routekit/errors"
	"routekit/registry"
)

// Default tuning values. The exact magnitudes are product decisions;
// every routing guarantee holds for any non-negative settings.
const (
	DefaultMinScore        = 1.0
	DefaultSecondaryMin    = 0.5
	DefaultMaxSecondary    = 3
	DefaultTieEpsilon      = 0.25
	DefaultDemotionPenalty = 0.5
)

// TaskContext carries optional structured hints about the project
// supplied by the calling tool. Hints are untrusted: they gate
// prerequisite checks but never add score.
type TaskContext struct {
	// Platform is the detected target platform (e.g. "android", "webgl").
	Platform string

	// RenderPipeline is the detected render pipeline (e.g. "urp", "hdrp").
	RenderPipeline string

	// Multiplayer reports whether the project involves networking.
	Multiplayer bool

	// Capabilities lists extra capability tags the caller vouches for.
	Capabilities []string
}

// Tags returns the capability tag set this context satisfies.
// A nil context satisfies nothing.
func (c *TaskContext) Tags() map[string]struct{} {
	tags := make(map[string]struct{})
	if c == nil {
		return tags
	}
	if c.Multiplayer {
		tags["multiplayer"] = struct{}{}
	}
	if p := strings.ToLower(strings.TrimSpace(c.Platform)); p != "" {
		tags["platform:"+p] = struct{}{}
	}
	if rp := strings.ToLower(strings.TrimSpace(c.RenderPipeline)); rp != "" {
		tags["pipeline:"+rp] = struct{}{}
	}
	for _, cap := range c.Capabilities {
		if t := strings.ToLower(strings.TrimSpace(cap)); t != "" {
			tags[t] = struct{}{}
		}
	}
	return tags
}

// TaskRequest is one free-text development request plus optional
// structured context.
type TaskRequest struct {
	// Description is the free-text task description. Must be non-empty
	// after trimming whitespace.
	Description string

	// Context holds optional structured hints. May be nil.
	Context *TaskContext
}

// Config tunes the routing thresholds.
type Config struct {
	// MinScore is the minimum raw score a specialist needs to become
	// primary. Below it the generalist fallback is substituted.
	MinScore float64

	// SecondaryMin is the minimum effective score for a profile to be
	// suggested as a secondary collaborator.
	SecondaryMin float64

	// MaxSecondary caps the number of secondary suggestions.
	MaxSecondary int

	// TieEpsilon is the score gap under which the top two eligible
	// profiles are flagged as ambiguous.
	TieEpsilon float64

	// DemotionPenalty multiplies the score of profiles with unmet
	// prerequisites for secondary ranking. Must be in (0,1].
	DemotionPenalty float64
}

// DefaultConfig returns the default tuning.
func DefaultConfig() Config {
	return Config{
		MinScore:        DefaultMinScore,
		SecondaryMin:    DefaultSecondaryMin,
		MaxSecondary:    DefaultMaxSecondary,
		TieEpsilon:      DefaultTieEpsilon,
		DemotionPenalty: DefaultDemotionPenalty,
	}
}

// sanitize clamps nonsensical settings back into range.
func (c Config) sanitize() Config {
	if c.MinScore < 0 {
		c.MinScore = 0
	}
	if c.SecondaryMin < 0 {
		c.SecondaryMin = 0
	}
	if c.MaxSecondary < 0 {
		c.MaxSecondary = 0
	}
	if c.TieEpsilon < 0 {
		c.TieEpsilon = 0
	}
	if c.DemotionPenalty <= 0 || c.DemotionPenalty > 1 {
		c.DemotionPenalty = DefaultDemotionPenalty
	}
	return c
}

// Router maps task requests to dispatch decisions. It holds only
// tuning; all profile data arrives with each call, so a single Router
// is safe for concurrent use.
type Router struct {
	cfg Config
}

// New creates a Router with the given tuning.
func New(cfg Config) *Router {
	return &Router{cfg: cfg.sanitize()}
}

// Route routes a request with default tuning.
func Route(req TaskRequest, snap *registry.Snapshot) (*Decision, error) {
	return New(DefaultConfig()).Route(req, snap)
}

// Route maps a task request to a dispatch decision against one
// registry snapshot. It is a pure function of its inputs: identical
// (request, snapshot) pairs produce identical decisions, and no state
// is read or written anywhere else.
func (r *Router) Route(req TaskRequest, snap *registry.Snapshot) (*Decision, error) {
	desc := strings.TrimSpace(req.Description)
	if desc == "" {
		return nil, errors.InvalidRequest("task description is empty")
	}
	if snap.Len() == 0 {
		return nil, errors.EmptyRegistry("no specialist profiles registered")
	}
	fallback, ok := snap.Fallback()
	if !ok {
		return nil, errors.EmptyRegistry("generalist fallback profile missing from registry")
	}

	profiles := snap.Profiles()

	// Widest keyword decides how long the candidate n-grams get. Width
	// is measured on the tokenized form, so a keyword like "draw-calls"
	// counts as the bigram it will be matched as.
	maxN := 1
	for _, p := range profiles {
		for kw := range p.Keywords {
			if n := len(strings.Fields(NormalizeKeyword(kw))); n > maxN {
				maxN = n
			}
		}
	}

	tokens := Tokenize(desc)
	grams := gramSet(tokens, maxN)
	tags := req.Context.Tags()

	// Score every profile. Keywords are visited in sorted order so the
	// floating-point sum is reproducible.
	scores := make([]ProfileScore, len(profiles))
	matchedWords := make(map[string]struct{})
	for i, p := range profiles {
		var raw float64
		var matched []string
		for _, kw := range p.SortedKeywords() {
			nkw := NormalizeKeyword(kw)
			if nkw == "" {
				continue
			}
			if _, hit := grams[nkw]; hit {
				raw += p.Keywords[kw]
				matched = append(matched, kw)
				for _, w := range strings.Fields(nkw) {
					matchedWords[w] = struct{}{}
				}
			}
		}

		eligible := prerequisitesMet(p.Requires, tags)
		effective := raw
		if !eligible {
			effective = raw * r.cfg.DemotionPenalty
		}

		scores[i] = ProfileScore{
			ID:        p.ID,
			Raw:       raw,
			Effective: effective,
			Eligible:  eligible,
			Matched:   matched,
		}
	}

	// Rank candidates by score descending. The stable sort preserves
	// the snapshot's (priority, ID) order for ties, so repeated calls
	// on identical input are reproducible.
	ranked := make([]int, len(scores))
	for i := range ranked {
		ranked[i] = i
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return scores[ranked[a]].Effective > scores[ranked[b]].Effective
	})

	eligibleRanked := make([]int, 0, len(ranked))
	for _, i := range ranked {
		if scores[i].Eligible {
			eligibleRanked = append(eligibleRanked, i)
		}
	}

	decision := &Decision{Scores: scores}

	var primary ProfileScore
	var primaryProfile registry.Profile
	if len(eligibleRanked) > 0 &&
		scores[eligibleRanked[0]].Raw > 0 &&
		scores[eligibleRanked[0]].Raw >= r.cfg.MinScore {
		primary = scores[eligibleRanked[0]]
		primaryProfile, _ = snap.Get(primary.ID)

		if len(eligibleRanked) > 1 {
			second := scores[eligibleRanked[1]]
			if second.Raw > 0 && primary.Raw-second.Raw <= r.cfg.TieEpsilon {
				decision.Ambiguous = true
				decision.Notes = append(decision.Notes, NoteAmbiguous)
			}
		}
	} else {
		// Nothing scored above the threshold: the generalist takes the
		// task, and whatever did match is reported as a suggestion.
		fb, _ := scoreFor(scores, fallback.ID)
		primary = fb
		primaryProfile = fallback
		decision.Fallback = true
		decision.Notes = append(decision.Notes, NoteLowConfidence)
	}

	decision.Primary = primary.ID
	decision.Confidence = confidence(primary.Raw, primaryProfile.MaxScore())

	// Secondary collaborators: next-ranked profiles above the secondary
	// threshold, capped. In the fallback case any positive score is
	// worth surfacing.
	secondaryMin := r.cfg.SecondaryMin
	if decision.Fallback {
		secondaryMin = 0
	}
	for _, i := range ranked {
		if len(decision.Secondary) >= r.cfg.MaxSecondary {
			break
		}
		s := scores[i]
		if s.ID == decision.Primary || s.Effective <= 0 || s.Effective < secondaryMin {
			continue
		}
		decision.Secondary = append(decision.Secondary, s.ID)
	}

	// Unmatched signals: description tokens no profile keyword covered.
	for _, tok := range signalTokens(tokens) {
		if _, hit := matchedWords[tok]; !hit {
			decision.Unmatched = append(decision.Unmatched, tok)
		}
	}

	return decision, nil
}

// scoreFor finds the score entry for a profile ID.
func scoreFor(scores []ProfileScore, id string) (ProfileScore, bool) {
	for _, s := range scores {
		if s.ID == id {
			return s, true
		}
	}
	return ProfileScore{ID: id}, false
}

// prerequisitesMet reports whether every required tag is present.
func prerequisitesMet(requires []string, tags map[string]struct{}) bool {
	for _, tag := range requires {
		if _, ok := tags[tag]; !ok {
			return false
		}
	}
	return true
}

// confidence normalizes a raw score against the profile's maximum
// possible score, clamped to [0,1]. A profile with no keywords has no
// match strength to express, so its confidence is 0.
func confidence(raw, max float64) float64 {
	if max <= 0 || raw <= 0 {
		return 0
	}
	c := raw / max
	if c > 1 {
		c = 1
	}
	return c
}
