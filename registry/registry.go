// Package registry provides immutable specialist profile registration
// for task routing.
//
// Profiles are registered once through a Builder, which produces an
// immutable Snapshot. Routing always operates on one consistent snapshot.
// Hot reload replaces the whole snapshot atomically through a Store.
package registry

import (
	stderrors "errors"
	"math"
	"sort"
	"strings"

	"routekit/errors"
)

// Lifecycle errors.
var (
	ErrClosed      = stderrors.New("registry store closed")
	ErrNilSnapshot = stderrors.New("nil snapshot")
)

// Profile describes one specialist: a named domain-expertise unit with
// weighted matching keywords and prerequisite capability tags.
// Profiles are immutable once registered.
type Profile struct {
	// ID uniquely identifies the specialist (e.g. "graphics", "networking").
	ID string

	// Description is a short human-readable summary of the specialty.
	Description string

	// Keywords maps domain keywords to non-negative relevance weights.
	// Multi-word keywords match token n-grams in the task description.
	Keywords map[string]float64

	// Requires lists prerequisite capability tags. A profile with unmet
	// prerequisites is never selected as the primary assignee.
	Requires []string

	// Priority is the tie-break rank declared at registration.
	// Lower wins. Ties on priority fall back to lexicographic ID order.
	Priority int
}

// MaxScore returns the maximum possible raw score for this profile:
// the sum of all keyword weights. Summation follows sorted keyword
// order so the result is reproducible.
func (p Profile) MaxScore() float64 {
	keys := make([]string, 0, len(p.Keywords))
	for k := range p.Keywords {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sum float64
	for _, k := range keys {
		sum += p.Keywords[k]
	}
	return sum
}

// SortedKeywords returns the profile's keywords in deterministic
// (lexicographic) order.
func (p Profile) SortedKeywords() []string {
	keys := make([]string, 0, len(p.Keywords))
	for k := range p.Keywords {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy of the profile.
func (p Profile) Clone() Profile {
	c := p
	if p.Keywords != nil {
		c.Keywords = make(map[string]float64, len(p.Keywords))
		for k, v := range p.Keywords {
			c.Keywords[k] = v
		}
	}
	if p.Requires != nil {
		c.Requires = append([]string(nil), p.Requires...)
	}
	return c
}

// ValidateProfile checks if a profile is valid for registration.
func ValidateProfile(p Profile) error {
	if strings.TrimSpace(p.ID) == "" {
		return errors.InvalidProfile(p.ID, "empty ID")
	}
	for kw, w := range p.Keywords {
		if strings.TrimSpace(kw) == "" {
			return errors.InvalidProfile(p.ID, "empty keyword")
		}
		if w < 0 {
			return errors.InvalidProfile(p.ID, "negative weight for keyword "+kw)
		}
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return errors.InvalidProfile(p.ID, "non-finite weight for keyword "+kw)
		}
	}
	for _, tag := range p.Requires {
		if strings.TrimSpace(tag) == "" {
			return errors.InvalidProfile(p.ID, "empty prerequisite tag")
		}
	}
	return nil
}

// normalizeProfile lowercases IDs, keywords and prerequisite tags and
// collapses internal whitespace, so matching is case-insensitive end to end.
func normalizeProfile(p Profile) Profile {
	n := p.Clone()
	n.ID = normalizeTerm(p.ID)
	if p.Keywords != nil {
		n.Keywords = make(map[string]float64, len(p.Keywords))
		for k, w := range p.Keywords {
			// Colliding keywords after normalization keep the higher weight.
			nk := normalizeTerm(k)
			if prev, ok := n.Keywords[nk]; !ok || w > prev {
				n.Keywords[nk] = w
			}
		}
	}
	for i, tag := range n.Requires {
		n.Requires[i] = normalizeTerm(tag)
	}
	return n
}

// normalizeTerm lowercases a term and collapses runs of whitespace.
func normalizeTerm(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
