package registry

import (
	"sort"

	"routekit/errors"
)

// Snapshot is an immutable set of specialist profiles keyed by ID, plus
// a designated generalist fallback. Snapshots are safe for concurrent
// use by any number of routing calls without synchronization.
type Snapshot struct {
	profiles   map[string]Profile
	order      []string // IDs sorted by (priority, ID)
	fallbackID string
}

// Len returns the number of registered profiles.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.profiles)
}

// Get retrieves a profile by ID.
func (s *Snapshot) Get(id string) (Profile, bool) {
	if s == nil {
		return Profile{}, false
	}
	p, ok := s.profiles[normalizeTerm(id)]
	return p, ok
}

// Has reports whether a profile with the given ID is registered.
func (s *Snapshot) Has(id string) bool {
	_, ok := s.Get(id)
	return ok
}

// IDs returns all profile IDs in rank order (priority, then ID).
func (s *Snapshot) IDs() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.order...)
}

// Profiles returns all profiles in rank order (priority, then ID).
func (s *Snapshot) Profiles() []Profile {
	if s == nil {
		return nil
	}
	result := make([]Profile, 0, len(s.order))
	for _, id := range s.order {
		result = append(result, s.profiles[id])
	}
	return result
}

// FallbackID returns the designated generalist fallback profile ID.
func (s *Snapshot) FallbackID() string {
	if s == nil {
		return ""
	}
	return s.fallbackID
}

// Fallback returns the generalist fallback profile.
func (s *Snapshot) Fallback() (Profile, bool) {
	if s == nil {
		return Profile{}, false
	}
	return s.Get(s.fallbackID)
}

// Builder accumulates profiles and produces an immutable Snapshot.
// A Builder is not safe for concurrent use; build once at startup
// (or per reload) and share the resulting Snapshot.
type Builder struct {
	profiles   map[string]Profile
	fallbackID string
}

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{profiles: make(map[string]Profile)}
}

// Add validates and registers a profile. The profile is deep-copied, so
// later mutation of the caller's keyword map does not leak into the
// eventual snapshot. Registering the same ID twice is an error.
func (b *Builder) Add(p Profile) error {
	if err := ValidateProfile(p); err != nil {
		return err
	}
	n := normalizeProfile(p)
	if _, exists := b.profiles[n.ID]; exists {
		return errors.DuplicateProfile(n.ID)
	}
	b.profiles[n.ID] = n
	return nil
}

// SetFallback designates the generalist fallback profile by ID.
// The profile may be added before or after this call; existence, and
// the requirement that it carries no prerequisite tags, are checked
// at Build time.
func (b *Builder) SetFallback(id string) {
	b.fallbackID = normalizeTerm(id)
}

// Build produces the immutable Snapshot. It fails when no profiles were
// added or when the designated fallback is missing.
func (b *Builder) Build() (*Snapshot, error) {
	if len(b.profiles) == 0 {
		return nil, errors.EmptyRegistry("no specialist profiles registered")
	}
	if b.fallbackID == "" {
		return nil, errors.FromCode(errors.ErrCodeMissingFallback)
	}
	fb, ok := b.profiles[b.fallbackID]
	if !ok {
		return nil, errors.MissingFallback(b.fallbackID)
	}
	// The fallback must be assignable to any request, so it cannot
	// gate itself behind prerequisite tags.
	if len(fb.Requires) > 0 {
		return nil, errors.InvalidProfile(fb.ID, "fallback profile cannot have prerequisite tags")
	}

	profiles := make(map[string]Profile, len(b.profiles))
	order := make([]string, 0, len(b.profiles))
	for id, p := range b.profiles {
		profiles[id] = p
		order = append(order, id)
	}
	sort.Slice(order, func(i, j int) bool {
		pi, pj := profiles[order[i]], profiles[order[j]]
		if pi.Priority != pj.Priority {
			return pi.Priority < pj.Priority
		}
		return pi.ID < pj.ID
	})

	return &Snapshot{
		profiles:   profiles,
		order:      order,
		fallbackID: b.fallbackID,
	}, nil
}
