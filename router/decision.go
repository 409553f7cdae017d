package router

// Diagnostic notes attached to a Decision.
const (
	// NoteLowConfidence marks decisions where no specialist scored above
	// the minimum threshold and the generalist fallback was substituted.
	NoteLowConfidence = "low confidence"

	// NoteAmbiguous marks decisions where the top two eligible scores
	// were within the configured epsilon of each other. Human
	// confirmation may be warranted.
	NoteAmbiguous = "ambiguous match"
)

// ProfileScore records how one profile fared against a request. The
// full list is attached to every Decision so dispatch results can be
// audited after the fact.
type ProfileScore struct {
	// ID is the profile identifier.
	ID string `json:"id"`

	// Raw is the sum of weights of matched keywords.
	Raw float64 `json:"raw"`

	// Effective is Raw after the demotion penalty for profiles with
	// unmet prerequisites. Secondary ranking uses this value.
	Effective float64 `json:"effective"`

	// Eligible reports whether all prerequisite tags were satisfied by
	// the request context. Ineligible profiles never become primary.
	Eligible bool `json:"eligible"`

	// Matched lists the keywords that hit, in deterministic order.
	Matched []string `json:"matched,omitempty"`
}

// Decision is the result of routing one task request: one primary
// assignee, ordered secondary collaborators, and diagnostics.
// A Decision is a plain value; identical inputs produce identical
// Decisions.
type Decision struct {
	// Primary is the specialist selected to own the task. Always a
	// valid registry identifier.
	Primary string `json:"primary"`

	// Secondary lists suggested collaborators, best first.
	Secondary []string `json:"secondary,omitempty"`

	// Confidence is the primary's matched score relative to its own
	// maximum possible score, in [0,1]. It expresses relative match
	// strength, not a calibrated probability.
	Confidence float64 `json:"confidence"`

	// Fallback reports that no specialist scored above the minimum
	// threshold and the generalist fallback was substituted as primary.
	Fallback bool `json:"fallback,omitempty"`

	// Ambiguous reports that the top two eligible scores were within
	// epsilon of each other.
	Ambiguous bool `json:"ambiguous,omitempty"`

	// Notes carries human-readable diagnostic flags (see Note*).
	Notes []string `json:"notes,omitempty"`

	// Unmatched lists description signals that matched no profile
	// keyword, for diagnosing registry gaps.
	Unmatched []string `json:"unmatched,omitempty"`

	// Scores is the per-profile breakdown in registration rank order.
	Scores []ProfileScore `json:"scores,omitempty"`
}

// HasNote reports whether a diagnostic note is attached.
func (d *Decision) HasNote(note string) bool {
	for _, n := range d.Notes {
		if n == note {
			return true
		}
	}
	return false
}

// Score returns the recorded score entry for a profile ID.
func (d *Decision) Score(id string) (ProfileScore, bool) {
	for _, s := range d.Scores {
		if s.ID == id {
			return s, true
		}
	}
	return ProfileScore{}, false
}
