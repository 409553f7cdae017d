package config

import (
	"os"
	"path/filepath"
	"testing"

	"routekit/errors"
	"routekit/router"
)

const validConfig = `
fallback = "generalist"

[router]
min_score = 2.0
max_secondary = 2

[[specialist]]
id = "graphics"
description = "Rendering and shaders"

  [specialist.keywords]
  shader = 3.0
  rendering = 2.0

[[specialist]]
id = "networking"
requires = ["multiplayer"]

  [specialist.keywords]
  netcode = 3.0

[[specialist]]
id = "generalist"
description = "Broad development support"
priority = 100
`

// --- Unit Tests ---

func TestParseValid(t *testing.T) {
	res, err := Parse(validConfig)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if got := res.Snapshot.Len(); got != 3 {
		t.Errorf("Len = %d, want 3", got)
	}
	if got := res.Snapshot.FallbackID(); got != "generalist" {
		t.Errorf("FallbackID = %q, want generalist", got)
	}

	p, ok := res.Snapshot.Get("graphics")
	if !ok {
		t.Fatal("graphics profile missing")
	}
	if p.Keywords["shader"] != 3.0 {
		t.Errorf("shader weight = %v, want 3", p.Keywords["shader"])
	}

	n, ok := res.Snapshot.Get("networking")
	if !ok {
		t.Fatal("networking profile missing")
	}
	if len(n.Requires) != 1 || n.Requires[0] != "multiplayer" {
		t.Errorf("Requires = %v, want [multiplayer]", n.Requires)
	}
}

func TestParseRouterOverrides(t *testing.T) {
	res, err := Parse(validConfig)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if res.Router.MinScore != 2.0 {
		t.Errorf("MinScore = %v, want 2", res.Router.MinScore)
	}
	if res.Router.MaxSecondary != 2 {
		t.Errorf("MaxSecondary = %d, want 2", res.Router.MaxSecondary)
	}
	// Unset keys keep their defaults.
	if res.Router.SecondaryMin != router.DefaultSecondaryMin {
		t.Errorf("SecondaryMin = %v, want default %v", res.Router.SecondaryMin, router.DefaultSecondaryMin)
	}
	if res.Router.DemotionPenalty != router.DefaultDemotionPenalty {
		t.Errorf("DemotionPenalty = %v, want default %v", res.Router.DemotionPenalty, router.DefaultDemotionPenalty)
	}
}

func TestParseBadTOML(t *testing.T) {
	_, err := Parse("fallback = [broken")
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !errors.Is(err, errors.ErrCodeConfigParse) {
		t.Errorf("code = %v, want %v", errors.Code(err), errors.ErrCodeConfigParse)
	}
}

func TestParseMissingFallbackKey(t *testing.T) {
	content := `
[[specialist]]
id = "graphics"
  [specialist.keywords]
  shader = 3.0
`
	_, err := Parse(content)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, errors.ErrCodeConfigParse) {
		t.Errorf("code = %v, want %v", errors.Code(err), errors.ErrCodeConfigParse)
	}
}

func TestParseNoSpecialists(t *testing.T) {
	_, err := Parse(`fallback = "generalist"`)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, errors.ErrCodeConfigParse) {
		t.Errorf("code = %v, want %v", errors.Code(err), errors.ErrCodeConfigParse)
	}
}

func TestParseFallbackNotDefined(t *testing.T) {
	content := `
fallback = "generalist"

[[specialist]]
id = "graphics"
  [specialist.keywords]
  shader = 3.0
`
	_, err := Parse(content)
	if err == nil {
		t.Fatal("expected build error")
	}
	if !errors.Is(err, errors.ErrCodeMissingFallback) {
		t.Errorf("code = %v, want %v", errors.Code(err), errors.ErrCodeMissingFallback)
	}
}

func TestParseDuplicateSpecialist(t *testing.T) {
	content := `
fallback = "generalist"

[[specialist]]
id = "graphics"

[[specialist]]
id = "Graphics"

[[specialist]]
id = "generalist"
`
	_, err := Parse(content)
	if err == nil {
		t.Fatal("expected duplicate error")
	}
	if !errors.Is(err, errors.ErrCodeDuplicateProfile) {
		t.Errorf("code = %v, want %v", errors.Code(err), errors.ErrCodeDuplicateProfile)
	}
}

func TestParseNegativeWeight(t *testing.T) {
	content := `
fallback = "generalist"

[[specialist]]
id = "graphics"
  [specialist.keywords]
  shader = -1.0

[[specialist]]
id = "generalist"
`
	_, err := Parse(content)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, errors.ErrCodeConfigParse) {
		t.Errorf("code = %v, want %v", errors.Code(err), errors.ErrCodeConfigParse)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.toml")
	if err := os.WriteFile(path, []byte(validConfig), 0644); err != nil {
		t.Fatal(err)
	}

	res, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := res.Snapshot.Len(); got != 3 {
		t.Errorf("Len = %d, want 3", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, errors.ErrCodeConfigParse) {
		t.Errorf("code = %v, want %v", errors.Code(err), errors.ErrCodeConfigParse)
	}
}
