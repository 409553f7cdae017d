package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routekit/errors"
	"routekit/registry"
)

// buildGameRegistry builds the snapshot used across the routing tests:
// two specialists plus a keyword-less generalist fallback.
func buildGameRegistry(t *testing.T) *registry.Snapshot {
	t.Helper()
	b := registry.NewBuilder()
	require.NoError(t, b.Add(registry.Profile{
		ID:          "graphics",
		Description: "Rendering, shaders and visual effects",
		Keywords:    map[string]float64{"shader": 3, "rendering": 2, "hologram": 3},
	}))
	require.NoError(t, b.Add(registry.Profile{
		ID:          "networking",
		Description: "Multiplayer and netcode",
		Keywords:    map[string]float64{"multiplayer": 3, "netcode": 3},
		Requires:    []string{"multiplayer"},
	}))
	require.NoError(t, b.Add(registry.Profile{
		ID:          "generalist",
		Description: "Broad development support",
	}))
	b.SetFallback("generalist")
	snap, err := b.Build()
	require.NoError(t, err)
	return snap
}

// --- Unit Tests ---

func TestRouteKeywordMatch(t *testing.T) {
	snap := buildGameRegistry(t)

	d, err := Route(TaskRequest{
		Description: "Create a hologram effect for characters",
		Context:     &TaskContext{Multiplayer: false},
	}, snap)
	require.NoError(t, err)

	assert.Equal(t, "graphics", d.Primary)
	assert.Greater(t, d.Confidence, 0.0)
	assert.False(t, d.Fallback)
	assert.NotContains(t, d.Secondary, "networking")

	gs, ok := d.Score("graphics")
	require.True(t, ok)
	assert.Equal(t, 3.0, gs.Raw)
	assert.Equal(t, []string{"hologram"}, gs.Matched)
}

func TestRouteFallbackOnNoMatch(t *testing.T) {
	snap := buildGameRegistry(t)

	d, err := Route(TaskRequest{Description: "Reduce draw calls in our game"}, snap)
	require.NoError(t, err)

	assert.Equal(t, "generalist", d.Primary)
	assert.True(t, d.Fallback)
	assert.True(t, d.HasNote(NoteLowConfidence))
	assert.Equal(t, 0.0, d.Confidence)
	assert.Empty(t, d.Secondary)
}

func TestRouteEmptyDescription(t *testing.T) {
	snap := buildGameRegistry(t)

	for _, desc := range []string{"", "   ", "\n\t"} {
		_, err := Route(TaskRequest{Description: desc}, snap)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrCodeInvalidRequest), "desc %q", desc)
	}
}

func TestRouteEmptyRegistry(t *testing.T) {
	_, err := Route(TaskRequest{Description: "fix the build"}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeEmptyRegistry))
}

func TestRoutePrerequisiteSatisfied(t *testing.T) {
	snap := buildGameRegistry(t)

	d, err := Route(TaskRequest{
		Description: "Set up multiplayer netcode for battle royale",
		Context:     &TaskContext{Multiplayer: true},
	}, snap)
	require.NoError(t, err)

	assert.Equal(t, "networking", d.Primary)
	assert.Equal(t, 1.0, d.Confidence)
	assert.False(t, d.Fallback)
}

func TestRoutePrerequisiteExclusion(t *testing.T) {
	snap := buildGameRegistry(t)

	// Highest raw score, but the multiplayer prerequisite is unmet:
	// networking must never become primary.
	d, err := Route(TaskRequest{Description: "multiplayer netcode rework"}, snap)
	require.NoError(t, err)

	assert.NotEqual(t, "networking", d.Primary)
	assert.Equal(t, "generalist", d.Primary)
	assert.True(t, d.Fallback)

	// The demoted profile still surfaces as a suggestion.
	assert.Contains(t, d.Secondary, "networking")
	ns, ok := d.Score("networking")
	require.True(t, ok)
	assert.False(t, ns.Eligible)
	assert.Equal(t, 6.0, ns.Raw)
	assert.Equal(t, 3.0, ns.Effective)
}

func TestRouteDeterminism(t *testing.T) {
	snap := buildGameRegistry(t)
	req := TaskRequest{
		Description: "Fix shader compilation and rendering artifacts on Android",
		Context:     &TaskContext{Platform: "Android"},
	}

	first, err := Route(req, snap)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		d, err := Route(req, snap)
		require.NoError(t, err)
		assert.Equal(t, first, d, "call %d diverged", i)
	}
}

func TestRouteMonotonicity(t *testing.T) {
	req := TaskRequest{Description: "profile the particle effect system"}

	build := func(extra map[string]float64) *registry.Snapshot {
		kw := map[string]float64{"particle": 2}
		for k, w := range extra {
			kw[k] = w
		}
		b := registry.NewBuilder()
		require.NoError(t, b.Add(registry.Profile{ID: "vfx", Keywords: kw}))
		require.NoError(t, b.Add(registry.Profile{ID: "generalist"}))
		b.SetFallback("generalist")
		snap, err := b.Build()
		require.NoError(t, err)
		return snap
	}

	before, err := Route(req, build(nil))
	require.NoError(t, err)
	after, err := Route(req, build(map[string]float64{"effect": 1}))
	require.NoError(t, err)

	bs, _ := before.Score("vfx")
	as, _ := after.Score("vfx")
	assert.GreaterOrEqual(t, as.Raw, bs.Raw)
	assert.Equal(t, 3.0, as.Raw)
}

func TestRouteMultiWordKeyword(t *testing.T) {
	b := registry.NewBuilder()
	require.NoError(t, b.Add(registry.Profile{
		ID:       "performance",
		Keywords: map[string]float64{"draw calls": 3, "frame rate": 2},
	}))
	require.NoError(t, b.Add(registry.Profile{ID: "generalist"}))
	b.SetFallback("generalist")
	snap, err := b.Build()
	require.NoError(t, err)

	d, err := Route(TaskRequest{Description: "Reduce Draw-Calls in the town scene"}, snap)
	require.NoError(t, err)

	assert.Equal(t, "performance", d.Primary)
	ps, _ := d.Score("performance")
	assert.Equal(t, []string{"draw calls"}, ps.Matched)
}

func TestRouteHyphenatedKeyword(t *testing.T) {
	b := registry.NewBuilder()
	require.NoError(t, b.Add(registry.Profile{
		ID:       "performance",
		Keywords: map[string]float64{"draw-calls": 3},
	}))
	require.NoError(t, b.Add(registry.Profile{ID: "generalist"}))
	b.SetFallback("generalist")
	snap, err := b.Build()
	require.NoError(t, err)

	// "draw-calls" tokenizes to the bigram "draw calls"; the gram width
	// must account for that or the keyword can never match.
	d, err := Route(TaskRequest{Description: "Reduce draw calls in the town scene"}, snap)
	require.NoError(t, err)

	assert.Equal(t, "performance", d.Primary)
	assert.False(t, d.Fallback)
	ps, ok := d.Score("performance")
	require.True(t, ok)
	assert.Equal(t, 3.0, ps.Raw)
	assert.Equal(t, []string{"draw-calls"}, ps.Matched)
}

func TestRouteAmbiguity(t *testing.T) {
	b := registry.NewBuilder()
	require.NoError(t, b.Add(registry.Profile{ID: "audio", Keywords: map[string]float64{"sound": 2}}))
	require.NoError(t, b.Add(registry.Profile{ID: "physics", Keywords: map[string]float64{"collision": 2}}))
	require.NoError(t, b.Add(registry.Profile{ID: "generalist"}))
	b.SetFallback("generalist")
	snap, err := b.Build()
	require.NoError(t, err)

	d, err := Route(TaskRequest{Description: "sound glitch on collision"}, snap)
	require.NoError(t, err)

	assert.True(t, d.Ambiguous)
	assert.True(t, d.HasNote(NoteAmbiguous))
	// Ties resolve by rank order: equal priority, lexicographic ID.
	assert.Equal(t, "audio", d.Primary)
	assert.Contains(t, d.Secondary, "physics")
}

func TestRouteTieBreakPriority(t *testing.T) {
	b := registry.NewBuilder()
	require.NoError(t, b.Add(registry.Profile{ID: "audio", Keywords: map[string]float64{"sound": 2}}))
	require.NoError(t, b.Add(registry.Profile{ID: "physics", Priority: -1, Keywords: map[string]float64{"collision": 2}}))
	require.NoError(t, b.Add(registry.Profile{ID: "generalist"}))
	b.SetFallback("generalist")
	snap, err := b.Build()
	require.NoError(t, err)

	d, err := Route(TaskRequest{Description: "sound glitch on collision"}, snap)
	require.NoError(t, err)

	assert.Equal(t, "physics", d.Primary)
}

func TestRouteNoAmbiguityOnClearWinner(t *testing.T) {
	snap := buildGameRegistry(t)

	d, err := Route(TaskRequest{Description: "rewrite the shader rendering pipeline"}, snap)
	require.NoError(t, err)

	assert.Equal(t, "graphics", d.Primary)
	assert.False(t, d.Ambiguous)
}

func TestRouteSecondaryThresholdAndCap(t *testing.T) {
	b := registry.NewBuilder()
	for _, id := range []string{"alpha", "bravo", "charlie", "delta", "echo"} {
		require.NoError(t, b.Add(registry.Profile{
			ID:       id,
			Keywords: map[string]float64{"widget": 1, id: 5},
		}))
	}
	require.NoError(t, b.Add(registry.Profile{ID: "generalist"}))
	b.SetFallback("generalist")
	snap, err := b.Build()
	require.NoError(t, err)

	d, err := Route(TaskRequest{Description: "alpha widget cleanup"}, snap)
	require.NoError(t, err)

	assert.Equal(t, "alpha", d.Primary)
	assert.Len(t, d.Secondary, DefaultMaxSecondary)
	assert.NotContains(t, d.Secondary, "alpha")
	assert.NotContains(t, d.Secondary, "generalist")
}

func TestRouteCustomThreshold(t *testing.T) {
	snap := buildGameRegistry(t)
	r := New(Config{
		MinScore:        5,
		SecondaryMin:    DefaultSecondaryMin,
		MaxSecondary:    DefaultMaxSecondary,
		TieEpsilon:      DefaultTieEpsilon,
		DemotionPenalty: DefaultDemotionPenalty,
	})

	// hologram scores 3, below the raised bar: fallback takes over but
	// the partial match is still suggested.
	d, err := r.Route(TaskRequest{Description: "hologram flicker"}, snap)
	require.NoError(t, err)

	assert.Equal(t, "generalist", d.Primary)
	assert.True(t, d.Fallback)
	assert.Contains(t, d.Secondary, "graphics")
}

func TestRouteUnmatchedSignals(t *testing.T) {
	snap := buildGameRegistry(t)

	d, err := Route(TaskRequest{Description: "hologram flicker on the minimap"}, snap)
	require.NoError(t, err)

	assert.Contains(t, d.Unmatched, "flicker")
	assert.Contains(t, d.Unmatched, "minimap")
	assert.NotContains(t, d.Unmatched, "hologram")
	assert.NotContains(t, d.Unmatched, "the")
}

func TestRouteContextNeverAddsScore(t *testing.T) {
	snap := buildGameRegistry(t)
	req := TaskRequest{Description: "fix the login screen layout"}

	plain, err := Route(req, snap)
	require.NoError(t, err)

	req.Context = &TaskContext{Multiplayer: true, Platform: "webgl", RenderPipeline: "urp"}
	hinted, err := Route(req, snap)
	require.NoError(t, err)

	for _, s := range plain.Scores {
		hs, ok := hinted.Score(s.ID)
		require.True(t, ok)
		assert.Equal(t, s.Raw, hs.Raw, "profile %s", s.ID)
	}
}

func TestTaskContextTags(t *testing.T) {
	var nilCtx *TaskContext
	assert.Empty(t, nilCtx.Tags())

	ctx := &TaskContext{
		Platform:       " Android ",
		RenderPipeline: "URP",
		Multiplayer:    true,
		Capabilities:   []string{"VR", ""},
	}
	tags := ctx.Tags()
	for _, want := range []string{"platform:android", "pipeline:urp", "multiplayer", "vr"} {
		_, ok := tags[want]
		assert.True(t, ok, "missing tag %s", want)
	}
	assert.Len(t, tags, 4)
}

func TestConfigSanitize(t *testing.T) {
	c := Config{MinScore: -1, SecondaryMin: -2, MaxSecondary: -3, TieEpsilon: -4, DemotionPenalty: 0}.sanitize()
	assert.Equal(t, 0.0, c.MinScore)
	assert.Equal(t, 0.0, c.SecondaryMin)
	assert.Equal(t, 0, c.MaxSecondary)
	assert.Equal(t, 0.0, c.TieEpsilon)
	assert.Equal(t, DefaultDemotionPenalty, c.DemotionPenalty)

	c = Config{DemotionPenalty: 1.5}.sanitize()
	assert.Equal(t, DefaultDemotionPenalty, c.DemotionPenalty)
}

// --- Benchmarks ---

func BenchmarkRoute(b *testing.B) {
	builder := registry.NewBuilder()
	if err := builder.Add(registry.Profile{
		ID:       "graphics",
		Keywords: map[string]float64{"shader": 3, "rendering": 2, "hologram": 3, "draw calls": 3},
	}); err != nil {
		b.Fatal(err)
	}
	if err := builder.Add(registry.Profile{ID: "generalist"}); err != nil {
		b.Fatal(err)
	}
	builder.SetFallback("generalist")
	snap, err := builder.Build()
	if err != nil {
		b.Fatal(err)
	}

	req := TaskRequest{Description: "Fix shader compilation and reduce draw calls in the forest scene"}
	r := New(DefaultConfig())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := r.Route(req, snap); err != nil {
			b.Fatal(err)
		}
	}
}
