package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// --- Unit Tests ---

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{"simple", "Fix the shader", []string{"fix", "the", "shader"}},
		{"punctuation", "Draw-Calls, reduced!", []string{"draw", "calls", "reduced"}},
		{"mixed case", "WebGL Build FAILED", []string{"webgl", "build", "failed"}},
		{"empty", "", []string{}},
		{"whitespace only", "  \t\n ", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.text))
		})
	}
}

func TestNormalizeKeyword(t *testing.T) {
	assert.Equal(t, "draw calls", NormalizeKeyword("Draw-Calls"))
	assert.Equal(t, "frame rate", NormalizeKeyword("  Frame   Rate "))
	assert.Equal(t, "", NormalizeKeyword("!!!"))
}

func TestGramSet(t *testing.T) {
	grams := gramSet([]string{"reduce", "draw", "calls"}, 2)

	for _, want := range []string{"reduce", "draw", "calls", "reduce draw", "draw calls"} {
		_, ok := grams[want]
		assert.True(t, ok, "missing gram %q", want)
	}
	_, ok := grams["reduce draw calls"]
	assert.False(t, ok, "trigram should not appear with maxN=2")
}

func TestGramSetClampsMaxN(t *testing.T) {
	grams := gramSet([]string{"one", "two"}, 0)
	assert.Len(t, grams, 2)
}

func TestSignalTokens(t *testing.T) {
	got := signalTokens([]string{"fix", "the", "shader", "in", "shader", "ui", "town"})

	assert.Equal(t, []string{"fix", "shader", "town"}, got)
}
