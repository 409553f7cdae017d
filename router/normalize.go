package router

import (
	"strings"

	"github.com/blevesearch/bleve/v2/analysis/token/lowercase"
	"github.com/blevesearch/bleve/v2/analysis/tokenizer/unicode"
)

// Both components are stateless, so sharing them across concurrent
// Route calls is safe.
var (
	wordTokenizer = unicode.NewUnicodeTokenizer()
	lowercaser    = lowercase.NewLowerCaseFilter()
)

// Tokenize converts free text into its comparable token form: a
// case-folded, punctuation-stripped word sequence. The same Unicode
// segmentation bleve uses for indexing keeps description tokens and
// keyword tokens aligned.
func Tokenize(text string) []string {
	stream := wordTokenizer.Tokenize([]byte(text))
	stream = lowercaser.Filter(stream)

	tokens := make([]string, 0, len(stream))
	for _, tok := range stream {
		tokens = append(tokens, string(tok.Term))
	}
	return tokens
}

// NormalizeKeyword reduces a profile keyword to the same token form as
// descriptions, so "Draw-Calls" matches the token bigram "draw calls".
func NormalizeKeyword(keyword string) string {
	return strings.Join(Tokenize(keyword), " ")
}

// gramSet builds the set of token n-grams present in the token
// sequence, for n from 1 up to maxN. Keyword matching is an exact
// lookup in this set.
func gramSet(tokens []string, maxN int) map[string]struct{} {
	if maxN < 1 {
		maxN = 1
	}
	grams := make(map[string]struct{}, len(tokens)*maxN)
	for i := range tokens {
		for n := 1; n <= maxN && i+n <= len(tokens); n++ {
			grams[strings.Join(tokens[i:i+n], " ")] = struct{}{}
		}
	}
	return grams
}

// stopWords are filtered out of the unmatched-signal diagnostics.
// They still participate in n-gram matching, so multi-word keywords
// containing them keep working.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true, "of": true,
	"with": true, "by": true, "from": true, "as": true, "is": true, "was": true,
	"are": true, "were": true, "be": true, "been": true, "being": true,
	"have": true, "has": true, "had": true, "do": true, "does": true, "did": true,
	"will": true, "would": true, "could": true, "should": true, "may": true,
	"might": true, "must": true, "can": true, "this": true, "that": true,
	"these": true, "those": true, "it": true, "its": true, "i": true, "we": true,
	"you": true, "he": true, "she": true, "they": true, "them": true,
	"our": true, "my": true, "your": true, "up": true, "set": true,
}

// signalTokens filters a token sequence down to the tokens worth
// reporting as unmatched signals: stop words and very short tokens are
// dropped, duplicates removed, first-appearance order preserved.
func signalTokens(tokens []string) []string {
	var signals []string
	seen := make(map[string]bool, len(tokens))
	for _, tok := range tokens {
		if len(tok) < 3 || stopWords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		signals = append(signals, tok)
	}
	return signals
}
