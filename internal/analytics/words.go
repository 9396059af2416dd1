package analytics

import (
	_ "embed"
	"sort"
	"strings"

	"github.com/chatflowhq/chatflow/internal/chat"
)

//go:embed stopwords.txt
var stopwordsRaw string

var stopwords = func() map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(stopwordsRaw) {
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}()

// WordCount is one ranked token of the word frequency table.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// tokenize yields lower-cased, stopword-filtered tokens from the bodies of
// the non-media messages in scope. Media placeholders and system events
// never contribute tokens.
func tokenize(t *chat.Transcript, user string) []string {
	var tokens []string
	for _, m := range filtered(t, user) {
		if m.IsMedia {
			continue
		}
		for _, w := range strings.Fields(strings.ToLower(m.Body)) {
			if _, stop := stopwords[w]; stop {
				continue
			}
			tokens = append(tokens, w)
		}
	}
	return tokens
}

// rankCounts orders keys by descending count, ties kept in first-occurrence
// order of the underlying token stream.
func rankCounts(stream []string) []WordCount {
	counts := make(map[string]int)
	var order []string
	for _, tok := range stream {
		if _, seen := counts[tok]; !seen {
			order = append(order, tok)
		}
		counts[tok]++
	}

	ranked := make([]WordCount, 0, len(order))
	for _, tok := range order {
		ranked = append(ranked, WordCount{Word: tok, Count: counts[tok]})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Count > ranked[j].Count })
	return ranked
}

// WordFrequencies returns the full token frequency table for word cloud
// rendering.
func WordFrequencies(t *chat.Transcript, user string) map[string]int {
	freq := make(map[string]int)
	for _, tok := range tokenize(t, user) {
		freq[tok]++
	}
	return freq
}

// CommonWords returns the most frequent tokens, capped at a fixed top-N.
func CommonWords(t *chat.Transcript, user string) []WordCount {
	ranked := rankCounts(tokenize(t, user))
	if len(ranked) > topWords {
		ranked = ranked[:topWords]
	}
	return ranked
}
