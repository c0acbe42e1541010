package rules

import (
	ahocorasick "github.com/cloudflare/ahocorasick"
)

// KeywordSet finds literal keywords in normalized text in a single pass using
// an Aho-Corasick automaton. It is immutable once built and safe for
// concurrent use.
type KeywordSet struct {
	words   []string
	matcher *ahocorasick.Matcher
}

// NewKeywordSet builds a set from words, dropping empty entries and
// duplicates while keeping declaration order.
func NewKeywordSet(words []string) KeywordSet {
	seen := make(map[string]bool, len(words))
	kept := make([]string, 0, len(words))
	for _, w := range words {
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		kept = append(kept, w)
	}
	ks := KeywordSet{words: kept}
	if len(kept) > 0 {
		ks.matcher = ahocorasick.NewStringMatcher(kept)
	}
	return ks
}

// Words returns the keywords in declaration order.
func (k KeywordSet) Words() []string {
	return append([]string(nil), k.words...)
}

// Len returns the number of keywords in the set.
func (k KeywordSet) Len() int { return len(k.words) }

// Found returns every keyword that occurs in text as a substring, in
// declaration order.
func (k KeywordSet) Found(text string) []string {
	if k.matcher == nil || text == "" {
		return nil
	}
	hits := k.matcher.MatchThreadSafe([]byte(text))
	if len(hits) == 0 {
		return nil
	}
	hit := make([]bool, len(k.words))
	for _, i := range hits {
		if i >= 0 && i < len(hit) {
			hit[i] = true
		}
	}
	out := make([]string, 0, len(hits))
	for i, ok := range hit {
		if ok {
			out = append(out, k.words[i])
		}
	}
	return out
}

// Any reports whether at least one keyword occurs in text.
func (k KeywordSet) Any(text string) bool {
	if k.matcher == nil || text == "" {
		return false
	}
	return len(k.matcher.MatchThreadSafe([]byte(text))) > 0
}
