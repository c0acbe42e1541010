// Package textnorm folds free text into the canonical form every matcher in
// the classifier works on: lowercase, no diacritics, single spaces.
package textnorm

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD and drops combining marks (category Mn), so
// "diseño" becomes "diseno" and "básico" becomes "basico".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

// Normalize lowercases s, removes diacritics and collapses every whitespace
// run to a single space. The result is trimmed. Normalize is pure and
// idempotent.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	folded, _, err := transform.String(stripMarks, strings.ToLower(s))
	if err != nil {
		// transform only fails on malformed chains; keep the lowercase input
		folded = strings.ToLower(s)
	}
	return strings.Join(strings.Fields(folded), " ")
}

// Value coerces an arbitrary value to text before normalizing it. nil yields
// the empty string; non-string values are formatted with fmt.Sprint.
func Value(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return Normalize(t)
	case fmt.Stringer:
		return Normalize(t.String())
	default:
		return Normalize(fmt.Sprint(t))
	}
}
