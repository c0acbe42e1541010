// Package quantity pulls a representative piece count out of a normalized
// brief ("entre 8 y 12 piezas", "hasta 5", "mas de 10", ">= 15", "12 posts").
package quantity

import (
	"math"
	"regexp"
	"strconv"
)

// maxQuantity bounds parsed numbers so arithmetic on them cannot overflow.
const maxQuantity = math.MaxInt32

const units = `(?:adaptacion(?:es)?|piezas?|posts?|banners?|aplicacion(?:es)?)`

var (
	betweenRe    = regexp.MustCompile(`\bentre\s+(\d+)\s+y\s+(\d+)\b`)
	upToRe       = regexp.MustCompile(`\bhasta\s+(\d+)\b`)
	moreThanRe   = regexp.MustCompile(`\bmas\s+de\s+(\d+)\b`)
	comparisonRe = regexp.MustCompile(`(>=|>|<=|<)\s*(\d+)`)
	countUnitRe  = regexp.MustCompile(`\b(\d+)\s*` + units + `\b`)
	unitCountRe  = regexp.MustCompile(`\b` + units + `\s*(?:de|x)?\s*(\d+)\b`)
)

// Extract returns the first quantity expression found in text, applying the
// forms in strict priority order and never combining them:
//
//  1. "entre X y Y"  -> (X+Y)/2, integer division
//  2. "hasta X"      -> X
//  3. "mas de X"     -> X+1
//  4. ">=N", "<=N"   -> N; ">N" -> N+1; "<N" -> max(0, N-1)
//  5. "N piezas"     -> N (also adaptaciones, posts, banners, aplicaciones)
//  6. "piezas de N", "piezas x N" -> N
//
// text must already be normalized. ok is false when nothing matches.
func Extract(text string) (qty int, ok bool) {
	if text == "" {
		return 0, false
	}
	if m := betweenRe.FindStringSubmatch(text); m != nil {
		return (atoi(m[1]) + atoi(m[2])) / 2, true
	}
	if m := upToRe.FindStringSubmatch(text); m != nil {
		return atoi(m[1]), true
	}
	if m := moreThanRe.FindStringSubmatch(text); m != nil {
		return atoi(m[1]) + 1, true
	}
	if m := comparisonRe.FindStringSubmatch(text); m != nil {
		n := atoi(m[2])
		switch m[1] {
		case ">":
			return n + 1, true
		case "<":
			return max(0, n-1), true
		default:
			return n, true
		}
	}
	if m := countUnitRe.FindStringSubmatch(text); m != nil {
		return atoi(m[1]), true
	}
	if m := unitCountRe.FindStringSubmatch(text); m != nil {
		return atoi(m[1]), true
	}
	return 0, false
}

// atoi parses a run of ASCII digits, saturating at maxQuantity.
func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n > maxQuantity {
		return maxQuantity
	}
	return n
}
