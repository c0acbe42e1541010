// Package negation decides whether a keyword in a normalized brief is
// preceded by negating language ("sin logo", "no necesitamos manual").
package negation

import (
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// DefaultWindow is the number of words allowed between a marker and the
// negated keyword.
const DefaultWindow = 4

// DefaultMarkers are the Spanish negation markers, already normalized.
var DefaultMarkers = []string{"sin", "no", "sin necesidad de", "excluir", "excepto", "omitir"}

// Detector matches negation markers within a fixed word window before a
// keyword. A negative Window selects DefaultWindow and an empty Markers list
// selects DefaultMarkers; a zero Window allows no words in between. A
// Detector is safe for concurrent use and must not be copied after first use.
//
// The check is a single search over the text, not one per occurrence: when
// a keyword appears several times, one negated occurrence is enough for the
// keyword to count as negated.
type Detector struct {
	Window  int
	Markers []string

	once    sync.Once
	markers string
	cache   sync.Map // keyword head -> *regexp.Regexp
}

// New returns a Detector with the given window and markers.
func New(window int, markers []string) *Detector {
	return &Detector{Window: window, Markers: markers}
}

func (d *Detector) init() {
	d.once.Do(func() {
		if d.Window < 0 {
			d.Window = DefaultWindow
		}
		ms := d.Markers
		if len(ms) == 0 {
			ms = DefaultMarkers
		}
		alts := make([]string, 0, len(ms))
		for _, m := range ms {
			words := strings.Fields(m)
			if len(words) == 0 {
				continue
			}
			for i, w := range words {
				words[i] = regexp.QuoteMeta(w)
			}
			alts = append(alts, strings.Join(words, `\s+`))
		}
		d.markers = strings.Join(alts, "|")
	})
}

func (d *Detector) pattern(head string) *regexp.Regexp {
	if re, ok := d.cache.Load(head); ok {
		return re.(*regexp.Regexp)
	}
	expr := `(?i)\b(?:` + d.markers + `)\s+(?:\w+\s+){0,` + strconv.Itoa(d.Window) + `}` + regexp.QuoteMeta(head) + `\b`
	re := regexp.MustCompile(expr)
	actual, _ := d.cache.LoadOrStore(head, re)
	return actual.(*regexp.Regexp)
}

// IsNegated reports whether the last word of keyword is preceded by a
// negation marker with at most Window words in between. text must already
// be normalized.
func (d *Detector) IsNegated(text, keyword string) bool {
	words := strings.Fields(keyword)
	if len(words) == 0 || text == "" {
		return false
	}
	d.init()
	return d.pattern(words[len(words)-1]).MatchString(text)
}

// KeywordPresent reports whether keyword occurs in text as a literal
// substring and is not negated.
func (d *Detector) KeywordPresent(text, keyword string) bool {
	return keyword != "" && strings.Contains(text, keyword) && !d.IsNegated(text, keyword)
}

// AnyKeywordPresent reports whether at least one keyword passes
// KeywordPresent.
func (d *Detector) AnyKeywordPresent(text string, keywords []string) bool {
	for _, kw := range keywords {
		if d.KeywordPresent(text, kw) {
			return true
		}
	}
	return false
}

// CountPresent returns how many keywords pass KeywordPresent.
func (d *Detector) CountPresent(text string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if d.KeywordPresent(text, kw) {
			n++
		}
	}
	return n
}
