// Package rules holds the versioned pattern tables the brief classifier runs
// on. Tables are YAML (an embedded default ships with the binary), compiled
// once at startup and never mutated afterwards.
package rules

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"github.com/hyperifyio/cotizador/internal/negation"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// ErrInvalidRules wraps every validation failure reported by Compile.
var ErrInvalidRules = errors.New("invalid rules")

// File is the on-disk schema of a rules table.
type File struct {
	Version  string `yaml:"version"`
	Negation struct {
		Window  *int     `yaml:"window"`
		Markers []string `yaml:"markers"`
	} `yaml:"negation"`

	A struct {
		Patterns []string `yaml:"patterns"`
	} `yaml:"A"`

	B struct {
		FullMinMatches int      `yaml:"full_min_matches"`
		Full           []string `yaml:"full"`
		LiteHints      []string `yaml:"lite_hints"`
	} `yaml:"B"`

	C struct {
		DismissWhenNegated []string `yaml:"dismiss_when_negated"`
		Refresh            []string `yaml:"refresh"`
		Rebranding         []string `yaml:"rebranding"`
		Full               []string `yaml:"full"`
		Naming             []string `yaml:"naming"`
		Logo               []string `yaml:"logo"`
		Concepto           []string `yaml:"concepto"`
		Adjustment         string   `yaml:"adjustment"`
	} `yaml:"C"`

	D struct {
		DismissWhenNegated []string `yaml:"dismiss_when_negated"`
		GenericWeight      float64  `yaml:"generic_weight"`
		Full               []string `yaml:"full"`
		Lite               []string `yaml:"lite"`
		Generic            []string `yaml:"generic"`
	} `yaml:"D"`

	E struct {
		RequireGenericGate *bool    `yaml:"require_generic_gate"`
		LiteMax            int      `yaml:"lite_max"`
		FullMax            int      `yaml:"full_max"`
		Generic            []string `yaml:"generic"`
		Lite               []string `yaml:"lite"`
		Full               []string `yaml:"full"`
		Plus               []string `yaml:"plus"`
	} `yaml:"E"`

	Strong []string `yaml:"strong"`
}

// Rules is the compiled, read-only form of a File.
type Rules struct {
	Version  string
	Negation *negation.Detector

	Research []*regexp.Regexp

	BrandFull           []*regexp.Regexp
	BrandLiteHints      KeywordSet
	BrandFullMinMatches int

	CreationDismiss    []string
	CreationRefresh    []*regexp.Regexp
	CreationRebranding []*regexp.Regexp
	CreationFull       []*regexp.Regexp
	CreationNaming     []*regexp.Regexp
	CreationLogo       []*regexp.Regexp
	CreationConcepto   []*regexp.Regexp
	CreationAdjustment *regexp.Regexp

	BookDismiss       []string
	BookGenericWeight float64
	BookFull          []*regexp.Regexp
	BookLite          []*regexp.Regexp
	BookGeneric       KeywordSet

	ImplGate    bool
	ImplLiteMax int
	ImplFullMax int
	ImplGeneric KeywordSet
	ImplLite    []*regexp.Regexp
	ImplFull    []*regexp.Regexp
	ImplPlus    []*regexp.Regexp

	Strong KeywordSet
}

// Parse decodes a YAML rules table.
func Parse(data []byte) (File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("parse rules yaml: %w", err)
	}
	return f, nil
}

// Default returns the compiled embedded rules table. It panics only if the
// embedded table itself is broken, which the package tests rule out.
func Default() *Rules {
	f, err := Parse(defaultRulesYAML)
	if err != nil {
		panic(err)
	}
	r, err := Compile(f)
	if err != nil {
		panic(err)
	}
	return r
}

// DefaultYAML returns a copy of the embedded rules table.
func DefaultYAML() []byte {
	return append([]byte(nil), defaultRulesYAML...)
}

// Load reads and compiles a rules table from path. An empty path selects
// the embedded default.
func Load(path string) (*Rules, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	f, err := Parse(b)
	if err != nil {
		return nil, err
	}
	return Compile(f)
}

// Compile validates f and compiles every pattern.
func Compile(f File) (*Rules, error) {
	if strings.TrimSpace(f.Version) == "" {
		return nil, fmt.Errorf("%w: version is required", ErrInvalidRules)
	}
	window := negation.DefaultWindow
	if f.Negation.Window != nil {
		window = *f.Negation.Window
		if window < 0 {
			return nil, fmt.Errorf("%w: negation.window must not be negative", ErrInvalidRules)
		}
	}

	c := &compiler{}
	r := &Rules{
		Version:  f.Version,
		Negation: negation.New(window, f.Negation.Markers),

		Research: c.all("A.patterns", f.A.Patterns),

		BrandFull:           c.all("B.full", f.B.Full),
		BrandLiteHints:      NewKeywordSet(f.B.LiteHints),
		BrandFullMinMatches: f.B.FullMinMatches,

		CreationDismiss:    f.C.DismissWhenNegated,
		CreationRefresh:    c.all("C.refresh", f.C.Refresh),
		CreationRebranding: c.all("C.rebranding", f.C.Rebranding),
		CreationFull:       c.all("C.full", f.C.Full),
		CreationNaming:     c.all("C.naming", f.C.Naming),
		CreationLogo:       c.all("C.logo", f.C.Logo),
		CreationConcepto:   c.all("C.concepto", f.C.Concepto),
		CreationAdjustment: c.one("C.adjustment", f.C.Adjustment),

		BookDismiss:       f.D.DismissWhenNegated,
		BookGenericWeight: f.D.GenericWeight,
		BookFull:          c.all("D.full", f.D.Full),
		BookLite:          c.all("D.lite", f.D.Lite),
		BookGeneric:       NewKeywordSet(f.D.Generic),

		ImplGate:    f.E.RequireGenericGate == nil || *f.E.RequireGenericGate,
		ImplLiteMax: f.E.LiteMax,
		ImplFullMax: f.E.FullMax,
		ImplGeneric: NewKeywordSet(f.E.Generic),
		ImplLite:    c.all("E.lite", f.E.Lite),
		ImplFull:    c.all("E.full", f.E.Full),
		ImplPlus:    c.all("E.plus", f.E.Plus),

		Strong: NewKeywordSet(f.Strong),
	}
	if c.err != nil {
		return nil, c.err
	}

	if r.BrandFullMinMatches == 0 {
		r.BrandFullMinMatches = 1
	}
	if r.BrandFullMinMatches < 0 {
		return nil, fmt.Errorf("%w: B.full_min_matches must be positive", ErrInvalidRules)
	}
	if r.BookGenericWeight == 0 {
		r.BookGenericWeight = 1.0
	}
	if r.BookGenericWeight != 1.0 && r.BookGenericWeight != 0.6 {
		return nil, fmt.Errorf("%w: D.generic_weight must be 1.0 or 0.6, got %v", ErrInvalidRules, r.BookGenericWeight)
	}
	if r.ImplLiteMax == 0 {
		r.ImplLiteMax = 10
	}
	if r.ImplFullMax == 0 {
		r.ImplFullMax = 15
	}
	if r.ImplLiteMax < 0 || r.ImplFullMax <= r.ImplLiteMax {
		return nil, fmt.Errorf("%w: E.lite_max (%d) must be below E.full_max (%d)", ErrInvalidRules, r.ImplLiteMax, r.ImplFullMax)
	}
	if r.CreationAdjustment == nil {
		r.CreationAdjustment = regexp.MustCompile(`(?i)\b(ajuste(s)?|puesta\s+a\s+punto)\b`)
	}
	return r, nil
}

// Summary reports how many patterns or keywords each table holds, keyed by
// "<module>.<table>".
func (r *Rules) Summary() map[string]int {
	return map[string]int{
		"A.patterns":   len(r.Research),
		"B.full":       len(r.BrandFull),
		"B.lite_hints": r.BrandLiteHints.Len(),
		"C.refresh":    len(r.CreationRefresh),
		"C.rebranding": len(r.CreationRebranding),
		"C.full":       len(r.CreationFull),
		"C.naming":     len(r.CreationNaming),
		"C.logo":       len(r.CreationLogo),
		"C.concepto":   len(r.CreationConcepto),
		"D.full":       len(r.BookFull),
		"D.lite":       len(r.BookLite),
		"D.generic":    r.BookGeneric.Len(),
		"E.generic":    r.ImplGeneric.Len(),
		"E.lite":       len(r.ImplLite),
		"E.full":       len(r.ImplFull),
		"E.plus":       len(r.ImplPlus),
	}
}

// compiler collects the first compilation error so Compile can build the
// whole table in one expression.
type compiler struct {
	err error
}

func (c *compiler) one(field, expr string) *regexp.Regexp {
	if c.err != nil || strings.TrimSpace(expr) == "" {
		return nil
	}
	re, err := regexp.Compile(`(?i)` + expr)
	if err != nil {
		c.err = fmt.Errorf("%w: %s: %v", ErrInvalidRules, field, err)
		return nil
	}
	return re
}

func (c *compiler) all(field string, exprs []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for i, e := range exprs {
		re := c.one(fmt.Sprintf("%s[%d]", field, i), e)
		if re != nil {
			out = append(out, re)
		}
	}
	return out
}

// CountMatches returns how many patterns match text at least once.
func CountMatches(text string, patterns []*regexp.Regexp) int {
	n := 0
	for _, re := range patterns {
		if re.MatchString(text) {
			n++
		}
	}
	return n
}

// CountUnnegated returns how many patterns have at least one match in text
// whose matched phrase is not negated by det.
func CountUnnegated(text string, patterns []*regexp.Regexp, det *negation.Detector) int {
	n := 0
	for _, re := range patterns {
		for _, m := range re.FindAllString(text, -1) {
			if !det.IsNegated(text, m) {
				n++
				break
			}
		}
	}
	return n
}
