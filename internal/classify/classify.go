// Package classify maps a Spanish project brief to the service modules it
// requests (A Research, B Brand DNA, C Creación, D Brandbook,
// E Implementación) and the level of each, with human-readable reasons.
//
// Every module runs an ordered decision table over evidence gathered from
// the normalized brief; the first rule that holds decides the weight.
// Classification is pure: a Classifier holds only compiled, read-only
// tables and may be shared between goroutines.
package classify

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/cotizador/internal/rules"
	"github.com/hyperifyio/cotizador/internal/textnorm"
)

// Result is the classification of one brief.
type Result struct {
	Weights Weights `json:"weights"`
	Reasons Reasons `json:"reasons"`
}

// Empty reports whether no module was detected.
func (r Result) Empty() bool { return len(r.Weights) == 0 }

// Classifier runs the five module policies over a brief.
type Classifier struct {
	rules    *rules.Rules
	policies []policy
}

// New builds a Classifier over r. A nil r selects the embedded rules.
func New(r *rules.Rules) *Classifier {
	if r == nil {
		r = rules.Default()
	}
	return &Classifier{
		rules: r,
		policies: []policy{
			researchPolicy(r),
			brandPolicy(r),
			creationPolicy(r),
			brandbookPolicy(r),
			implementationPolicy(r),
		},
	}
}

var defaultClassifier = sync.OnceValue(func() *Classifier { return New(nil) })

// Default returns a shared Classifier over the embedded rules.
func Default() *Classifier { return defaultClassifier() }

// Classify classifies brief with the default rules.
func Classify(brief string) Result { return Default().Classify(brief) }

// Rules returns the compiled tables the classifier runs on.
func (c *Classifier) Rules() *rules.Rules { return c.rules }

// Classify runs A, B, C, D and E in that order. Reasons keep that order;
// modules whose weight resolves to zero are left out of Weights.
func (c *Classifier) Classify(brief string) Result {
	return c.fromDecisions(c.Decisions(brief))
}

// ClassifyValue coerces v to text first; nil classifies as the empty brief.
func (c *Classifier) ClassifyValue(v any) Result {
	return c.fromDecisions(c.Decisions(textnorm.Value(v)))
}

// Decisions returns every module's decision, including zero-weight ones.
func (c *Classifier) Decisions(brief string) []Decision {
	return c.decide(textnorm.Normalize(brief))
}

// Decide evaluates a single module.
func (c *Classifier) Decide(m Module, brief string) Decision {
	text := textnorm.Normalize(brief)
	for _, p := range c.policies {
		if p.module() == m {
			return p.evaluate(text)
		}
	}
	return Decision{Module: m, Rule: "none"}
}

// RuleNames lists a module's decision table in evaluation order.
func (c *Classifier) RuleNames(m Module) []string {
	for _, p := range c.policies {
		if p.module() == m {
			return p.ruleNames()
		}
	}
	return nil
}

func (c *Classifier) decide(text string) []Decision {
	out := make([]Decision, 0, len(c.policies))
	for _, p := range c.policies {
		out = append(out, p.evaluate(text))
	}
	if e := log.Debug(); e.Enabled() {
		rules := make([]string, 0, len(out))
		for _, d := range out {
			rules = append(rules, string(d.Module)+":"+d.Rule)
		}
		e.Strs("rules", rules).Msg("classified")
	}
	return out
}

func (c *Classifier) fromDecisions(ds []Decision) Result {
	res := Result{Weights: Weights{}, Reasons: Reasons{}}
	for _, d := range ds {
		res.Reasons.Add(d.Reason)
		if d.Weight > 0 {
			res.Weights[d.Module] = d.Weight
		}
	}
	return res
}

// DebugInfo exposes the intermediate signals behind a classification.
type DebugInfo struct {
	Mode         string     `json:"mode"`
	HasNaming    bool       `json:"has_naming"`
	HasLogo      bool       `json:"has_logo"`
	WantsRebrand bool       `json:"wants_rebrand"`
	WantsRefresh bool       `json:"wants_refresh"`
	Strong       []string   `json:"strong"`
	Decisions    []Decision `json:"decisions"`
	Weights      Weights    `json:"weights"`
	Reasons      Reasons    `json:"reasons"`
}

// Debug classifies brief and reports the creation-module flags plus the
// strong keywords present without negation.
func (c *Classifier) Debug(brief string) DebugInfo {
	text := textnorm.Normalize(brief)
	r := c.rules
	ds := c.decide(text)
	res := c.fromDecisions(ds)
	info := DebugInfo{
		Mode:         "auto",
		HasNaming:    rules.CountMatches(text, r.CreationNaming) > 0,
		HasLogo:      rules.CountMatches(text, r.CreationLogo) > 0,
		WantsRebrand: rules.CountMatches(text, r.CreationRebranding) > 0,
		WantsRefresh: rules.CountMatches(text, r.CreationRefresh) > 0,
		Strong:       []string{},
		Decisions:    ds,
		Weights:      res.Weights,
		Reasons:      res.Reasons,
	}
	for _, kw := range r.Strong.Found(text) {
		if !r.Negation.IsNegated(text, kw) {
			info.Strong = append(info.Strong, kw)
		}
	}
	return info
}
