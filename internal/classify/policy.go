package classify

// rule is one row of a module's decision table. Rules are evaluated in
// order and the first whose predicate holds decides the module's weight.
type rule[E any] struct {
	name   string
	when   func(E) bool
	weight float64
	// reason may be nil or return "" when the rule adds no explanation.
	reason func(E) string
}

// decide returns the first rule whose predicate holds for ev.
func decide[E any](ev E, table []rule[E]) (rule[E], bool) {
	for _, r := range table {
		if r.when(ev) {
			return r, true
		}
	}
	return rule[E]{}, false
}

// Decision is the outcome of one module's policy on one brief.
type Decision struct {
	Module Module  `json:"module"`
	Rule   string  `json:"rule"`
	Weight float64 `json:"weight"`
	Reason string  `json:"reason,omitempty"`
}

// policy evaluates one module: it gathers evidence from normalized text and
// runs the module's table over it.
type policy interface {
	module() Module
	ruleNames() []string
	evaluate(text string) Decision
}

type tablePolicy[E any] struct {
	mod      Module
	evidence func(text string) E
	table    []rule[E]
}

func (p tablePolicy[E]) module() Module { return p.mod }

func (p tablePolicy[E]) ruleNames() []string {
	out := make([]string, 0, len(p.table))
	for _, r := range p.table {
		out = append(out, r.name)
	}
	return out
}

func (p tablePolicy[E]) evaluate(text string) Decision {
	ev := p.evidence(text)
	r, ok := decide(ev, p.table)
	if !ok {
		return Decision{Module: p.mod, Rule: "none"}
	}
	d := Decision{Module: p.mod, Rule: r.name, Weight: r.weight}
	if r.reason != nil {
		d.Reason = r.reason(ev)
	}
	return d
}

func fixed[E any](msg string) func(E) string {
	return func(E) string { return msg }
}
