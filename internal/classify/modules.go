package classify

import (
	"fmt"

	"github.com/hyperifyio/cotizador/internal/quantity"
	"github.com/hyperifyio/cotizador/internal/rules"
)

// Research (A) is binary: any unnegated research signal requests it.

type researchEvidence struct {
	signals int
}

func researchPolicy(r *rules.Rules) policy {
	return tablePolicy[researchEvidence]{
		mod: Research,
		evidence: func(text string) researchEvidence {
			return researchEvidence{signals: rules.CountUnnegated(text, r.Research, r.Negation)}
		},
		table: []rule[researchEvidence]{
			{
				name:   "research",
				when:   func(e researchEvidence) bool { return e.signals > 0 },
				weight: WeightResearch,
				reason: func(e researchEvidence) string { return fmt.Sprintf("A: Research (%d señales)", e.signals) },
			},
		},
	}
}

// Brand DNA (B): explicit lite hints win over full signals.

type brandEvidence struct {
	liteHints int
	full      int
	fullMin   int
}

func brandPolicy(r *rules.Rules) policy {
	return tablePolicy[brandEvidence]{
		mod: BrandDNA,
		evidence: func(text string) brandEvidence {
			return brandEvidence{
				liteHints: r.Negation.CountPresent(text, r.BrandLiteHints.Found(text)),
				full:      rules.CountMatches(text, r.BrandFull),
				fullMin:   r.BrandFullMinMatches,
			}
		},
		table: []rule[brandEvidence]{
			{
				name:   "lite-hint",
				when:   func(e brandEvidence) bool { return e.liteHints >= 1 },
				weight: WeightBrandLite,
				reason: func(e brandEvidence) string { return fmt.Sprintf("B lite: %d pistas explícitas", e.liteHints) },
			},
			{
				name:   "full",
				when:   func(e brandEvidence) bool { return e.full >= e.fullMin },
				weight: WeightBrandFull,
				reason: func(e brandEvidence) string { return fmt.Sprintf("B full: %d señales", e.full) },
			},
			{
				// only reachable when full_min_matches is above one
				name:   "full-below-threshold",
				when:   func(e brandEvidence) bool { return e.full >= 1 },
				weight: WeightBrandLite,
				reason: func(e brandEvidence) string {
					return fmt.Sprintf("B lite: %d señales, menos de %d para full", e.full, e.fullMin)
				},
			},
		},
	}
}

// Creación (C): refresh, rebranding or full identity work.

type creationEvidence struct {
	dismissed  bool
	full       int
	rebranding int
	refresh    int
	naming     bool
	logo       bool
	concepto   bool
	adjustment bool
}

func (e creationEvidence) components() int {
	n := 0
	for _, ok := range []bool{e.naming, e.logo, e.concepto} {
		if ok {
			n++
		}
	}
	return n
}

func creationPolicy(r *rules.Rules) policy {
	return tablePolicy[creationEvidence]{
		mod: Creation,
		evidence: func(text string) creationEvidence {
			e := creationEvidence{
				dismissed:  len(r.CreationDismiss) > 0,
				full:       rules.CountMatches(text, r.CreationFull),
				rebranding: rules.CountMatches(text, r.CreationRebranding),
				refresh:    rules.CountMatches(text, r.CreationRefresh),
				naming:     rules.CountMatches(text, r.CreationNaming) > 0,
				logo:       rules.CountMatches(text, r.CreationLogo) > 0,
				concepto:   rules.CountMatches(text, r.CreationConcepto) > 0,
				adjustment: r.CreationAdjustment.MatchString(text),
			}
			for _, kw := range r.CreationDismiss {
				if !r.Negation.IsNegated(text, kw) {
					e.dismissed = false
					break
				}
			}
			return e
		},
		table: []rule[creationEvidence]{
			{
				name:   "dismissed",
				when:   func(e creationEvidence) bool { return e.dismissed },
				weight: 0,
				reason: fixed[creationEvidence]("C descartado: negación de logo e identidad"),
			},
			{
				name:   "full",
				when:   func(e creationEvidence) bool { return e.full >= 2 || e.components() >= 2 },
				weight: WeightCreationFull,
				reason: func(e creationEvidence) string {
					return fmt.Sprintf("C full: full=%d, comps=%d", e.full, e.components())
				},
			},
			{
				// ties between rebranding and refresh resolve to the lower tier
				name:   "rebranding-refresh-tie",
				when:   func(e creationEvidence) bool { return e.rebranding >= 1 && e.refresh >= 1 && e.refresh >= e.rebranding },
				weight: WeightCreationRefresh,
				reason: fixed[creationEvidence]("C refresh: empate rebranding/refresh (conservador)"),
			},
			{
				name:   "rebranding",
				when:   func(e creationEvidence) bool { return e.rebranding >= 1 },
				weight: WeightCreationRebranding,
				reason: func(e creationEvidence) string { return fmt.Sprintf("C rebranding: %d señales", e.rebranding) },
			},
			{
				name:   "refresh",
				when:   func(e creationEvidence) bool { return e.refresh >= 1 },
				weight: WeightCreationRefresh,
				reason: func(e creationEvidence) string { return fmt.Sprintf("C refresh: %d señales", e.refresh) },
			},
			{
				name:   "component-adjustment",
				when:   func(e creationEvidence) bool { return (e.logo || e.naming) && e.adjustment },
				weight: WeightCreationRefresh,
				reason: fixed[creationEvidence]("C refresh: componentes con 'ajuste'"),
			},
			{
				name:   "component",
				when:   func(e creationEvidence) bool { return e.logo || e.naming },
				weight: WeightCreationFull,
				reason: fixed[creationEvidence]("C full: logo/naming sin calificador"),
			},
		},
	}
}

// Brandbook (D): explicit lite wins over full; an unqualified mention takes
// the configured generic weight.

type bookEvidence struct {
	dismissed bool
	lite      int
	full      int
	generic   bool
}

func brandbookPolicy(r *rules.Rules) policy {
	genericLevel := LevelFor(Brandbook, r.BookGenericWeight)
	return tablePolicy[bookEvidence]{
		mod: Brandbook,
		evidence: func(text string) bookEvidence {
			e := bookEvidence{
				lite:    rules.CountMatches(text, r.BookLite),
				full:    rules.CountMatches(text, r.BookFull),
				generic: r.BookGeneric.Any(text),
			}
			for _, kw := range r.BookDismiss {
				if r.Negation.IsNegated(text, kw) {
					e.dismissed = true
					break
				}
			}
			return e
		},
		table: []rule[bookEvidence]{
			{
				name:   "dismissed",
				when:   func(e bookEvidence) bool { return e.dismissed },
				weight: 0,
				reason: fixed[bookEvidence]("D descartado: negación explícita"),
			},
			{
				name:   "lite",
				when:   func(e bookEvidence) bool { return e.lite >= 1 },
				weight: WeightBookLite,
				reason: func(e bookEvidence) string { return fmt.Sprintf("D lite: %d señales explícitas", e.lite) },
			},
			{
				name:   "full",
				when:   func(e bookEvidence) bool { return e.full >= 1 },
				weight: WeightBookFull,
				reason: func(e bookEvidence) string { return fmt.Sprintf("D full: %d señales fuertes", e.full) },
			},
			{
				name:   "generic",
				when:   func(e bookEvidence) bool { return e.generic },
				weight: r.BookGenericWeight,
				reason: fixed[bookEvidence]("D " + genericLevel + ": mención genérica sin calificador (regla de negocio)"),
			},
		},
	}
}

// Implementación (E): an explicit quantity decides the tier, then
// qualitative signals, then a conservative default for generic mentions.

type implEvidence struct {
	gated   bool
	qty     int
	hasQty  bool
	plus    int
	full    int
	lite    int
	generic bool
	liteMax int
	fullMax int
}

func implementationPolicy(r *rules.Rules) policy {
	return tablePolicy[implEvidence]{
		mod: Implementation,
		evidence: func(text string) implEvidence {
			e := implEvidence{
				generic: r.ImplGeneric.Any(text),
				liteMax: r.ImplLiteMax,
				fullMax: r.ImplFullMax,
			}
			if r.ImplGate && !e.generic {
				// bare numbers elsewhere in the brief must not request E
				e.gated = true
				return e
			}
			e.qty, e.hasQty = quantity.Extract(text)
			e.plus = rules.CountMatches(text, r.ImplPlus)
			e.full = rules.CountMatches(text, r.ImplFull)
			e.lite = rules.CountMatches(text, r.ImplLite)
			return e
		},
		table: []rule[implEvidence]{
			{
				name:   "gated",
				when:   func(e implEvidence) bool { return e.gated },
				weight: 0,
			},
			{
				name:   "quantity-lite",
				when:   func(e implEvidence) bool { return e.hasQty && e.qty <= e.liteMax },
				weight: WeightImplLite,
				reason: func(e implEvidence) string { return fmt.Sprintf("E lite: %d piezas (≤%d)", e.qty, e.liteMax) },
			},
			{
				name:   "quantity-full",
				when:   func(e implEvidence) bool { return e.hasQty && e.qty <= e.fullMax },
				weight: WeightImplFull,
				reason: func(e implEvidence) string {
					return fmt.Sprintf("E full: %d piezas (%d-%d)", e.qty, e.liteMax+1, e.fullMax)
				},
			},
			{
				name:   "quantity-plus",
				when:   func(e implEvidence) bool { return e.hasQty },
				weight: WeightImplPlus,
				reason: func(e implEvidence) string { return fmt.Sprintf("E plus: %d piezas (>%d)", e.qty, e.fullMax) },
			},
			{
				name:   "plus",
				when:   func(e implEvidence) bool { return e.plus > 0 },
				weight: WeightImplPlus,
				reason: func(e implEvidence) string { return fmt.Sprintf("E plus: %d señales", e.plus) },
			},
			{
				name:   "full",
				when:   func(e implEvidence) bool { return e.full > 0 },
				weight: WeightImplFull,
				reason: func(e implEvidence) string { return fmt.Sprintf("E full: %d señales", e.full) },
			},
			{
				name:   "lite",
				when:   func(e implEvidence) bool { return e.lite > 0 },
				weight: WeightImplLite,
				reason: func(e implEvidence) string { return fmt.Sprintf("E lite: %d señales", e.lite) },
			},
			{
				name:   "generic",
				when:   func(e implEvidence) bool { return e.generic },
				weight: WeightImplLite,
				reason: fixed[implEvidence]("E lite: implementación genérica sin detalle"),
			},
		},
	}
}
