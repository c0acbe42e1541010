// Package render produces the client-facing quote as Markdown, PDF and a
// JSON sidecar.
package render

import (
	"time"

	"github.com/hyperifyio/cotizador/internal/classify"
	"github.com/hyperifyio/cotizador/internal/deliverables"
	"github.com/hyperifyio/cotizador/internal/pricing"
	"github.com/hyperifyio/cotizador/internal/rates"
)

// Scenario names in the order they are offered.
const (
	ScenarioMin     = "minimo"
	ScenarioLogical = "logico"
	ScenarioMax     = "maximo"
)

// QuoteView is everything a rendered quote shows.
type QuoteView struct {
	Ref            string                 `json:"ref,omitempty"`
	IssuedAt       time.Time              `json:"issued_at"`
	Title          string                 `json:"title,omitempty"`
	Client         string                 `json:"client,omitempty"`
	Features       pricing.Features       `json:"features"`
	Brief          string                 `json:"brief"`
	Weights        classify.Weights       `json:"weights"`
	Reasons        []string               `json:"reasons"`
	Sections       []deliverables.Section `json:"sections"`
	Quote          pricing.Quote          `json:"quote"`
	Rate           rates.Rate             `json:"rate"`
	RulesVersion   string                 `json:"rules_version"`
	CatalogVersion string                 `json:"catalog_version"`
	// Studio is the issuer shown in the header and conditions.
	Studio Studio `json:"studio"`
}

// Studio describes who issues the quote.
type Studio struct {
	Name         string `json:"name"`
	Web          string `json:"web,omitempty"`
	Email        string `json:"email,omitempty"`
	PaymentTerms string `json:"payment_terms,omitempty"`
	ValidityDays int    `json:"validity_days,omitempty"`
}

// DefaultStudio is used when a view leaves Studio empty.
var DefaultStudio = Studio{
	Name:         "Estudio",
	PaymentTerms: "50% al inicio del proyecto. 50% restante contra entrega de los materiales.",
	ValidityDays: 30,
}

func (v QuoteView) studio() Studio {
	s := v.Studio
	if s.Name == "" {
		s.Name = DefaultStudio.Name
	}
	if s.PaymentTerms == "" {
		s.PaymentTerms = DefaultStudio.PaymentTerms
	}
	if s.ValidityDays <= 0 {
		s.ValidityDays = DefaultStudio.ValidityDays
	}
	return s
}

// ScenarioRow is one offered amount in both currencies.
type ScenarioRow struct {
	Name  string
	Label string
	USD   float64
	COP   int64
}

// Scenarios lists the minimum, logical and maximum offers converted at the
// view's rate.
func (v QuoteView) Scenarios() []ScenarioRow {
	s := v.Quote.Scenarios
	rows := []ScenarioRow{
		{Name: ScenarioMin, Label: "Mínimo", USD: s.Min},
		{Name: ScenarioLogical, Label: "Lógico", USD: s.Logical},
		{Name: ScenarioMax, Label: "Máximo", USD: s.Max},
	}
	for i := range rows {
		rows[i].COP = pricing.ToCOP(rows[i].USD, v.Rate.Value)
	}
	return rows
}
