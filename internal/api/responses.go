package api

import (
	"github.com/hyperifyio/cotizador/internal/classify"
	"github.com/hyperifyio/cotizador/internal/render"
	"github.com/hyperifyio/cotizador/internal/store"
)

// ClassifyRequest carries a brief to classify.
type ClassifyRequest struct {
	Brief string `json:"brief"`
}

// ClassifyResponse is the classification of one brief.
type ClassifyResponse struct {
	Weights classify.Weights           `json:"weights"`
	Reasons []string                   `json:"reasons"`
	Levels  map[classify.Module]string `json:"levels"`
}

// QuoteRequest carries a brief plus optional pricing features. Features set
// here take precedence over header lines in the brief.
type QuoteRequest struct {
	Brief        string `json:"brief"`
	Client       string `json:"cliente"`
	ClientType   string `json:"cliente_tipo"`
	Urgency      string `json:"urgencia"`
	Complexity   string `json:"complejidad"`
	Languages    int    `json:"idiomas"`
	Stakeholders string `json:"stakeholders"`
	Relationship string `json:"relacion"`
	Save         bool   `json:"save"`
}

// QuoteResponse is a computed quote and its rendered document.
type QuoteResponse struct {
	Quote    render.QuoteView `json:"quote"`
	Billable bool             `json:"billable"`
	Markdown string           `json:"markdown"`
	// Explanation summarises levels, reasons and coefficients.
	Explanation string `json:"explicacion"`
	ID          int64  `json:"id,omitempty"`
}

// QuotesListResponse lists saved quotes.
type QuotesListResponse struct {
	Quotes []store.Record `json:"quotes"`
	Total  int            `json:"total"`
}

// RulesResponse summarises the loaded pattern tables.
type RulesResponse struct {
	Version string         `json:"version"`
	Counts  map[string]int `json:"counts"`
}
