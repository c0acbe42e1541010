// Package rates looks up the USD to COP exchange rate used to show quotes
// in pesos, falling back to the catalog rate when the service is
// unreachable.
package rates

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/cotizador/internal/fetch"
)

// DefaultURL returns USD-based rates as {"rates":{"COP":...}}.
const DefaultURL = "https://open.er-api.com/v6/latest/USD"

// SourceCatalog marks a rate taken from the pricing catalog.
const SourceCatalog = "catalog"

// Rate is an exchange rate and where it came from.
type Rate struct {
	Value   float64 `json:"value"`
	Source  string  `json:"source"`
	Updated string  `json:"updated,omitempty"`
}

// Live reports whether the rate came from the exchange-rate service.
func (r Rate) Live() bool { return r.Source != SourceCatalog }

// String renders the rate for quote footers.
func (r Rate) String() string {
	if r.Updated == "" {
		return fmt.Sprintf("%.2f (%s)", r.Value, r.Source)
	}
	return fmt.Sprintf("%.2f (%s · %s)", r.Value, r.Source, r.Updated)
}

// Provider fetches the rate through a fetch.Client.
type Provider struct {
	URL    string
	Client *fetch.Client
	// Offline skips the network and always returns the fallback.
	Offline bool
	// Fallback is the catalog rate used when the lookup fails.
	Fallback float64
}

type payload struct {
	Result  string             `json:"result"`
	Rates   map[string]float64 `json:"rates"`
	Updated string             `json:"time_last_update_utc"`
	Date    string             `json:"date"`
}

// USDToCOP returns the live rate or the fallback. It never fails; lookup
// errors are logged.
func (p *Provider) USDToCOP(ctx context.Context) Rate {
	fallback := Rate{Value: p.Fallback, Source: SourceCatalog}
	if p.Offline {
		return fallback
	}
	r, err := p.Fetch(ctx)
	if err != nil {
		log.Warn().Err(err).Float64("fallback", p.Fallback).Msg("exchange rate lookup failed, using catalog rate")
		return fallback
	}
	log.Debug().Float64("rate", r.Value).Str("source", r.Source).Msg("exchange rate")
	return r
}

// Fetch queries the service and returns its USD to COP rate.
func (p *Provider) Fetch(ctx context.Context) (Rate, error) {
	raw := p.URL
	if strings.TrimSpace(raw) == "" {
		raw = DefaultURL
	}
	client := p.Client
	if client == nil {
		client = &fetch.Client{MaxAttempts: 2, PerRequestTimeout: 8 * time.Second}
	}
	body, _, err := client.Get(ctx, raw)
	if err != nil {
		return Rate{}, fmt.Errorf("fetch rate: %w", err)
	}
	return parse(body, sourceName(raw))
}

func parse(body []byte, source string) (Rate, error) {
	var pl payload
	if err := json.Unmarshal(body, &pl); err != nil {
		return Rate{}, fmt.Errorf("decode rate: %w", err)
	}
	if pl.Result != "" && pl.Result != "success" {
		return Rate{}, fmt.Errorf("rate service result %q", pl.Result)
	}
	cop, ok := pl.Rates["COP"]
	if !ok || cop <= 0 {
		return Rate{}, errors.New("rate response has no COP rate")
	}
	updated := pl.Updated
	if updated == "" {
		updated = pl.Date
	}
	return Rate{Value: cop, Source: source, Updated: updated}, nil
}

func sourceName(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Host
}
