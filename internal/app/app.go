package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/cotizador/internal/brief"
	"github.com/hyperifyio/cotizador/internal/cache"
	"github.com/hyperifyio/cotizador/internal/classify"
	"github.com/hyperifyio/cotizador/internal/deliverables"
	"github.com/hyperifyio/cotizador/internal/fetch"
	"github.com/hyperifyio/cotizador/internal/pricing"
	"github.com/hyperifyio/cotizador/internal/rates"
	"github.com/hyperifyio/cotizador/internal/render"
	"github.com/hyperifyio/cotizador/internal/rules"
	"github.com/hyperifyio/cotizador/internal/store"
	"github.com/hyperifyio/cotizador/internal/telemetry"
)

// ErrNoModules is returned when a brief yields no billable module. The CLI
// maps it to exit code 2.
var ErrNoModules = errors.New("no billable modules detected")

// App wires the classifier, pricing, exchange rate, rendering and storage.
type App struct {
	cfg        Config
	classifier *classify.Classifier
	catalog    *pricing.Catalog
	table      deliverables.Table
	rates      *rates.Provider
	store      *store.Store
	metrics    *telemetry.Metrics
	now        func() time.Time
}

// New loads the rule, catalog and deliverable tables, prepares the rate
// cache and opens the quote store when a DB path is configured.
func New(ctx context.Context, cfg Config) (*App, error) {
	r, err := rules.Load(cfg.RulesPath)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}
	cat, err := pricing.LoadFile(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	table := deliverables.Default()
	if strings.TrimSpace(cfg.DeliverablesPath) != "" {
		table, err = deliverables.LoadFile(cfg.DeliverablesPath)
		if err != nil {
			return nil, fmt.Errorf("load deliverables: %w", err)
		}
	}

	a := &App{
		cfg:        cfg,
		classifier: classify.New(r),
		catalog:    cat,
		table:      table,
		now:        time.Now,
	}

	var httpCache *cache.HTTPCache
	if cfg.CacheDir != "" && !cfg.RateOffline {
		if cfg.CacheClear {
			_ = cache.ClearDir(cfg.CacheDir)
		}
		if cfg.CacheMaxAge > 0 {
			if n, err := cache.PurgeByAge(cfg.CacheDir, 4*cfg.CacheMaxAge); err != nil {
				log.Warn().Err(err).Str("dir", cfg.CacheDir).Msg("cache purge failed")
			} else if n > 0 {
				log.Debug().Int("removed", n).Msg("purged stale cache entries")
			}
		}
		httpCache = &cache.HTTPCache{Dir: cfg.CacheDir, StrictPerms: cfg.CacheStrictPerms}
	}
	a.rates = &rates.Provider{
		URL:     cfg.RateURL,
		Offline: cfg.RateOffline,
		Client: &fetch.Client{
			HTTPClient:        newRateHTTPClient(),
			UserAgent:         "cotizador/" + BuildVersion,
			MaxAttempts:       2,
			PerRequestTimeout: 8 * time.Second,
			Cache:             httpCache,
			FreshFor:          cfg.CacheMaxAge,
		},
		Fallback: cat.Currency.USDToCOP,
	}

	if strings.TrimSpace(cfg.DBPath) != "" {
		st, err := store.Open(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		if err := st.DB().PingContext(ctx); err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("ping store: %w", err)
		}
		a.store = st
	}

	log.Debug().
		Str("rules", r.Version).
		Str("catalog", cat.Version).
		Bool("store", a.store != nil).
		Bool("offline", cfg.RateOffline).
		Msg("app ready")
	return a, nil
}

// Close releases the quote store.
func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}

// SetMetrics attaches collectors; nil disables recording.
func (a *App) SetMetrics(m *telemetry.Metrics) { a.metrics = m }

// Classifier returns the classifier built from the loaded rules.
func (a *App) Classifier() *classify.Classifier { return a.classifier }

// Catalog returns the loaded pricing catalog.
func (a *App) Catalog() *pricing.Catalog { return a.catalog }

// Store returns the quote store or nil when none is configured.
func (a *App) Store() *store.Store { return a.store }

// Classify classifies text and records metrics.
func (a *App) Classify(text string) classify.Result {
	start := time.Now()
	res := a.classifier.Classify(text)
	a.metrics.RecordClassification(res.Weights, time.Since(start))
	return res
}

// Features merges the brief header with the configured overrides.
func (a *App) Features(b brief.Brief) pricing.Features {
	f := pricing.Features{
		ClientType:   b.ClientType,
		Urgency:      b.Urgency,
		Complexity:   b.Complexity,
		Languages:    b.Languages,
		Stakeholders: b.Stakeholders,
		Relationship: b.Relationship,
	}
	override := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = v
		}
	}
	override(&f.ClientType, a.cfg.ClientType)
	override(&f.Urgency, a.cfg.Urgency)
	override(&f.Complexity, a.cfg.Complexity)
	override(&f.Relationship, a.cfg.Relationship)
	if s := brief.StakeholderLabel(a.cfg.Stakeholders); s != "" {
		f.Stakeholders = s
	}
	if a.cfg.Languages > 0 {
		f.Languages = a.cfg.Languages
	}
	return f.WithDefaults()
}

// Quote classifies and prices b. When nothing billable is detected the view
// is still returned, together with ErrNoModules.
func (a *App) Quote(ctx context.Context, b brief.Brief) (render.QuoteView, error) {
	res := a.Classify(b.Text)
	feats := a.Features(b)
	q := a.catalog.Compute(res.Weights, feats)
	rate := a.rates.USDToCOP(ctx)
	q.Rate = rate.Value

	client := b.Client
	if strings.TrimSpace(a.cfg.ClientName) != "" {
		client = a.cfg.ClientName
	}
	v := render.QuoteView{
		Ref:            uuid.NewString(),
		IssuedAt:       a.now(),
		Title:          b.Title,
		Client:         client,
		Features:       feats,
		Brief:          b.Text,
		Weights:        res.Weights,
		Reasons:        []string(res.Reasons),
		Sections:       a.table.Sections(res.Weights),
		Quote:          q,
		Rate:           rate,
		RulesVersion:   a.classifier.Rules().Version,
		CatalogVersion: a.catalog.Version,
	}
	a.metrics.RecordQuote()
	log.Info().
		Str("ref", v.Ref).
		Int("modules", len(res.Weights)).
		Float64("adjusted_usd", q.AdjustedUSD).
		Msg("quote computed")
	if res.Empty() {
		return v, ErrNoModules
	}
	return v, nil
}

// SaveQuote persists v and returns the row id.
func (a *App) SaveQuote(ctx context.Context, v render.QuoteView) (int64, error) {
	if a.store == nil {
		return 0, errors.New("no quote store configured")
	}
	rec := &store.Record{
		Ref:         v.Ref,
		CreatedAt:   v.IssuedAt,
		ClientName:  v.Client,
		ClientType:  v.Features.ClientType,
		Brief:       v.Brief,
		Weights:     v.Weights,
		Reasons:     v.Reasons,
		BaseUSD:     v.Quote.BaseUSD,
		AdjustedUSD: v.Quote.AdjustedUSD,
		Scenarios:   v.Quote.Scenarios,
		Coefs:       v.Quote.Coefs,
	}
	return a.store.Save(ctx, rec)
}

// Run executes the quote command: read the brief, quote it, write the
// document, its manifest and the optional PDF, and save it when asked.
func (a *App) Run(ctx context.Context) error {
	b, err := a.loadBrief()
	if err != nil {
		return err
	}
	v, qerr := a.Quote(ctx, b)
	if qerr != nil && !errors.Is(qerr, ErrNoModules) {
		return qerr
	}

	md := render.Markdown(v)
	jsonOut := strings.EqualFold(a.cfg.Format, "json")
	ext := ".md"
	if jsonOut {
		ext = ".json"
	}
	out := resolveOutputPath(a.cfg.OutputPath, b, v.Ref, ext)
	if out == "" || out == "-" {
		if err := a.writeTo(os.Stdout, v, md, jsonOut); err != nil {
			return err
		}
	} else {
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
		f, err := os.Create(out)
		if err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		werr := a.writeTo(f, v, md, jsonOut)
		if cerr := f.Close(); werr == nil {
			werr = cerr
		}
		if werr != nil {
			return fmt.Errorf("write output: %w", werr)
		}
		if err := render.WriteManifest(render.SidecarPath(out), render.NewManifest(v, a.now())); err != nil {
			log.Warn().Err(err).Msg("manifest not written")
		}
		log.Info().Str("out", out).Msg("wrote quote")
	}

	if pdfPath := strings.TrimSpace(a.cfg.OutputPDFPath); pdfPath != "" {
		pdfPath = resolveOutputPath(pdfPath, b, v.Ref, ".pdf")
		if err := render.PDF(md, pdfPath); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
		log.Info().Str("pdf", pdfPath).Msg("wrote pdf")
	}

	if qerr != nil {
		return qerr
	}
	if a.cfg.Save {
		id, err := a.SaveQuote(ctx, v)
		if err != nil {
			return err
		}
		log.Info().Int64("id", id).Str("ref", v.Ref).Msg("quote saved")
	}
	return nil
}

func (a *App) writeTo(w io.Writer, v render.QuoteView, md string, jsonOut bool) error {
	if !jsonOut {
		_, err := w.Write([]byte(md))
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *App) loadBrief() (brief.Brief, error) {
	in := strings.TrimSpace(a.cfg.InputPath)
	if in == "" || in == "-" {
		data, err := readAllStdin()
		if err != nil {
			return brief.Brief{}, fmt.Errorf("read brief: %w", err)
		}
		return brief.Decode(data, ".md")
	}
	return brief.Load(in)
}

var readAllStdin = func() ([]byte, error) { return io.ReadAll(os.Stdin) }
