package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hyperifyio/cotizador/internal/app"
	"github.com/hyperifyio/cotizador/internal/store"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "cotizador",
		Short:         "Classify branding briefs and price them",
		Long:          "cotizador reads a client brief, detects the requested service modules (A-E) and produces a priced quote.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.String("config", "", "Path to a YAML or JSON config file")
	pf.StringSlice("env-file", []string{".env"}, "Dotenv files to load before reading the environment")
	pf.BoolP("verbose", "v", false, "Verbose logging")
	pf.String("rules", "", "Rules file (overrides COTIZADOR_RULES)")
	pf.String("catalog", "", "Pricing catalog file (overrides COTIZADOR_CATALOG)")
	pf.String("deliverables", "", "Deliverables file (overrides COTIZADOR_DELIVERABLES)")
	pf.String("db", "", "SQLite database path (overrides COTIZADOR_DB)")
	pf.Bool("offline", false, "Use the catalog exchange rate without any network lookup")
	pf.String("rate-url", "", "Exchange rate endpoint")
	pf.String("cache-dir", "", "Cache directory for exchange-rate responses")
	pf.Duration("cache-max-age", 0, "Serve cached rates younger than this without a request")
	pf.Bool("cache-clear", false, "Clear the cache directory before running")

	root.AddCommand(
		newClassifyCmd(),
		newQuoteCmd(),
		newBatchCmd(),
		newHistoryCmd(),
		newStatsCmd(),
		newRulesCmd(),
		newServeCmd(),
		newVersionCmd(),
	)
	return root
}

// loadConfig layers defaults, the config file, the environment and finally
// explicitly set flags, then validates the result.
func loadConfig(cmd *cobra.Command, needDB bool) (app.Config, error) {
	flags := cmd.Flags()
	envFiles, _ := flags.GetStringSlice("env-file")
	if err := app.LoadEnvFiles(envFiles...); err != nil {
		return app.Config{}, fmt.Errorf("load env files: %w", err)
	}

	cfg := app.DefaultConfig()
	if path, _ := flags.GetString("config"); strings.TrimSpace(path) != "" {
		fc, err := app.LoadConfigFile(path)
		if err != nil {
			return app.Config{}, fmt.Errorf("load config: %w", err)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.ApplyEnvOverrides(&cfg)

	str := func(name string, dst *string) {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	boolean := func(name string, dst *bool) {
		if flags.Changed(name) {
			*dst, _ = flags.GetBool(name)
		}
	}
	integer := func(name string, dst *int) {
		if flags.Changed(name) {
			*dst, _ = flags.GetInt(name)
		}
	}

	boolean("verbose", &cfg.Verbose)
	str("rules", &cfg.RulesPath)
	str("catalog", &cfg.CatalogPath)
	str("deliverables", &cfg.DeliverablesPath)
	str("db", &cfg.DBPath)
	boolean("offline", &cfg.RateOffline)
	str("rate-url", &cfg.RateURL)
	str("cache-dir", &cfg.CacheDir)
	if flags.Changed("cache-max-age") {
		cfg.CacheMaxAge, _ = flags.GetDuration("cache-max-age")
	}
	boolean("cache-clear", &cfg.CacheClear)

	// Command-local flags; lookups of flags a command does not define are
	// skipped by Changed.
	str("input", &cfg.InputPath)
	str("output", &cfg.OutputPath)
	str("pdf", &cfg.OutputPDFPath)
	str("format", &cfg.Format)
	boolean("save", &cfg.Save)
	str("client", &cfg.ClientName)
	str("client-type", &cfg.ClientType)
	str("urgency", &cfg.Urgency)
	str("complexity", &cfg.Complexity)
	integer("languages", &cfg.Languages)
	str("stakeholders", &cfg.Stakeholders)
	str("relationship", &cfg.Relationship)
	str("listen", &cfg.ListenAddr)
	integer("burst", &cfg.RateLimitBurst)
	integer("concurrency", &cfg.Concurrency)
	if flags.Changed("rps") {
		cfg.RateLimitRPS, _ = flags.GetFloat64("rps")
	}

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if (needDB || cfg.Save) && strings.TrimSpace(cfg.DBPath) == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return app.Config{}, err
		}
		cfg.DBPath = p
	}
	if err := app.ValidateConfig(cfg); err != nil {
		return app.Config{}, err
	}
	log.Debug().Str("rules", cfg.RulesPath).Str("catalog", cfg.CatalogPath).Str("db", cfg.DBPath).Msg("config loaded")
	return cfg, nil
}

func openApp(cmd *cobra.Command, cfg app.Config) (*app.App, error) {
	a, err := app.New(cmd.Context(), cfg)
	if err != nil {
		return nil, fmt.Errorf("init app: %w", err)
	}
	return a, nil
}

func formatTime(t time.Time) string { return t.Local().Format("2006-01-02 15:04") }
