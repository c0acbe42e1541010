package app

import (
	"time"
)

// Config holds runtime configuration for the application.
type Config struct {
	InputPath     string
	OutputPath    string
	OutputPDFPath string
	// Format is "markdown" or "json".
	Format string

	// Tables; empty paths select the embedded defaults.
	RulesPath        string
	CatalogPath      string
	DeliverablesPath string

	// Persistence
	DBPath string
	Save   bool

	// Exchange rate lookup
	RateURL          string
	RateOffline      bool
	CacheDir         string
	CacheMaxAge      time.Duration
	CacheClear       bool
	CacheStrictPerms bool

	// Features override what the brief header states when set.
	ClientName   string
	ClientType   string
	Urgency      string
	Complexity   string
	Languages    int
	Stakeholders string
	Relationship string

	// Server
	ListenAddr     string
	RateLimitRPS   float64
	RateLimitBurst int

	Concurrency int
	Verbose     bool
}

// Defaults used by the CLI before file, env and flags are applied.
const (
	DefaultOutputPath     = "cotizacion.md"
	DefaultFormat         = "markdown"
	DefaultCacheDir       = ".cotizador-cache"
	DefaultCacheMaxAge    = 12 * time.Hour
	DefaultListenAddr     = ":8080"
	DefaultRateLimitRPS   = 10
	DefaultRateLimitBurst = 20
)

// DefaultConfig returns the built-in settings.
func DefaultConfig() Config {
	return Config{
		OutputPath:     DefaultOutputPath,
		Format:         DefaultFormat,
		CacheDir:       DefaultCacheDir,
		CacheMaxAge:    DefaultCacheMaxAge,
		ListenAddr:     DefaultListenAddr,
		RateLimitRPS:   DefaultRateLimitRPS,
		RateLimitBurst: DefaultRateLimitBurst,
	}
}
