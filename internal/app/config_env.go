package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides overrides cfg fields with environment variables that are
// set. Flags are applied afterwards so they keep the highest precedence.
func ApplyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}

	if v := os.Getenv("COTIZADOR_RULES"); v != "" {
		cfg.RulesPath = v
	}
	if v := os.Getenv("COTIZADOR_CATALOG"); v != "" {
		cfg.CatalogPath = v
	}
	if v := os.Getenv("COTIZADOR_DELIVERABLES"); v != "" {
		cfg.DeliverablesPath = v
	}
	if v := os.Getenv("COTIZADOR_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("CACHE_DIR"); v != "" {
		cfg.CacheDir = v
	}
	if v := os.Getenv("RATE_URL"); v != "" {
		cfg.RateURL = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.ListenAddr = v
	}

	if s := os.Getenv("CACHE_MAX_AGE"); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			cfg.CacheMaxAge = d
		}
	}
	if s := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")); s != "" {
		if f, err := strconv.ParseFloat(s, 64); err == nil && f >= 0 {
			cfg.RateLimitRPS = f
		}
	}

	setBool := func(dst *bool, envKey string) {
		if s := strings.ToLower(strings.TrimSpace(os.Getenv(envKey))); s != "" {
			switch s {
			case "1", "true", "yes", "on":
				*dst = true
			case "0", "false", "no", "off":
				*dst = false
			}
		}
	}
	setBool(&cfg.RateOffline, "RATE_OFFLINE")
	setBool(&cfg.Verbose, "VERBOSE")
	setBool(&cfg.CacheClear, "CACHE_CLEAR")
	setBool(&cfg.CacheStrictPerms, "CACHE_STRICT_PERMS")
}
