package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/hyperifyio/cotizador/internal/brief"
)

// FileConfig represents the single-file configuration schema.
type FileConfig struct {
	Input     string `yaml:"input" json:"input"`
	Output    string `yaml:"output" json:"output"`
	OutputPDF string `yaml:"outputPDF" json:"outputPDF"`
	Format    string `yaml:"format" json:"format"`

	Rules        string `yaml:"rules" json:"rules"`
	Catalog      string `yaml:"catalog" json:"catalog"`
	Deliverables string `yaml:"deliverables" json:"deliverables"`

	DB   string `yaml:"db" json:"db"`
	Save bool   `yaml:"save" json:"save"`

	Rate struct {
		URL     string `yaml:"url" json:"url"`
		Offline bool   `yaml:"offline" json:"offline"`
	} `yaml:"rate" json:"rate"`

	Cache struct {
		Dir         string        `yaml:"dir" json:"dir"`
		MaxAge      time.Duration `yaml:"maxAge" json:"maxAge"`
		Clear       bool          `yaml:"clear" json:"clear"`
		StrictPerms bool          `yaml:"strictPerms" json:"strictPerms"`
	} `yaml:"cache" json:"cache"`

	Client struct {
		Name         string `yaml:"name" json:"name"`
		Type         string `yaml:"type" json:"type"`
		Urgency      string `yaml:"urgency" json:"urgency"`
		Complexity   string `yaml:"complexity" json:"complexity"`
		Languages    int    `yaml:"languages" json:"languages"`
		Stakeholders string `yaml:"stakeholders" json:"stakeholders"`
		Relationship string `yaml:"relationship" json:"relationship"`
	} `yaml:"client" json:"client"`

	Server struct {
		Listen string  `yaml:"listen" json:"listen"`
		RPS    float64 `yaml:"rps" json:"rps"`
		Burst  int     `yaml:"burst" json:"burst"`
	} `yaml:"server" json:"server"`

	Concurrency int  `yaml:"concurrency" json:"concurrency"`
	Verbose     bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays every value the file sets onto cfg.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	setStr := func(dst *string, v string) {
		if strings.TrimSpace(v) != "" {
			*dst = v
		}
	}
	setStr(&cfg.InputPath, fc.Input)
	setStr(&cfg.OutputPath, fc.Output)
	setStr(&cfg.OutputPDFPath, fc.OutputPDF)
	setStr(&cfg.Format, fc.Format)
	setStr(&cfg.RulesPath, fc.Rules)
	setStr(&cfg.CatalogPath, fc.Catalog)
	setStr(&cfg.DeliverablesPath, fc.Deliverables)
	setStr(&cfg.DBPath, fc.DB)
	if fc.Save {
		cfg.Save = true
	}

	setStr(&cfg.RateURL, fc.Rate.URL)
	if fc.Rate.Offline {
		cfg.RateOffline = true
	}
	setStr(&cfg.CacheDir, fc.Cache.Dir)
	if fc.Cache.MaxAge > 0 {
		cfg.CacheMaxAge = fc.Cache.MaxAge
	}
	if fc.Cache.Clear {
		cfg.CacheClear = true
	}
	if fc.Cache.StrictPerms {
		cfg.CacheStrictPerms = true
	}

	setStr(&cfg.ClientName, fc.Client.Name)
	setStr(&cfg.ClientType, fc.Client.Type)
	setStr(&cfg.Urgency, fc.Client.Urgency)
	setStr(&cfg.Complexity, fc.Client.Complexity)
	if fc.Client.Languages > 0 {
		cfg.Languages = fc.Client.Languages
	}
	setStr(&cfg.Stakeholders, fc.Client.Stakeholders)
	setStr(&cfg.Relationship, fc.Client.Relationship)

	setStr(&cfg.ListenAddr, fc.Server.Listen)
	if fc.Server.RPS > 0 {
		cfg.RateLimitRPS = fc.Server.RPS
	}
	if fc.Server.Burst > 0 {
		cfg.RateLimitBurst = fc.Server.Burst
	}
	if fc.Concurrency > 0 {
		cfg.Concurrency = fc.Concurrency
	}
	if fc.Verbose {
		cfg.Verbose = true
	}
}

// ValidateConfig performs minimal schema validation.
func ValidateConfig(cfg Config) error {
	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", "markdown", "md", "json":
	default:
		return fmt.Errorf("config: unknown format %q (want markdown or json)", cfg.Format)
	}
	if cfg.Save && strings.TrimSpace(cfg.DBPath) == "" {
		return errors.New("config: save requires a database path (or set COTIZADOR_DB)")
	}
	if cfg.Languages < 0 || cfg.Concurrency < 0 || cfg.RateLimitBurst < 0 || cfg.RateLimitRPS < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	if s := strings.TrimSpace(cfg.Stakeholders); s != "" && brief.StakeholderLabel(s) == "" {
		return fmt.Errorf("config: unknown stakeholders value %q", cfg.Stakeholders)
	}
	return nil
}
