package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLoadEnvFiles_LoadsKeyValues(t *testing.T) {
	t.Setenv("FOO", "")
	t.Setenv("BAR", "")

	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env.test")
	content := "\n# sample dotenv file\nFOO=alpha\nexport BAR=\"beta\"\nnot a pair\n"
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}

	if err := LoadEnvFiles(envPath, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadEnvFiles error: %v", err)
	}
	if got := os.Getenv("FOO"); got != "alpha" {
		t.Fatalf("FOO=%q, want alpha", got)
	}
	if got := os.Getenv("BAR"); got != "beta" {
		t.Fatalf("BAR=%q, want beta", got)
	}
}

func TestParseEnv_ValueForms(t *testing.T) {
	in := strings.Join([]string{
		"RATE_URL=https://rates.local/latest # live feed",
		"CLIENT='Acme # S.A.'",
		`NOTE="linea uno\nlinea \"dos\""`,
		"export  COTIZADOR_DB = quotes.db",
		"1BAD=x",
		"BAD KEY=x",
		"=novalue",
	}, "\n")
	got, err := parseEnv(strings.NewReader(in))
	if err != nil {
		t.Fatalf("parseEnv: %v", err)
	}
	want := [][2]string{
		{"RATE_URL", "https://rates.local/latest"},
		{"CLIENT", "Acme # S.A."},
		{"NOTE", "linea uno\nlinea \"dos\""},
		{"COTIZADOR_DB", "quotes.db"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("pairs mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadEnvFiles_DirectoryFails(t *testing.T) {
	if err := LoadEnvFiles(t.TempDir()); err == nil {
		t.Fatalf("expected an error when the env path is a directory")
	}
}

// Later files override earlier ones when loading multiple dotenv files.
func TestLoadEnvFiles_OverrideOrder(t *testing.T) {
	t.Setenv("K", "")
	dir := t.TempDir()
	a := filepath.Join(dir, ".env.a")
	b := filepath.Join(dir, ".env.b")
	if err := os.WriteFile(a, []byte("K=first\n"), 0o600); err != nil {
		t.Fatalf("write a: %v", err)
	}
	if err := os.WriteFile(b, []byte("K=second\n"), 0o600); err != nil {
		t.Fatalf("write b: %v", err)
	}
	if err := LoadEnvFiles(a, b); err != nil {
		t.Fatalf("LoadEnvFiles error: %v", err)
	}
	if got := os.Getenv("K"); got != "second" {
		t.Fatalf("override order failed: got %q, want second", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("COTIZADOR_RULES", "/etc/cotizador/rules.yaml")
	t.Setenv("COTIZADOR_CATALOG", "")
	t.Setenv("COTIZADOR_DB", "/var/lib/cotizador/quotes.db")
	t.Setenv("CACHE_DIR", "/tmp/cotizador-cache")
	t.Setenv("CACHE_MAX_AGE", "2h")
	t.Setenv("RATE_URL", "http://rates.local/latest")
	t.Setenv("RATE_OFFLINE", "yes")
	t.Setenv("LISTEN_ADDR", ":9090")
	t.Setenv("VERBOSE", "off")

	cfg := DefaultConfig()
	cfg.CatalogPath = "keep.yaml"
	cfg.Verbose = true
	ApplyEnvOverrides(&cfg)

	if cfg.RulesPath != "/etc/cotizador/rules.yaml" || cfg.DBPath != "/var/lib/cotizador/quotes.db" {
		t.Fatalf("paths not applied: %+v", cfg)
	}
	if cfg.CatalogPath != "keep.yaml" {
		t.Fatalf("empty env must not clear CatalogPath, got %q", cfg.CatalogPath)
	}
	if cfg.CacheDir != "/tmp/cotizador-cache" || cfg.CacheMaxAge != 2*time.Hour {
		t.Fatalf("cache settings not applied: %q %v", cfg.CacheDir, cfg.CacheMaxAge)
	}
	if !cfg.RateOffline || cfg.RateURL != "http://rates.local/latest" || cfg.ListenAddr != ":9090" {
		t.Fatalf("rate/listen settings not applied: %+v", cfg)
	}
	if cfg.Verbose {
		t.Fatalf("VERBOSE=off should disable verbose")
	}
}
