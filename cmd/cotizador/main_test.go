package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hyperifyio/cotizador/internal/app"
)

// runCLI executes the root command with args and isolated env and returns
// stdout and the error.
func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	for _, k := range []string{"COTIZADOR_RULES", "COTIZADOR_CATALOG", "COTIZADOR_DB", "CACHE_DIR", "RATE_URL", "VERBOSE"} {
		t.Setenv(k, "")
	}
	t.Setenv("RATE_OFFLINE", "true")
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "none.env")))
	err := root.Execute()
	return out.String(), err
}

func TestExitCode(t *testing.T) {
	if exitCode(nil) != 0 {
		t.Fatalf("nil should map to 0")
	}
	if exitCode(fmt.Errorf("quote: %w", app.ErrNoModules)) != 2 {
		t.Fatalf("ErrNoModules should map to 2")
	}
	if exitCode(errors.New("boom")) != 1 {
		t.Fatalf("other errors should map to 1")
	}
}

func TestReportError_MissingInput(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist.md")
	_, err := runCLI(t, "", "quote", "--offline", "-i", missing, "-o", "-")
	if err == nil {
		t.Fatalf("expected an error for a missing brief")
	}
	if exitCode(err) != 1 {
		t.Fatalf("exit code: got %d", exitCode(err))
	}
	var buf bytes.Buffer
	reportError(zerolog.New(&buf), err)
	msg := buf.String()
	if !strings.Contains(msg, "run failed") || !strings.Contains(msg, "does-not-exist.md") {
		t.Fatalf("expected the failure to be reported, got %q", msg)
	}
}

func TestReportError_BadRulesPath(t *testing.T) {
	_, err := runCLI(t, "logo nuevo", "classify", "--rules", filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatalf("expected an error for a missing rules file")
	}
	var buf bytes.Buffer
	reportError(zerolog.New(&buf), err)
	if !strings.Contains(buf.String(), "nope.yaml") {
		t.Fatalf("expected the rules path in the report, got %q", buf.String())
	}
}

func TestReportError_SkipsNoModules(t *testing.T) {
	var buf bytes.Buffer
	reportError(zerolog.New(&buf), fmt.Errorf("quote: %w", app.ErrNoModules))
	reportError(zerolog.New(&buf), nil)
	if buf.Len() != 0 {
		t.Fatalf("expected nothing logged, got %q", buf.String())
	}
}

func TestClassify_TextFromStdin(t *testing.T) {
	out, err := runCLI(t, "Necesitamos rebranding de marca, manual completo y pack de 12 piezas.", "classify")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	for _, want := range []string{"C  Creación (rebranding)", "D  Brandbook (full)", "E full: 12 piezas (11-15)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestClassify_JSONFromFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "brief.md")
	if err := os.WriteFile(p, []byte("logo nuevo desde cero"), 0o644); err != nil {
		t.Fatal(err)
	}
	out, err := runCLI(t, "", "classify", p, "--json")
	if err != nil {
		t.Fatalf("classify: %v", err)
	}
	var got struct {
		Weights map[string]float64 `json:"weights"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if _, ok := got.Weights["C"]; !ok {
		t.Fatalf("expected module C, got %v", got.Weights)
	}
}

func TestClassify_NoModulesExitCode(t *testing.T) {
	out, err := runCLI(t, "Hola, gracias.", "classify")
	if !errors.Is(err, app.ErrNoModules) || exitCode(err) != 2 {
		t.Fatalf("expected ErrNoModules, got %v", err)
	}
	if !strings.Contains(out, "Sin módulos detectados.") {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestQuote_WritesFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "brief.md")
	if err := os.WriteFile(in, []byte("Cliente: Acme\n\nNecesitamos rebranding de marca, manual completo y pack de 12 piezas."), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "q.md")
	if _, err := runCLI(t, "", "quote", "-i", in, "-o", out, "--client-type", "Corporativo"); err != nil {
		t.Fatalf("quote: %v", err)
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(b), "- Cliente: Acme") || !strings.Contains(string(b), "Tarifa ajustada: USD 5,720.00") {
		t.Fatalf("unexpected quote:\n%s", b)
	}
}

func TestQuote_SaveThenHistoryAndStats(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "quotes.db")
	in := filepath.Join(dir, "brief.md")
	if err := os.WriteFile(in, []byte("Cliente: Acme\n\nlogo nuevo desde cero"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := runCLI(t, "", "quote", "-i", in, "-o", filepath.Join(dir, "q.md"), "--save", "--db", db); err != nil {
		t.Fatalf("quote: %v", err)
	}
	out, err := runCLI(t, "", "history", "--db", db)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "Acme") {
		t.Fatalf("history missing saved quote:\n%s", out)
	}
	out, err = runCLI(t, "", "stats", "--db", db)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !strings.Contains(out, "Cotizaciones: 1") || !strings.Contains(out, "C Creación: 1") {
		t.Fatalf("unexpected stats:\n%s", out)
	}
}

func TestBatch_JSONLines(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.md")
	b := filepath.Join(dir, "b.md")
	_ = os.WriteFile(a, []byte("logo nuevo desde cero"), 0o644)
	_ = os.WriteFile(b, []byte("Hola."), 0o644)
	out, err := runCLI(t, "", "batch", a, b, "--concurrency", "2")
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 || !strings.Contains(lines[0], `"path":"`+a+`"`) || !strings.Contains(lines[1], `"path":"`+b+`"`) {
		t.Fatalf("unexpected batch output:\n%s", out)
	}
}

func TestRules_SummaryAndCheck(t *testing.T) {
	out, err := runCLI(t, "", "rules")
	if err != nil {
		t.Fatalf("rules: %v", err)
	}
	if !strings.Contains(out, "version: ") || !strings.Contains(out, "E.generic") {
		t.Fatalf("unexpected rules output:\n%s", out)
	}
	bad := filepath.Join(t.TempDir(), "bad.yaml")
	_ = os.WriteFile(bad, []byte("version: x\nA:\n  patterns: ['(']\n"), 0o644)
	if _, err := runCLI(t, "", "rules", "--check", bad); err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestVersion(t *testing.T) {
	out, err := runCLI(t, "", "version")
	if err != nil || !strings.HasPrefix(out, "cotizador "+app.BuildVersion) {
		t.Fatalf("version: %q %v", out, err)
	}
}
