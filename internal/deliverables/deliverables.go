// Package deliverables lists what a quote promises for each detected module
// level.
package deliverables

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/hyperifyio/cotizador/internal/classify"
)

//go:embed deliverables.yaml
var defaultYAML []byte

// Levels in accumulation order.
var Levels = []string{classify.LevelLite, classify.LevelFull, classify.LevelPlus}

// ItemsByLevel holds a module's deliverables keyed by lite, full and plus.
type ItemsByLevel map[string][]string

// Table holds the deliverables of every module.
type Table map[classify.Module]ItemsByLevel

// Section is one module's block in a quote.
type Section struct {
	Module classify.Module `json:"module"`
	Title  string          `json:"title"`
	Level  string          `json:"level"`
	Items  []string        `json:"items"`
}

// Parse decodes a deliverables table and rejects unknown modules or levels.
func Parse(data []byte) (Table, error) {
	var raw map[string]ItemsByLevel
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse deliverables: %w", err)
	}
	t := make(Table, len(raw))
	for key, items := range raw {
		m, err := classify.ParseModule(key)
		if err != nil {
			return nil, fmt.Errorf("parse deliverables: %w", err)
		}
		for lvl := range items {
			if !knownLevel(lvl) {
				return nil, fmt.Errorf("parse deliverables: module %s: unknown level %q", m, lvl)
			}
		}
		t[m] = items
	}
	return t, nil
}

// LoadFile reads a deliverables table from path.
func LoadFile(path string) (Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read deliverables: %w", err)
	}
	return Parse(data)
}

var defaultTable = sync.OnceValue(func() Table {
	t, err := Parse(defaultYAML)
	if err != nil {
		panic(err)
	}
	return t
})

// Default returns the embedded table. Callers must not modify it.
func Default() Table { return defaultTable() }

func knownLevel(lvl string) bool {
	for _, l := range Levels {
		if l == lvl {
			return true
		}
	}
	return false
}

var parenRe = regexp.MustCompile(`\s*\([^)]*\)`)

// Canon is the key used to spot the same deliverable written twice: no
// parenthetical asides, no trailing period, single spaces, lowercase.
func Canon(s string) string {
	s = parenRe.ReplaceAllString(s, "")
	s = strings.TrimRight(strings.TrimSpace(s), ".")
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Expand accumulates the levels from lite up to target and drops items
// whose canonical form was already seen. An unknown target accumulates
// every level.
func Expand(items ItemsByLevel, target string) []string {
	var all []string
	for _, lvl := range Levels {
		all = append(all, items[lvl]...)
		if lvl == target {
			break
		}
	}
	return dedupe(all, map[string]bool{})
}

// TargetLevel maps a module weight to the deliverables level it unlocks.
// Research always delivers its full list; a creation refresh delivers the
// lite list and a rebranding the full one.
func TargetLevel(m classify.Module, weight float64) string {
	lvl := classify.LevelFor(m, weight)
	switch lvl {
	case classify.LevelBase, classify.LevelRebranding:
		return classify.LevelFull
	case classify.LevelRefresh:
		return classify.LevelLite
	}
	return lvl
}

// Sections builds one block per active module in A to E order. Brandbook
// levels stand alone; the other modules accumulate.
func (t Table) Sections(w classify.Weights) []Section {
	var out []Section
	for _, m := range classify.Modules {
		weight, ok := w[m]
		if !ok || weight <= 0 {
			continue
		}
		target := TargetLevel(m, weight)
		items := t[m]
		if m == classify.Research && len(items[classify.LevelFull]) == 0 {
			target = classify.LevelLite
		}
		var list []string
		if m == classify.Brandbook {
			list = dedupe(items[target], map[string]bool{})
		} else {
			list = Expand(items, target)
		}
		if len(list) == 0 {
			continue
		}
		out = append(out, Section{
			Module: m,
			Title:  m.Title(),
			Level:  classify.LevelFor(m, weight),
			Items:  list,
		})
	}
	return out
}

// Build flattens Sections into one list without repeated deliverables.
func (t Table) Build(w classify.Weights) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range t.Sections(w) {
		out = append(out, dedupe(s.Items, seen)...)
	}
	return out
}

// Build uses the embedded table.
func Build(w classify.Weights) []string { return Default().Build(w) }

func dedupe(items []string, seen map[string]bool) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		k := Canon(it)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, it)
	}
	return out
}
