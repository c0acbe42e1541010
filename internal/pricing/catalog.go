// Package pricing turns module weights and client features into a quote:
// base price, bundle factor, coefficients, scenarios and COP conversion.
package pricing

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/hyperifyio/cotizador/internal/textnorm"
)

//go:embed catalog.yaml
var defaultYAML []byte

// ErrInvalidCatalog reports a catalog missing a section the quote needs.
var ErrInvalidCatalog = errors.New("invalid catalog")

// Catalog is the price list with its adjustment tables. JSON catalogs decode
// through the same tags.
type Catalog struct {
	Version     string             `yaml:"version"`
	Prices      map[string]float64 `yaml:"precios"`
	Bundles     Bundles            `yaml:"bundles"`
	Coef        CoefficientTable   `yaml:"coeficientes"`
	Multipliers ScenarioTable      `yaml:"escenarios"`
	Currency    Currency           `yaml:"moneda"`
}

// Bundles are factors applied by number of active modules.
type Bundles struct {
	TwoModules  *float64 `yaml:"dos_mods"`
	ThreeOrMore *float64 `yaml:"tres_o_mas"`
}

// CoefficientTable maps client features to price multipliers. Label tables
// are looked up ignoring case and accents.
type CoefficientTable struct {
	Client       map[string]float64 `yaml:"cliente"`
	Urgency      map[string]float64 `yaml:"urgencia"`
	Complexity   map[string]float64 `yaml:"complejidad"`
	Languages    LanguageCoef       `yaml:"idiomas"`
	Relationship map[string]float64 `yaml:"relacion"`
	Stakeholders map[string]float64 `yaml:"stakeholders"`
	Cap          float64            `yaml:"tope_total_coef"`
}

// LanguageCoef is base for one language plus extra per additional one.
type LanguageCoef struct {
	Base  float64 `yaml:"base"`
	Extra float64 `yaml:"extra"`
}

// ScenarioTable holds the multipliers for the three offered amounts.
type ScenarioTable struct {
	Min     float64 `yaml:"minimo"`
	Logical float64 `yaml:"logico"`
	Max     float64 `yaml:"maximo"`
}

// Currency holds the fallback exchange rate.
type Currency struct {
	USDToCOP float64 `yaml:"usd_to_cop"`
}

// Parse decodes a YAML or JSON catalog and validates it.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadFile reads a catalog from path; an empty path yields the embedded one.
func LoadFile(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c, err := Parse(defaultYAML)
	if err != nil {
		panic(err)
	}
	return c
})

// Default returns the embedded catalog. Callers must not modify it.
func Default() *Catalog { return defaultCatalog() }

// Validate checks that every section a quote reads is present.
func (c *Catalog) Validate() error {
	var missing []string
	if len(c.Prices) == 0 {
		missing = append(missing, "precios")
	}
	if c.Coef.Cap <= 0 {
		missing = append(missing, "coeficientes.tope_total_coef")
	}
	if c.Coef.Languages.Base <= 0 {
		missing = append(missing, "coeficientes.idiomas.base")
	}
	if c.Multipliers.Min <= 0 || c.Multipliers.Logical <= 0 || c.Multipliers.Max <= 0 {
		missing = append(missing, "escenarios")
	}
	if c.Currency.USDToCOP <= 0 {
		missing = append(missing, "moneda.usd_to_cop")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidCatalog, strings.Join(missing, ", "))
	}
	return nil
}

// lookup finds label in table ignoring case, accents and underscores.
func lookup(table map[string]float64, label string) (float64, bool) {
	if v, ok := table[label]; ok {
		return v, true
	}
	want := labelKey(label)
	for k, v := range table {
		if labelKey(k) == want {
			return v, true
		}
	}
	return 0, false
}

func labelKey(s string) string {
	return strings.ReplaceAll(textnorm.Normalize(s), "_", " ")
}
