package pricing

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/hyperifyio/cotizador/internal/classify"
)

// Feature defaults applied when a brief leaves them out.
const (
	DefaultClientType   = "PyME"
	DefaultUrgency      = "Normal"
	DefaultComplexity   = "Media"
	DefaultStakeholders = "uno"
	DefaultRelationship = "Nuevo"
)

// Features describe the client and project conditions that adjust a price.
type Features struct {
	ClientType   string `json:"cliente_tipo"`
	Urgency      string `json:"urgencia"`
	Complexity   string `json:"complejidad"`
	Languages    int    `json:"idiomas"`
	Stakeholders string `json:"stakeholders"`
	Relationship string `json:"relacion"`
}

// WithDefaults fills empty fields with the standard labels.
func (f Features) WithDefaults() Features {
	if strings.TrimSpace(f.ClientType) == "" {
		f.ClientType = DefaultClientType
	}
	if strings.TrimSpace(f.Urgency) == "" {
		f.Urgency = DefaultUrgency
	}
	if strings.TrimSpace(f.Complexity) == "" {
		f.Complexity = DefaultComplexity
	}
	if f.Languages < 1 {
		f.Languages = 1
	}
	if strings.TrimSpace(f.Stakeholders) == "" {
		f.Stakeholders = DefaultStakeholders
	}
	if strings.TrimSpace(f.Relationship) == "" {
		f.Relationship = DefaultRelationship
	}
	return f
}

// Coefs are the multipliers applied to the bundled base price.
type Coefs struct {
	Client       float64 `json:"cliente"`
	Urgency      float64 `json:"urgencia"`
	Complexity   float64 `json:"complejidad"`
	Languages    float64 `json:"idiomas"`
	Stakeholders float64 `json:"stakeholders"`
	Relationship float64 `json:"relacion"`
	Total        float64 `json:"total_coef"`
}

// Scenarios are the three amounts offered to the client, in USD.
type Scenarios struct {
	Min     float64 `json:"minimo"`
	Logical float64 `json:"logico"`
	Max     float64 `json:"maximo"`
}

// Quote is the priced result for a set of module weights.
type Quote struct {
	BaseUSD     float64   `json:"base_usd"`
	AdjustedUSD float64   `json:"adjusted_usd"`
	Coefs       Coefs     `json:"coefs"`
	Scenarios   Scenarios `json:"scenarios"`
	Rate        float64   `json:"rate"`
}

const exactTolerance = 1e-9

func exact(w, target float64) bool { return math.Abs(w-target) < exactTolerance }

func roundTo(x float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(x*p) / p
}

// BasePrice sums the price of every module. A and B scale their price by
// weight; C, D and E use the price of the matching level and scale the full
// price for weights off the nominal levels.
func (c *Catalog) BasePrice(w classify.Weights) float64 {
	p := c.Prices
	total := 0.0
	for m, weight := range w {
		switch m {
		case classify.Research:
			total += p["A"] * weight
		case classify.BrandDNA:
			total += p["B"] * weight
		case classify.Creation:
			total += levelPrice(p, weight, "C_full", map[float64]string{
				classify.WeightCreationFull:       "C_full",
				classify.WeightCreationRebranding: "C_rebranding",
				classify.WeightCreationRefresh:    "C_refresh",
			})
		case classify.Brandbook:
			total += levelPrice(p, weight, "D_full", map[float64]string{
				classify.WeightBookFull: "D_full",
				classify.WeightBookLite: "D_lite",
			})
		case classify.Implementation:
			total += levelPrice(p, weight, "E_full", map[float64]string{
				classify.WeightImplFull: "E_full",
				classify.WeightImplLite: "E_lite",
				classify.WeightImplPlus: "E_plus",
			})
		}
	}
	return roundTo(total, 2)
}

func levelPrice(p map[string]float64, weight float64, full string, levels map[float64]string) float64 {
	for nominal, key := range levels {
		if exact(weight, nominal) {
			return p[key]
		}
	}
	return p[full] * weight
}

// ApplyBundles applies the bundle factor for the number of active modules.
func (c *Catalog) ApplyBundles(w classify.Weights, base float64) float64 {
	factor := 1.0
	switch n := len(w.Active()); {
	case n >= 3 && c.Bundles.ThreeOrMore != nil:
		factor = *c.Bundles.ThreeOrMore
	case n == 2 && c.Bundles.TwoModules != nil:
		factor = *c.Bundles.TwoModules
	}
	return roundTo(base*factor, 2)
}

var defaultStakeholders = map[string]float64{
	"uno":        1.00,
	"dos":        1.04,
	"tres_o_mas": 1.08,
}

// Coefficients computes every multiplier for f. Unknown labels count as
// 1.0 and the product is capped at the catalog limit.
func (c *Catalog) Coefficients(f Features) Coefs {
	f = f.WithDefaults()
	t := c.Coef
	label := func(table map[string]float64, key string) float64 {
		if v, ok := lookup(table, key); ok {
			return v
		}
		return 1.0
	}
	languages := t.Languages.Base
	if f.Languages > 1 {
		languages = roundTo(t.Languages.Base+float64(f.Languages-1)*t.Languages.Extra, 3)
	}
	stakeholders, ok := lookup(t.Stakeholders, f.Stakeholders)
	if !ok {
		stakeholders = label(defaultStakeholders, f.Stakeholders)
	}
	co := Coefs{
		Client:       label(t.Client, f.ClientType),
		Urgency:      label(t.Urgency, f.Urgency),
		Complexity:   label(t.Complexity, f.Complexity),
		Languages:    languages,
		Stakeholders: stakeholders,
		Relationship: label(t.Relationship, f.Relationship),
	}
	co.Total = math.Min(co.product(), t.Cap)
	return co
}

func (co Coefs) product() float64 {
	return co.Client * co.Urgency * co.Complexity * co.Languages * co.Stakeholders * co.Relationship
}

// Scenarios multiplies the adjusted price into minimum, logical and maximum
// offers.
func (c *Catalog) Scenarios(adjusted float64) Scenarios {
	s := c.Multipliers
	return Scenarios{
		Min:     roundTo(adjusted*s.Min, 2),
		Logical: roundTo(adjusted*s.Logical, 2),
		Max:     roundTo(adjusted*s.Max, 2),
	}
}

// ToCOP converts usd at rate to whole pesos.
func ToCOP(usd, rate float64) int64 {
	return int64(math.Round(usd * rate))
}

// Compute prices w for a client with features f at the catalog rate.
func (c *Catalog) Compute(w classify.Weights, f Features) Quote {
	base := c.ApplyBundles(w, c.BasePrice(w))
	coefs := c.Coefficients(f)
	adjusted := roundTo(base*coefs.Total, 2)
	coefs.Total = roundTo(coefs.Total, 3)
	return Quote{
		BaseUSD:     base,
		AdjustedUSD: adjusted,
		Coefs:       coefs,
		Scenarios:   c.Scenarios(adjusted),
		Rate:        c.Currency.USDToCOP,
	}
}

// Explain summarises the detected levels, the reasons and the coefficients
// on a few lines of Spanish text.
func Explain(w classify.Weights, reasons []string, co Coefs) string {
	var parts []string
	for _, m := range w.Active() {
		if m == classify.Research {
			parts = append(parts, fmt.Sprintf("%s: %s.", m, m.Title()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s (%s).", m, m.Title(), classify.LevelFor(m, w[m])))
	}
	out := strings.Join(parts, " • ")
	coefs := []string{
		"cliente:" + num(co.Client),
		"urgencia:" + num(co.Urgency),
		"complejidad:" + num(co.Complexity),
		"idiomas:" + num(co.Languages),
		"stakeholders:" + num(co.Stakeholders),
		"relacion:" + num(co.Relationship),
		"total_coef:" + num(co.Total),
	}
	return out + "\nRazones: " + strings.Join(reasons, " ") + "\nCoeficientes: " + strings.Join(coefs, " ")
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
