package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hyperifyio/cotizador/internal/classify"
	"github.com/hyperifyio/cotizador/internal/pricing"
)

const intro = "A continuación presentamos el detalle del proyecto: las etapas, " +
	"tareas y entregables que darán forma al trabajo, junto con los honorarios correspondientes."

// Markdown renders the quote document in Spanish.
func Markdown(v QuoteView) string {
	st := v.studio()
	var b strings.Builder

	title := strings.TrimSpace(v.Title)
	if title == "" {
		title = strings.TrimSpace(v.Client)
	}
	if title == "" {
		b.WriteString("# Cotización\n\n")
	} else {
		fmt.Fprintf(&b, "# Cotización: %s\n\n", title)
	}

	if v.Ref != "" {
		fmt.Fprintf(&b, "- Referencia: %s\n", v.Ref)
	}
	if !v.IssuedAt.IsZero() {
		fmt.Fprintf(&b, "- Fecha de emisión: %s\n", Date(v.IssuedAt))
	}
	if c := strings.TrimSpace(v.Client); c != "" {
		fmt.Fprintf(&b, "- Cliente: %s\n", c)
	}
	fmt.Fprintf(&b, "- Emitida por: %s\n\n", st.Name)
	b.WriteString(intro)
	b.WriteString("\n\n## Módulos\n\n")

	active := v.Weights.Active()
	if len(active) == 0 {
		b.WriteString("No se detectaron módulos facturables en el brief.\n")
	}
	for _, m := range active {
		fmt.Fprintf(&b, "- %s · %s\n", m, classify.LevelName(m, v.Weights[m]))
	}

	if len(v.Sections) > 0 {
		b.WriteString("\n## Entregables\n")
		for _, s := range v.Sections {
			fmt.Fprintf(&b, "\n### %s (%s)\n\n", s.Title, s.Level)
			for _, it := range s.Items {
				fmt.Fprintf(&b, "- %s\n", it)
			}
		}
	}

	b.WriteString("\n## Honorarios\n\n")
	fmt.Fprintf(&b, "- Tarifa base: %s\n", Money(v.Quote.BaseUSD))
	fmt.Fprintf(&b, "- Tarifa ajustada: %s\n", Money(v.Quote.AdjustedUSD))
	for _, row := range v.Scenarios() {
		fmt.Fprintf(&b, "- %s: %s (~ %s)\n", row.Label, Money(row.USD), COP(row.COP))
	}
	fmt.Fprintf(&b, "- Tasa de cambio: 1 USD = %s (%s)\n", COP(pricing.ToCOP(1, v.Rate.Value)), v.Rate.Source)

	b.WriteString("\n## Coeficientes\n\n")
	co := v.Quote.Coefs
	for _, kv := range []struct {
		k string
		v float64
	}{
		{"Cliente", co.Client},
		{"Urgencia", co.Urgency},
		{"Complejidad", co.Complexity},
		{"Idiomas", co.Languages},
		{"Decisores", co.Stakeholders},
		{"Relación", co.Relationship},
		{"Total", co.Total},
	} {
		fmt.Fprintf(&b, "- %s: %s\n", kv.k, strconv.FormatFloat(kv.v, 'f', -1, 64))
	}

	if len(v.Reasons) > 0 {
		b.WriteString("\n## Razones\n\n")
		for _, r := range v.Reasons {
			fmt.Fprintf(&b, "- %s\n", r)
		}
	}

	b.WriteString("\n## Condiciones\n\n")
	fmt.Fprintf(&b, "- Forma de pago: %s\n", st.PaymentTerms)
	fmt.Fprintf(&b, "- Validez: esta propuesta tiene una validez de %d días a partir de la fecha de emisión.\n", st.ValidityDays)
	if st.Web != "" || st.Email != "" {
		fmt.Fprintf(&b, "- Contacto: %s\n", strings.Trim(strings.Join([]string{st.Web, st.Email}, " · "), " ·"))
	}

	return appendFooter(b.String(), v)
}

// appendFooter records the rule, catalog and rate versions a quote was
// computed with so it can be reproduced later.
func appendFooter(markdown string, v QuoteView) string {
	var b strings.Builder
	b.WriteString(markdown)
	b.WriteString("\n---\n")
	b.WriteString("Reproducibilidad: reglas=")
	b.WriteString(strings.TrimSpace(v.RulesVersion))
	b.WriteString("; catalogo=")
	b.WriteString(strings.TrimSpace(v.CatalogVersion))
	b.WriteString("; tasa=")
	b.WriteString(v.Rate.String())
	if v.Ref != "" {
		b.WriteString("; ref=")
		b.WriteString(v.Ref)
	}
	b.WriteString("\n")
	return b.String()
}
