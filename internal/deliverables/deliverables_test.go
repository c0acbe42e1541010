package deliverables

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/hyperifyio/cotizador/internal/classify"
)

func TestCanon(t *testing.T) {
	cases := map[string]string{
		"Kit de marca.":                        "kit de marca",
		"  Kit   de  Marca (versión digital) ": "kit de marca",
		"Brochure (hasta 10 slides) de marca.": "brochure de marca",
	}
	for in, want := range cases {
		if got := Canon(in); got != want {
			t.Fatalf("Canon(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestExpand_CumulativeWithDedupe(t *testing.T) {
	items := ItemsByLevel{
		"lite": {"Uno", "Dos."},
		"full": {"dos", "Tres (opcional)"},
		"plus": {"Cuatro"},
	}
	if diff := cmp.Diff([]string{"Uno", "Dos."}, Expand(items, "lite")); diff != "" {
		t.Fatalf("lite mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Uno", "Dos.", "Tres (opcional)"}, Expand(items, "full")); diff != "" {
		t.Fatalf("full mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Uno", "Dos.", "Tres (opcional)", "Cuatro"}, Expand(items, "plus")); diff != "" {
		t.Fatalf("plus mismatch (-want +got):\n%s", diff)
	}
}

func TestTargetLevel(t *testing.T) {
	cases := []struct {
		m    classify.Module
		w    float64
		want string
	}{
		{classify.Research, 1.0, "full"},
		{classify.BrandDNA, 0.65, "lite"},
		{classify.Creation, 0.5, "lite"},
		{classify.Creation, 0.8, "full"},
		{classify.Brandbook, 1.0, "full"},
		{classify.Implementation, 1.5, "plus"},
	}
	for _, c := range cases {
		if got := TargetLevel(c.m, c.w); got != c.want {
			t.Fatalf("TargetLevel(%s, %v) = %q, want %q", c.m, c.w, got, c.want)
		}
	}
}

func TestSections_DefaultTable(t *testing.T) {
	secs := Default().Sections(classify.Weights{
		classify.Creation:       0.8,
		classify.Brandbook:      1.0,
		classify.Implementation: 1.5,
	})
	if len(secs) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(secs))
	}
	if secs[0].Module != classify.Creation || secs[0].Level != "rebranding" || len(secs[0].Items) != 5 {
		t.Fatalf("unexpected C section %+v", secs[0])
	}
	// brandbook lists only its own level
	if len(secs[1].Items) != 3 || !strings.HasPrefix(secs[1].Items[0], "Manual de marca completo") {
		t.Fatalf("unexpected D section %+v", secs[1])
	}
	// implementation plus includes lite and full
	if len(secs[2].Items) != 8 {
		t.Fatalf("expected 8 E items, got %d", len(secs[2].Items))
	}
}

func TestBuild_OrderAndEmpty(t *testing.T) {
	got := Build(classify.Weights{classify.Research: 1.0, classify.BrandDNA: 0.65})
	want := []string{
		"Benchmark de hasta cinco marcas del sector",
		"Mapa rápido de tendencias visuales y comunicacionales",
		"Síntesis de hallazgos clave del análisis",
		"Benchmark gráfico, comunicacional y de posicionamiento de la categoría",
		"Análisis de audiencias, hábitos e insights",
		"Matriz de posición competitiva y perfil detallado de audiencias",
		"Atributos esenciales y personalidad base de la marca",
		"Promesa de valor central",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("deliverables mismatch (-want +got):\n%s", diff)
	}
	if got := Build(classify.Weights{}); len(got) != 0 {
		t.Fatalf("expected nothing for no modules, got %v", got)
	}
}

func TestBuild_DedupesAcrossModules(t *testing.T) {
	table := Table{
		classify.BrandDNA:  {"lite": {"Kit de marca"}},
		classify.Brandbook: {"lite": {"Kit de marca.", "Guía"}},
	}
	got := table.Build(classify.Weights{classify.BrandDNA: 0.65, classify.Brandbook: 0.6})
	if diff := cmp.Diff([]string{"Kit de marca", "Guía"}, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Errors(t *testing.T) {
	if _, err := Parse([]byte("Z:\n  lite: [x]\n")); err == nil {
		t.Fatalf("expected unknown module error")
	}
	if _, err := Parse([]byte("A:\n  mega: [x]\n")); err == nil {
		t.Fatalf("expected unknown level error")
	}
	if _, err := Parse([]byte("A: [")); err == nil {
		t.Fatalf("expected yaml error")
	}
}
