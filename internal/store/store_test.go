package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/hyperifyio/cotizador/internal/classify"
	"github.com/hyperifyio/cotizador/internal/pricing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "quotes.db"))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRecord() *Record {
	return &Record{
		ClientName:  "Acme",
		ClientType:  "Corporativo",
		Brief:       "Necesitamos rebranding de marca, manual completo y pack de 12 piezas.",
		Weights:     classify.Weights{classify.Creation: 0.8, classify.Brandbook: 1.0, classify.Implementation: 1.0},
		Reasons:     []string{"C rebranding: 1 señales", "D full: 1 señales fuertes"},
		BaseUSD:     4400,
		AdjustedUSD: 5720,
		Scenarios:   pricing.Scenarios{Min: 5148, Logical: 5720, Max: 6864},
		Coefs:       pricing.Coefs{Client: 1.3, Urgency: 1, Complexity: 1, Languages: 1, Stakeholders: 1, Relationship: 1, Total: 1.3},
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	tests := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"},
		{"busy_timeout", "5000"},
	}
	for _, tt := range tests {
		var got string
		if err := s.DB().QueryRow("PRAGMA " + tt.pragma).Scan(&got); err != nil {
			t.Fatalf("PRAGMA %s: %v", tt.pragma, err)
		}
		if got != tt.want {
			t.Fatalf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestSaveAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	rec := sampleRecord()
	id, err := s.Save(ctx, rec)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if id == 0 || rec.ID != id || rec.Ref == "" || rec.CreatedAt.IsZero() {
		t.Fatalf("save should fill id, ref and time: %+v", rec)
	}

	got, err := s.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	want := *rec
	want.CreatedAt = rec.CreatedAt.Truncate(time.Second)
	if diff := cmp.Diff(want.CreatedAt.Unix(), got.CreatedAt.Unix()); diff != "" {
		t.Fatalf("time mismatch:\n%s", diff)
	}
	got.CreatedAt = want.CreatedAt
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("record mismatch (-want +got):\n%s", diff)
	}

	if _, err := s.Get(ctx, id+100); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSave_KeepsGivenRef(t *testing.T) {
	s := openTestStore(t)
	rec := &Record{Ref: "fixed-ref", CreatedAt: time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)}
	if _, err := s.Save(context.Background(), rec); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Save(context.Background(), &Record{Ref: "fixed-ref"}); err == nil {
		t.Fatalf("duplicate ref must be rejected")
	}
	got, err := s.Get(context.Background(), rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Ref != "fixed-ref" || !got.CreatedAt.Equal(rec.CreatedAt) {
		t.Fatalf("unexpected record %+v", got)
	}
	if got.Weights == nil || got.Reasons == nil {
		t.Fatalf("empty JSON columns should decode to empty values")
	}
}

func TestList(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		rec := sampleRecord()
		rec.ClientName = string(rune('A' + i))
		if _, err := s.Save(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}
	all, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var names []string
	for _, r := range all {
		names = append(names, r.ClientName)
	}
	if diff := cmp.Diff([]string{"C", "B", "A"}, names); diff != "" {
		t.Fatalf("expected newest first (-want +got):\n%s", diff)
	}
	two, err := s.List(ctx, 2)
	if err != nil || len(two) != 2 {
		t.Fatalf("limit: %d %v", len(two), err)
	}
}

func TestStats(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatalf("empty stats: %v", err)
	}
	if st.Count != 0 || st.AvgAdjustedUSD != 0 || len(st.Modules) != 0 {
		t.Fatalf("unexpected empty stats %+v", st)
	}

	if _, err := s.Save(ctx, sampleRecord()); err != nil {
		t.Fatal(err)
	}
	other := &Record{Weights: classify.Weights{classify.Research: 1, classify.Creation: 1}, AdjustedUSD: 3000}
	if _, err := s.Save(ctx, other); err != nil {
		t.Fatal(err)
	}
	st, err = s.Stats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Count != 2 || st.AvgAdjustedUSD != 4360 || st.TotalAdjustedUSD != 8720 {
		t.Fatalf("unexpected totals %+v", st)
	}
	want := map[classify.Module]int{classify.Research: 1, classify.Creation: 2, classify.Brandbook: 1, classify.Implementation: 1}
	if diff := cmp.Diff(want, st.Modules); diff != "" {
		t.Fatalf("module counts mismatch (-want +got):\n%s", diff)
	}
}

func TestOpen_EmptyPath(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Fatalf("expected error for empty path")
	}
}
