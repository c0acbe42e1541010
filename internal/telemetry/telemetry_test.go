package telemetry_test

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/hyperifyio/cotizador/internal/classify"
	"github.com/hyperifyio/cotizador/internal/telemetry"
)

func TestRecordClassification(t *testing.T) {
	m := telemetry.New(nil)
	w := classify.Weights{classify.Creation: 0.8, classify.Implementation: 0.6}
	m.RecordClassification(w, 2*time.Millisecond)
	m.RecordClassification(w, time.Millisecond)

	if got := testutil.ToFloat64(m.Classifications.WithLabelValues("C", "rebranding")); got != 2 {
		t.Fatalf("C rebranding count=%v, want 2", got)
	}
	if got := testutil.ToFloat64(m.Classifications.WithLabelValues("E", "lite")); got != 2 {
		t.Fatalf("E lite count=%v, want 2", got)
	}
	if got := testutil.CollectAndCount(m.ClassifyDuration); got != 1 {
		t.Fatalf("histogram series=%d, want 1", got)
	}
}

func TestRecordRequestAndQuote(t *testing.T) {
	m := telemetry.New(nil)
	m.RecordRequest("/api/v1/classify", 200)
	m.RecordRequest("", 404)
	m.RecordQuote()

	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("/api/v1/classify", "200")); got != 1 {
		t.Fatalf("classify 200=%v", got)
	}
	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("unmatched", "404")); got != 1 {
		t.Fatalf("unmatched 404=%v", got)
	}
	if got := testutil.ToFloat64(m.Quotes); got != 1 {
		t.Fatalf("quotes=%v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *telemetry.Metrics
	m.RecordClassification(classify.Weights{classify.Research: 1}, time.Millisecond)
	m.RecordQuote()
	m.RecordRequest("/health", 200)
}

func TestHandler(t *testing.T) {
	m := telemetry.New(nil)
	m.RecordQuote()
	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), "cotizador_quotes_total 1") {
		t.Fatalf("metrics output missing quote counter:\n%s", body)
	}
}
