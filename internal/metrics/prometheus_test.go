package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRunFinishedUpdatesCounters(t *testing.T) {
	m := New()
	m.RunStarted()
	m.RunFinished("cli", "ok", 3*time.Second, 11, 2)

	if got := testutil.ToFloat64(m.RunsTotal.WithLabelValues("cli", "ok")); got != 1 {
		t.Fatalf("runs_total = %v", got)
	}
	if got := testutil.ToFloat64(m.ActiveRuns); got != 0 {
		t.Fatalf("active runs = %v", got)
	}
	if got := testutil.ToFloat64(m.ClipsSkipped); got != 2 {
		t.Fatalf("clips skipped = %v", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.RecordDelivery(false)
	m.RecordHTTPRequest("POST", "/", 200, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body := rec.Body.String()
	for _, want := range []string{`mashup_deliveries_total{result="failed"} 1`, "mashup_http_requests_total"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in metrics output", want)
		}
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.RunStarted()
	m.RunFinished("web", "validation", time.Second, 0, 0)
	m.RecordDelivery(true)
	m.RecordHTTPRequest("GET", "/", 200, time.Millisecond)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 404 {
		t.Fatalf("expected 404 from nil metrics handler, got %d", rec.Code)
	}
}
