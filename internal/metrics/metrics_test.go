package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestCollectorRecordsRuns(t *testing.T) {
	collector, err := NewCollector()
	if err != nil {
		t.Fatalf("NewCollector returned error: %v", err)
	}

	collector.ObserveRun("success", 2*time.Second, 5, 1)
	collector.ObservePut("html")
	collector.ObservePut("html")
	collector.ObservePut("text")

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	collector.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected metrics handler to return 200, got %d", rr.Code)
	}

	body := rr.Body.String()
	for _, want := range []string{
		`hackerbrief_collector_runs_total{outcome="success"} 1`,
		`hackerbrief_collector_items_persisted_total 5`,
		`hackerbrief_collector_item_errors_total 1`,
		`hackerbrief_contentstore_puts_total{kind="html"} 2`,
		`hackerbrief_contentstore_puts_total{kind="text"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metric missing: %q", want)
		}
	}
}
