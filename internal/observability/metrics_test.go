package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_ObserveRequest(t *testing.T) {
	m := NewMetrics()
	m.ObserveRequest("find", http.StatusOK, 10*time.Millisecond)
	m.ObserveRequest("find", http.StatusOK, 20*time.Millisecond)
	m.ObserveRequest("add", http.StatusBadRequest, time.Millisecond)

	if got := testutil.ToFloat64(m.requests.WithLabelValues("find", "200")); got != 2 {
		t.Errorf("find/200 = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("add", "400")); got != 1 {
		t.Errorf("add/400 = %v, want 1", got)
	}
}

func TestMetrics_ObserveDatasetOp(t *testing.T) {
	m := NewMetrics()
	m.ObserveDatasetOp("load", 42, nil)
	m.ObserveDatasetOp("save", 0, errors.New("boom"))

	if got := testutil.ToFloat64(m.storeOps.WithLabelValues("load", "ok")); got != 1 {
		t.Errorf("load/ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.storeOps.WithLabelValues("save", "error")); got != 1 {
		t.Errorf("save/error = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.tableRows); got != 42 {
		t.Errorf("dataset_rows = %v, want 42", got)
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.ObserveRowsReturned(3)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "recipestore_find_rows_returned") {
		t.Error("expected recipestore_find_rows_returned in exposition output")
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("find", 200, time.Second)
	m.ObserveRowsReturned(1)
	m.ObserveDatasetOp("load", 1, nil)
}

func TestNewLogger_Levels(t *testing.T) {
	if _, err := NewLogger(LoggerConfig{Level: "debug", Development: true}); err != nil {
		t.Fatalf("development logger: %v", err)
	}
	if _, err := NewLogger(LoggerConfig{Level: "info"}); err != nil {
		t.Fatalf("production logger: %v", err)
	}
	if _, err := NewLogger(LoggerConfig{Level: "chatty"}); err == nil {
		t.Error("expected error for unknown level")
	}
}
