package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHandlerExposesWalkmapMetrics(t *testing.T) {
	QueriesTotal.Inc()
	BlockedTotal.WithLabelValues("long_wall").Inc()
	Polygons.WithLabelValues("city").Set(3)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	for _, want := range []string{
		"walkmap_queries_total",
		`walkmap_blocked_total{reason="long_wall"}`,
		`walkmap_polygons{layer="city"} 3`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
