package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newMux(checkers ...Checker) *http.ServeMux {
	agg := NewAggregator()
	for _, c := range checkers {
		agg.Register(c)
	}
	mux := http.NewServeMux()
	RegisterHandlers(mux, agg, HandlerOptions{Service: "inspirehep-mcp", Version: "test"})
	return mux
}

func serve(mux *http.ServeMux, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHandlers(t *testing.T) {
	tests := []struct {
		name       string
		checkers   []Checker
		path       string
		wantStatus int
		wantBody   string
	}{
		{"liveness ignores checks", []Checker{fixed("upstream", Unhealthy("", nil))}, "/healthz", 200, "OK"},
		{"ready", []Checker{fixed("upstream", Healthy(""))}, "/readyz", 200, "OK"},
		{"ready degraded", []Checker{fixed("cache", Degraded(""))}, "/readyz", 200, "DEGRADED"},
		{"not ready", []Checker{fixed("upstream", Unhealthy("", nil))}, "/readyz", 503, "UNHEALTHY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(newMux(tt.checkers...), tt.path)
			if rec.Code != tt.wantStatus || rec.Body.String() != tt.wantBody {
				t.Errorf("got %d %q, want %d %q", rec.Code, rec.Body.String(), tt.wantStatus, tt.wantBody)
			}
		})
	}
}

func TestDetailedHandler(t *testing.T) {
	mux := newMux(
		fixed("upstream", Healthy("upstream reachable")),
		fixed("cache", Degraded("cache near capacity").WithDetails(map[string]any{"size": 500})),
	)
	rec := serve(mux, "/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body struct {
		Status  string `json:"status"`
		Service string `json:"service"`
		Checks  map[string]struct {
			Status  string         `json:"status"`
			Message string         `json:"message"`
			Details map[string]any `json:"details"`
		} `json:"checks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Status != "degraded" || body.Service != "inspirehep-mcp" {
		t.Errorf("body = %+v", body)
	}
	if body.Checks["cache"].Message != "cache near capacity" || body.Checks["cache"].Details["size"] != float64(500) {
		t.Errorf("cache check = %+v", body.Checks["cache"])
	}
}

func TestSingleCheckHandler(t *testing.T) {
	mux := newMux(fixed("upstream", Unhealthy("upstream returned 502", ErrCheckFailed)))

	rec := serve(mux, "/health/upstream")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d", rec.Code)
	}
	var body CheckResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Error != ErrCheckFailed.Error() {
		t.Errorf("error = %q", body.Error)
	}

	if rec := serve(mux, "/health/nope"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown checker status = %d", rec.Code)
	}
}
