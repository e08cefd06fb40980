package endpoint_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/chunkscribe/observability"
	"github.com/kbukum/chunkscribe/server/endpoint"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(t *testing.T, path string, h gin.HandlerFunc) (int, map[string]any) {
	t.Helper()
	r := gin.New()
	r.GET(path, h)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, http.NoBody))
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("response is not valid JSON: %v", err)
	}
	return rr.Code, body
}

func checker(statuses ...observability.HealthStatus) endpoint.HealthChecker {
	return func(context.Context) []observability.Health {
		out := make([]observability.Health, 0, len(statuses))
		for i, s := range statuses {
			out = append(out, observability.Health{Name: string(rune('a' + i)), Status: s})
		}
		return out
	}
}

func TestLiveness(t *testing.T) {
	code, body := serve(t, "/live", endpoint.Liveness())
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body["live"] != true {
		t.Fatalf("expected live=true, got %v", body)
	}
}

func TestHealth_Statuses(t *testing.T) {
	tests := []struct {
		name       string
		checker    endpoint.HealthChecker
		wantCode   int
		wantStatus string
	}{
		{"no checker", nil, http.StatusOK, "up"},
		{"all up", checker(observability.HealthStatusUp, observability.HealthStatusUp), http.StatusOK, "up"},
		{"degraded", checker(observability.HealthStatusUp, observability.HealthStatusDegraded), http.StatusOK, "degraded"},
		{"down wins", checker(observability.HealthStatusDegraded, observability.HealthStatusDown), http.StatusServiceUnavailable, "down"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := serve(t, "/health", endpoint.Health("chunkscribe", tt.checker))
			if code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, code)
			}
			if body["status"] != tt.wantStatus {
				t.Fatalf("expected status %q, got %v", tt.wantStatus, body["status"])
			}
			if body["service"] != "chunkscribe" {
				t.Fatalf("unexpected service: %v", body["service"])
			}
		})
	}
}

func TestReadiness(t *testing.T) {
	code, body := serve(t, "/ready", endpoint.Readiness(checker(observability.HealthStatusDegraded)))
	if code != http.StatusOK || body["status"] != "ready" {
		t.Fatalf("degraded should still be ready: %d %v", code, body)
	}

	code, body = serve(t, "/ready", endpoint.Readiness(checker(observability.HealthStatusUp, observability.HealthStatusDown)))
	if code != http.StatusServiceUnavailable || body["status"] != "not_ready" {
		t.Fatalf("down should be not_ready: %d %v", code, body)
	}
	blocking, _ := body["blocking"].([]any)
	if len(blocking) != 1 || blocking[0] != "b" {
		t.Fatalf("expected only the down component listed, got %v", body["blocking"])
	}
}

func TestHealth_ComponentsNeverNull(t *testing.T) {
	_, body := serve(t, "/health", endpoint.Health("chunkscribe", nil))
	if components, ok := body["components"].([]any); !ok || len(components) != 0 {
		t.Fatalf("expected an empty components array, got %v", body["components"])
	}
}

func TestInfo(t *testing.T) {
	code, body := serve(t, "/info", endpoint.Info("chunkscribe"))
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body["service"] != "chunkscribe" {
		t.Fatalf("unexpected service: %v", body["service"])
	}
	for _, field := range []string{"version", "go_version", "started_at", "uptime_seconds"} {
		if _, ok := body[field]; !ok {
			t.Errorf("expected %s field", field)
		}
	}
}
