package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/chunkscribe/errors"
	"github.com/kbukum/chunkscribe/logger"
	"github.com/kbukum/chunkscribe/observability"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := Config{Port: 0}
	cfg.ApplyDefaults()
	s := New(cfg, logger.NewNop())
	s.ApplyMiddleware(nil)
	s.RegisterDefaultEndpoints("chunkscribe", func(context.Context) []observability.Health {
		return []observability.Health{{Name: "gate", Status: observability.HealthStatusUp}}
	})
	return s
}

func TestConfig_Defaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.Port != 3000 {
		t.Errorf("Port = %d, want 3000", cfg.Port)
	}
	if cfg.WriteTimeout != 0 {
		t.Errorf("WriteTimeout = %v, want 0 (unbounded)", cfg.WriteTimeout)
	}
	if cfg.ReadTimeout != 5*time.Minute || cfg.IdleTimeout != time.Minute {
		t.Errorf("timeouts = %v/%v", cfg.ReadTimeout, cfg.IdleTimeout)
	}
	if cfg.MaxBodySize != "2GB" {
		t.Errorf("MaxBodySize = %q", cfg.MaxBodySize)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	cfg.Port = 70000
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for out-of-range port")
	}
}

func TestConfig_Invalid(t *testing.T) {
	tests := map[string]func(*Config){
		"negative read timeout": func(c *Config) { c.ReadTimeout = -time.Second },
		"negative idle timeout": func(c *Config) { c.IdleTimeout = -time.Second },
		"bad body size":         func(c *Config) { c.MaxBodySize = "lots" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			var cfg Config
			cfg.ApplyDefaults()
			mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected a validation error")
			}
		})
	}
}

func TestServer_DefaultEndpoints(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/live", "/health", "/ready", "/info"} {
		rr := httptest.NewRecorder()
		s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, http.NoBody))
		if rr.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, rr.Code)
		}
		if rr.Header().Get("X-Request-Id") == "" {
			t.Errorf("%s: expected X-Request-Id header", path)
		}
	}
}

func TestServer_PanicBecomesInternalError(t *testing.T) {
	s := newTestServer(t)
	s.GinEngine().GET("/boom", func(*gin.Context) { panic("boom") })

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/boom", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rr.Code)
	}
	var body apperrors.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if body.Error.Code != apperrors.ErrCodeInternal {
		t.Fatalf("unexpected code %q", body.Error.Code)
	}
}

func TestServer_StartStop(t *testing.T) {
	cfg := Config{Host: "127.0.0.1"}
	cfg.ApplyDefaults()
	cfg.Port = 0
	s := New(cfg, logger.NewNop())
	s.RegisterDefaultEndpoints("chunkscribe", nil)

	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	resp, err := http.Get("http://" + s.Addr() + "/live")
	if err != nil {
		t.Fatalf("GET /live: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
}

func TestRespondWithError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantErr  apperrors.ErrorCode
	}{
		{"app error", apperrors.UnsupportedMedia("a.txt", "text/plain"), http.StatusUnsupportedMediaType, apperrors.ErrCodeUnsupportedMedia},
		{"exhausted", apperrors.ResourceExhausted(apperrors.ResourceDisk, nil), http.StatusInsufficientStorage, apperrors.ErrCodeResourceExhausted},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, apperrors.ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rr)
			RespondWithError(c, tt.err)
			if rr.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, rr.Code)
			}
			var body apperrors.ErrorResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}
			if body.Error.Code != tt.wantErr {
				t.Fatalf("expected code %s, got %s", tt.wantErr, body.Error.Code)
			}
		})
	}
}

func TestRoutes_SystemLast(t *testing.T) {
	s := newTestServer(t)
	s.GinEngine().POST("/v1/transcriptions", func(*gin.Context) {})

	routes := s.Routes()
	if len(routes) == 0 || routes[0].Path != "/v1/transcriptions" || routes[0].System {
		t.Fatalf("expected API route first, got %+v", routes)
	}
	if !routes[len(routes)-1].System {
		t.Fatalf("expected system route last, got %+v", routes[len(routes)-1])
	}
}

func TestFormatHandlerName(t *testing.T) {
	tests := map[string]string{
		"github.com/kbukum/chunkscribe/api.(*Handler).Transcribe-fm":   "Handler.Transcribe",
		"github.com/kbukum/chunkscribe/server/endpoint.Health.func1":   "health",
		"github.com/kbukum/chunkscribe/server/endpoint.Liveness.func1": "liveness",
	}
	for in, want := range tests {
		if got := formatHandlerName(in); got != want {
			t.Errorf("formatHandlerName(%q) = %q, want %q", in, got, want)
		}
	}
}
