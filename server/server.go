package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/chunkscribe/logger"
	"github.com/kbukum/chunkscribe/observability"
	"github.com/kbukum/chunkscribe/server/endpoint"
	"github.com/kbukum/chunkscribe/server/middleware"
)

// Server serves a Gin engine over HTTP/1.1 and cleartext HTTP/2.
type Server struct {
	http     *http.Server
	engine   *gin.Engine
	listener net.Listener
	config   Config
	log      *logger.Logger
}

// New builds a server without middleware or routes; see ApplyMiddleware.
// Gin runs in debug mode only when zerolog logs at debug level.
func New(cfg Config, log *logger.Logger) *Server {
	if log == nil {
		log = logger.NewNop()
	}
	mode := gin.ReleaseMode
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		mode = gin.DebugMode
	}
	gin.SetMode(mode)

	engine := gin.New()
	h2 := &http2.Server{MaxConcurrentStreams: 250, IdleTimeout: 2 * cfg.IdleTimeout}
	return &Server{
		http: &http.Server{
			Addr:         net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
			Handler:      h2c.NewHandler(engine, h2),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		engine: engine,
		config: cfg,
		log:    log.WithComponent("server"),
	}
}

// GinEngine returns the underlying Gin engine for route registration.
func (s *Server) GinEngine() *gin.Engine {
	return s.engine
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// ApplyMiddleware installs recovery, request IDs, CORS, the body-size limit
// and request logging, in that order. Request metrics are recorded per
// route when metrics is non-nil. Call it before registering routes.
func (s *Server) ApplyMiddleware(metrics *observability.Metrics) {
	s.engine.Use(
		middleware.Recovery(s.log),
		middleware.RequestID(),
		middleware.CORS(s.config.CORS),
		middleware.BodySizeLimit(s.config.MaxBodySize),
		middleware.RequestLogger(s.log),
	)
	if metrics != nil {
		s.engine.Use(middleware.Metrics(metrics))
	}
}

// RegisterDefaultEndpoints registers /live, /health, /ready and /info.
func (s *Server) RegisterDefaultEndpoints(serviceName string, checker endpoint.HealthChecker) {
	s.engine.GET("/live", endpoint.Liveness())
	s.engine.GET("/health", endpoint.Health(serviceName, checker))
	s.engine.GET("/ready", endpoint.Readiness(checker))
	s.engine.GET("/info", endpoint.Info(serviceName))
}

// Start returns once the port is bound; requests are served from a
// goroutine until Stop.
func (s *Server) Start(context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("server: bind %s: %w", s.http.Addr, err)
	}
	s.listener = ln

	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("HTTP server stopped unexpectedly", logger.MergeWithError(nil, err))
		}
	}()
	s.log.Info("HTTP server listening", logger.Fields("addr", ln.Addr().String()))
	return nil
}

// Stop refuses new connections and waits, until ctx is done, for in-flight
// requests.
func (s *Server) Stop(ctx context.Context) error {
	if err := s.http.Shutdown(ctx); err != nil {
		s.log.Error("HTTP server shutdown incomplete", logger.MergeWithError(nil, err))
		return fmt.Errorf("server: shutdown: %w", err)
	}
	s.log.Info("HTTP server stopped")
	return nil
}

// Addr is the bound address after Start and the configured one before.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.http.Addr
}
