package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/whisperd/logger"
	"github.com/kbukum/whisperd/server/endpoint"
	"github.com/kbukum/whisperd/server/middleware"
)

// Server serves a Gin engine over HTTP/1.1 and cleartext HTTP/2. The
// middleware stack wraps the engine itself, so unrouted requests still get
// a request id, an access log line and the JSON panic envelope.
type Server struct {
	engine *gin.Engine
	http   *http.Server
	config Config
	log    *logger.Logger

	mu sync.Mutex
	ln net.Listener
}

// New builds a Server from cfg, which should already have its defaults.
func New(cfg Config, log *logger.Logger) *Server {
	mode := gin.ReleaseMode
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		mode = gin.DebugMode
	}
	gin.SetMode(mode)

	engine := gin.New()
	engine.HandleMethodNotAllowed = true

	log = log.WithComponent("server")
	stack := middleware.Chain(
		middleware.Recovery(log),
		middleware.RequestID(),
		middleware.RequestLogger(log),
		middleware.CORS(cfg.CORS),
		middleware.BodySizeLimit(cfg.MaxBodySize),
	)
	h2 := &http2.Server{MaxConcurrentStreams: 250, IdleTimeout: seconds(cfg.IdleTimeout)}

	return &Server{
		engine: engine,
		config: cfg,
		log:    log,
		http: &http.Server{
			Addr:              net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
			Handler:           h2c.NewHandler(stack(engine), h2),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       seconds(cfg.ReadTimeout),
			WriteTimeout:      seconds(cfg.WriteTimeout),
			IdleTimeout:       seconds(cfg.IdleTimeout),
		},
	}
}

// GinEngine is where handlers register their routes.
func (s *Server) GinEngine() *gin.Engine { return s.engine }

// Handler is the wrapped root handler.
func (s *Server) Handler() http.Handler { return s.http.Handler }

// Start binds the listener and serves in the background. A bind failure is
// returned; later serve errors are logged.
func (s *Server) Start(context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", s.http.Addr, err)
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()

	go func() {
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("serve failed", logger.Fields(logger.FieldError, err.Error()))
		}
	}()
	s.log.Info("listening", logger.Fields("addr", ln.Addr().String()))
	return nil
}

// Stop drains in-flight requests until ctx ends.
func (s *Server) Stop(ctx context.Context) error {
	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.log.Info("stopped")
	return nil
}

// Addr is the bound address after Start, the configured one before.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return s.http.Addr
	}
	return s.ln.Addr().String()
}

// RegisterDefaultEndpoints mounts GET /health and GET /info.
func (s *Server) RegisterDefaultEndpoints(service string, checker endpoint.HealthChecker, details endpoint.InfoDetails) {
	s.engine.GET("/health", endpoint.Health(service, checker))
	s.engine.GET("/info", endpoint.Info(service, details))
}
