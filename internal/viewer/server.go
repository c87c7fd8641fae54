// Package viewer serves graph views to a local browser: the same renderer
// the terminal uses, drawn to SVG once the layout has settled.
package viewer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/msalah0e/tripgraph/internal/graphmodel"
	"github.com/msalah0e/tripgraph/internal/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Fetcher resolves an ID list to a graph model. *nav.Loader implements it.
type Fetcher interface {
	Fetch(ctx context.Context, ids []string) (*graphmodel.Model, error)
}

// Config holds viewer configuration.
type Config struct {
	Addr     string
	Width    int
	Height   int
	MaxTicks int // frames to settle a layout before rendering it as is
	Render   render.Options
	Backend  string // backend base URL, shown on the index page
}

// DefaultConfig returns the viewer defaults.
func DefaultConfig() Config {
	return Config{
		Addr:     "127.0.0.1:8765",
		Width:    960,
		Height:   640,
		MaxTicks: 2000,
		Render:   render.DefaultOptions(),
	}
}

// Server is the local graph viewer.
type Server struct {
	cfg       Config
	fetcher   Fetcher
	gatherer  prometheus.Gatherer
	logger    *zap.Logger
	startedAt time.Time
}

type Option func(*Server)

// WithMetrics exposes g at /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) { s.gatherer = g }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New creates a viewer serving graphs from f.
func New(cfg Config, f Fetcher, opts ...Option) *Server {
	def := DefaultConfig()
	if cfg.Addr == "" {
		cfg.Addr = def.Addr
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		cfg.Width, cfg.Height = def.Width, def.Height
	}
	if cfg.MaxTicks <= 0 {
		cfg.MaxTicks = def.MaxTicks
	}
	s := &Server{cfg: cfg, fetcher: f, logger: zap.NewNop(), startedAt: time.Now()}
	for _, opt := range opts {
		opt(s)
	}
	s.cfg.Render.Logger = s.logger.Named("render")
	return s
}

// Handler returns the viewer routes.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger))

	r.Get("/", s.handleIndex)
	r.Get("/open", s.handleOpen)
	r.Get("/graph", s.handleGraph)
	r.Get("/graph.svg", s.handleSVG)
	r.Get("/graph.json", s.handleJSON)
	r.Get("/healthz", s.handleHealth)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully. ready, if
// not nil, receives the bound address once the listener is open.
func (s *Server) Run(ctx context.Context, ready func(addr string)) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
	}
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("viewer listening", zap.String("addr", ln.Addr().String()))
	if ready != nil {
		ready(ln.Addr().String())
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("viewer shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.startedAt).Round(time.Second).String(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
