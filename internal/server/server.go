// Package server exposes the browser as a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/uconn-ofc/sv-browser/internal/browser"
	"github.com/uconn-ofc/sv-browser/internal/candidates"
	"github.com/uconn-ofc/sv-browser/internal/family"
	"github.com/uconn-ofc/sv-browser/internal/genome"
	"github.com/uconn-ofc/sv-browser/internal/metrics"
	"github.com/uconn-ofc/sv-browser/internal/refdata"
	"github.com/uconn-ofc/sv-browser/internal/track"
)

// Store reports the state and cohort statistics of the reference database.
type Store interface {
	Status(ctx context.Context) (refdata.Status, error)
	SampleCounts(ctx context.Context) (refdata.SampleCounts, error)
	Summary(ctx context.Context) (refdata.Summary, error)
	SizeDistribution(ctx context.Context) ([]refdata.SizePoint, error)
	ChromosomeDistribution(ctx context.Context) ([]refdata.ChromCount, error)
	TopChildVariants(ctx context.Context, limit int) ([]refdata.TopVariant, error)
}

// GeneLookup finds and searches genes.
type GeneLookup interface {
	FindGeneByID(ctx context.Context, id string) (genome.Gene, error)
	SearchGenes(ctx context.Context, fragment string) ([]genome.Gene, error)
	GenesInLocus(ctx context.Context, l genome.Locus) ([]genome.Gene, error)
	GeneAt(ctx context.Context, chrom string, start, end int64) (*genome.Gene, error)
	Limit() int
}

// FamilyLister lists family identifiers.
type FamilyLister interface {
	ListFamilyIDs(ctx context.Context) ([]string, error)
	GetFamilyMembers(ctx context.Context, familyID string) (family.Members, error)
}

// Deps are the components served by the API.
type Deps struct {
	Store      Store
	Genes      GeneLookup
	Families   FamilyLister
	Assembler  *track.Assembler
	Browser    *browser.Browser
	Candidates *candidates.Table
	Metrics    *metrics.Metrics
	Logger     *zap.Logger
	Version    string
}

// Options configures the HTTP server.
type Options struct {
	Addr            string
	SessionTTL      time.Duration
	ShutdownTimeout time.Duration
}

// Default server settings.
const (
	DefaultAddr            = ":8050"
	DefaultShutdownTimeout = 30 * time.Second
)

// Server is the HTTP API server.
type Server struct {
	deps     Deps
	opts     Options
	sessions *Sessions
	engine   *gin.Engine
	srv      *http.Server
	logger   *zap.Logger
}

// New creates a Server and registers its routes.
func New(deps Deps, opts Options) (*Server, error) {
	switch {
	case deps.Store == nil:
		return nil, errors.New("server: store is required")
	case deps.Genes == nil:
		return nil, errors.New("server: gene lookup is required")
	case deps.Families == nil:
		return nil, errors.New("server: family resolver is required")
	case deps.Assembler == nil || deps.Browser == nil:
		return nil, errors.New("server: assembler and browser are required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	if deps.Candidates == nil {
		deps.Candidates = candidates.Empty()
	}
	if deps.Version == "" {
		deps.Version = "dev"
	}
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = DefaultShutdownTimeout
	}

	s := &Server{
		deps:     deps,
		opts:     opts,
		sessions: NewSessions(opts.SessionTTL, deps.Metrics.Sessions),
		logger:   deps.Logger,
	}
	s.engine = s.routes()
	s.srv = &http.Server{
		Addr:         opts.Addr,
		Handler:      s.engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s, nil
}

// Handler returns the HTTP handler of the API.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Sessions returns the session registry.
func (s *Server) Sessions() *Sessions {
	return s.sessions
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.opts.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("http server listening", zap.String("addr", ln.Addr().String()))
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		return s.shutdown()
	})
	if s.opts.SessionTTL > 0 {
		g.Go(func() error {
			s.sweep(ctx, s.opts.SessionTTL/2)
			return nil
		})
	}
	return g.Wait()
}

func (s *Server) shutdown() error {
	s.logger.Info("shutting down http server")
	ctx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()

	if err := s.srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	s.logger.Info("http server stopped")
	return nil
}

func (s *Server) sweep(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.sessions.Sweep(now); n > 0 {
				s.logger.Debug("expired idle sessions", zap.Int("sessions", n))
			}
		}
	}
}
