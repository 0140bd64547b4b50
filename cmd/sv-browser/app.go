package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/uconn-ofc/sv-browser/internal/browser"
	"github.com/uconn-ofc/sv-browser/internal/candidates"
	"github.com/uconn-ofc/sv-browser/internal/config"
	"github.com/uconn-ofc/sv-browser/internal/family"
	"github.com/uconn-ofc/sv-browser/internal/locus"
	"github.com/uconn-ofc/sv-browser/internal/logging"
	"github.com/uconn-ofc/sv-browser/internal/lookup"
	"github.com/uconn-ofc/sv-browser/internal/metrics"
	"github.com/uconn-ofc/sv-browser/internal/refdata"
	"github.com/uconn-ofc/sv-browser/internal/track"
)

// app holds the components wired from the configuration.
type app struct {
	cfg        config.Config
	logger     *zap.Logger
	metrics    *metrics.Metrics
	store      *refdata.Store
	genes      *lookup.Genes
	families   *family.Resolver
	assembler  *track.Assembler
	resolver   *locus.Resolver
	browser    *browser.Browser
	candidates *candidates.Table
}

// openApp loads the configuration and opens the reference store read-only.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	store, err := refdata.Open(cfg.Store.Driver, cfg.Store.Path, refdata.ReadOnly())
	if err != nil {
		return nil, fmt.Errorf("open reference store: %w", err)
	}
	if err := store.Check(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("open reference store: %w", err)
	}

	m := metrics.New()
	store.SetLogger(logger.Named("refdata"))
	store.SetObserver(m.ObserveQuery)

	a := &app{
		cfg:      cfg,
		logger:   logger,
		metrics:  m,
		store:    store,
		genes:    lookup.New(store, cfg.Search.Limit),
		families: family.NewResolver(store),
	}

	a.assembler, err = track.NewAssembler(store, a.families, cfg.TrackConfig(), track.WithLogger(logger.Named("track")))
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("configure tracks: %w", err)
	}
	a.resolver = locus.NewResolver(a.genes)
	a.resolver.SetLogger(logger.Named("locus"))
	a.browser = browser.New(store, a.families, a.resolver, a.assembler)
	a.browser.SetLogger(logger.Named("browser"))

	a.candidates = candidates.Empty()
	if cfg.Candidates.Path != "" {
		t, err := candidates.Load(cfg.Candidates.Path)
		if err != nil {
			logger.Warn("candidate table not loaded", zap.String("path", cfg.Candidates.Path), zap.Error(err))
		} else {
			a.candidates = t
		}
	}

	logger.Debug("reference store opened",
		zap.String("driver", cfg.Store.Driver),
		zap.String("path", cfg.Store.Path),
		zap.String("build", a.browser.Build()))
	return a, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("close reference store", zap.Error(err))
	}
	_ = a.logger.Sync()
}
