package track

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/uconn-ofc/sv-browser/internal/genome"
)

// Request carries what a source needs to build its track for one chromosome.
type Request struct {
	Chrom string
	Build string
	Genes *genome.GeneTree // genes on Chrom, for overlap labels
}

// Source builds one reference track.
type Source interface {
	Name() string // configuration key, e.g. "background"
	Kind() Kind
	Build(ctx context.Context, req Request) (Track, error)
	// Empty returns the track to show when Build fails.
	Empty(req Request) Track
}

// backgroundSource aggregates reference-population SVs by id.
type backgroundSource struct {
	store Store
}

func (s *backgroundSource) Name() string { return string(KindBackground) }
func (s *backgroundSource) Kind() Kind   { return KindBackground }

func (s *backgroundSource) Empty(Request) Track {
	return newTrack("Background Reference SVs", KindBackground, ColorBackground, aggregateHeight)
}

func (s *backgroundSource) Build(ctx context.Context, req Request) (Track, error) {
	t := s.Empty(req)
	rows, err := s.store.BackgroundVariants(ctx, req.Chrom)
	if err != nil {
		return t, fmt.Errorf("background variants: %w", err)
	}

	agg := newAggregator()
	for _, v := range rows {
		a := agg.add(v.Variant)
		if v.Population != "" {
			a.notes.add("Pop: " + v.Population)
		}
		if v.SuperPopulation != "" {
			a.notes.add("SuperPop: " + v.SuperPopulation)
		}
		if v.Freq != 0 {
			a.notes.add("Freq: " + strconv.FormatFloat(v.Freq, 'f', -1, 64))
		}
	}
	t.Features = agg.features(req.Genes, func(a *aggregate) string {
		if len(a.notes.items) == 0 {
			return ""
		}
		return strings.Join(a.notes.items, ",") + "<br>"
	})
	return t, nil
}

// geneSource renders the genes on the chromosome as a BED annotation track.
type geneSource struct{}

func (s *geneSource) Name() string { return string(KindGenes) }
func (s *geneSource) Kind() Kind   { return KindGenes }

func (s *geneSource) Empty(req Request) Track {
	return newTrack(fmt.Sprintf("Genes (%s)", req.Chrom), KindGenes, "", 0)
}

func (s *geneSource) Build(_ context.Context, req Request) (Track, error) {
	t := s.Empty(req)
	if req.Genes == nil {
		return t, nil
	}
	for _, g := range req.Genes.Genes() {
		t.Features = append(t.Features, Feature{
			Chrom:  g.Chrom,
			Start:  g.Start,
			End:    g.End,
			Name:   g.DisplayName(),
			Strand: g.Strand,
		})
	}
	return t, nil
}

// KnownSources lists the reference source names accepted in configuration.
func KnownSources() []string {
	return []string{string(KindBackground), string(KindGenes)}
}

func newSource(name string, store Store) (Source, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(name))) {
	case KindBackground:
		return &backgroundSource{store: store}, nil
	case KindGenes:
		return &geneSource{}, nil
	}
	return nil, fmt.Errorf("unknown reference source %q (want one of %s)", name, strings.Join(KnownSources(), ", "))
}

var _ Source = (*backgroundSource)(nil)
var _ Source = (*geneSource)(nil)
