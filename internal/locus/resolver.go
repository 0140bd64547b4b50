package locus

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/uconn-ofc/sv-browser/internal/genome"
	"github.com/uconn-ofc/sv-browser/internal/refdata"
	"github.com/uconn-ofc/sv-browser/internal/track"
)

// Padding is the margin in base pairs added around a gene in family views.
const Padding = 1000

// ErrUnresolved is returned when the selections don't determine a region.
var ErrUnresolved = errors.New("locus unresolved")

// GeneFinder looks genes up by identifier.
type GeneFinder interface {
	FindGeneByID(ctx context.Context, id string) (genome.Gene, error)
}

// Resolution is the outcome of resolving a session.
type Resolution struct {
	Locus genome.Locus `json:"locus"`
	// Gene is the unpadded gene behind a range locus; nil for whole chromosomes.
	Gene *genome.Gene `json:"gene,omitempty"`
	// ChromosomeChanged reports that resolution replaced the session chromosome
	// with the chromosome of a newly selected gene.
	ChromosomeChanged bool `json:"chromosomeChanged,omitempty"`
}

// Resolver computes display regions.
type Resolver struct {
	genes  GeneFinder
	logger *zap.Logger
}

// NewResolver creates a Resolver that looks up id-only gene selections in genes.
func NewResolver(genes GeneFinder) *Resolver {
	return &Resolver{genes: genes, logger: zap.NewNop()}
}

// SetLogger sets the logger for malformed gene records.
func (r *Resolver) SetLogger(l *zap.Logger) {
	r.logger = l
}

// Resolve returns the region to display for the session's selections.
//
// A gene whose chromosome matches the session chromosome resolves to the gene
// range, padded by Padding in family scope. A newly selected gene on another
// chromosome first moves the session to that chromosome. A chromosome chosen
// after the gene takes precedence and shows the whole chromosome.
func (r *Resolver) Resolve(ctx context.Context, s *Session, scope track.Scope) (Resolution, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gene == nil {
		if s.chrom == "" {
			return Resolution{}, ErrUnresolved
		}
		return Resolution{Locus: genome.WholeChromosome(s.chrom)}, nil
	}

	gene, err := r.lookup(ctx, *s.gene)
	if errors.Is(err, refdata.ErrNotFound) {
		if s.chrom != "" {
			return Resolution{Locus: genome.WholeChromosome(s.chrom)}, nil
		}
		return Resolution{}, fmt.Errorf("%w: %v", ErrUnresolved, err)
	}
	if err != nil {
		return Resolution{}, err
	}
	if gene.Chrom == "" {
		r.logger.Warn("gene has no chromosome", zap.String("gene", gene.ID))
		return Resolution{}, fmt.Errorf("%w: gene %s has no chromosome", ErrUnresolved, gene.ID)
	}

	var res Resolution
	if s.chrom == "" || (s.geneFresh && !genome.SameChrom(gene.Chrom, s.chrom)) {
		res.ChromosomeChanged = s.chrom != "" && !genome.SameChrom(gene.Chrom, s.chrom)
		s.chrom = gene.Chrom
	}
	s.geneFresh = false

	if !genome.SameChrom(gene.Chrom, s.chrom) {
		res.Locus = genome.WholeChromosome(s.chrom)
		return res, nil
	}

	res.Locus = gene.Locus()
	if scope.IsFamily() {
		res.Locus = res.Locus.Pad(Padding)
	}
	res.Gene = &gene
	return res, nil
}

func (r *Resolver) lookup(ctx context.Context, ref GeneRef) (genome.Gene, error) {
	if ref.HasCoordinates() {
		return ref.gene(), nil
	}
	if ref.ID == "" {
		return genome.Gene{}, fmt.Errorf("gene selection without id or coordinates: %w", refdata.ErrNotFound)
	}
	g, err := r.genes.FindGeneByID(ctx, ref.ID)
	if err != nil {
		return genome.Gene{}, fmt.Errorf("resolve gene %s: %w", ref.ID, err)
	}
	return g, nil
}
