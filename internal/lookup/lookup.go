// Package lookup resolves genes by identifier or name fragment.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/uconn-ofc/sv-browser/internal/genome"
)

// DefaultLimit caps the number of search results.
const DefaultLimit = 30

// ErrNoChromosome is returned for a region lookup without a chromosome.
var ErrNoChromosome = errors.New("no chromosome given")

// GeneStore is the subset of the reference store used for gene lookups.
type GeneStore interface {
	GeneByID(ctx context.Context, id string) (genome.Gene, error)
	SearchGenes(ctx context.Context, fragment string, limit int) ([]genome.Gene, error)
	GenesOnChromosome(ctx context.Context, chrom string) ([]genome.Gene, error)
}

// Genes answers gene lookups against a GeneStore.
type Genes struct {
	store GeneStore
	limit int
}

// New creates a gene lookup. A non-positive limit selects DefaultLimit.
func New(store GeneStore, limit int) *Genes {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Genes{store: store, limit: limit}
}

// Limit returns the maximum number of search results.
func (g *Genes) Limit() int {
	return g.limit
}

// FindGeneByID returns the gene with the given identifier.
// Unknown identifiers return an error wrapping refdata.ErrNotFound.
func (g *Genes) FindGeneByID(ctx context.Context, id string) (genome.Gene, error) {
	id = strings.TrimSpace(id)
	gene, err := g.store.GeneByID(ctx, id)
	if err != nil {
		return genome.Gene{}, fmt.Errorf("find gene %q: %w", id, err)
	}
	return gene, nil
}

// SearchGenes returns genes whose identifier contains fragment, ignoring case,
// ordered by identifier. An empty fragment yields no results.
func (g *Genes) SearchGenes(ctx context.Context, fragment string) ([]genome.Gene, error) {
	fragment = strings.TrimSpace(fragment)
	if fragment == "" {
		return []genome.Gene{}, nil
	}
	genes, err := g.store.SearchGenes(ctx, fragment, g.limit)
	if err != nil {
		return nil, fmt.Errorf("search genes %q: %w", fragment, err)
	}
	return genes, nil
}

// GenesOnChromosome returns the genes annotated on chrom ordered by start.
func (g *Genes) GenesOnChromosome(ctx context.Context, chrom string) ([]genome.Gene, error) {
	genes, err := g.store.GenesOnChromosome(ctx, chrom)
	if err != nil {
		return nil, fmt.Errorf("genes on %s: %w", chrom, err)
	}
	return genes, nil
}

// GenesInLocus returns the genes overlapping l ordered by start. A locus
// without a range returns every gene on its chromosome.
func (g *Genes) GenesInLocus(ctx context.Context, l genome.Locus) ([]genome.Gene, error) {
	if l.IsZero() {
		return nil, fmt.Errorf("genes in locus: %w", ErrNoChromosome)
	}
	genes, err := g.GenesOnChromosome(ctx, l.Chrom)
	if err != nil || !l.HasRange {
		return genes, err
	}
	overlapping := []genome.Gene{}
	for i := range genes {
		if genes[i].Overlaps(l.Chrom, l.Start, l.End) {
			overlapping = append(overlapping, genes[i])
		}
	}
	return overlapping, nil
}

// GeneAt returns the longest gene overlapping [start, end] on chrom, or nil.
func (g *Genes) GeneAt(ctx context.Context, chrom string, start, end int64) (*genome.Gene, error) {
	genes, err := g.GenesOnChromosome(ctx, chrom)
	if err != nil {
		return nil, err
	}
	return genome.BuildGeneTree(genes).Longest(start, end), nil
}

// Option is a search result formatted for a selection list.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Options formats genes as "ID (chrom:x1-x2)" selection options.
func Options(genes []genome.Gene) []Option {
	opts := make([]Option, len(genes))
	for i := range genes {
		opts[i] = Option{Label: genes[i].Label(), Value: genes[i].ID}
	}
	return opts
}
