package browser

import (
	"context"

	"go.uber.org/zap"

	"github.com/uconn-ofc/sv-browser/internal/genome"
)

// ChromosomeOption is one entry of the chromosome selector.
type ChromosomeOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
	Size  int64  `json:"size,omitempty"`
}

// FallbackOption is offered when the gene table lists no chromosomes.
var FallbackOption = ChromosomeOption{Value: genome.DefaultBuild, Label: "Human (GRCh38/hg38)"}

// ChromosomeOptions lists the chromosomes with annotated genes in karyotype
// order. An empty gene table or a failing store yields FallbackOption.
func (b *Browser) ChromosomeOptions(ctx context.Context) []ChromosomeOption {
	chroms, err := b.store.Chromosomes(ctx)
	if err != nil {
		b.logger.Warn("list chromosomes", zap.Error(err))
		return []ChromosomeOption{FallbackOption}
	}
	if len(chroms) == 0 {
		return []ChromosomeOption{FallbackOption}
	}

	genome.SortChromosomes(chroms)
	opts := make([]ChromosomeOption, 0, len(chroms))
	for _, c := range chroms {
		opt := ChromosomeOption{Value: c, Label: "Chromosome " + c}
		if size, ok := genome.ChromosomeSize(b.build, c); ok {
			opt.Size = size
		}
		opts = append(opts, opt)
	}
	return opts
}
