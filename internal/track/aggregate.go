package track

import (
	"fmt"
	"strings"

	"github.com/uconn-ofc/sv-browser/internal/genome"
	"github.com/uconn-ofc/sv-browser/internal/refdata"
)

// aggregate collapses every call of one SV id into a single feature.
type aggregate struct {
	first refdata.Variant
	count int
	notes orderedSet
}

// aggregator groups variants by id, keeping first-seen order.
type aggregator struct {
	byID  map[string]*aggregate
	order []string
}

func newAggregator() *aggregator {
	return &aggregator{byID: make(map[string]*aggregate)}
}

func (g *aggregator) add(v refdata.Variant) *aggregate {
	a, ok := g.byID[v.ID]
	if !ok {
		a = &aggregate{first: v}
		g.byID[v.ID] = a
		g.order = append(g.order, v.ID)
	}
	a.count++
	return a
}

// features renders one feature per SV id. extra returns the description
// fragment placed between the type and count lines.
func (g *aggregator) features(genes *genome.GeneTree, extra func(*aggregate) string) []Feature {
	out := make([]Feature, 0, len(g.order))
	for _, id := range g.order {
		a := g.byID[id]
		v := a.first
		f := svFeature(v, genes)
		f.Description = fmt.Sprintf("Type: %s<br>%sCount: %d<br>Size: %d bp", v.Type, extra(a), a.count, v.Size())
		out = append(out, f)
	}
	return out
}

func svFeature(v refdata.Variant, genes *genome.GeneTree) Feature {
	f := Feature{
		Chrom: v.Chrom,
		Start: v.Start,
		End:   v.End,
		Name:  v.ID,
		Type:  v.Type,
	}
	if genes != nil {
		if g := genes.Longest(v.Start, v.End); g != nil {
			f.Gene = g.DisplayName()
		}
	}
	return f
}

func noExtra(*aggregate) string { return "" }

// childStatus lists the statuses seen among the carriers, e.g. "Status: Affected, Proband<br>".
func childStatus(a *aggregate) string {
	if len(a.notes.items) == 0 {
		return ""
	}
	return "Status: " + strings.Join(a.notes.items, ", ") + "<br>"
}

type orderedSet struct {
	items []string
	seen  map[string]bool
}

func (s *orderedSet) add(item string) {
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	if s.seen[item] {
		return
	}
	s.seen[item] = true
	s.items = append(s.items, item)
}
