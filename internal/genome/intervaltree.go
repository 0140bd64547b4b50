package genome

import "sort"

// GeneTree provides overlap queries over the genes of one chromosome using a
// sorted-slice approach. Genes are loaded once and never modified after build.
type GeneTree struct {
	intervals []interval
	maxEnd    []int64 // maxEnd[i] = max(End) for intervals[:i+1]
}

type interval struct {
	start int64
	end   int64
	gene  *Gene
}

// BuildGeneTree creates a gene tree from a slice of genes.
func BuildGeneTree(genes []Gene) *GeneTree {
	if len(genes) == 0 {
		return &GeneTree{}
	}

	intervals := make([]interval, len(genes))
	for i := range genes {
		intervals[i] = interval{start: genes[i].Start, end: genes[i].End, gene: &genes[i]}
	}

	sort.SliceStable(intervals, func(i, j int) bool {
		return intervals[i].start < intervals[j].start
	})

	// Prefix-max array: maxEnd[i] = max(end) for intervals[0..i]
	maxEnd := make([]int64, len(intervals))
	maxEnd[0] = intervals[0].end
	for i := 1; i < len(intervals); i++ {
		maxEnd[i] = intervals[i].end
		if maxEnd[i-1] > maxEnd[i] {
			maxEnd[i] = maxEnd[i-1]
		}
	}

	return &GeneTree{intervals: intervals, maxEnd: maxEnd}
}

// Len returns the number of genes in the tree.
func (t *GeneTree) Len() int {
	return len(t.intervals)
}

// Genes returns the genes in start order.
func (t *GeneTree) Genes() []*Gene {
	genes := make([]*Gene, len(t.intervals))
	for i, iv := range t.intervals {
		genes[i] = iv.gene
	}
	return genes
}

// FindOverlaps returns all genes whose [Start, End] range intersects [start, end].
func (t *GeneTree) FindOverlaps(start, end int64) []*Gene {
	if len(t.intervals) == 0 || end < start {
		return nil
	}

	// Candidates must have start <= end; hi is the first index past them.
	hi := sort.Search(len(t.intervals), func(i int) bool {
		return t.intervals[i].start > end
	})

	var result []*Gene
	for i := hi - 1; i >= 0; i-- {
		// maxEnd[i] bounds every interval in [0, i]; nothing earlier can reach start.
		if t.maxEnd[i] < start {
			break
		}
		if t.intervals[i].end >= start {
			result = append(result, t.intervals[i].gene)
		}
	}
	return result
}

// Longest returns the longest gene overlapping [start, end], or nil.
func (t *GeneTree) Longest(start, end int64) *Gene {
	var best *Gene
	for _, g := range t.FindOverlaps(start, end) {
		if best == nil || g.Size() > best.Size() || (g.Size() == best.Size() && g.ID < best.ID) {
			best = g
		}
	}
	return best
}
