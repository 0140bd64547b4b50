package genome

import (
	"fmt"
	"strconv"
	"strings"
)

// Locus is a display region: a chromosome plus an optional range.
// A locus without a range selects the viewer's default view of the chromosome.
type Locus struct {
	Chrom    string `json:"chrom"`
	Start    int64  `json:"start,omitempty"`
	End      int64  `json:"end,omitempty"`
	HasRange bool   `json:"hasRange"`
}

// WholeChromosome returns a locus covering an entire chromosome.
func WholeChromosome(chrom string) Locus {
	return Locus{Chrom: chrom}
}

// Range returns a locus covering [start, end] on chrom.
func Range(chrom string, start, end int64) Locus {
	return Locus{Chrom: chrom, Start: start, End: end, HasRange: true}
}

// IsZero returns true if no chromosome is set.
func (l Locus) IsZero() bool {
	return l.Chrom == ""
}

// String formats the locus as "chrom" or "chrom:start-end".
func (l Locus) String() string {
	if !l.HasRange {
		return l.Chrom
	}
	return fmt.Sprintf("%s:%d-%d", l.Chrom, l.Start, l.End)
}

// Pad widens a ranged locus by margin on both sides. The start never drops below 0.
func (l Locus) Pad(margin int64) Locus {
	if !l.HasRange {
		return l
	}
	start := l.Start - margin
	if start < 0 {
		start = 0
	}
	return Range(l.Chrom, start, l.End+margin)
}

// ParseLocus parses "chrom" or "chrom:start-end". Thousands separators are allowed.
func ParseLocus(s string) (Locus, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Locus{}, fmt.Errorf("empty locus")
	}

	chrom, span, found := strings.Cut(s, ":")
	if chrom == "" {
		return Locus{}, fmt.Errorf("locus %q: missing chromosome", s)
	}
	if !found {
		return WholeChromosome(chrom), nil
	}

	startStr, endStr, ok := strings.Cut(strings.ReplaceAll(span, ",", ""), "-")
	if !ok {
		return Locus{}, fmt.Errorf("locus %q: expected start-end", s)
	}
	start, err := strconv.ParseInt(startStr, 10, 64)
	if err != nil {
		return Locus{}, fmt.Errorf("locus %q: invalid start: %w", s, err)
	}
	end, err := strconv.ParseInt(endStr, 10, 64)
	if err != nil {
		return Locus{}, fmt.Errorf("locus %q: invalid end: %w", s, err)
	}
	if start < 0 || end < start {
		return Locus{}, fmt.Errorf("locus %q: invalid range", s)
	}
	return Range(chrom, start, end), nil
}
