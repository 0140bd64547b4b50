// Package genome provides genomic coordinate types shared by the browser.
package genome

import "fmt"

// Gene represents an annotated gene region from the reference database.
type Gene struct {
	ID     string `json:"id"`               // Gene identifier (e.g., IRF6)
	Name   string `json:"name,omitempty"`   // Display name, defaults to ID
	Chrom  string `json:"chrom"`            // Chromosome as stored
	Start  int64  `json:"x1"`               // Gene start position
	End    int64  `json:"x2"`               // Gene end position
	Strand string `json:"strand,omitempty"` // "+", "-" or "."
	Length int64  `json:"length,omitempty"` // Length in base pairs
}

// DisplayName returns the gene name, falling back to its identifier.
func (g *Gene) DisplayName() string {
	if g.Name != "" {
		return g.Name
	}
	return g.ID
}

// HasCoordinates returns true if the gene carries a usable chromosome range.
func (g *Gene) HasCoordinates() bool {
	return g.Chrom != "" && g.End > 0 && g.Start <= g.End
}

// Locus returns the unpadded range covered by the gene.
func (g *Gene) Locus() Locus {
	return Range(g.Chrom, g.Start, g.End)
}

// Overlaps returns true if the gene intersects [start, end] on the same chromosome.
func (g *Gene) Overlaps(chrom string, start, end int64) bool {
	return SameChrom(g.Chrom, chrom) && g.Start <= end && g.End >= start
}

// Label formats the gene for search result listings.
func (g *Gene) Label() string {
	return fmt.Sprintf("%s (%s:%d-%d)", g.DisplayName(), g.Chrom, g.Start, g.End)
}

// Size returns the stored length, or the span of the coordinates when unset.
func (g *Gene) Size() int64 {
	if g.Length > 0 {
		return g.Length
	}
	if g.End >= g.Start {
		return g.End - g.Start
	}
	return 0
}
