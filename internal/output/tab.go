// Package output formats genes, family members, tracks and cohort statistics for the command line.
package output

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/uconn-ofc/sv-browser/internal/family"
	"github.com/uconn-ofc/sv-browser/internal/genome"
	"github.com/uconn-ofc/sv-browser/internal/track"
)

// Column sets of the tab-delimited tables.
var (
	GeneColumns    = []string{"#Gene", "Location", "Strand", "Length"}
	MemberColumns  = []string{"#Label", "Role", "Sample", "Participant", "Sex", "Proband", "Affected", "Phenotype", "Race"}
	TrackColumns   = []string{"#Track", "Kind", "Color", "Height", "Features"}
	FeatureColumns = []string{"#Track", "Location", "Name", "Type", "Gene", "Description"}
)

// TabWriter writes tab-delimited tables.
type TabWriter struct {
	w *bufio.Writer
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{w: bufio.NewWriter(w)}
}

// WriteHeader writes a header line.
func (tw *TabWriter) WriteHeader(columns []string) error {
	return tw.row(columns)
}

func (tw *TabWriter) row(values []string) error {
	_, err := tw.w.WriteString(strings.Join(values, "\t") + "\n")
	return err
}

// WriteGene writes a single gene.
func (tw *TabWriter) WriteGene(g genome.Gene) error {
	return tw.row([]string{
		g.DisplayName(),
		location(g.Chrom, g.Start, g.End),
		dash(g.Strand),
		strconv.FormatInt(g.Size(), 10),
	})
}

// WriteGenes writes a header and one row per gene.
func (tw *TabWriter) WriteGenes(genes []genome.Gene) error {
	if err := tw.WriteHeader(GeneColumns); err != nil {
		return err
	}
	for _, g := range genes {
		if err := tw.WriteGene(g); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// WriteMembers writes a header and the parents then children of a family.
func (tw *TabWriter) WriteMembers(m family.Members) error {
	if err := tw.WriteHeader(MemberColumns); err != nil {
		return err
	}
	summaries := family.Describe(m)
	for i, mem := range m.All() {
		role := "parent"
		if mem.Child {
			role = "child"
		}
		err := tw.row([]string{
			summaries[i].Label,
			role,
			mem.SampleID,
			dash(mem.ParticipantID),
			mem.SexLabel(),
			yesNo(mem.Proband),
			yesNo(mem.Affected),
			dash(mem.Phenotype),
			dash(mem.Race),
		})
		if err != nil {
			return err
		}
	}
	return tw.Flush()
}

// WriteTracks writes a header and one summary row per track.
func (tw *TabWriter) WriteTracks(tracks []track.Track) error {
	if err := tw.WriteHeader(TrackColumns); err != nil {
		return err
	}
	for _, t := range tracks {
		err := tw.row([]string{
			t.Name,
			string(t.Kind),
			t.Color,
			strconv.Itoa(t.Height),
			strconv.Itoa(len(t.Features)),
		})
		if err != nil {
			return err
		}
	}
	return tw.Flush()
}

// WriteFeatures writes a header and every feature of every track.
// HTML line breaks in descriptions are written as "; ".
func (tw *TabWriter) WriteFeatures(tracks []track.Track) error {
	if err := tw.WriteHeader(FeatureColumns); err != nil {
		return err
	}
	for _, t := range tracks {
		for _, f := range t.Features {
			desc := strings.TrimSuffix(f.Description, "<br>")
			desc = strings.ReplaceAll(desc, "<br>", "; ")
			err := tw.row([]string{
				t.Name,
				location(f.Chrom, f.Start, f.End),
				f.Name,
				dash(f.Type),
				dash(f.Gene),
				dash(desc),
			})
			if err != nil {
				return err
			}
		}
	}
	return tw.Flush()
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

func location(chrom string, start, end int64) string {
	return fmt.Sprintf("%s:%d-%d", chrom, start, end)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "-"
}
