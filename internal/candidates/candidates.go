// Package candidates loads the candidate gene table shown next to the viewer.
package candidates

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// GeneColumn is the column holding the gene identifier of each row.
const GeneColumn = "Gene"

// Row is one candidate table row keyed by column name.
type Row map[string]string

// Gene returns the row's gene identifier.
func (r Row) Gene() string {
	return r[GeneColumn]
}

// Table is a loaded candidate gene table.
type Table struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Empty returns a table without rows, used when no table is configured.
func Empty() *Table {
	return &Table{Columns: []string{GeneColumn}, Rows: []Row{}}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Genes returns the gene identifiers in row order, without duplicates.
func (t *Table) Genes() []string {
	seen := make(map[string]bool, len(t.Rows))
	genes := make([]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		g := r.Gene()
		if g == "" || seen[g] {
			continue
		}
		seen[g] = true
		genes = append(genes, g)
	}
	return genes
}

// GeneAt returns the gene of the row at index i.
func (t *Table) GeneAt(i int) (string, error) {
	if i < 0 || i >= len(t.Rows) {
		return "", fmt.Errorf("candidate row %d out of range (%d rows)", i, len(t.Rows))
	}
	g := t.Rows[i].Gene()
	if g == "" {
		return "", fmt.Errorf("candidate row %d has no gene", i)
	}
	return g, nil
}

// Load reads a candidate table from a CSV file.
// The header must include a "Gene" column.
func Load(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open candidate table: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a candidate table in CSV form.
func Parse(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("candidate table: empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("candidate table header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\uFEFF"))
	}

	geneIdx := -1
	for i, col := range header {
		if col == GeneColumn {
			geneIdx = i
			break
		}
	}
	if geneIdx < 0 {
		return nil, fmt.Errorf("candidate table: missing %q column", GeneColumn)
	}

	t := &Table{Columns: header, Rows: []Row{}}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading candidate table: %w", err)
		}
		if len(record) <= geneIdx || strings.TrimSpace(record[geneIdx]) == "" {
			continue
		}
		row := make(Row, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = strings.TrimSpace(record[i])
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}
