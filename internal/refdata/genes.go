package refdata

import (
	"context"
	"database/sql"
	"strings"

	"github.com/uconn-ofc/sv-browser/internal/genome"
)

const geneColumns = `id, chrom, x1, x2, length, strand`

// GeneByID returns the gene with the given identifier, or ErrNotFound.
func (s *Store) GeneByID(ctx context.Context, id string) (genome.Gene, error) {
	rows, err := s.query(ctx, "gene by id",
		`SELECT `+geneColumns+` FROM genes WHERE id = ? LIMIT 1`, id)
	if err != nil {
		return genome.Gene{}, err
	}
	genes, err := scanGenes(rows)
	if err != nil {
		return genome.Gene{}, storageErr("gene by id", err)
	}
	if len(genes) == 0 {
		return genome.Gene{}, ErrNotFound
	}
	return genes[0], nil
}

// SearchGenes returns up to limit genes whose identifier contains fragment,
// case-insensitively, ordered by identifier.
func (s *Store) SearchGenes(ctx context.Context, fragment string, limit int) ([]genome.Gene, error) {
	if fragment == "" || limit <= 0 {
		return []genome.Gene{}, nil
	}
	pattern := "%" + escapeLike(fragment) + "%"
	rows, err := s.query(ctx, "search genes",
		`SELECT `+geneColumns+` FROM genes
		WHERE LOWER(id) LIKE LOWER(?) ESCAPE '\'
		ORDER BY id
		LIMIT ?`, pattern, limit)
	if err != nil {
		return nil, err
	}
	genes, err := scanGenes(rows)
	if err != nil {
		return nil, storageErr("search genes", err)
	}
	return genes, nil
}

// GenesOnChromosome returns all genes on a chromosome ordered by start.
func (s *Store) GenesOnChromosome(ctx context.Context, chrom string) ([]genome.Gene, error) {
	if genome.NormalizeChrom(chrom) == "" {
		return []genome.Gene{}, nil
	}
	where, args := chromFilter("chrom", chrom)
	rows, err := s.query(ctx, "genes on chromosome",
		`SELECT `+geneColumns+` FROM genes WHERE `+where+` ORDER BY x1, id`, args...)
	if err != nil {
		return nil, err
	}
	genes, err := scanGenes(rows)
	if err != nil {
		return nil, storageErr("genes on chromosome", err)
	}
	return genes, nil
}

// Chromosomes returns the distinct chromosomes of the genes table.
func (s *Store) Chromosomes(ctx context.Context) ([]string, error) {
	rows, err := s.query(ctx, "chromosomes", `SELECT DISTINCT chrom FROM genes ORDER BY chrom`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	chroms := []string{}
	for rows.Next() {
		var c sql.NullString
		if err := rows.Scan(&c); err != nil {
			return nil, storageErr("chromosomes", err)
		}
		if c.Valid && c.String != "" {
			chroms = append(chroms, c.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("chromosomes", err)
	}
	return chroms, nil
}

func scanGenes(rows *sql.Rows) ([]genome.Gene, error) {
	defer rows.Close()

	genes := []genome.Gene{}
	for rows.Next() {
		var (
			g      genome.Gene
			chrom  sql.NullString
			x1, x2 sql.NullInt64
			length sql.NullInt64
			strand sql.NullString
		)
		if err := rows.Scan(&g.ID, &chrom, &x1, &x2, &length, &strand); err != nil {
			return nil, err
		}
		g.Name = g.ID
		g.Chrom = chrom.String
		g.Start = x1.Int64
		g.End = x2.Int64
		g.Length = length.Int64
		g.Strand = strand.String
		genes = append(genes, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return genes, nil
}

// escapeLike escapes LIKE wildcards so the fragment matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
