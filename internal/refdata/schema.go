package refdata

import (
	"context"
	"fmt"
	"strings"
)

type columnKind int

const (
	kindText columnKind = iota
	kindInt
	kindFloat
)

type column struct {
	name string
	kind columnKind
}

type table struct {
	name    string
	columns []column
}

// tables describes the read contract of the reference database. The same DDL
// is valid for SQLite and DuckDB.
var tables = []table{
	{"genes", []column{
		{"id", kindText}, {"chrom", kindText}, {"x1", kindInt}, {"x2", kindInt},
		{"length", kindInt}, {"strand", kindText},
	}},
	{"phenotype", []column{
		{"family_id", kindText}, {"part_id", kindText}, {"bio_id", kindText},
		{"bam_id", kindText}, {"pheno", kindText}, {"child", kindInt},
		{"proband", kindInt}, {"affected", kindInt}, {"gender", kindText},
		{"race", kindText},
	}},
	{"phenotype_svs", []column{
		{"sample", kindText}, {"id", kindText}, {"type", kindText},
		{"chrom", kindText}, {"start", kindInt}, {"end", kindInt},
		{"length", kindInt}, {"likelihood", kindFloat}, {"methods", kindText},
		{"freq", kindFloat}, {"pheno", kindText}, {"gender", kindText},
	}},
	{"background_svs", []column{
		{"sample", kindText}, {"id", kindText}, {"type", kindText},
		{"chrom", kindText}, {"start", kindInt}, {"end", kindInt},
		{"length", kindInt}, {"freq", kindFloat}, {"pheno", kindText},
		{"gender", kindText}, {"pop_code", kindText}, {"superpop_code", kindText},
	}},
}

// TableNames returns the tables of the reference schema in creation order.
func TableNames() []string {
	names := make([]string, len(tables))
	for i, t := range tables {
		names[i] = t.name
	}
	return names
}

func (k columnKind) sqlType() string {
	switch k {
	case kindInt:
		return "BIGINT"
	case kindFloat:
		return "DOUBLE"
	}
	return "TEXT"
}

func (t table) ddl() string {
	defs := make([]string, len(t.columns))
	for i, c := range t.columns {
		defs[i] = fmt.Sprintf("%q %s", c.name, c.kind.sqlType())
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", t.name, strings.Join(defs, ", "))
}

func (t table) columnList() string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = fmt.Sprintf("%q", c.name)
	}
	return strings.Join(names, ", ")
}

func (t table) insertSQL() string {
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(t.columns)), ", ")
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", t.name, t.columnList(), marks)
}

// CreateSchema creates the reference tables if they don't exist.
func (s *Store) CreateSchema(ctx context.Context) error {
	for _, t := range tables {
		if _, err := s.db.ExecContext(ctx, t.ddl()); err != nil {
			return fmt.Errorf("create table %s: %w", t.name, err)
		}
	}
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_genes_chrom ON genes (chrom, x1)",
		"CREATE INDEX IF NOT EXISTS idx_phenotype_family ON phenotype (family_id)",
		"CREATE INDEX IF NOT EXISTS idx_phenotype_svs_sample ON phenotype_svs (sample, chrom)",
		"CREATE INDEX IF NOT EXISTS idx_background_svs_chrom ON background_svs (chrom)",
	}
	for _, stmt := range indexes {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}
