package refdata

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uconn-ofc/sv-browser/internal/genome"
)

// Variant is one structural variant call.
type Variant struct {
	Sample     string  `json:"sample"`
	ID         string  `json:"id"`
	Type       string  `json:"type"` // DEL, DUP, INV, ...
	Chrom      string  `json:"chrom"`
	Start      int64   `json:"start"`
	End        int64   `json:"end"`
	Length     int64   `json:"length,omitempty"`
	Likelihood float64 `json:"likelihood,omitempty"`
	Methods    string  `json:"methods,omitempty"`
	Freq       float64 `json:"freq,omitempty"`
}

// Size returns the span of the variant in base pairs.
func (v *Variant) Size() int64 {
	return v.End - v.Start
}

// RoleVariant is a cohort variant call with the carrier's status flags.
type RoleVariant struct {
	Variant
	Affected bool `json:"affected"`
	Proband  bool `json:"proband"`
}

// BackgroundVariant is a variant from a reference population.
type BackgroundVariant struct {
	Variant
	Population      string `json:"population,omitempty"`
	SuperPopulation string `json:"superPopulation,omitempty"`
}

// Role selects cohort members by family role.
type Role string

// Family roles aggregated by the population view.
const (
	RoleMother Role = "mother"
	RoleFather Role = "father"
	RoleChild  Role = "child"
)

func (r Role) condition() (string, []any, error) {
	switch r {
	case RoleMother:
		return "p.child = 0 AND p.gender = ?", []any{"F"}, nil
	case RoleFather:
		return "p.child = 0 AND p.gender = ?", []any{"M"}, nil
	case RoleChild:
		return "p.child = 1", nil, nil
	}
	return "", nil, fmt.Errorf("unknown role %q", r)
}

// SampleVariants returns the variants called for one sample, ordered by position.
// An empty chrom returns variants on every chromosome.
func (s *Store) SampleVariants(ctx context.Context, sample, chrom string) ([]Variant, error) {
	q := `SELECT sample, id, type, chrom, start, "end", length, likelihood, methods, freq
		FROM phenotype_svs WHERE sample = ?`
	args := []any{sample}
	if genome.NormalizeChrom(chrom) != "" {
		where, chromArgs := chromFilter("chrom", chrom)
		q += " AND " + where
		args = append(args, chromArgs...)
	}
	q += ` ORDER BY chrom, start, id`

	rows, err := s.query(ctx, "sample variants", q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	variants := []Variant{}
	for rows.Next() {
		var v Variant
		if err := scanVariant(rows, &v); err != nil {
			return nil, storageErr("sample variants", err)
		}
		variants = append(variants, v)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("sample variants", err)
	}
	return variants, nil
}

// RoleVariants returns the variants of every cohort member with the given role on chrom.
func (s *Store) RoleVariants(ctx context.Context, role Role, chrom string) ([]RoleVariant, error) {
	cond, args, err := role.condition()
	if err != nil {
		return nil, err
	}
	where, chromArgs := chromFilter("ps.chrom", chrom)
	args = append(chromArgs, args...)

	rows, err := s.query(ctx, "role variants",
		`SELECT ps.sample, ps.id, ps.type, ps.chrom, ps.start, ps."end", ps.length,
			ps.likelihood, ps.methods, ps.freq, p.affected, p.proband
		FROM phenotype_svs ps
		JOIN phenotype p ON ps.sample = p.bam_id
		WHERE `+where+` AND `+cond+`
		ORDER BY ps.start, ps.id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	variants := []RoleVariant{}
	for rows.Next() {
		var (
			v                 RoleVariant
			affected, proband sql.NullInt64
		)
		if err := scanVariant(rows, &v.Variant, &affected, &proband); err != nil {
			return nil, storageErr("role variants", err)
		}
		v.Affected = affected.Int64 == 1
		v.Proband = proband.Int64 == 1
		variants = append(variants, v)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("role variants", err)
	}
	return variants, nil
}

// BackgroundVariants returns reference-population variants on chrom.
func (s *Store) BackgroundVariants(ctx context.Context, chrom string) ([]BackgroundVariant, error) {
	where, args := chromFilter("chrom", chrom)
	rows, err := s.query(ctx, "background variants",
		`SELECT sample, id, type, chrom, start, "end", length, NULL, NULL, freq, pop_code, superpop_code
		FROM background_svs
		WHERE `+where+`
		ORDER BY start, id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	variants := []BackgroundVariant{}
	for rows.Next() {
		var (
			v             BackgroundVariant
			pop, superpop sql.NullString
		)
		if err := scanVariant(rows, &v.Variant, &pop, &superpop); err != nil {
			return nil, storageErr("background variants", err)
		}
		v.Population = pop.String
		v.SuperPopulation = superpop.String
		variants = append(variants, v)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("background variants", err)
	}
	return variants, nil
}

// SampleCounts holds the number of distinct samples behind each aggregated track.
type SampleCounts struct {
	Mother     int `json:"mother"`
	Father     int `json:"father"`
	Child      int `json:"child"`
	Background int `json:"background"`
}

// SampleCounts counts the samples with variant calls per role and in the background set.
func (s *Store) SampleCounts(ctx context.Context) (SampleCounts, error) {
	var counts SampleCounts

	rows, err := s.query(ctx, "sample counts",
		`SELECT p.child, p.gender, COUNT(DISTINCT ps.sample)
		FROM phenotype_svs ps
		JOIN phenotype p ON ps.sample = p.bam_id
		GROUP BY p.child, p.gender`)
	if err != nil {
		return counts, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			child  sql.NullInt64
			gender sql.NullString
			n      int
		)
		if err := rows.Scan(&child, &gender, &n); err != nil {
			return counts, storageErr("sample counts", err)
		}
		switch {
		case child.Int64 == 1:
			counts.Child += n
		case gender.String == "F":
			counts.Mother += n
		case gender.String == "M":
			counts.Father += n
		}
	}
	if err := rows.Err(); err != nil {
		return counts, storageErr("sample counts", err)
	}

	if err := s.queryRow(ctx, "sample counts",
		`SELECT COUNT(DISTINCT sample) FROM background_svs`).Scan(&counts.Background); err != nil {
		return counts, storageErr("sample counts", err)
	}
	return counts, nil
}

// scanVariant scans the ten variant columns followed by any extra destinations.
func scanVariant(rows *sql.Rows, v *Variant, extra ...any) error {
	var (
		sample, typ, chrom, methods sql.NullString
		start, end, length          sql.NullInt64
		likelihood, freq            sql.NullFloat64
	)
	dest := append([]any{&sample, &v.ID, &typ, &chrom, &start, &end, &length, &likelihood, &methods, &freq}, extra...)
	if err := rows.Scan(dest...); err != nil {
		return err
	}
	v.Sample = sample.String
	v.Type = typ.String
	v.Chrom = chrom.String
	v.Start = start.Int64
	v.End = end.Int64
	v.Length = length.Int64
	v.Likelihood = likelihood.Float64
	v.Methods = methods.String
	v.Freq = freq.Float64
	return nil
}
