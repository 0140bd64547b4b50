package refdata

import (
	"context"
	"database/sql"
	"math"
	"strings"
)

// Categories of the chromosome and top-variant statistics.
const (
	CategoryMother     = "mother"
	CategoryFather     = "father"
	CategoryChild      = "child"
	CategoryBackground = "background"
)

// DefaultTopVariants is the number of child variants ranked by TopChildVariants.
const DefaultTopVariants = 20

// Summary counts cohort variants by type and the samples carrying them.
type Summary struct {
	Total              int            `json:"total"`
	Types              map[string]int `json:"types"`
	AffectedChildren   int            `json:"affectedChildren"`
	UnaffectedChildren int            `json:"unaffectedChildren"`
	CarriersBySex      map[string]int `json:"carriersBySex"`
}

// Summary returns the cohort variant counts per type, the number of affected
// and unaffected children with at least one call, and carriers per sex.
func (s *Store) Summary(ctx context.Context) (Summary, error) {
	sum := Summary{Types: map[string]int{}, CarriersBySex: map[string]int{}}

	if err := s.countBy(ctx, "sv types",
		`SELECT type, COUNT(*) FROM phenotype_svs GROUP BY type`,
		func(key string, n int) {
			sum.Types[key] = n
			sum.Total += n
		}); err != nil {
		return sum, err
	}

	if err := s.countBy(ctx, "affected children",
		`SELECT CAST(p.affected AS TEXT), COUNT(DISTINCT ps.sample)
		FROM phenotype_svs ps
		JOIN phenotype p ON ps.sample = p.bam_id
		WHERE p.child = 1
		GROUP BY p.affected`,
		func(key string, n int) {
			if key == "1" {
				sum.AffectedChildren += n
			} else {
				sum.UnaffectedChildren += n
			}
		}); err != nil {
		return sum, err
	}

	if err := s.countBy(ctx, "carriers by sex",
		`SELECT p.gender, COUNT(DISTINCT ps.sample)
		FROM phenotype_svs ps
		JOIN phenotype p ON ps.sample = p.bam_id
		GROUP BY p.gender`,
		func(key string, n int) {
			if key == "" {
				key = "unknown"
			}
			sum.CarriersBySex[key] += n
		}); err != nil {
		return sum, err
	}
	return sum, nil
}

// SizePoint is the length of one cohort variant call.
type SizePoint struct {
	Type   string `json:"type"`
	Length int64  `json:"length"`
}

// SizeDistribution returns the type and length of every cohort call with a
// positive length, ordered by type and length.
func (s *Store) SizeDistribution(ctx context.Context) ([]SizePoint, error) {
	rows, err := s.query(ctx, "size distribution",
		`SELECT type, length FROM phenotype_svs WHERE length > 0 ORDER BY type, length`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	points := []SizePoint{}
	for rows.Next() {
		var (
			p   SizePoint
			typ sql.NullString
		)
		if err := rows.Scan(&typ, &p.Length); err != nil {
			return nil, storageErr("size distribution", err)
		}
		p.Type = typ.String
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("size distribution", err)
	}
	return points, nil
}

// ChromCount is the share of one category's calls that fall on a chromosome.
type ChromCount struct {
	Category   string  `json:"category"`
	Chrom      string  `json:"chrom"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// ChromosomeDistribution returns the calls per chromosome for mothers,
// fathers, children and the background set. Percentages are relative to the
// category's total, so each category sums to 100.
func (s *Store) ChromosomeDistribution(ctx context.Context) ([]ChromCount, error) {
	counts := []ChromCount{}
	for _, role := range []Role{RoleMother, RoleFather, RoleChild} {
		cond, args, err := role.condition()
		if err != nil {
			return nil, err
		}
		got, err := s.chromCounts(ctx, string(role),
			`SELECT ps.chrom, COUNT(*)
			FROM phenotype_svs ps
			JOIN phenotype p ON ps.sample = p.bam_id
			WHERE `+cond+`
			GROUP BY ps.chrom
			ORDER BY ps.chrom`, args...)
		if err != nil {
			return nil, err
		}
		counts = append(counts, got...)
	}

	got, err := s.chromCounts(ctx, CategoryBackground,
		`SELECT chrom, COUNT(*) FROM background_svs GROUP BY chrom ORDER BY chrom`)
	if err != nil {
		return nil, err
	}
	return append(counts, got...), nil
}

func (s *Store) chromCounts(ctx context.Context, category, q string, args ...any) ([]ChromCount, error) {
	var (
		counts []ChromCount
		total  int
	)
	if err := s.countBy(ctx, "chromosome distribution", q, func(chrom string, n int) {
		counts = append(counts, ChromCount{Category: category, Chrom: chrom, Count: n})
		total += n
	}, args...); err != nil {
		return nil, err
	}
	for i := range counts {
		counts[i].Percentage = float64(counts[i].Count) / float64(total) * 100
	}
	return counts, nil
}

// TopVariant is a frequent child variant with its carrier counts per category.
type TopVariant struct {
	ID     string `json:"id"`
	Type   string `json:"type"`
	Chrom  string `json:"chrom"`
	Start  int64  `json:"start"`
	End    int64  `json:"end"`
	Length int64  `json:"length"`

	Child      int `json:"child"`
	Mother     int `json:"mother"`
	Father     int `json:"father"`
	Background int `json:"background"`

	ChildPercent      float64 `json:"childPercent"`
	MotherPercent     float64 `json:"motherPercent"`
	FatherPercent     float64 `json:"fatherPercent"`
	BackgroundPercent float64 `json:"backgroundPercent"`
}

// TopChildVariants ranks variant ids by the number of child calls and returns
// the first limit of them. Each count is also given as a percentage of the
// category's calls, rounded to two decimals. A non-positive limit selects
// DefaultTopVariants.
func (s *Store) TopChildVariants(ctx context.Context, limit int) ([]TopVariant, error) {
	if limit <= 0 {
		limit = DefaultTopVariants
	}

	totals, err := s.categoryTotals(ctx)
	if err != nil {
		return nil, err
	}

	var (
		top   []TopVariant
		index = map[string]int{}
	)
	if err := s.countBy(ctx, "top child variants",
		`SELECT ps.id, COUNT(*) AS n
		FROM phenotype_svs ps
		JOIN phenotype p ON ps.sample = p.bam_id
		WHERE p.child = 1
		GROUP BY ps.id
		ORDER BY n DESC, ps.id
		LIMIT ?`,
		func(id string, n int) {
			index[id] = len(top)
			top = append(top, TopVariant{ID: id, Child: n})
		}, limit); err != nil {
		return nil, err
	}
	if len(top) == 0 {
		return []TopVariant{}, nil
	}

	ids := make([]any, len(top))
	for i := range top {
		ids[i] = top[i].ID
	}
	in := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ") + ")"

	for _, role := range []Role{RoleMother, RoleFather} {
		cond, args, err := role.condition()
		if err != nil {
			return nil, err
		}
		if err := s.countBy(ctx, "top child variants",
			`SELECT ps.id, COUNT(*)
			FROM phenotype_svs ps
			JOIN phenotype p ON ps.sample = p.bam_id
			WHERE `+cond+` AND ps.id IN `+in+`
			GROUP BY ps.id`,
			func(id string, n int) {
				if role == RoleMother {
					top[index[id]].Mother = n
				} else {
					top[index[id]].Father = n
				}
			}, append(args, ids...)...); err != nil {
			return nil, err
		}
	}

	if err := s.countBy(ctx, "top child variants",
		`SELECT id, COUNT(*) FROM background_svs WHERE id IN `+in+` GROUP BY id`,
		func(id string, n int) {
			top[index[id]].Background = n
		}, ids...); err != nil {
		return nil, err
	}

	if err := s.variantInfo(ctx, in, ids, top, index); err != nil {
		return nil, err
	}

	for i := range top {
		v := &top[i]
		v.ChildPercent = percent(v.Child, totals[CategoryChild])
		v.MotherPercent = percent(v.Mother, totals[CategoryMother])
		v.FatherPercent = percent(v.Father, totals[CategoryFather])
		v.BackgroundPercent = percent(v.Background, totals[CategoryBackground])
	}
	return top, nil
}

// categoryTotals counts the calls of every category.
func (s *Store) categoryTotals(ctx context.Context) (map[string]int, error) {
	totals := make(map[string]int, 4)
	for _, role := range []Role{RoleMother, RoleFather, RoleChild} {
		cond, args, err := role.condition()
		if err != nil {
			return nil, err
		}
		var n int
		if err := s.queryRow(ctx, "category totals",
			`SELECT COUNT(*)
			FROM phenotype_svs ps
			JOIN phenotype p ON ps.sample = p.bam_id
			WHERE `+cond, args...).Scan(&n); err != nil {
			return nil, storageErr("category totals", err)
		}
		totals[string(role)] = n
	}

	var n int
	if err := s.queryRow(ctx, "category totals",
		`SELECT COUNT(*) FROM background_svs`).Scan(&n); err != nil {
		return nil, storageErr("category totals", err)
	}
	totals[CategoryBackground] = n
	return totals, nil
}

// variantInfo fills the coordinates of every ranked id from its first call.
func (s *Store) variantInfo(ctx context.Context, in string, ids []any, top []TopVariant, index map[string]int) error {
	rows, err := s.query(ctx, "top child variants",
		`SELECT DISTINCT id, type, chrom, start, "end", length
		FROM phenotype_svs
		WHERE id IN `+in+`
		ORDER BY id, start`, ids...)
	if err != nil {
		return err
	}
	defer rows.Close()

	seen := make(map[string]bool, len(ids))
	for rows.Next() {
		var (
			id                 string
			typ, chrom         sql.NullString
			start, end, length sql.NullInt64
		)
		if err := rows.Scan(&id, &typ, &chrom, &start, &end, &length); err != nil {
			return storageErr("top child variants", err)
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		v := &top[index[id]]
		v.Type = typ.String
		v.Chrom = chrom.String
		v.Start = start.Int64
		v.End = end.Int64
		v.Length = length.Int64
	}
	if err := rows.Err(); err != nil {
		return storageErr("top child variants", err)
	}
	return nil
}

// countBy runs a two-column key/count query and hands every row to fn.
func (s *Store) countBy(ctx context.Context, op, q string, fn func(key string, n int), args ...any) error {
	rows, err := s.query(ctx, op, q, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key sql.NullString
			n   int
		)
		if err := rows.Scan(&key, &n); err != nil {
			return storageErr(op, err)
		}
		fn(key.String, n)
	}
	if err := rows.Err(); err != nil {
		return storageErr(op, err)
	}
	return nil
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(n)/float64(total)*10000) / 100
}
