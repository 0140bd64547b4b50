package output

import (
	"sort"
	"strconv"

	"github.com/uconn-ofc/sv-browser/internal/refdata"
)

// Column sets of the statistics tables.
var (
	SummaryColumns    = []string{"#Statistic", "Key", "Count"}
	SizeColumns       = []string{"#Type", "Length"}
	ChromCountColumns = []string{"#Category", "Chrom", "Count", "Percentage"}
	TopVariantColumns = []string{
		"#ID", "Type", "Location", "Length",
		"Child", "Child%", "Mother", "Mother%", "Father", "Father%", "Background", "Background%",
	}
)

// WriteSummary writes the variant type counts, child carriers and carriers per sex.
func (tw *TabWriter) WriteSummary(sum refdata.Summary) error {
	if err := tw.WriteHeader(SummaryColumns); err != nil {
		return err
	}
	rows := [][]string{{"variants", "total", strconv.Itoa(sum.Total)}}
	for _, k := range sortedKeys(sum.Types) {
		rows = append(rows, []string{"type", k, strconv.Itoa(sum.Types[k])})
	}
	rows = append(rows,
		[]string{"children", "affected", strconv.Itoa(sum.AffectedChildren)},
		[]string{"children", "unaffected", strconv.Itoa(sum.UnaffectedChildren)},
	)
	for _, k := range sortedKeys(sum.CarriersBySex) {
		rows = append(rows, []string{"sex", k, strconv.Itoa(sum.CarriersBySex[k])})
	}
	for _, r := range rows {
		if err := tw.row(r); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// WriteSizes writes one row per variant length.
func (tw *TabWriter) WriteSizes(points []refdata.SizePoint) error {
	if err := tw.WriteHeader(SizeColumns); err != nil {
		return err
	}
	for _, p := range points {
		if err := tw.row([]string{p.Type, strconv.FormatInt(p.Length, 10)}); err != nil {
			return err
		}
	}
	return tw.Flush()
}

// WriteChromCounts writes the per-category chromosome distribution.
func (tw *TabWriter) WriteChromCounts(counts []refdata.ChromCount) error {
	if err := tw.WriteHeader(ChromCountColumns); err != nil {
		return err
	}
	for _, c := range counts {
		err := tw.row([]string{c.Category, c.Chrom, strconv.Itoa(c.Count), pct(c.Percentage)})
		if err != nil {
			return err
		}
	}
	return tw.Flush()
}

// WriteTopVariants writes the ranked child variants with their category counts.
func (tw *TabWriter) WriteTopVariants(top []refdata.TopVariant) error {
	if err := tw.WriteHeader(TopVariantColumns); err != nil {
		return err
	}
	for _, v := range top {
		err := tw.row([]string{
			v.ID,
			dash(v.Type),
			location(v.Chrom, v.Start, v.End),
			strconv.FormatInt(v.Length, 10),
			strconv.Itoa(v.Child), pct(v.ChildPercent),
			strconv.Itoa(v.Mother), pct(v.MotherPercent),
			strconv.Itoa(v.Father), pct(v.FatherPercent),
			strconv.Itoa(v.Background), pct(v.BackgroundPercent),
		})
		if err != nil {
			return err
		}
	}
	return tw.Flush()
}

func pct(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64)
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
