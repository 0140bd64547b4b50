package refdata

import (
	"context"
	"fmt"

	"github.com/uconn-ofc/sv-browser/internal/genome"
)

// Dataset is a complete set of reference records that can be loaded into a store.
type Dataset struct {
	Genes      []genome.Gene
	Members    []Member
	Variants   []Variant
	Background []BackgroundVariant
}

// Load creates the schema and inserts every record of ds.
// Variant rows take their phenotype and sex from the member with the same sample id.
func (s *Store) Load(ctx context.Context, ds Dataset) error {
	if err := s.CreateSchema(ctx); err != nil {
		return err
	}

	genes := make([][]any, 0, len(ds.Genes))
	for _, g := range ds.Genes {
		length := g.Length
		if length == 0 {
			length = g.Size()
		}
		genes = append(genes, []any{g.ID, g.Chrom, g.Start, g.End, length, nullString(g.Strand)})
	}

	bySample := make(map[string]Member, len(ds.Members))
	members := make([][]any, 0, len(ds.Members))
	for _, m := range ds.Members {
		bySample[m.SampleID] = m
		members = append(members, []any{
			m.FamilyID, nullString(m.ParticipantID), nullString(m.BioID), m.SampleID,
			nullString(m.Phenotype), m.Child, m.Proband, m.Affected, m.Sex, nullString(m.Race),
		})
	}

	variants := make([][]any, 0, len(ds.Variants))
	for _, v := range ds.Variants {
		m, ok := bySample[v.Sample]
		if !ok {
			return fmt.Errorf("variant %s: unknown sample %q", v.ID, v.Sample)
		}
		variants = append(variants, []any{
			v.Sample, v.ID, v.Type, v.Chrom, v.Start, v.End, variantLength(v),
			v.Likelihood, nullString(v.Methods), v.Freq, nullString(m.Phenotype), m.Sex,
		})
	}

	background := make([][]any, 0, len(ds.Background))
	for _, v := range ds.Background {
		background = append(background, []any{
			v.Sample, v.ID, v.Type, v.Chrom, v.Start, v.End, variantLength(v.Variant),
			v.Freq, nil, nil, nullString(v.Population), nullString(v.SuperPopulation),
		})
	}

	for _, batch := range []struct {
		table string
		rows  [][]any
	}{
		{"genes", genes},
		{"phenotype", members},
		{"phenotype_svs", variants},
		{"background_svs", background},
	} {
		if err := s.InsertRows(ctx, batch.table, batch.rows); err != nil {
			return fmt.Errorf("load %s: %w", batch.table, err)
		}
	}
	return nil
}

func variantLength(v Variant) int64 {
	if v.Length != 0 {
		return v.Length
	}
	return v.Size()
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// DemoDataset returns a small cohort around IRF6 on chromosome 1: two trios,
// a handful of cleft genes and background calls from two populations.
func DemoDataset() Dataset {
	return Dataset{
		Genes: []genome.Gene{
			{ID: "PAX7", Chrom: "1", Start: 18630000, End: 18741000, Strand: "+"},
			{ID: "GRHL3", Chrom: "1", Start: 24318000, End: 24362000, Strand: "+"},
			{ID: "TRAF3IP3", Chrom: "1", Start: 209755000, End: 209780000, Strand: "+"},
			{ID: "IRF6", Chrom: "1", Start: 209800000, End: 209815000, Strand: "-"},
			{ID: "TP63", Chrom: "3", Start: 189631000, End: 189897000, Strand: "+"},
			{ID: "MSX1", Chrom: "4", Start: 4859000, End: 4863000, Strand: "+"},
			{ID: "FOXE1", Chrom: "9", Start: 97853000, End: 97857000, Strand: "+"},
			{ID: "MAFB", Chrom: "20", Start: 40685000, End: 40689000, Strand: "-"},
		},
		Members: []Member{
			{FamilyID: "F001", ParticipantID: "P001-1", BioID: "B0011", SampleID: "F001_FA", Phenotype: "unaffected", Sex: "M", Race: "White"},
			{FamilyID: "F001", ParticipantID: "P001-2", BioID: "B0012", SampleID: "F001_MO", Phenotype: "unaffected", Sex: "F", Race: "White"},
			{FamilyID: "F001", ParticipantID: "P001-3", BioID: "B0013", SampleID: "F001_P1", Phenotype: "CL/P", Child: true, Proband: true, Affected: true, Sex: "M", Race: "White"},
			{FamilyID: "F002", ParticipantID: "P002-1", BioID: "B0021", SampleID: "F002_FA", Phenotype: "unaffected", Sex: "M", Race: "Asian"},
			{FamilyID: "F002", ParticipantID: "P002-2", BioID: "B0022", SampleID: "F002_MO", Phenotype: "CP", Affected: true, Sex: "F", Race: "Asian"},
			{FamilyID: "F002", ParticipantID: "P002-3", BioID: "B0023", SampleID: "F002_P1", Phenotype: "CP", Child: true, Proband: true, Affected: true, Sex: "F", Race: "Asian"},
			{FamilyID: "F002", ParticipantID: "P002-4", BioID: "B0024", SampleID: "F002_S1", Phenotype: "unaffected", Child: true, Sex: "M", Race: "Asian"},
		},
		Variants: []Variant{
			{Sample: "F001_FA", ID: "DUP_1_209790000", Type: "DUP", Chrom: "1", Start: 209790000, End: 209791500, Likelihood: 0.91, Methods: "manta,delly", Freq: 0.02},
			{Sample: "F001_MO", ID: "DEL_1_209805000", Type: "DEL", Chrom: "1", Start: 209805000, End: 209807000, Likelihood: 0.97, Methods: "manta,lumpy", Freq: 0.01},
			{Sample: "F001_P1", ID: "DEL_1_209805000", Type: "DEL", Chrom: "1", Start: 209805000, End: 209807000, Likelihood: 0.98, Methods: "manta,lumpy", Freq: 0.01},
			{Sample: "F001_P1", ID: "INV_4_4860000", Type: "INV", Chrom: "4", Start: 4860000, End: 4861000, Likelihood: 0.75, Methods: "delly", Freq: 0.005},
			{Sample: "F002_MO", ID: "DEL_1_24330000", Type: "DEL", Chrom: "1", Start: 24330000, End: 24334000, Likelihood: 0.88, Methods: "manta", Freq: 0.03},
			{Sample: "F002_P1", ID: "DEL_1_24330000", Type: "DEL", Chrom: "1", Start: 24330000, End: 24334000, Likelihood: 0.9, Methods: "manta", Freq: 0.03},
			{Sample: "F002_P1", ID: "DEL_1_209805000", Type: "DEL", Chrom: "1", Start: 209805000, End: 209807000, Likelihood: 0.95, Methods: "lumpy", Freq: 0.01},
			{Sample: "F002_S1", ID: "DUP_1_209790000", Type: "DUP", Chrom: "1", Start: 209790000, End: 209791500, Likelihood: 0.8, Methods: "delly", Freq: 0.02},
		},
		Background: []BackgroundVariant{
			{Variant: Variant{Sample: "HG00096", ID: "BG_DEL_1_209806000", Type: "DEL", Chrom: "1", Start: 209806000, End: 209806800, Freq: 0.004}, Population: "GBR", SuperPopulation: "EUR"},
			{Variant: Variant{Sample: "HG00097", ID: "BG_DEL_1_209806000", Type: "DEL", Chrom: "1", Start: 209806000, End: 209806800, Freq: 0.004}, Population: "GBR", SuperPopulation: "EUR"},
			{Variant: Variant{Sample: "NA18525", ID: "BG_DUP_1_209770000", Type: "DUP", Chrom: "1", Start: 209770000, End: 209772000, Freq: 0.012}, Population: "CHB", SuperPopulation: "EAS"},
			{Variant: Variant{Sample: "NA18525", ID: "BG_DEL_3_189700000", Type: "DEL", Chrom: "3", Start: 189700000, End: 189703000, Freq: 0.001}, Population: "CHB", SuperPopulation: "EAS"},
		},
	}
}
