package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uconn-ofc/sv-browser/internal/family"
	"github.com/uconn-ofc/sv-browser/internal/genome"
	"github.com/uconn-ofc/sv-browser/internal/refdata"
	"github.com/uconn-ofc/sv-browser/internal/track"
)

func lines(buf *bytes.Buffer) []string {
	return strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
}

func TestTabWriter_WriteGenes(t *testing.T) {
	var buf bytes.Buffer
	w := NewTabWriter(&buf)

	require.NoError(t, w.WriteGenes([]genome.Gene{
		{ID: "IRF6", Chrom: "1", Start: 209800000, End: 209815000, Strand: "-"},
		{ID: "ENSG1", Name: "MSX1", Chrom: "4", Start: 4859000, End: 4863000, Length: 4001},
	}))

	out := lines(&buf)
	require.Len(t, out, 3)
	assert.Equal(t, strings.Join(GeneColumns, "\t"), out[0])
	assert.Equal(t, "IRF6\t1:209800000-209815000\t-\t15000", out[1])
	assert.Equal(t, "MSX1\t4:4859000-4863000\t-\t4001", out[2])
}

func TestTabWriter_WriteMembers(t *testing.T) {
	var buf bytes.Buffer
	w := NewTabWriter(&buf)

	m := family.Members{
		FamilyID: "F001",
		Parents:  []refdata.Member{{SampleID: "F001_FA", Sex: "M"}},
		Children: []refdata.Member{{SampleID: "F001_P1", Sex: "F", Child: true, Proband: true, Affected: true, Phenotype: "CL/P"}},
	}
	require.NoError(t, w.WriteMembers(m))

	out := lines(&buf)
	require.Len(t, out, 3)
	assert.Equal(t, "Parent 1 (Male)\tparent\tF001_FA\t-\tMale\t-\t-\t-\t-", out[1])
	assert.Equal(t, "Child 1 (Female - Proband - Affected)\tchild\tF001_P1\t-\tFemale\tYES\tYES\tCL/P\t-", out[2])
}

func TestTabWriter_WriteTracksAndFeatures(t *testing.T) {
	tracks := []track.Track{
		{
			Name:   "Parent 1 (Male)",
			Kind:   track.KindIndividual,
			Color:  track.ColorMale,
			Height: 50,
			Features: []track.Feature{{
				Chrom: "1", Start: 209790000, End: 209792000, Name: "DUP_1_209790000",
				Type: "DUP", Gene: "TRAF3IP3", Description: "Type: DUP<br>Count: 1<br>Size: 2000 bp<br>",
			}},
		},
		{Name: "Genes (1)", Kind: track.KindGenes, Features: []track.Feature{}},
	}

	var buf bytes.Buffer
	require.NoError(t, NewTabWriter(&buf).WriteTracks(tracks))
	out := lines(&buf)
	require.Len(t, out, 3)
	assert.Equal(t, "Parent 1 (Male)\tindividual\t"+track.ColorMale+"\t50\t1", out[1])
	assert.Equal(t, "Genes (1)\tgenes\t\t0\t0", out[2])

	buf.Reset()
	require.NoError(t, NewTabWriter(&buf).WriteFeatures(tracks))
	out = lines(&buf)
	require.Len(t, out, 2)
	assert.Equal(t, "Parent 1 (Male)\t1:209790000-209792000\tDUP_1_209790000\tDUP\tTRAF3IP3\tType: DUP; Count: 1; Size: 2000 bp", out[1])
}
