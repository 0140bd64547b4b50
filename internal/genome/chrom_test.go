package genome

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeChrom(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"1", "1"},
		{"chr1", "1"},
		{"Chr12", "12"},
		{"chrX", "X"},
		{"x", "X"},
		{"chrM", "M"},
		{"MT", "M"},
		{"chrMT", "M"},
		{" chr7 ", "7"},
		{"chr", "CHR"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeChrom(tt.in))
		})
	}
}

func TestSameChrom(t *testing.T) {
	assert.True(t, SameChrom("chr1", "1"))
	assert.True(t, SameChrom("MT", "chrM"))
	assert.False(t, SameChrom("1", "11"))
	assert.False(t, SameChrom("", "1"))
}

func TestChromAliases(t *testing.T) {
	assert.Equal(t, []string{"1", "chr1"}, ChromAliases("chr1"))
	assert.Equal(t, []string{"M", "chrM", "MT", "chrMT"}, ChromAliases("MT"))
	assert.Nil(t, ChromAliases(""))
}

func TestChromosomeSize(t *testing.T) {
	size, ok := ChromosomeSize("hg38", "chr1")
	assert.True(t, ok)
	assert.Equal(t, int64(248956422), size)

	size, ok = ChromosomeSize("GRCh38", "MT")
	assert.True(t, ok)
	assert.Equal(t, int64(16569), size)

	_, ok = ChromosomeSize("hg38", "chrUn_KI270302v1")
	assert.False(t, ok)

	_, ok = ChromosomeSize("mm10", "1")
	assert.False(t, ok)
}

func TestSortChromosomes(t *testing.T) {
	chroms := []string{"X", "10", "chr2", "M", "1", "Y", "GL000194.1", "22"}
	SortChromosomes(chroms)
	assert.Equal(t, []string{"1", "chr2", "10", "22", "X", "Y", "M", "GL000194.1"}, chroms)
}
