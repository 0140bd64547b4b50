package genome

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocusString(t *testing.T) {
	assert.Equal(t, "1", WholeChromosome("1").String())
	assert.Equal(t, "1:209800000-209815000", Range("1", 209800000, 209815000).String())
	assert.True(t, Locus{}.IsZero())
}

func TestLocusPad(t *testing.T) {
	tests := []struct {
		name       string
		start, end int64
		wantStart  int64
		wantEnd    int64
	}{
		{"interior", 209800000, 209815000, 209799000, 209816000},
		{"clamped at zero", 400, 5000, 0, 6000},
		{"exactly margin", 1000, 2000, 0, 3000},
		{"zero start", 0, 10, 0, 1010},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Range("1", tt.start, tt.end).Pad(1000)
			assert.Equal(t, tt.wantStart, l.Start)
			assert.Equal(t, tt.wantEnd, l.End)
			assert.True(t, l.HasRange)
		})
	}

	whole := WholeChromosome("2").Pad(1000)
	assert.False(t, whole.HasRange)
	assert.Equal(t, "2", whole.String())
}

func TestParseLocus(t *testing.T) {
	l, err := ParseLocus("chr1:1,000-2,000")
	require.NoError(t, err)
	assert.Equal(t, Range("chr1", 1000, 2000), l)

	l, err = ParseLocus("X")
	require.NoError(t, err)
	assert.Equal(t, WholeChromosome("X"), l)

	for _, bad := range []string{"", ":1-2", "1:100", "1:a-2", "1:5-b", "1:10-5"} {
		_, err := ParseLocus(bad)
		assert.Error(t, err, "input %q", bad)
	}
}
