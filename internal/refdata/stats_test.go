package refdata

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummary(t *testing.T) {
	s := openDemo(t)

	sum, err := s.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, sum.Total)
	assert.Equal(t, map[string]int{"DEL": 5, "DUP": 2, "INV": 1}, sum.Types)
	assert.Equal(t, 2, sum.AffectedChildren)
	assert.Equal(t, 1, sum.UnaffectedChildren)
	assert.Equal(t, map[string]int{"F": 3, "M": 3}, sum.CarriersBySex)
}

func TestSummaryEmpty(t *testing.T) {
	s, err := Open(DriverSQLite, "")
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.CreateSchema(context.Background()))

	sum, err := s.Summary(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sum.Total)
	assert.NotNil(t, sum.Types)
	assert.NotNil(t, sum.CarriersBySex)
}

func TestSizeDistribution(t *testing.T) {
	s := openDemo(t)

	points, err := s.SizeDistribution(context.Background())
	require.NoError(t, err)
	require.Len(t, points, 8)
	assert.Equal(t, SizePoint{Type: "DEL", Length: 2000}, points[0])
	assert.Equal(t, SizePoint{Type: "DEL", Length: 4000}, points[4])
	assert.Equal(t, SizePoint{Type: "DUP", Length: 1500}, points[5])
	assert.Equal(t, SizePoint{Type: "INV", Length: 1000}, points[7])
}

func TestChromosomeDistribution(t *testing.T) {
	s := openDemo(t)

	counts, err := s.ChromosomeDistribution(context.Background())
	require.NoError(t, err)

	sums := map[string]float64{}
	byKey := map[string]ChromCount{}
	for _, c := range counts {
		sums[c.Category] += c.Percentage
		byKey[c.Category+":"+c.Chrom] = c
	}
	for _, cat := range []string{CategoryMother, CategoryFather, CategoryChild, CategoryBackground} {
		assert.InDelta(t, 100, sums[cat], 1e-9, cat)
	}

	assert.Equal(t, 4, byKey["child:1"].Count)
	assert.InDelta(t, 80, byKey["child:1"].Percentage, 1e-9)
	assert.InDelta(t, 20, byKey["child:4"].Percentage, 1e-9)
	assert.Equal(t, 2, byKey["mother:1"].Count)
	assert.Equal(t, 1, byKey["father:1"].Count)
	assert.InDelta(t, 75, byKey["background:1"].Percentage, 1e-9)
	assert.InDelta(t, 25, byKey["background:3"].Percentage, 1e-9)
	assert.Equal(t, CategoryMother, counts[0].Category)
}

func TestTopChildVariants(t *testing.T) {
	s := openDemo(t)

	top, err := s.TopChildVariants(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, top, 4)

	first := top[0]
	assert.Equal(t, "DEL_1_209805000", first.ID)
	assert.Equal(t, "DEL", first.Type)
	assert.Equal(t, "1", first.Chrom)
	assert.Equal(t, int64(209805000), first.Start)
	assert.Equal(t, int64(209807000), first.End)
	assert.Equal(t, int64(2000), first.Length)
	assert.Equal(t, 2, first.Child)
	assert.Equal(t, 1, first.Mother)
	assert.Equal(t, 0, first.Father)
	assert.Equal(t, 0, first.Background)
	assert.Equal(t, 40.0, first.ChildPercent)
	assert.Equal(t, 50.0, first.MotherPercent)
	assert.Zero(t, first.FatherPercent)

	// ties rank by id
	assert.Equal(t, []string{"DEL_1_24330000", "DUP_1_209790000", "INV_4_4860000"},
		[]string{top[1].ID, top[2].ID, top[3].ID})
	assert.Equal(t, 1, top[2].Father)
	assert.Equal(t, 100.0, top[2].FatherPercent)
	assert.Equal(t, "INV", top[3].Type)
}

func TestTopChildVariantsLimitAndBackground(t *testing.T) {
	ctx := context.Background()
	s, err := Open(DriverSQLite, "")
	require.NoError(t, err)
	defer s.Close()

	ds := DemoDataset()
	ds.Background = append(ds.Background, BackgroundVariant{
		Variant: Variant{Sample: "HG00100", ID: "DEL_1_209805000", Type: "DEL", Chrom: "1", Start: 209805000, End: 209807000},
	})
	require.NoError(t, s.Load(ctx, ds))

	top, err := s.TopChildVariants(ctx, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, 1, top[0].Background)
	assert.Equal(t, 20.0, top[0].BackgroundPercent)
}

func TestStatsStorageError(t *testing.T) {
	s := openDemo(t)
	require.NoError(t, s.Close())
	ctx := context.Background()

	_, err := s.Summary(ctx)
	assert.True(t, IsStorageError(err))
	_, err = s.SizeDistribution(ctx)
	assert.True(t, IsStorageError(err))
	_, err = s.ChromosomeDistribution(ctx)
	assert.True(t, IsStorageError(err))
	_, err = s.TopChildVariants(ctx, 5)
	assert.True(t, IsStorageError(err))
}
