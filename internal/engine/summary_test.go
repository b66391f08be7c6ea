package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	records := sampleRecords()
	s := Summarize(records, GroupSumBy(records, ByPlatform, GlobalSales))

	assert.Equal(t, 3, s.Count)
	assert.InDelta(t, 18.0, s.TotalGlobal, 1e-9)
	require.NotNil(t, s.Average)
	assert.InDelta(t, 6.0, *s.Average, 1e-9)
	require.NotNil(t, s.TopGroup)
	assert.Equal(t, "Wii", s.TopGroup.Key)
	assert.InDelta(t, 13.0, s.TopGroup.Value, 1e-9)

	assert.True(t, s.SharesDefined)
	assert.InDelta(t, 7.0/18*100, s.RegionShares.NA, 1e-9)
	assert.InDelta(t, 5.5/18*100, s.RegionShares.EU, 1e-9)
	assert.InDelta(t, 2.5/18*100, s.RegionShares.JP, 1e-9)
	assert.InDelta(t, 1.5/18*100, s.RegionShares.Other, 1e-9)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, nil)

	assert.Zero(t, s.Count)
	assert.Zero(t, s.TotalGlobal)
	assert.Nil(t, s.Average)
	assert.Nil(t, s.TopGroup)
	assert.False(t, s.SharesDefined)
	assert.Equal(t, Regions{}, s.RegionShares)
}

func TestSummarizeZeroTotal(t *testing.T) {
	records := []Record{{Name: "Unsold", NASales: 0.5}}
	s := Summarize(records, nil)

	assert.Equal(t, 1, s.Count)
	require.NotNil(t, s.Average)
	assert.Zero(t, *s.Average)
	assert.False(t, s.SharesDefined)
	assert.Zero(t, s.RegionShares.NA)
	assert.Equal(t, 0.5, s.Regions.NA)
}

func TestDistribution(t *testing.T) {
	records := []Record{
		{GlobalSales: 1}, {GlobalSales: 2}, {GlobalSales: 3}, {GlobalSales: 4}, {GlobalSales: 10},
	}
	got := Distribution(records, GlobalSales)

	assert.InDelta(t, 4.0, got.Mean, 1e-9)
	assert.InDelta(t, 3.0, got.Median, 1e-9)
	assert.Equal(t, 1.0, got.Min)
	assert.Equal(t, 10.0, got.Max)
	assert.Greater(t, got.StdDev, 0.0)
	assert.GreaterOrEqual(t, got.P90, got.Median)
	assert.LessOrEqual(t, got.P90, got.Max)

	assert.Equal(t, Stats{}, Distribution(nil, GlobalSales))
}
