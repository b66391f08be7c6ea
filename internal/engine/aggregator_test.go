package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupSumByPlatform(t *testing.T) {
	records := sampleRecords()

	got := GroupSumBy(records, ByPlatform, GlobalSales)
	assert.Equal(t, []Group{
		{Key: "Wii", Value: 13, Count: 2},
		{Key: "DS", Value: 5, Count: 1},
	}, got)

	filtered := GroupSumBy(ApplyFilters(records, Criteria{Year: "2008"}), ByPlatform, GlobalSales)
	assert.Equal(t, []Group{
		{Key: "Wii", Value: 10, Count: 1},
		{Key: "DS", Value: 5, Count: 1},
	}, filtered)
}

func TestGroupSumByAbsentKeysAndValues(t *testing.T) {
	records := []Record{
		{Name: "a", Year: yr(2001), GlobalSales: 2},
		{Name: "b", GlobalSales: 1},
		{Name: "c", Year: yr(2001)},
	}

	got := GroupSumBy(records, ByYear, GlobalSales)
	assert.Equal(t, []Group{
		{Key: "2001", Value: 2, Count: 2},
		{Key: UnknownKey, Value: 1, Count: 1},
	}, got)
}

func TestGroupSumByEmpty(t *testing.T) {
	got := GroupSumBy(nil, ByGenre, GlobalSales)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestAverageBy(t *testing.T) {
	got := AverageBy(sampleRecords(), ByGenre, GlobalSales)
	assert.Equal(t, []Group{
		{Key: "Sports", Value: 6.5, Count: 2},
		{Key: "Racing", Value: 5, Count: 1},
	}, got)

	assert.Empty(t, AverageBy(nil, ByGenre, GlobalSales))
}

func TestRegionalTotals(t *testing.T) {
	records := sampleRecords()
	got := RegionalTotals(records)

	assert.InDelta(t, 7.0, got.NA, 1e-9)
	assert.InDelta(t, 5.5, got.EU, 1e-9)
	assert.InDelta(t, 2.5, got.JP, 1e-9)
	assert.InDelta(t, 1.5, got.Other, 1e-9)

	// Global sales are tracked separately and include markets outside the
	// four regions; the two totals are independent sums.
	var global float64
	for _, r := range records {
		global += r.GlobalSales
	}
	regionSum := got.NA + got.EU + got.JP + got.Other
	assert.InDelta(t, 18.0, global, 1e-9)
	assert.InDelta(t, 16.5, regionSum, 1e-9)
	assert.NotEqual(t, global, regionSum)

	assert.Equal(t, Regions{}, RegionalTotals(nil))
}

func TestTopN(t *testing.T) {
	records := sampleRecords()

	top := TopN(records, GlobalSales, 1)
	require.Len(t, top, 1)
	assert.Equal(t, records[0], top[0])

	all := TopN(records, GlobalSales, 10)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"Wii Sports", "Mario Kart DS", "Wii Fit"}, names(all))

	byJP := TopN(records, JPSales, 3)
	// Wii Sports and Mario Kart DS tie on JP sales and keep input order.
	assert.Equal(t, []string{"Wii Sports", "Mario Kart DS", "Wii Fit"}, names(byJP))

	assert.Empty(t, TopN(records, GlobalSales, 0))
	assert.Empty(t, TopN(nil, GlobalSales, 5))
	assert.Equal(t, "Wii Sports", records[0].Name, "input must not be reordered")
}

func TestTopGroup(t *testing.T) {
	assert.Nil(t, TopGroup(nil))

	tied := []Group{{Key: "A", Value: 5}, {Key: "B", Value: 7}, {Key: "C", Value: 7}}
	got := TopGroup(tied)
	require.NotNil(t, got)
	assert.Equal(t, "B", got.Key)
}

func TestSortGroups(t *testing.T) {
	groups := []Group{
		{Key: "2009", Value: 3},
		{Key: UnknownKey, Value: 1},
		{Key: "2008", Value: 15},
		{Key: "1999", Value: 3},
	}

	assert.Equal(t, []string{"2008", "2009", "1999", UnknownKey}, keys(SortGroups(groups, SortValueDesc)))
	assert.Equal(t, []string{UnknownKey, "2009", "1999", "2008"}, keys(SortGroups(groups, SortValueAsc)))
	assert.Equal(t, []string{"1999", "2008", "2009", UnknownKey}, keys(SortGroups(groups, SortChronological)))
	assert.Equal(t, []string{"1999", "2008", "2009", UnknownKey}, keys(SortGroups(groups, SortKeyAsc)))
	assert.Equal(t, keys(groups), keys(SortGroups(groups, "")))

	// The input keeps its order.
	assert.Equal(t, "2009", groups[0].Key)
	assert.Len(t, LimitGroups(groups, 2), 2)
	assert.Len(t, LimitGroups(groups, 0), 4)
}

func TestAggregate(t *testing.T) {
	data := Aggregate(sampleRecords(), Criteria{Year: "2008"})

	assert.Equal(t, "2008", data.Filters.Year)
	assert.Equal(t, "all", data.Filters.Platform)

	assert.Equal(t, 2, data.Summary.TotalGames)
	assert.InDelta(t, 15.0, data.Summary.TotalSales, 1e-9)
	require.NotNil(t, data.Summary.AverageSales)
	assert.InDelta(t, 7.5, *data.Summary.AverageSales, 1e-9)
	require.NotNil(t, data.Summary.TopPlatform)
	assert.Equal(t, "Wii", data.Summary.TopPlatform.Name)
	require.NotNil(t, data.Summary.TopGenre)
	assert.Equal(t, "Sports", data.Summary.TopGenre.Name)

	require.Len(t, data.PlatformSales, 2)
	assert.Equal(t, "Wii", data.PlatformSales[0].Name)
	assert.Equal(t, 10.0, data.PlatformSales[0].Value)

	require.Len(t, data.YearlySales, 1)
	assert.Equal(t, "2008", data.YearlySales[0].Year)

	require.Len(t, data.RegionalSales, 4)
	assert.Equal(t, "NA", data.RegionalSales[0].Region)
	assert.InDelta(t, 6.0, data.RegionalSales[0].Sales, 1e-9)
	assert.InDelta(t, 40.0, data.RegionalSales[0].Share, 1e-9)

	require.Len(t, data.TopGames, 2)
	assert.Equal(t, "Wii Sports", data.TopGames[0].Name)
}

func TestAggregateEmpty(t *testing.T) {
	data := Aggregate(nil, Criteria{})

	assert.Zero(t, data.Summary.TotalGames)
	assert.Nil(t, data.Summary.AverageSales)
	assert.Equal(t, NotAvailable, data.Summary.AverageFormatted)
	assert.Nil(t, data.Summary.TopPlatform)
	assert.Empty(t, data.PlatformSales)
	assert.Empty(t, data.TopGames)
	assert.Len(t, data.RegionalSales, 4)
	for _, r := range data.RegionalSales {
		assert.Zero(t, r.Share)
	}
}

func names(records []Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.Name)
	}
	return out
}

func keys(groups []Group) []string {
	out := make([]string, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.Key)
	}
	return out
}
