package engine

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"gamesales/internal/models"
)

const (
	topGamesLimit      = 10
	topPublishersLimit = 10
)

// Group is one entry of a grouped aggregate.
type Group struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// GroupSumBy sums value per key. Keys appear once each, in the order they
// were first seen in records.
func GroupSumBy(records []Record, key KeyFunc, value ValueFunc) []Group {
	index := make(map[string]int)
	groups := make([]Group, 0)

	for _, r := range records {
		k := key(r)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, Group{Key: k})
		}
		groups[i].Value += sanitize(value(r))
		groups[i].Count++
	}
	return groups
}

// AverageBy is GroupSumBy divided by each key's record count. Every group
// produced has Count >= 1.
func AverageBy(records []Record, key KeyFunc, value ValueFunc) []Group {
	groups := GroupSumBy(records, key, value)
	for i := range groups {
		groups[i].Value /= float64(groups[i].Count)
	}
	return groups
}

// Regions holds one figure per tracked region.
type Regions struct {
	NA    float64 `json:"na"`
	EU    float64 `json:"eu"`
	JP    float64 `json:"jp"`
	Other float64 `json:"other"`
}

// Get returns the figure for region.
func (r Regions) Get(region Region) float64 {
	switch region {
	case RegionNA:
		return r.NA
	case RegionEU:
		return r.EU
	case RegionJP:
		return r.JP
	case RegionOther:
		return r.Other
	}
	return 0
}

// RegionalTotals sums each regional sales field across records.
func RegionalTotals(records []Record) Regions {
	var t Regions
	for _, r := range records {
		t.NA += NASales(r)
		t.EU += EUSales(r)
		t.JP += JPSales(r)
		t.Other += OtherSales(r)
	}
	return t
}

// TopN returns up to n records ordered by value, highest first. Ties keep
// their input order.
func TopN(records []Record, value ValueFunc, n int) []Record {
	if n <= 0 {
		return []Record{}
	}
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b Record) int {
		return cmp.Compare(sanitize(value(b)), sanitize(value(a)))
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	if sorted == nil {
		sorted = []Record{}
	}
	return sorted
}

// TopGroup returns the group with the highest value; on ties the earliest one
// wins. It returns nil for no groups.
func TopGroup(groups []Group) *Group {
	if len(groups) == 0 {
		return nil
	}
	best := groups[0]
	for _, g := range groups[1:] {
		if g.Value > best.Value {
			best = g
		}
	}
	return &best
}

// Group orderings accepted by SortGroups.
const (
	SortValueDesc     = "value_desc"
	SortValueAsc      = "value_asc"
	SortKeyAsc        = "key_asc"
	SortChronological = "chronological"
)

// SortGroups returns a copy of groups in the requested presentation order.
// Unknown modes keep first-seen order. Sorting is stable.
func SortGroups(groups []Group, mode string) []Group {
	out := slices.Clone(groups)
	switch mode {
	case SortValueDesc:
		slices.SortStableFunc(out, func(a, b Group) int { return cmp.Compare(b.Value, a.Value) })
	case SortValueAsc:
		slices.SortStableFunc(out, func(a, b Group) int { return cmp.Compare(a.Value, b.Value) })
	case SortKeyAsc:
		slices.SortStableFunc(out, func(a, b Group) int {
			return cmp.Compare(strings.ToLower(a.Key), strings.ToLower(b.Key))
		})
	case SortChronological:
		slices.SortStableFunc(out, func(a, b Group) int { return compareYearKeys(a.Key, b.Key) })
	}
	if out == nil {
		out = []Group{}
	}
	return out
}

// compareYearKeys orders numeric keys ascending and puts everything else last.
func compareYearKeys(a, b string) int {
	ya, errA := strconv.Atoi(a)
	yb, errB := strconv.Atoi(b)
	switch {
	case errA == nil && errB == nil:
		return cmp.Compare(ya, yb)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}
	return cmp.Compare(a, b)
}

// LimitGroups truncates groups to at most n entries; n <= 0 means no limit.
func LimitGroups(groups []Group, n int) []Group {
	if n > 0 && len(groups) > n {
		return groups[:n]
	}
	return groups
}

// Aggregate builds the whole dashboard for one set of filter criteria.
func Aggregate(records []Record, c Criteria) *models.DashboardData {
	filtered := ApplyFilters(records, c)

	byPlatform := GroupSumBy(filtered, ByPlatform, GlobalSales)
	byGenre := GroupSumBy(filtered, ByGenre, GlobalSales)
	byPublisher := GroupSumBy(filtered, ByPublisher, GlobalSales)
	byYear := GroupSumBy(filtered, ByYear, GlobalSales)
	summary := Summarize(filtered, byPlatform)

	norm := c.Normalized()
	data := &models.DashboardData{
		Filters:       models.AppliedFilters{Year: norm.Year, Platform: norm.Platform},
		Summary:       summaryCard(summary, TopGroup(byGenre)),
		PlatformSales: toTopItems(SortGroups(byPlatform, SortValueDesc)),
		GenreSales:    toTopItems(SortGroups(byGenre, SortValueDesc)),
		TopPublishers: toTopItems(LimitGroups(SortGroups(byPublisher, SortValueDesc), topPublishersLimit)),
		GenreAverages: toTopItems(SortGroups(AverageBy(filtered, ByGenre, GlobalSales), SortValueDesc)),
		YearlySales:   make([]models.YearlyItem, 0, len(byYear)),
		RegionalSales: RegionItems(summary),
		TopGames:      GameRows(TopN(filtered, GlobalSales, topGamesLimit)),
		Distribution:  toDistribution(Distribution(filtered, GlobalSales)),
	}

	for _, g := range SortGroups(byYear, SortChronological) {
		data.YearlySales = append(data.YearlySales, models.YearlyItem{Year: g.Key, Volume: g.Value})
	}
	return data
}

func summaryCard(s Summary, topGenre *Group) models.SummaryCard {
	card := models.SummaryCard{
		TotalGames:       s.Count,
		TotalSales:       s.TotalGlobal,
		TotalFormatted:   FormatMillions(s.TotalGlobal),
		AverageSales:     s.Average,
		AverageFormatted: FormatOptional(s.Average),
	}
	if s.TopGroup != nil {
		item := toTopItem(*s.TopGroup)
		card.TopPlatform = &item
	}
	if topGenre != nil {
		item := toTopItem(*topGenre)
		card.TopGenre = &item
	}
	return card
}

// RegionItems flattens the regional totals and shares of s in display order.
func RegionItems(s Summary) []models.RegionItem {
	items := make([]models.RegionItem, 0, len(AllRegions))
	for _, region := range AllRegions {
		sales := s.Regions.Get(region)
		items = append(items, models.RegionItem{
			Region:    string(region),
			Sales:     sales,
			Share:     s.RegionShares.Get(region),
			Formatted: FormatMillions(sales),
		})
	}
	return items
}

func toTopItem(g Group) models.TopItem {
	return models.TopItem{Name: g.Key, Value: g.Value, Count: g.Count}
}

// TopItems converts grouped aggregates to their response form.
func TopItems(groups []Group) []models.TopItem { return toTopItems(groups) }

func toTopItems(groups []Group) []models.TopItem {
	items := make([]models.TopItem, 0, len(groups))
	for _, g := range groups {
		items = append(items, toTopItem(g))
	}
	return items
}

// GameRows converts records to table rows.
func GameRows(records []Record) []models.GameRow {
	rows := make([]models.GameRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, models.GameRow{
			Rank:        r.Rank,
			Name:        r.Name,
			Platform:    r.Platform,
			Year:        r.Year,
			Genre:       r.Genre,
			Publisher:   r.Publisher,
			NASales:     r.NASales,
			EUSales:     r.EUSales,
			JPSales:     r.JPSales,
			OtherSales:  r.OtherSales,
			GlobalSales: r.GlobalSales,
		})
	}
	return rows
}

func toDistribution(s Stats) models.DistributionStats {
	return models.DistributionStats{
		Mean:   s.Mean,
		Median: s.Median,
		P90:    s.P90,
		StdDev: s.StdDev,
		Min:    s.Min,
		Max:    s.Max,
	}
}
