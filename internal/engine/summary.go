package engine

import (
	"github.com/montanaflynn/stats"
)

// Summary holds the headline metrics for a record set. Average is nil when
// Count is 0. RegionShares are percentages of TotalGlobal; they are all 0 and
// SharesDefined is false when TotalGlobal is 0.
type Summary struct {
	Count         int      `json:"count"`
	TotalGlobal   float64  `json:"total_global_sales"`
	Average       *float64 `json:"average_global_sales"`
	TopGroup      *Group   `json:"top_group"`
	Regions       Regions  `json:"regional_totals"`
	RegionShares  Regions  `json:"regional_shares"`
	SharesDefined bool     `json:"shares_defined"`
}

// Summarize computes the headline metrics of records. grouped is the grouped
// aggregate whose highest entry is reported as TopGroup.
func Summarize(records []Record, grouped []Group) Summary {
	s := Summary{
		Count:    len(records),
		TopGroup: TopGroup(grouped),
		Regions:  RegionalTotals(records),
	}
	for _, r := range records {
		s.TotalGlobal += GlobalSales(r)
	}
	if s.Count > 0 {
		avg := s.TotalGlobal / float64(s.Count)
		s.Average = &avg
	}
	if s.TotalGlobal > 0 {
		s.SharesDefined = true
		s.RegionShares = Regions{
			NA:    s.Regions.NA / s.TotalGlobal * 100,
			EU:    s.Regions.EU / s.TotalGlobal * 100,
			JP:    s.Regions.JP / s.TotalGlobal * 100,
			Other: s.Regions.Other / s.TotalGlobal * 100,
		}
	}
	return s
}

// Stats describes the spread of one sales field.
type Stats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Distribution computes Stats over value for records. Empty input yields the
// zero Stats.
func Distribution(records []Record, value ValueFunc) Stats {
	if len(records) == 0 {
		return Stats{}
	}
	data := make(stats.Float64Data, 0, len(records))
	for _, r := range records {
		data = append(data, sanitize(value(r)))
	}

	var out Stats
	var err error
	if out.Mean, err = data.Mean(); err != nil {
		return Stats{}
	}
	if out.Median, err = data.Median(); err != nil {
		return Stats{}
	}
	if out.P90, err = data.Percentile(90); err != nil {
		return Stats{}
	}
	if out.StdDev, err = data.StandardDeviation(); err != nil {
		return Stats{}
	}
	if out.Min, err = data.Min(); err != nil {
		return Stats{}
	}
	if out.Max, err = data.Max(); err != nil {
		return Stats{}
	}
	return out
}
