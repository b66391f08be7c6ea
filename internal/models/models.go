package models

import "time"

type DashboardData struct {
	Filters       AppliedFilters    `json:"filters"`
	Summary       SummaryCard       `json:"summary"`
	PlatformSales []TopItem         `json:"platform_sales"`
	GenreSales    []TopItem         `json:"genre_sales"`
	TopPublishers []TopItem         `json:"top_publishers"`
	GenreAverages []TopItem         `json:"genre_averages"`
	YearlySales   []YearlyItem      `json:"yearly_sales"`
	RegionalSales []RegionItem      `json:"regional_sales"`
	TopGames      []GameRow         `json:"top_games"`
	Distribution  DistributionStats `json:"distribution"`
}

type AppliedFilters struct {
	Year     string `json:"year"`
	Platform string `json:"platform"`
}

// SummaryCard carries the headline metrics. Pointer fields are null when the
// value is undefined (no records); the *Formatted fields then read "N/A".
type SummaryCard struct {
	TotalGames       int      `json:"total_games"`
	TotalSales       float64  `json:"total_sales"`
	TotalFormatted   string   `json:"total_formatted"`
	AverageSales     *float64 `json:"average_sales"`
	AverageFormatted string   `json:"average_formatted"`
	TopPlatform      *TopItem `json:"top_platform"`
	TopGenre         *TopItem `json:"top_genre"`
}

type TopItem struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

type YearlyItem struct {
	Year   string  `json:"year"`
	Volume float64 `json:"sales"`
}

type RegionItem struct {
	Region    string  `json:"region"`
	Sales     float64 `json:"sales"`
	Share     float64 `json:"share"`
	Formatted string  `json:"formatted"`
}

type GameRow struct {
	Rank        int     `json:"rank,omitempty"`
	Name        string  `json:"name"`
	Platform    string  `json:"platform"`
	Year        *int    `json:"year"`
	Genre       string  `json:"genre"`
	Publisher   string  `json:"publisher"`
	NASales     float64 `json:"na_sales"`
	EUSales     float64 `json:"eu_sales"`
	JPSales     float64 `json:"jp_sales"`
	OtherSales  float64 `json:"other_sales"`
	GlobalSales float64 `json:"global_sales"`
}

type DistributionStats struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

type FilterOptions struct {
	Years     []int    `json:"years"`
	Platforms []string `json:"platforms"`
}

// DatasetInfo describes the dataset currently served.
type DatasetInfo struct {
	State         string     `json:"state"`
	ID            string     `json:"id,omitempty"`
	Generation    uint64     `json:"generation"`
	Source        string     `json:"source,omitempty"`
	Records       int        `json:"records"`
	InvalidFields int        `json:"invalid_fields"`
	Fingerprint   string     `json:"fingerprint,omitempty"`
	LoadedAt      *time.Time `json:"loaded_at,omitempty"`
	LastError     string     `json:"last_error,omitempty"`
}
