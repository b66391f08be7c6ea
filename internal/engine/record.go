package engine

import (
	"math"
	"strconv"
)

// UnknownKey groups records whose category value is absent (e.g. no release year).
const UnknownKey = "N/A"

// Record is one game's sales row. Sales figures are in millions of units;
// an absent figure is stored as 0.
type Record struct {
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

// YearValue returns the release year and whether it is present.
func (r Record) YearValue() (int, bool) {
	if r.Year == nil {
		return 0, false
	}
	return *r.Year, true
}

// KeyFunc extracts the category key a record is grouped under.
type KeyFunc func(Record) string

// ValueFunc extracts the numeric field a record contributes to an aggregate.
type ValueFunc func(Record) float64

func ByPlatform(r Record) string  { return orUnknown(r.Platform) }
func ByGenre(r Record) string     { return orUnknown(r.Genre) }
func ByPublisher(r Record) string { return orUnknown(r.Publisher) }

// ByYear keys records by release year; records without one share UnknownKey.
func ByYear(r Record) string {
	if y, ok := r.YearValue(); ok {
		return strconv.Itoa(y)
	}
	return UnknownKey
}

func GlobalSales(r Record) float64 { return sanitize(r.GlobalSales) }
func NASales(r Record) float64     { return sanitize(r.NASales) }
func EUSales(r Record) float64     { return sanitize(r.EUSales) }
func JPSales(r Record) float64     { return sanitize(r.JPSales) }
func OtherSales(r Record) float64  { return sanitize(r.OtherSales) }

// Region is one of the four tracked sales territories. Global sales are
// sourced independently and are not their sum.
type Region string

const (
	RegionNA    Region = "NA"
	RegionEU    Region = "EU"
	RegionJP    Region = "JP"
	RegionOther Region = "Other"
)

// AllRegions lists regions in display order.
var AllRegions = []Region{RegionNA, RegionEU, RegionJP, RegionOther}

// Value returns the accessor for the region's sales field.
func (r Region) Value() ValueFunc {
	switch r {
	case RegionNA:
		return NASales
	case RegionEU:
		return EUSales
	case RegionJP:
		return JPSales
	case RegionOther:
		return OtherSales
	}
	return func(Record) float64 { return 0 }
}

// SalesField resolves a short field name ("global", "na", "eu", "jp",
// "other") to its accessor. Unknown names fall back to global sales.
func SalesField(name string) ValueFunc {
	switch name {
	case "na":
		return NASales
	case "eu":
		return EUSales
	case "jp":
		return JPSales
	case "other":
		return OtherSales
	}
	return GlobalSales
}

func orUnknown(s string) string {
	if s == "" {
		return UnknownKey
	}
	return s
}

// sanitize maps values that cannot take part in a sum to zero.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
