package engine

import (
	"cmp"
	"slices"
	"strings"
)

// Search keeps records whose name, publisher or genre contains text
// (case-insensitive). Blank text keeps everything.
func Search(records []Record, text string) []Record {
	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" {
		return slices.Clone(records)
	}
	out := make([]Record, 0)
	for _, r := range records {
		if strings.Contains(strings.ToLower(r.Name), needle) ||
			strings.Contains(strings.ToLower(r.Publisher), needle) ||
			strings.Contains(strings.ToLower(r.Genre), needle) {
			out = append(out, r)
		}
	}
	return out
}

// SortColumns lists the columns SortRecords understands.
var SortColumns = []string{
	"rank", "name", "platform", "year", "genre", "publisher",
	"na_sales", "eu_sales", "jp_sales", "other_sales", "global_sales",
}

// SortRecords returns a copy of records stably ordered by column. Unknown
// columns keep input order. Records without a year sort before all years.
func SortRecords(records []Record, column string, desc bool) []Record {
	out := slices.Clone(records)
	less := recordComparator(column)
	if less == nil {
		return out
	}
	slices.SortStableFunc(out, func(a, b Record) int {
		if desc {
			return less(b, a)
		}
		return less(a, b)
	})
	return out
}

func recordComparator(column string) func(a, b Record) int {
	text := func(f func(Record) string) func(a, b Record) int {
		return func(a, b Record) int {
			return cmp.Compare(strings.ToLower(f(a)), strings.ToLower(f(b)))
		}
	}
	number := func(f ValueFunc) func(a, b Record) int {
		return func(a, b Record) int { return cmp.Compare(f(a), f(b)) }
	}

	switch column {
	case "rank":
		return func(a, b Record) int { return cmp.Compare(a.Rank, b.Rank) }
	case "name":
		return text(func(r Record) string { return r.Name })
	case "platform":
		return text(func(r Record) string { return r.Platform })
	case "genre":
		return text(func(r Record) string { return r.Genre })
	case "publisher":
		return text(func(r Record) string { return r.Publisher })
	case "year":
		return func(a, b Record) int {
			ya, okA := a.YearValue()
			yb, okB := b.YearValue()
			switch {
			case okA && okB:
				return cmp.Compare(ya, yb)
			case okA:
				return 1
			case okB:
				return -1
			}
			return 0
		}
	case "na_sales":
		return number(NASales)
	case "eu_sales":
		return number(EUSales)
	case "jp_sales":
		return number(JPSales)
	case "other_sales":
		return number(OtherSales)
	case "global_sales":
		return number(GlobalSales)
	}
	return nil
}

// Page is one window of a record list.
type Page struct {
	Records []Record
	Total   int
	Limit   int
	Offset  int
}

// Paginate returns records[offset:offset+limit], clamped to the list. An
// offset past the end yields an empty page; a negative offset counts as 0.
func Paginate(records []Record, limit, offset int) Page {
	offset = max(offset, 0)
	p := Page{Total: len(records), Limit: limit, Offset: offset}
	if offset >= len(records) || limit <= 0 {
		p.Records = []Record{}
		return p
	}
	end := min(offset+limit, len(records))
	p.Records = records[offset:end]
	return p
}
