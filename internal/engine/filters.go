package engine

import (
	"math"
	"strconv"
	"strings"
)

// All is the criteria value meaning "no constraint".
const All = "all"

// Criteria is the active year/platform equality constraint pair. An empty
// value or "all" (any case) leaves that dimension unconstrained.
type Criteria struct {
	Year     string `json:"year"`
	Platform string `json:"platform"`
}

// IsEmpty reports whether neither dimension is constrained.
func (c Criteria) IsEmpty() bool {
	return isAll(c.Year) && isAll(c.Platform)
}

// Normalized returns the criteria in canonical form: "all" for unconstrained
// dimensions, a base-10 integer for the year, a trimmed platform.
func (c Criteria) Normalized() Criteria {
	out := Criteria{Year: All, Platform: All}
	if !isAll(c.Year) {
		if y, ok := parseYear(c.Year); ok {
			out.Year = strconv.Itoa(y)
		} else {
			out.Year = strings.TrimSpace(c.Year)
		}
	}
	if !isAll(c.Platform) {
		out.Platform = strings.TrimSpace(c.Platform)
	}
	return out
}

// ApplyFilters keeps the records matching every active constraint, in input
// order. Both sides are normalised before comparing: years as integers,
// platforms trimmed and case-folded. Records with an absent value never match
// a specific constraint, and an unparsable year constraint matches nothing.
func ApplyFilters(records []Record, c Criteria) []Record {
	out := make([]Record, 0, len(records))
	if c.IsEmpty() {
		return append(out, records...)
	}
	m, ok := newMatcher(c)
	if !ok {
		return out
	}
	for _, r := range records {
		if m.match(r) {
			out = append(out, r)
		}
	}
	return out
}

type matcher struct {
	anyYear     bool
	year        int
	anyPlatform bool
	platform    string
}

func newMatcher(c Criteria) (matcher, bool) {
	m := matcher{anyYear: isAll(c.Year), anyPlatform: isAll(c.Platform)}
	if !m.anyYear {
		y, ok := parseYear(c.Year)
		if !ok {
			return m, false
		}
		m.year = y
	}
	if !m.anyPlatform {
		m.platform = foldPlatform(c.Platform)
	}
	return m, true
}

func (m matcher) match(r Record) bool {
	if !m.anyYear {
		y, ok := r.YearValue()
		if !ok || y != m.year {
			return false
		}
	}
	if !m.anyPlatform {
		p := foldPlatform(r.Platform)
		if p == "" || p != m.platform {
			return false
		}
	}
	return true
}

// ValidYear reports whether s is usable as a year criterion: unconstrained or
// an integral year.
func ValidYear(s string) bool {
	if isAll(s) {
		return true
	}
	_, ok := parseYear(s)
	return ok
}

func isAll(v string) bool {
	v = strings.TrimSpace(v)
	return v == "" || strings.EqualFold(v, All)
}

func foldPlatform(p string) string {
	return strings.ToLower(strings.TrimSpace(p))
}

// parseYear accepts "2008" and integral decimals such as "2008.0", within
// the int32 range.
func parseYear(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if y, err := strconv.ParseInt(s, 10, 32); err == nil {
		return int(y), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}
