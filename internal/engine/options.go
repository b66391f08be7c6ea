package engine

import (
	"slices"
	"strings"

	"gamesales/internal/models"
)

// Options lists the values the filter inputs can take: distinct years
// ascending, distinct platforms in first-seen order. Platforms differing only
// in case or surrounding space are one option, spelled as first seen.
func Options(records []Record) models.FilterOptions {
	opts := models.FilterOptions{Years: []int{}, Platforms: []string{}}
	seenYears := make(map[int]bool)
	seenPlatforms := make(map[string]bool)

	for _, r := range records {
		if y, ok := r.YearValue(); ok && !seenYears[y] {
			seenYears[y] = true
			opts.Years = append(opts.Years, y)
		}
		if key := foldPlatform(r.Platform); key != "" && !seenPlatforms[key] {
			seenPlatforms[key] = true
			opts.Platforms = append(opts.Platforms, strings.TrimSpace(r.Platform))
		}
	}
	slices.Sort(opts.Years)
	return opts
}
