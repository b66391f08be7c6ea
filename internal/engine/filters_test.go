package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyFilters(t *testing.T) {
	records := append(sampleRecords(), Record{Name: "Unknown Year", Platform: "Wii", GlobalSales: 1})

	tests := []struct {
		name     string
		criteria Criteria
		want     []string
	}{
		{"no constraints", Criteria{}, []string{"Wii Sports", "Mario Kart DS", "Wii Fit", "Unknown Year"}},
		{"explicit all", Criteria{Year: "ALL", Platform: " all "}, []string{"Wii Sports", "Mario Kart DS", "Wii Fit", "Unknown Year"}},
		{"year only", Criteria{Year: "2008"}, []string{"Wii Sports", "Mario Kart DS"}},
		{"year as decimal", Criteria{Year: "2008.0"}, []string{"Wii Sports", "Mario Kart DS"}},
		{"platform only", Criteria{Platform: "Wii"}, []string{"Wii Sports", "Wii Fit", "Unknown Year"}},
		{"platform case folded", Criteria{Platform: " wii "}, []string{"Wii Sports", "Wii Fit", "Unknown Year"}},
		{"both", Criteria{Year: "2009", Platform: "Wii"}, []string{"Wii Fit"}},
		{"no match", Criteria{Year: "1990"}, []string{}},
		{"unparsable year", Criteria{Year: "soon"}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyFilters(records, tt.criteria)
			names := make([]string, 0, len(got))
			for _, r := range got {
				names = append(names, r.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestApplyFiltersAbsentValuesNeverMatch(t *testing.T) {
	records := []Record{{Name: "No Year", Platform: ""}}

	assert.Empty(t, ApplyFilters(records, Criteria{Year: "2008"}))
	assert.Empty(t, ApplyFilters(records, Criteria{Platform: "Wii"}))
	assert.Len(t, ApplyFilters(records, Criteria{}), 1)
}

func TestApplyFiltersEmptyInput(t *testing.T) {
	got := ApplyFilters(nil, Criteria{Year: "2008"})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestApplyFiltersDoesNotAliasInput(t *testing.T) {
	records := sampleRecords()
	got := ApplyFilters(records, Criteria{})
	got[0].Name = "changed"
	assert.Equal(t, "Wii Sports", records[0].Name)
}

func TestCriteriaNormalized(t *testing.T) {
	assert.Equal(t, Criteria{Year: "all", Platform: "all"}, Criteria{}.Normalized())
	assert.Equal(t, Criteria{Year: "2008", Platform: "Wii"}, Criteria{Year: " 2008.0", Platform: " Wii "}.Normalized())
	assert.True(t, Criteria{Year: "All"}.IsEmpty())
	assert.False(t, Criteria{Platform: "DS"}.IsEmpty())
}

func TestValidYear(t *testing.T) {
	for _, s := range []string{"", "all", "ALL", "2008", " 2008.0 "} {
		assert.True(t, ValidYear(s), s)
	}
	for _, s := range []string{"two thousand", "2008.5", "NaN", "1e20", "5000000000", "-5000000000"} {
		assert.False(t, ValidYear(s), s)
	}
}
