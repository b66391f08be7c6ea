package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearch(t *testing.T) {
	records := sampleRecords()

	assert.Equal(t, []string{"Wii Sports", "Wii Fit"}, names(Search(records, "wii")))
	assert.Equal(t, []string{"Mario Kart DS"}, names(Search(records, "RACING")))
	assert.Len(t, Search(records, "nintendo"), 3)
	assert.Len(t, Search(records, "  "), 3)
	assert.Empty(t, Search(records, "zelda"))
}

func TestSortRecords(t *testing.T) {
	records := append(sampleRecords(), Record{Rank: 4, Name: "Mystery", Platform: "PS2", GlobalSales: 5})

	assert.Equal(t, []string{"Mario Kart DS", "Mystery", "Wii Fit", "Wii Sports"}, names(SortRecords(records, "name", false)))
	assert.Equal(t, []string{"Wii Sports", "Mario Kart DS", "Mystery", "Wii Fit"}, names(SortRecords(records, "global_sales", true)))
	assert.Equal(t, []string{"Mystery", "Wii Sports", "Mario Kart DS", "Wii Fit"}, names(SortRecords(records, "year", false)))
	assert.Equal(t, []string{"Wii Fit", "Wii Sports", "Mario Kart DS", "Mystery"}, names(SortRecords(records, "year", true)))
	assert.Equal(t, names(records), names(SortRecords(records, "unknown", false)))
	assert.Equal(t, "Wii Sports", records[0].Name)
}

func TestOptions(t *testing.T) {
	records := append(sampleRecords(),
		Record{Name: "Old", Platform: "NES", Year: yr(1985)},
		Record{Name: "Undated", Platform: "DS"},
		Record{Name: "Wii Play", Platform: "wii ", Year: yr(2008)},
	)

	opts := Options(records)
	assert.Equal(t, []int{1985, 2008, 2009}, opts.Years)
	assert.Equal(t, []string{"Wii", "DS", "NES"}, opts.Platforms)

	empty := Options(nil)
	assert.NotNil(t, empty.Years)
	assert.NotNil(t, empty.Platforms)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "$12.50M", FormatMillions(12.5))
	assert.Equal(t, "$1,234.57M", FormatMillions(1234.567))
	assert.Equal(t, "$0.00M", FormatMillions(0))
	assert.Equal(t, NotAvailable, FormatOptional(nil))
	v := 3.0
	assert.Equal(t, "$3.00M", FormatOptional(&v))
	assert.Equal(t, "42.5%", FormatPercent(42.5))
}

func TestPaginate(t *testing.T) {
	records := sampleRecords()

	p := Paginate(records, 2, 0)
	assert.Equal(t, 3, p.Total)
	assert.Equal(t, []string{"Wii Sports", "Mario Kart DS"}, names(p.Records))

	p = Paginate(records, 2, 2)
	assert.Equal(t, []string{"Wii Fit"}, names(p.Records))

	p = Paginate(records, 2, -1)
	assert.Equal(t, 0, p.Offset)
	assert.Equal(t, []string{"Wii Sports", "Mario Kart DS"}, names(p.Records))

	p = Paginate(records, 10, 3)
	assert.NotNil(t, p.Records)
	assert.Empty(t, p.Records)
	assert.Equal(t, 3, p.Total)
}
