package engine

func yr(y int) *int { return &y }

// sampleRecords is the three-row scenario used across the engine tests.
func sampleRecords() []Record {
	return []Record{
		{Rank: 1, Name: "Wii Sports", Platform: "Wii", Year: yr(2008), Genre: "Sports", Publisher: "Nintendo",
			NASales: 4, EUSales: 3, JPSales: 1, OtherSales: 1, GlobalSales: 10},
		{Rank: 2, Name: "Mario Kart DS", Platform: "DS", Year: yr(2008), Genre: "Racing", Publisher: "Nintendo",
			NASales: 2, EUSales: 1.5, JPSales: 1, OtherSales: 0.25, GlobalSales: 5},
		{Rank: 3, Name: "Wii Fit", Platform: "Wii", Year: yr(2009), Genre: "Sports", Publisher: "Nintendo",
			NASales: 1, EUSales: 1, JPSales: 0.5, OtherSales: 0.25, GlobalSales: 3},
	}
}

// seededRecords derives a deterministic record set from generated integers.
// Sales are multiples of 0.25 so sums stay exact.
func seededRecords(seeds []int) []Record {
	platforms := []string{"Wii", "DS", "PS2", "X360"}
	genres := []string{"Sports", "Racing", "Action"}
	out := make([]Record, 0, len(seeds))
	for i, s := range seeds {
		r := Record{
			Rank:        i + 1,
			Name:        "Game",
			Platform:    platforms[s%len(platforms)],
			Genre:       genres[(s/3)%len(genres)],
			Publisher:   "Pub",
			NASales:     float64(s%9) / 4,
			EUSales:     float64(s%7) / 4,
			JPSales:     float64(s%5) / 4,
			OtherSales:  float64(s%3) / 4,
			GlobalSales: float64(s%40) / 4,
		}
		if s%7 != 0 {
			r.Year = yr(2000 + s%5)
		}
		out = append(out, r)
	}
	return out
}
