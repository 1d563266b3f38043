package race

// Dedupe removes repeated races, keeping the first occurrence of each
func Dedupe(races []Race) []Race {
	seen := make(map[Race]bool)
	unique := make([]Race, 0, len(races))
	for _, r := range races {
		if !seen[r] {
			seen[r] = true
			unique = append(unique, r)
		}
	}
	return unique
}

// NewRaces returns the scraped races that do not appear in tracked, in scrape order
func NewRaces(scraped, tracked []Race) []Race {
	known := make(map[Race]bool, len(tracked))
	for _, r := range tracked {
		known[r] = true
	}

	result := make([]Race, 0)
	for _, r := range scraped {
		if !known[r] {
			result = append(result, r)
		}
	}
	return result
}

// Merge appends races to tracked, skipping any already present
func Merge(tracked, races []Race) []Race {
	merged := make([]Race, 0, len(tracked)+len(races))
	merged = append(merged, tracked...)
	merged = append(merged, NewRaces(races, tracked)...)
	return Dedupe(merged)
}
