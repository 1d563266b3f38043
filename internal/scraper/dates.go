package scraper

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/eugeniobenito/Triathlon-Updates/internal/race"
)

const (
	femaleProMarker = "(FPRO)"
	maleProMarker   = "(MPRO)"
)

var (
	// A date followed by its division marker, e.g. "02 Nov 2024 (FPRO)"
	markedDatePattern = regexp.MustCompile(`\d{2}\s\w{3}\s\d{4}.*?\)`)
	datePattern       = regexp.MustCompile(`\d{2}\s\w{3}\s\d{4}`)
)

var monthNumbers = map[string]string{
	"Jan": "01", "Feb": "02", "Mar": "03", "Apr": "04", "May": "05", "Jun": "06",
	"Jul": "07", "Aug": "08", "Sep": "09", "Oct": "10", "Nov": "11", "Dec": "12",
}

// parseDates sets either the gender-specific pro dates (when the value lists
// several marked dates) or the single shared race date.
func parseDates(info *race.RaceInfo, value string) {
	marked := markedDatePattern.FindAllString(value, -1)
	if len(marked) > 1 {
		for _, group := range marked {
			date, ok := formatDate(datePattern.FindString(group))
			if !ok {
				continue
			}
			switch {
			case strings.Contains(group, femaleProMarker):
				info.FemaleProDate = date
			case strings.Contains(group, maleProMarker):
				info.MaleProDate = date
			}
		}
		return
	}

	if date, ok := formatDate(datePattern.FindString(value)); ok {
		info.Date = date
	}
}

// formatDate converts "02 Nov 2024" to "2024-11-02"
func formatDate(text string) (string, bool) {
	parts := strings.Fields(text)
	if len(parts) != 3 {
		return "", false
	}

	day, month, year := parts[0], parts[1], parts[2]
	number, ok := monthNumbers[month]
	if !ok {
		return "", false
	}

	return fmt.Sprintf("%s-%s-%s", year, number, day), true
}
