package scraper

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/eugeniobenito/Triathlon-Updates/internal/race"
)

// ShortCourse is the race type label excluded from the race list
const ShortCourse = "Short course"

// Selectors run once per index entry, compiled up front
var (
	raceEntrySelector = cascadia.MustCompile(".race-name-and-tier")
	raceLinkSelector  = cascadia.MustCompile("a.racename")
	raceNameSelector  = cascadia.MustCompile("span b")
	raceTypeSelector  = cascadia.MustCompile("span")
)

// parseRaceList extracts the races listed on the results index
func (s *Scraper) parseRaceList(r io.Reader) ([]race.Race, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	races := make([]race.Race, 0)

	doc.FindMatcher(raceEntrySelector).Each(func(_ int, entry *goquery.Selection) {
		link := entry.FindMatcher(raceLinkSelector)
		name := strings.TrimSpace(link.FindMatcher(raceNameSelector).Text())
		href, ok := link.Attr("href")
		href = strings.TrimSpace(href)
		raceType := strings.TrimSpace(entry.FindMatcher(raceTypeSelector).Last().Text())

		if name == "" || !ok || href == "" || raceType == ShortCourse {
			return
		}

		races = append(races, race.Race{
			Name: name,
			Link: s.baseURL + href,
		})
	})

	return race.Dedupe(races), nil
}
