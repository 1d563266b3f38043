package scraper

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/eugeniobenito/Triathlon-Updates/internal/race"
)

// ErrInvalidPoints is returned in strict mode when a ptoPts cell is not numeric
var ErrInvalidPoints = errors.New("invalid ptoPts value")

var sofPattern = regexp.MustCompile(`SOF:\s([\d.]+)`)

// columnLayout holds the cell offsets of one results table shape
type columnLayout struct {
	transitions bool
	swim        int
	t1          int
	bike        int
	t2          int
	run         int
	overall     int
	points      int
}

var (
	plainLayout = columnLayout{
		swim:    2,
		bike:    3,
		run:     4,
		overall: 5,
		points:  6,
	}
	transitionLayout = columnLayout{
		transitions: true,
		swim:        2,
		t1:          3,
		bike:        4,
		t2:          5,
		run:         6,
		overall:     7,
		points:      8,
	}
)

// parseResults builds one GenderResult per "Women" or "Men" section heading
func (s *Scraper) parseResults(doc *goquery.Document, info *race.RaceInfo) ([]race.GenderResult, error) {
	results := make([]race.GenderResult, 0)

	var err error
	doc.Find("h2").EachWithBreak(func(_ int, heading *goquery.Selection) bool {
		gender := strings.TrimSpace(heading.Text())
		if gender != race.GenderWomen && gender != race.GenderMen {
			return true
		}

		section, sectionErr := s.parseSection(heading, gender, info)
		if sectionErr != nil {
			err = fmt.Errorf("parsing %s results: %w", gender, sectionErr)
			return false
		}
		results = append(results, section)
		return true
	})
	if err != nil {
		return nil, err
	}

	return results, nil
}

// parseSection reads the SOF, date and every table row below one gender heading
func (s *Scraper) parseSection(heading *goquery.Selection, gender string, info *race.RaceInfo) (race.GenderResult, error) {
	section := race.GenderResult{
		Gender:  gender,
		SOF:     extractSOF(heading),
		Date:    info.DateFor(gender),
		Results: make([]race.AthleteResult, 0),
	}

	rows := heading.Closest(".section-bottom").Find("tr")

	layout := plainLayout
	if hasTransitions(rows.First()) {
		layout = transitionLayout
	}

	var err error
	rows.EachWithBreak(func(i int, row *goquery.Selection) bool {
		if i == 0 {
			return true
		}
		athlete, rowErr := s.parseAthlete(row, layout)
		if rowErr != nil {
			err = rowErr
			return false
		}
		section.Results = append(section.Results, athlete)
		return true
	})

	return section, err
}

// extractSOF finds "SOF: <score>" in the heading block around a section title
func extractSOF(heading *goquery.Selection) *float64 {
	text := heading.Closest(".d-flex").Find(".h3").Text()
	match := sofPattern.FindStringSubmatch(text)
	if match == nil {
		return nil
	}
	sof, ok := parseLeadingFloat(match[1])
	if !ok {
		return nil
	}
	return &sof
}

// hasTransitions reports whether a header row has a T1 column
func hasTransitions(header *goquery.Selection) bool {
	return header.Find("td, th").FilterFunction(func(_ int, cell *goquery.Selection) bool {
		return strings.Contains(cell.Text(), "T1")
	}).Length() > 0
}

// parseAthlete reads one results row using the section's column layout
func (s *Scraper) parseAthlete(row *goquery.Selection, layout columnLayout) (race.AthleteResult, error) {
	cells := row.Find("td")
	cellText := func(i int) string {
		return strings.TrimSpace(cells.Eq(i).Text())
	}

	athlete := race.AthleteResult{
		Position: parseLeadingInt(cellText(0)),
		Athlete:  strings.TrimSpace(row.Find(".name").Text()),
		Swim:     parseSplit(cells.Eq(layout.swim)),
		Bike:     parseSplit(cells.Eq(layout.bike)),
		Run:      parseSplit(cells.Eq(layout.run)),
		Overall:  NormalizeTime(cellText(layout.overall)),
	}

	if layout.transitions {
		athlete.T1 = &race.Transition{Time: NormalizeTime(cellText(layout.t1))}
		athlete.T2 = &race.Transition{Time: NormalizeTime(cellText(layout.t2))}
	}

	raw := cellText(layout.points)
	points, ok := parseLeadingFloat(raw)
	if !ok {
		if s.strictPoints {
			return race.AthleteResult{}, fmt.Errorf("%w: %q for %s", ErrInvalidPoints, raw, athlete.Athlete)
		}
		points = math.NaN()
	}
	athlete.PtoPts = race.Points(points)

	return athlete, nil
}

// parseSplit reads a swim/bike/run cell. The time is the text before the first
// space; the rank comes from data-sort, falling back to a "(n)" annotation.
func parseSplit(cell *goquery.Selection) race.Split {
	text := strings.TrimSpace(cell.Text())

	var split race.Split
	if fields := strings.Fields(text); len(fields) > 0 {
		split.Time = NormalizeTime(fields[0])
	}

	if value, ok := cell.Attr("data-sort"); ok {
		split.Rank = parseLeadingInt(value)
	}
	if split.Rank == nil {
		split.Rank = ExtractRank(text)
	}

	return split
}
