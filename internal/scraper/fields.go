package scraper

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/eugeniobenito/Triathlon-Updates/internal/race"
	"golang.org/x/net/html"
)

// Pattern for prize money like "10,000 USD" or "2500.50 EUR"
var prizePattern = regexp.MustCompile(`(\d[\d,]*(?:\.\d+)?)\s*([A-Za-z]+)`)

// parseRaceInfo reads the page title and the labelled metadata rows
func parseRaceInfo(doc *goquery.Document) *race.RaceInfo {
	info := race.NewRaceInfo(strings.TrimSpace(doc.Find("h1").Text()))

	doc.Find(".race-info div > div").Each(func(_ int, row *goquery.Selection) {
		label := fieldLabel(row)
		value := fieldValue(row)
		if value == "" {
			return
		}
		applyField(info, label, value)
	})

	return info
}

// fieldLabel returns the bold label of a metadata row, lower-cased without its colon
func fieldLabel(row *goquery.Selection) string {
	label := strings.Replace(row.Find("b").Text(), ":", "", 1)
	return strings.ToLower(strings.TrimSpace(label))
}

// fieldValue prefers a linked value (<a><span>) and otherwise uses the row's
// own text nodes, skipping text inside nested elements such as the label.
func fieldValue(row *goquery.Selection) string {
	if linked := row.Find("a span"); linked.Length() > 0 {
		return strings.TrimSpace(linked.Text())
	}

	text := row.Contents().FilterFunction(func(_ int, node *goquery.Selection) bool {
		return node.Get(0).Type == html.TextNode
	}).Text()

	return strings.TrimSpace(text)
}

// applyField stores one metadata value on info according to its label
func applyField(info *race.RaceInfo, label, value string) {
	switch label {
	case "location":
		info.Location = value
	case "distance":
		info.Distance = value
	case "organizer":
		info.Organizer = value
	case "tier":
		info.Tier = value
	case "dates", "date":
		parseDates(info, value)
	case "prize money":
		if prize, ok := parsePrizeMoney(value); ok {
			info.PrizeMoney = prize
		}
	case "":
		// Unlabelled rows carry nothing we can key
	default:
		info.Set(label, value)
	}
}

// parsePrizeMoney parses "<amount> <currency>", stripping thousands separators
func parsePrizeMoney(value string) (*race.PrizeMoney, bool) {
	match := prizePattern.FindStringSubmatch(value)
	if match == nil {
		return nil, false
	}

	amount, ok := parseLeadingFloat(strings.ReplaceAll(match[1], ",", ""))
	if !ok {
		return nil, false
	}

	return &race.PrizeMoney{
		Amount:   amount,
		Currency: match[2],
	}, true
}
