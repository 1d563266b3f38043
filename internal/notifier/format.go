package notifier

import (
	"fmt"
	"strings"

	"github.com/eugeniobenito/Triathlon-Updates/internal/race"
)

const tweetLimit = 280

// formatAnnouncement renders the plain-text announcement for a race
func formatAnnouncement(doc *race.Document) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🏁 New results: %s\n", raceName(doc))

	if date := raceDate(doc); date != "" {
		fmt.Fprintf(&b, "📅 %s\n", date)
	}
	if doc.RaceInfo != nil {
		if doc.RaceInfo.Distance != "" {
			fmt.Fprintf(&b, "📏 %s\n", doc.RaceInfo.Distance)
		}
		if doc.RaceInfo.Location != "" {
			fmt.Fprintf(&b, "📍 %s\n", doc.RaceInfo.Location)
		}
	}

	for _, section := range doc.TriathlonResults {
		winner, ok := section.Winner()
		if !ok {
			continue
		}
		line := fmt.Sprintf("🥇 %s: %s", section.Gender, winner.Athlete)
		if winner.Overall != nil {
			line += fmt.Sprintf(" (%s)", *winner.Overall)
		}
		b.WriteString(line + "\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// raceName returns the page title of a document
func raceName(doc *race.Document) string {
	if doc.RaceInfo == nil || doc.RaceInfo.Name == "" {
		return "Unnamed race"
	}
	return doc.RaceInfo.Name
}

// raceDate returns the first section date, since race-level dates are stripped
func raceDate(doc *race.Document) string {
	for _, section := range doc.TriathlonResults {
		if section.Date != nil {
			return *section.Date
		}
	}
	return ""
}

// formatTweet formats a race announcement as a tweet
func formatTweet(doc *race.Document) string {
	tweet := formatAnnouncement(doc) + "\n\n#triathlon"

	// Twitter limit is 280 characters
	runes := []rune(tweet)
	if len(runes) > tweetLimit {
		tweet = string(runes[:tweetLimit-3]) + "..."
	}

	return tweet
}
