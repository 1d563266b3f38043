// Package scraper provides HTTP fetching and HTML parsing for triathlon race results pages.
//
// The scraper package fetches the results index and per-race results pages from the
// stats site and extracts structured records from them: the race metadata block (with
// its varying labels, single or gender-specific pro dates, and prize money), and one
// results table per "Women"/"Men" section. Tables with explicit T1/T2 transition columns
// are detected from their header row and read with shifted column offsets.
package scraper
