// Package race provides the data model for scraped triathlon race results.
//
// The race package holds the race-info record (with its open set of metadata labels),
// the per-gender result sections, and the athlete rows extracted from results tables.
// It also owns the race-list bookkeeping: de-duplication of scraped candidates and the
// structural diff against the list of races already tracked across runs.
package race
