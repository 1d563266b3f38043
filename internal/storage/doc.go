// Package storage provides JSON-based persistence for tracked races and race documents.
//
// The storage package reads the tracked-race list (tracked_races.json by default) that
// records races already processed, writes the list of newly discovered candidates, and
// writes one pretty-printed document per extracted race, named after the slugified race
// name. Relative output paths resolve against the configured output directory.
package storage
