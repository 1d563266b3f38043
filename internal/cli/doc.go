// Package cli implements the command-line interface for triathlon-updates.
//
// The cli package provides the Cobra-based CLI: check (the default command) diffs the
// results index against the tracked races and writes a document per new race, list
// prints the races on the index and extract parses explicit race pages. Settings are
// resolved by the config package, so every flag can also come from a config file or a
// TRIUPDATES_* environment variable.
package cli
