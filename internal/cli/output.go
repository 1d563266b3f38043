package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/eugeniobenito/Triathlon-Updates/internal/race"
	"github.com/eugeniobenito/Triathlon-Updates/internal/runner"
	"github.com/eugeniobenito/Triathlon-Updates/internal/storage"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// OutputResult contains data to be output
type OutputResult struct {
	CheckedAt time.Time        `json:"checked_at"`
	IndexURL  string           `json:"index_url"`
	Listed    int              `json:"listed"`
	NewRaces  []race.Race      `json:"new_races"`
	RaceCount int              `json:"race_count"`
	Written   []runner.Written `json:"written"`
	Failed    []race.Race      `json:"failed,omitempty"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteRaces writes a race list in the specified format
func WriteRaces(w io.Writer, races []race.Race, format OutputFormat) error {
	switch format {
	case FormatJSON:
		if races == nil {
			races = []race.Race{}
		}
		return writeJSON(w, races)
	case FormatText:
		for _, r := range races {
			fmt.Fprintf(w, "%s\t%s\n", r.Name, r.Link)
		}
		fmt.Fprintf(w, "\nTotal: %d races\n", len(races))
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// WriteDocuments writes race documents as a JSON array
func WriteDocuments(w io.Writer, docs []*race.Document) error {
	data, err := storage.EncodeJSON(docs)
	if err != nil {
		return fmt.Errorf("encoding documents: %w", err)
	}
	_, err = w.Write(data)
	return err
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, v interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	if result.RaceCount == 0 {
		fmt.Fprintln(w, "No new races found.")
		return nil
	}

	paths := make(map[race.Race]string, len(result.Written))
	for _, written := range result.Written {
		paths[written.Race] = written.Path
	}

	for _, r := range result.NewRaces {
		fmt.Fprintf(w, "NEW: %s\n", r.Name)
		if verbose {
			fmt.Fprintf(w, "     Link: %s\n", r.Link)
			if path, ok := paths[r]; ok {
				fmt.Fprintf(w, "     File: %s\n", path)
			} else {
				fmt.Fprintln(w, "     File: (failed)")
			}
		}
	}

	fmt.Fprintf(w, "\nTotal: %d new, %d written", result.RaceCount, len(result.Written))
	if len(result.Failed) > 0 {
		fmt.Fprintf(w, ", %d failed", len(result.Failed))
	}
	fmt.Fprintln(w)

	return nil
}
