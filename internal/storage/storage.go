package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/eugeniobenito/Triathlon-Updates/internal/logger"
	"github.com/eugeniobenito/Triathlon-Updates/internal/race"
)

// Storage handles persistence of tracked races and race documents
type Storage struct {
	outputDir   string
	trackedFile string
}

// New creates a new Storage instance
func New(outputDir, trackedFile string) (*Storage, error) {
	outputDir, err := expandHome(outputDir)
	if err != nil {
		return nil, err
	}
	trackedFile, err = expandHome(trackedFile)
	if err != nil {
		return nil, err
	}

	// Create output directory if it doesn't exist
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &Storage{
		outputDir:   outputDir,
		trackedFile: trackedFile,
	}, nil
}

// expandHome expands a leading ~/ to the home directory
func expandHome(path string) (string, error) {
	if !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, path[2:]), nil
}

// OutputDir returns the directory documents are written to
func (s *Storage) OutputDir() string {
	return s.outputDir
}

// TrackedFile returns the path of the tracked-race list
func (s *Storage) TrackedFile() string {
	return s.trackedFile
}

// LoadTracked loads the tracked-race list. A missing file is an empty list;
// any other read or decode failure is returned.
func (s *Storage) LoadTracked() ([]race.Race, error) {
	data, err := os.ReadFile(s.trackedFile)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("Tracked races file not found, using an empty list", logger.Fields{
				"path": s.trackedFile,
			})
			return []race.Race{}, nil
		}
		return nil, fmt.Errorf("reading tracked races: %w", err)
	}

	var races []race.Race
	if err := json.Unmarshal(data, &races); err != nil {
		return nil, fmt.Errorf("parsing tracked races: %w", err)
	}

	if races == nil {
		races = []race.Race{}
	}

	return races, nil
}

// SaveTracked overwrites the tracked-race list
func (s *Storage) SaveTracked(races []race.Race) error {
	if err := writeJSON(s.trackedFile, races); err != nil {
		return fmt.Errorf("writing tracked races: %w", err)
	}
	return nil
}

// SaveCandidates writes the newly discovered races to name inside the output directory
func (s *Storage) SaveCandidates(name string, races []race.Race) (string, error) {
	path := s.resolve(name)
	if err := writeJSON(path, races); err != nil {
		return "", fmt.Errorf("writing new races: %w", err)
	}
	return path, nil
}

// SaveDocument writes a race document to <slugified race name>.json. fallbackName
// is used when the page had no title.
func (s *Storage) SaveDocument(doc *race.Document, fallbackName string) (string, error) {
	name := fallbackName
	if doc.RaceInfo != nil && doc.RaceInfo.Name != "" {
		name = doc.RaceInfo.Name
	}
	if race.Slug(name) == "" {
		return "", fmt.Errorf("race document has no name")
	}

	path := filepath.Join(s.outputDir, race.FileName(name))
	if err := writeJSON(path, doc); err != nil {
		return "", fmt.Errorf("writing race document: %w", err)
	}
	return path, nil
}

// resolve places relative names inside the output directory
func (s *Storage) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.outputDir, name)
}

// writeJSON writes v as two-space indented JSON without HTML escaping
func writeJSON(path string, v interface{}) error {
	data, err := EncodeJSON(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return err
	}

	return nil
}

// EncodeJSON renders v the way documents are persisted
func EncodeJSON(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
