package race

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strings"
	"unicode"
)

const (
	GenderWomen = "Women"
	GenderMen   = "Men"
)

// Race identifies a race on the results index. Two races are the same race only
// when both name and link match.
type Race struct {
	Name string `json:"name"`
	Link string `json:"link"`
}

// PrizeMoney is the parsed "prize money" metadata field
type PrizeMoney struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// RaceInfo is the metadata block of a race page. Known labels are typed fields;
// anything else lands in Extra under its lower-cased label.
type RaceInfo struct {
	Name       string
	Location   string
	Distance   string
	Organizer  string
	Tier       string
	PrizeMoney *PrizeMoney

	// Date, FemaleProDate and MaleProDate only live until the result sections
	// have picked their dates. See ClearDates.
	Date          string
	FemaleProDate string
	MaleProDate   string

	Extra map[string]string
}

// NewRaceInfo creates an empty RaceInfo with the given page title
func NewRaceInfo(name string) *RaceInfo {
	return &RaceInfo{
		Name:  name,
		Extra: make(map[string]string),
	}
}

// Set stores a metadata value under an unrecognised label
func (r *RaceInfo) Set(label, value string) {
	if label == "name" {
		r.Name = value
		return
	}
	if r.Extra == nil {
		r.Extra = make(map[string]string)
	}
	r.Extra[label] = value
}

// DateFor returns the date that applies to a gender section: the gender's pro
// date when one was listed, otherwise the shared race date. Returns nil when
// neither is known.
func (r *RaceInfo) DateFor(gender string) *string {
	date := r.Date
	if gender == GenderWomen && r.FemaleProDate != "" {
		date = r.FemaleProDate
	} else if gender == GenderMen && r.MaleProDate != "" {
		date = r.MaleProDate
	}
	if date == "" {
		return nil
	}
	return &date
}

// ClearDates drops the transient date fields once they have been copied into
// the gender sections.
func (r *RaceInfo) ClearDates() {
	r.Date = ""
	r.FemaleProDate = ""
	r.MaleProDate = ""
}

// MarshalJSON writes name first, then the typed fields that are set, then the
// extra labels in sorted order.
func (r RaceInfo) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	first := true
	write := func(key string, value interface{}) error {
		data, err := marshalUnescaped(value)
		if err != nil {
			return err
		}
		k, err := marshalUnescaped(key)
		if err != nil {
			return err
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(data)
		return nil
	}

	if err := write("name", r.Name); err != nil {
		return nil, err
	}

	typed := []struct {
		key   string
		value string
	}{
		{"location", r.Location},
		{"distance", r.Distance},
		{"organizer", r.Organizer},
		{"tier", r.Tier},
		{"date", r.Date},
		{"femaleProDate", r.FemaleProDate},
		{"maleProDate", r.MaleProDate},
	}
	for _, field := range typed {
		if field.value == "" {
			continue
		}
		if err := write(field.key, field.value); err != nil {
			return nil, err
		}
	}

	if r.PrizeMoney != nil {
		if err := write("prizeMoney", r.PrizeMoney); err != nil {
			return nil, err
		}
	}

	labels := make([]string, 0, len(r.Extra))
	for label := range r.Extra {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	for _, label := range labels {
		if err := write(label, r.Extra[label]); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// marshalUnescaped encodes v without HTML escaping so race names keep their ampersands
func marshalUnescaped(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Split is a timed leg with its leg rank
type Split struct {
	Time *string `json:"time"`
	Rank *int    `json:"rank"`
}

// Transition is a T1/T2 time. A nil *Transition means the table had no
// transition columns; a Transition with a nil Time means the cell was empty.
type Transition struct {
	Time *string
}

// MarshalJSON encodes a transition as its bare time string (or null)
func (t Transition) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Time)
}

// Points holds a ptoPts value. NaN means the cell was not numeric.
type Points float64

// Valid reports whether the points value is a finite number
func (p Points) Valid() bool {
	f := float64(p)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// MarshalJSON encodes invalid points as null since JSON has no NaN
func (p Points) MarshalJSON() ([]byte, error) {
	if !p.Valid() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(p))
}

// AthleteResult is one row of a results table
type AthleteResult struct {
	Position *int        `json:"position"`
	Athlete  string      `json:"athlete"`
	Swim     Split       `json:"swim"`
	T1       *Transition `json:"t1,omitempty"`
	Bike     Split       `json:"bike"`
	T2       *Transition `json:"t2,omitempty"`
	Run      Split       `json:"run"`
	Overall  *string     `json:"overall"`
	PtoPts   Points      `json:"ptoPts"`
}

// GenderResult is the results table of one gender section
type GenderResult struct {
	Gender  string          `json:"gender"`
	SOF     *float64        `json:"sof"`
	Date    *string         `json:"date"`
	Results []AthleteResult `json:"results"`
}

// Winner returns the athlete placed first in the section, if any
func (g GenderResult) Winner() (AthleteResult, bool) {
	for _, r := range g.Results {
		if r.Position != nil && *r.Position == 1 {
			return r, true
		}
	}
	return AthleteResult{}, false
}

// Document is the persisted output for one race page
type Document struct {
	RaceInfo         *RaceInfo      `json:"raceInfo"`
	TriathlonResults []GenderResult `json:"triathlonResults"`
}

// Slug lower-cases a race name and replaces every whitespace character with an underscore
func Slug(name string) string {
	return strings.ToLower(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '_'
		}
		return r
	}, name))
}

// FileName returns the output file name for a race document
func FileName(name string) string {
	return Slug(name) + ".json"
}
