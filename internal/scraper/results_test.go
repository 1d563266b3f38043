package scraper

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
)

const womenPlainPage = `
<html><body>
	<h1>IRONMAN 70.3 Valdivia</h1>
	<div class="race-info">
		<div>
			<div><b>Location:</b> <a href="/loc"><span>Valdivia, Chile</span></a></div>
			<div><b>Dates:</b> 02 Nov 2024 (FPRO) 03 Nov 2024 (MPRO)</div>
			<div><b>Tier:</b> Silver</div>
			<div><b>Prize Money:</b> 10,000 USD</div>
		</div>
	</div>
	<div class="section-bottom">
		<div class="d-flex">
			<h2>Women</h2>
			<span class="h3">SOF: 72.45</span>
		</div>
		<table>
			<tr><td>#</td><td>Athlete</td><td>Swim</td><td>Bike</td><td>Run</td><td>Overall</td><td>PTO Pts</td></tr>
			<tr>
				<td>1</td>
				<td><a class="name" href="/athlete/jane">Jane Doe</a></td>
				<td data-sort="3">25:10 (3)</td>
				<td data-sort="1">2:10:00 (1)</td>
				<td data-sort="2">1:20:30 (2)</td>
				<td>3:59:40</td>
				<td>95.23</td>
			</tr>
			<tr>
				<td>2</td>
				<td><a class="name" href="/athlete/mary">Mary Major</a></td>
				<td data-sort="1">24:55 (1)</td>
				<td data-sort="2">2:12:15 (2)</td>
				<td data-sort="1">1:19:05 (1)</td>
				<td>4:00:15</td>
				<td>90.1</td>
			</tr>
		</table>
	</div>
</body></html>
`

const menTransitionPage = `
<html><body>
	<h1>T100 San Francisco</h1>
	<div class="race-info"><div><div><b>Date:</b> 15 Jun 2025</div></div></div>
	<div class="section-bottom">
		<div class="d-flex"><h2>Women's catch-up</h2></div>
		<table>
			<tr><td>#</td><td>Athlete</td><td>Swim</td><td>Bike</td><td>Run</td><td>Overall</td><td>PTO Pts</td></tr>
			<tr><td>1</td><td class="name">Ignored</td><td>1:00</td><td>1:00</td><td>1:00</td><td>3:00</td><td>1</td></tr>
		</table>
	</div>
	<div class="section-bottom">
		<div class="d-flex"><h2> Men </h2></div>
		<table>
			<tr><td>#</td><td>Athlete</td><td>Swim</td><td>T1</td><td>Bike</td><td>T2</td><td>Run</td><td>Overall</td><td>PTO Pts</td></tr>
			<tr>
				<td>1</td>
				<td><span class="name">John Roe</span></td>
				<td data-sort="2">20:01</td>
				<td>0:45</td>
				<td data-sort="1">1:05:30</td>
				<td></td>
				<td>30:10 (5)</td>
				<td>1:57:12</td>
				<td>DNF</td>
			</tr>
		</table>
	</div>
</body></html>
`

func TestParseRace_WomenWithoutTransitions(t *testing.T) {
	s := New(Config{})
	doc, err := s.parseRace(strings.NewReader(womenPlainPage))
	if err != nil {
		t.Fatalf("parseRace() error: %v", err)
	}

	if len(doc.TriathlonResults) != 1 {
		t.Fatalf("got %d gender sections, want 1", len(doc.TriathlonResults))
	}

	section := doc.TriathlonResults[0]
	if section.Gender != "Women" {
		t.Errorf("Gender = %q, want Women", section.Gender)
	}
	if section.SOF == nil || *section.SOF != 72.45 {
		t.Errorf("SOF = %v, want 72.45", section.SOF)
	}
	if section.Date == nil || *section.Date != "2024-11-02" {
		t.Errorf("Date = %v, want 2024-11-02", section.Date)
	}

	data, err := json.Marshal(section.Results)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}

	want := `[` +
		`{"position":1,"athlete":"Jane Doe","swim":{"time":"00:25:10","rank":3},` +
		`"bike":{"time":"02:10:00","rank":1},"run":{"time":"01:20:30","rank":2},` +
		`"overall":"03:59:40","ptoPts":95.23},` +
		`{"position":2,"athlete":"Mary Major","swim":{"time":"00:24:55","rank":1},` +
		`"bike":{"time":"02:12:15","rank":2},"run":{"time":"01:19:05","rank":1},` +
		`"overall":"04:00:15","ptoPts":90.1}` +
		`]`
	if string(data) != want {
		t.Errorf("results =\n%s\nwant\n%s", data, want)
	}

	info, err := json.Marshal(doc.RaceInfo)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	wantInfo := `{"name":"IRONMAN 70.3 Valdivia","location":"Valdivia, Chile","tier":"Silver",` +
		`"prizeMoney":{"amount":10000,"currency":"USD"}}`
	if string(info) != wantInfo {
		t.Errorf("raceInfo =\n%s\nwant\n%s", info, wantInfo)
	}
}

func TestParseRace_MenWithTransitions(t *testing.T) {
	s := New(Config{})
	doc, err := s.parseRace(strings.NewReader(menTransitionPage))
	if err != nil {
		t.Fatalf("parseRace() error: %v", err)
	}

	if len(doc.TriathlonResults) != 1 {
		t.Fatalf("got %d gender sections, want 1 (catch-up heading must not match)", len(doc.TriathlonResults))
	}

	section := doc.TriathlonResults[0]
	if section.Gender != "Men" {
		t.Errorf("Gender = %q, want Men", section.Gender)
	}
	if section.SOF != nil {
		t.Errorf("SOF = %v, want nil", *section.SOF)
	}
	if section.Date == nil || *section.Date != "2025-06-15" {
		t.Errorf("Date = %v, want 2025-06-15", section.Date)
	}
	if len(section.Results) != 1 {
		t.Fatalf("got %d results, want 1", len(section.Results))
	}

	athlete := section.Results[0]
	if athlete.T1 == nil || athlete.T2 == nil {
		t.Fatal("expected t1 and t2 to be present")
	}
	if athlete.T1.Time == nil || *athlete.T1.Time != "00:00:45" {
		t.Errorf("T1 = %v, want 00:00:45", athlete.T1.Time)
	}
	if athlete.T2.Time != nil {
		t.Errorf("T2 = %q, want nil for empty cell", *athlete.T2.Time)
	}
	if athlete.Bike.Time == nil || *athlete.Bike.Time != "01:05:30" {
		t.Errorf("Bike.Time = %v, want 01:05:30", athlete.Bike.Time)
	}
	if athlete.Run.Rank == nil || *athlete.Run.Rank != 5 {
		t.Errorf("Run.Rank = %v, want 5 from the parenthesised annotation", athlete.Run.Rank)
	}
	if athlete.Overall == nil || *athlete.Overall != "01:57:12" {
		t.Errorf("Overall = %v, want 01:57:12", athlete.Overall)
	}
	if !math.IsNaN(float64(athlete.PtoPts)) {
		t.Errorf("PtoPts = %v, want NaN", athlete.PtoPts)
	}

	data, err := json.Marshal(athlete)
	if err != nil {
		t.Fatalf("Marshal() error: %v", err)
	}
	want := `{"position":1,"athlete":"John Roe","swim":{"time":"00:20:01","rank":2},` +
		`"t1":"00:00:45","bike":{"time":"01:05:30","rank":1},"t2":null,` +
		`"run":{"time":"00:30:10","rank":5},"overall":"01:57:12","ptoPts":null}`
	if string(data) != want {
		t.Errorf("athlete =\n%s\nwant\n%s", data, want)
	}
}

func TestParseRace_StrictPoints(t *testing.T) {
	s := New(Config{StrictPoints: true})
	_, err := s.parseRace(strings.NewReader(menTransitionPage))
	if err == nil {
		t.Fatal("parseRace() expected error for non-numeric points")
	}
	if !errors.Is(err, ErrInvalidPoints) {
		t.Errorf("error = %v, want ErrInvalidPoints", err)
	}
}

func TestParseRace_NoSections(t *testing.T) {
	s := New(Config{})
	doc, err := s.parseRace(strings.NewReader(`<html><body><h1>Empty Race</h1><h2>Overview</h2></body></html>`))
	if err != nil {
		t.Fatalf("parseRace() error: %v", err)
	}

	if doc.RaceInfo.Name != "Empty Race" {
		t.Errorf("Name = %q, want Empty Race", doc.RaceInfo.Name)
	}
	if doc.TriathlonResults == nil || len(doc.TriathlonResults) != 0 {
		t.Errorf("TriathlonResults = %v, want empty slice", doc.TriathlonResults)
	}
}

func TestHasTransitions(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   bool
	}{
		{"td T1", `<table><tr><td>Swim</td><td>T1</td></tr></table>`, true},
		{"th T1", `<table><tr><th>Swim</th><th>T1 </th></tr></table>`, true},
		{"no T1", `<table><tr><td>Swim</td><td>Bike</td></tr></table>`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustDocument(t, tt.header)
			if got := hasTransitions(doc.Find("tr").First()); got != tt.want {
				t.Errorf("hasTransitions() = %v, want %v", got, tt.want)
			}
		})
	}
}
