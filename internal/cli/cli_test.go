package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eugeniobenito/Triathlon-Updates/internal/race"
)

const indexPage = `
<html><body>
	<div class="race-name-and-tier">
		<a class="racename" href="/race/challenge-roth/2024/results"><span><b>Challenge Roth</b></span></a>
		<span>Long distance</span>
	</div>
	<div class="race-name-and-tier">
		<a class="racename" href="/race/supertri-london/2024/results"><span><b>Supertri London</b></span></a>
		<span>Short course</span>
	</div>
</body></html>
`

const brokenIndexPage = `
<html><body>
	<div class="race-name-and-tier">
		<a class="racename" href="/race/challenge-roth/2024/results"><span><b>Challenge Roth</b></span></a>
		<span>Long distance</span>
	</div>
	<div class="race-name-and-tier">
		<a class="racename" href="/race/broken/2024/results"><span><b>Broken Race</b></span></a>
		<span>Middle distance</span>
	</div>
</body></html>
`

const rothPage = `
<html><body>
	<h1>Challenge Roth</h1>
	<div class="race-info"><div><div><b>Date:</b> 07 Jul 2024</div></div></div>
	<div class="section-bottom">
		<div class="d-flex"><h2>Women</h2><span class="h3">SOF: 80.1</span></div>
		<table>
			<tr><td>#</td><td>Athlete</td><td>Swim</td><td>Bike</td><td>Run</td><td>Overall</td><td>PTO Pts</td></tr>
			<tr>
				<td>1</td>
				<td><span class="name">Jane Doe</span></td>
				<td data-sort="1">50:01 (1)</td>
				<td data-sort="1">4:30:00 (1)</td>
				<td data-sort="2">2:50:00 (2)</td>
				<td>8:13:01</td>
				<td>98.5</td>
			</tr>
		</table>
	</div>
</body></html>
`

func newSite(t *testing.T, index string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/results", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(index))
	})
	mux.HandleFunc("/race/challenge-roth/2024/results", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(rothPage))
	})
	mux.HandleFunc("/race/broken/2024/results", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func baseArgs(server *httptest.Server, dir string) []string {
	return []string{
		"--base-url", server.URL,
		"--year", "2024",
		"--output-dir", dir,
		"--tracked-file", filepath.Join(dir, "tracked_races.json"),
		"--log-level", "error",
	}
}

func run(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestCheck_NewRacesThenNone(t *testing.T) {
	server := newSite(t, indexPage)
	dir := t.TempDir()

	args := append([]string{"check", "--update-tracked"}, baseArgs(server, dir)...)

	code, stdout, stderr := run(t, args...)
	if code != ExitNewRaces {
		t.Fatalf("first run exit = %d, want %d (stderr: %s)", code, ExitNewRaces, stderr)
	}
	if !strings.Contains(stdout, "NEW: Challenge Roth") {
		t.Errorf("stdout = %q, want the new race listed", stdout)
	}
	if strings.Contains(stdout, "Supertri") {
		t.Error("short course race should not be reported")
	}

	data, err := os.ReadFile(filepath.Join(dir, "challenge_roth.json"))
	if err != nil {
		t.Fatalf("race document not written: %v", err)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("race document is not valid JSON: %v", err)
	}
	if _, ok := doc["raceInfo"]; !ok {
		t.Error("race document is missing raceInfo")
	}
	if _, err := os.Stat(filepath.Join(dir, "new_races.json")); err != nil {
		t.Errorf("new races file not written: %v", err)
	}

	code, stdout, _ = run(t, args...)
	if code != ExitSuccess {
		t.Fatalf("second run exit = %d, want %d", code, ExitSuccess)
	}
	if !strings.Contains(stdout, "No new races found.") {
		t.Errorf("stdout = %q, want no new races", stdout)
	}
}

func TestCheck_JSONReportsFailures(t *testing.T) {
	server := newSite(t, brokenIndexPage)
	dir := t.TempDir()

	args := append([]string{"check", "--format", "json", "--workers", "2"}, baseArgs(server, dir)...)

	code, stdout, stderr := run(t, args...)
	if code != ExitNewRaces {
		t.Fatalf("exit = %d, want %d (stderr: %s)", code, ExitNewRaces, stderr)
	}

	var result OutputResult
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, stdout)
	}
	if result.RaceCount != 2 {
		t.Errorf("race_count = %d, want 2", result.RaceCount)
	}
	if len(result.Written) != 1 || result.Written[0].Race.Name != "Challenge Roth" {
		t.Errorf("written = %+v, want Challenge Roth only", result.Written)
	}
	if len(result.Failed) != 1 || result.Failed[0].Name != "Broken Race" {
		t.Errorf("failed = %+v, want Broken Race", result.Failed)
	}

	// Tracked file is left alone without --update-tracked
	if _, err := os.Stat(filepath.Join(dir, "tracked_races.json")); !os.IsNotExist(err) {
		t.Error("tracked file should not be created")
	}
}

func TestCheck_IsDefaultCommand(t *testing.T) {
	server := newSite(t, indexPage)
	dir := t.TempDir()

	code, _, stderr := run(t, baseArgs(server, dir)...)
	if code != ExitNewRaces {
		t.Fatalf("exit = %d, want %d (stderr: %s)", code, ExitNewRaces, stderr)
	}
}

func TestCheck_IndexFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	code, _, stderr := run(t, append([]string{"check"}, baseArgs(server, t.TempDir())...)...)
	if code != ExitError {
		t.Fatalf("exit = %d, want %d", code, ExitError)
	}
	if !strings.Contains(stderr, "Error:") {
		t.Errorf("stderr = %q, want an error message", stderr)
	}
}

func TestList(t *testing.T) {
	server := newSite(t, indexPage)

	code, stdout, stderr := run(t, append([]string{"list", "--format", "json"}, baseArgs(server, t.TempDir())...)...)
	if code != ExitSuccess {
		t.Fatalf("exit = %d, want %d (stderr: %s)", code, ExitSuccess, stderr)
	}

	var races []race.Race
	if err := json.Unmarshal([]byte(stdout), &races); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	want := race.Race{Name: "Challenge Roth", Link: server.URL + "/race/challenge-roth/2024/results"}
	if len(races) != 1 || races[0] != want {
		t.Errorf("races = %+v, want [%+v]", races, want)
	}
}

func TestExtract_Stdout(t *testing.T) {
	server := newSite(t, indexPage)
	dir := t.TempDir()

	args := append([]string{"extract", "--stdout", server.URL + "/race/challenge-roth/2024/results"}, baseArgs(server, dir)...)
	code, stdout, stderr := run(t, args...)
	if code != ExitSuccess {
		t.Fatalf("exit = %d, want %d (stderr: %s)", code, ExitSuccess, stderr)
	}
	if !strings.Contains(stdout, `"name": "Challenge Roth"`) {
		t.Errorf("stdout = %q, want the race document", stdout)
	}
	if !strings.Contains(stdout, `"date": "2024-07-07"`) {
		t.Errorf("stdout = %q, want the section date", stdout)
	}
	if _, err := os.Stat(filepath.Join(dir, "challenge_roth.json")); !os.IsNotExist(err) {
		t.Error("--stdout should not write files")
	}
}

func TestExtract_AllFailed(t *testing.T) {
	server := newSite(t, indexPage)

	args := append([]string{"extract", server.URL + "/race/broken/2024/results"}, baseArgs(server, t.TempDir())...)
	if code, _, _ := run(t, args...); code != ExitError {
		t.Errorf("exit = %d, want %d", code, ExitError)
	}
}

func TestInvalidSettings(t *testing.T) {
	server := newSite(t, indexPage)

	tests := []struct {
		name string
		args []string
	}{
		{name: "format", args: []string{"check", "--format", "xml"}},
		{name: "log level", args: []string{"check", "--log-level", "loud"}},
		{name: "workers", args: []string{"check", "--workers", "0"}},
		{name: "notifier", args: []string{"check", "--notify", "carrier-pigeon"}},
		{name: "missing config file", args: []string{"check", "--config", "/nonexistent/config.yaml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Invalid values come last so they override the base arguments
			args := append(tt.args[:1:1], baseArgs(server, t.TempDir())...)
			args = append(args, tt.args[1:]...)
			if code, _, _ := run(t, args...); code != ExitError {
				t.Errorf("exit = %d, want %d", code, ExitError)
			}
		})
	}
}
