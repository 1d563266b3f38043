package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	s := New(Config{})

	if s == nil {
		t.Fatal("New() returned nil")
	}
	if s.client == nil {
		t.Error("scraper client is nil")
	}
	if s.client.Timeout != Timeout {
		t.Errorf("client timeout = %v, want %v", s.client.Timeout, Timeout)
	}
	if s.BaseURL() != DefaultBaseURL {
		t.Errorf("BaseURL() = %q, want %q", s.BaseURL(), DefaultBaseURL)
	}
	if s.userAgent != UserAgent {
		t.Errorf("userAgent = %q, want %q", s.userAgent, UserAgent)
	}

	custom := New(Config{BaseURL: "http://localhost:8080/", UserAgent: "test-agent", Timeout: time.Second})
	if custom.BaseURL() != "http://localhost:8080" {
		t.Errorf("BaseURL() = %q, want trailing slash trimmed", custom.BaseURL())
	}
	if custom.client.Timeout != time.Second {
		t.Errorf("client timeout = %v, want 1s", custom.client.Timeout)
	}
}

func TestResultsIndexURL(t *testing.T) {
	got := ResultsIndexURL("https://stats.protriathletes.org/", 2025, "", "BOTH")
	want := "https://stats.protriathletes.org/results?distance=&division=BOTH&sof=&tier=&year=2025"

	if got != want {
		t.Errorf("ResultsIndexURL() = %q, want %q", got, want)
	}
}

func TestFetchRace(t *testing.T) {
	tests := []struct {
		name        string
		htmlContent string
		statusCode  int
		wantError   bool
		wantName    string
	}{
		{
			name:        "successful fetch",
			htmlContent: womenPlainPage,
			statusCode:  http.StatusOK,
			wantName:    "IRONMAN 70.3 Valdivia",
		},
		{
			name:       "HTTP error",
			statusCode: http.StatusNotFound,
			wantError:  true,
		},
		{
			name:        "page without results",
			htmlContent: `<html><body><h1>Race</h1></body></html>`,
			statusCode:  http.StatusOK,
			wantName:    "Race",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if userAgent := r.Header.Get("User-Agent"); !strings.Contains(userAgent, "triathlon-updates") {
					t.Errorf("User-Agent = %q, should contain 'triathlon-updates'", userAgent)
				}

				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.htmlContent))
			}))
			defer server.Close()

			s := New(Config{BaseURL: server.URL})
			doc, err := s.FetchRace(context.Background(), server.URL+"/race/test/2024/results")

			if tt.wantError {
				if err == nil {
					t.Fatal("FetchRace() expected error, got nil")
				}
				if !errors.Is(err, ErrUnexpectedStatus) {
					t.Errorf("FetchRace() error = %v, want ErrUnexpectedStatus", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("FetchRace() unexpected error: %v", err)
			}
			if doc.RaceInfo.Name != tt.wantName {
				t.Errorf("RaceInfo.Name = %q, want %q", doc.RaceInfo.Name, tt.wantName)
			}
		})
	}
}

func TestFetchRaceList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/results" {
			t.Errorf("path = %q, want /results", r.URL.Path)
		}
		if got := r.URL.Query().Get("year"); got != "2024" {
			t.Errorf("year = %q, want 2024", got)
		}
		w.Write([]byte(raceIndexPage))
	}))
	defer server.Close()

	s := New(Config{BaseURL: server.URL})
	races, err := s.FetchRaceList(context.Background(), ResultsIndexURL(server.URL, 2024, "", "BOTH"))
	if err != nil {
		t.Fatalf("FetchRaceList() error: %v", err)
	}

	if len(races) != 2 {
		t.Fatalf("FetchRaceList() returned %d races, want 2", len(races))
	}
	if !strings.HasPrefix(races[0].Link, server.URL+"/race/") {
		t.Errorf("race link = %q, want absolute link on %s", races[0].Link, server.URL)
	}
}

func TestFetchRace_Canceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(womenPlainPage))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(Config{})
	if _, err := s.FetchRace(ctx, server.URL); err == nil {
		t.Error("FetchRace() with canceled context expected error, got nil")
	}
}
