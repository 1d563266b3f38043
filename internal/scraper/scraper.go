package scraper

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/eugeniobenito/Triathlon-Updates/internal/race"
)

const (
	DefaultBaseURL = "https://stats.protriathletes.org"
	UserAgent      = "triathlon-updates/1.0 (github.com/eugeniobenito/Triathlon-Updates)"
	Timeout        = 30 * time.Second
)

// ErrUnexpectedStatus is returned when a page responds with anything but 200 OK
var ErrUnexpectedStatus = errors.New("unexpected status code")

// Config controls how the Scraper fetches and parses pages
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration

	// StrictPoints makes a non-numeric ptoPts cell fail the page instead of
	// yielding NaN.
	StrictPoints bool
}

// Scraper handles fetching and parsing race results pages
type Scraper struct {
	client       *http.Client
	baseURL      string
	userAgent    string
	strictPoints bool
}

// New creates a new Scraper instance. Zero fields in cfg take the package defaults.
func New(cfg Config) *Scraper {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = UserAgent
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = Timeout
	}

	return &Scraper{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:    cfg.UserAgent,
		strictPoints: cfg.StrictPoints,
	}
}

// BaseURL returns the site root that relative race links are resolved against
func (s *Scraper) BaseURL() string {
	return s.baseURL
}

// ResultsIndexURL builds the results index URL for a season
func ResultsIndexURL(baseURL string, year int, distance, division string) string {
	params := url.Values{}
	params.Set("year", strconv.Itoa(year))
	params.Set("distance", distance)
	params.Set("tier", "")
	params.Set("sof", "")
	params.Set("division", division)

	return fmt.Sprintf("%s/results?%s", strings.TrimRight(baseURL, "/"), params.Encode())
}

// FetchRace fetches a race results page and parses it into a Document
func (s *Scraper) FetchRace(ctx context.Context, pageURL string) (*race.Document, error) {
	body, err := s.get(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	return s.parseRace(body)
}

// FetchRaceList fetches the results index and returns its non-short-course races
func (s *Scraper) FetchRaceList(ctx context.Context, indexURL string) ([]race.Race, error) {
	body, err := s.get(ctx, indexURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	return s.parseRaceList(body)
}

// get performs the GET request and returns the body of a 200 response
func (s *Scraper) get(ctx context.Context, pageURL string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	return resp.Body, nil
}

// parseRace extracts race info and every gender section from a race page
func (s *Scraper) parseRace(r io.Reader) (*race.Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	info := parseRaceInfo(doc)

	results, err := s.parseResults(doc, info)
	if err != nil {
		return nil, err
	}

	// Dates now live on the gender sections
	info.ClearDates()

	return &race.Document{
		RaceInfo:         info,
		TriathlonResults: results,
	}, nil
}
