// Package runner drives a scrape run: it lists the races on the results index, diffs
// them against the tracked races, extracts every new race page and writes one document
// per race. Page tasks run in a bounded group that is always joined before a run
// returns; a failed page is logged and skipped without stopping the others.
package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/eugeniobenito/Triathlon-Updates/internal/logger"
	"github.com/eugeniobenito/Triathlon-Updates/internal/notifier"
	"github.com/eugeniobenito/Triathlon-Updates/internal/race"
	"golang.org/x/sync/errgroup"
)

// Metric names
const (
	MetricRacesListed   = "races.listed"
	MetricRacesNew      = "races.new"
	MetricPagesFetched  = "pages.fetched"
	MetricPagesFailed   = "pages.failed"
	MetricRacesWritten  = "races.written"
	MetricWritesFailed  = "writes.failed"
	MetricPageExtract   = "page.extract"
	MetricNotifyFailed  = "notify.failed"
	MetricTrackedUpdate = "tracked.updated"
)

// Fetcher retrieves and parses pages
type Fetcher interface {
	FetchRace(ctx context.Context, pageURL string) (*race.Document, error)
	FetchRaceList(ctx context.Context, indexURL string) ([]race.Race, error)
}

// Store persists tracked races and race documents
type Store interface {
	LoadTracked() ([]race.Race, error)
	SaveTracked(races []race.Race) error
	SaveCandidates(name string, races []race.Race) (string, error)
	SaveDocument(doc *race.Document, fallbackName string) (string, error)
}

// Options configures a Runner
type Options struct {
	IndexURL      string
	NewRacesFile  string
	Workers       int
	UpdateTracked bool
	Notifier      notifier.Notifier
	Metrics       *logger.Metrics
}

// Runner coordinates the scraper and storage
type Runner struct {
	fetcher Fetcher
	store   Store
	opts    Options
}

// New creates a Runner. Workers below 1 run pages one at a time.
func New(fetcher Fetcher, store Store, opts Options) *Runner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Metrics == nil {
		opts.Metrics = logger.DefaultMetrics()
	}
	return &Runner{
		fetcher: fetcher,
		store:   store,
		opts:    opts,
	}
}

// Written is a race whose document was saved
type Written struct {
	Race race.Race `json:"race"`
	Path string    `json:"path"`
}

// Report summarises a check run
type Report struct {
	CheckedAt     time.Time   `json:"checked_at"`
	IndexURL      string      `json:"index_url"`
	Listed        int         `json:"listed"`
	NewRaces      []race.Race `json:"new_races"`
	CandidatesAt  string      `json:"candidates_file,omitempty"`
	Written       []Written   `json:"written"`
	Failed        []race.Race `json:"failed"`
	TrackedUpdate bool        `json:"tracked_updated"`
}

// ListRaces fetches the filtered, de-duplicated race list
func (r *Runner) ListRaces(ctx context.Context) ([]race.Race, error) {
	races, err := r.fetcher.FetchRaceList(ctx, r.opts.IndexURL)
	if err != nil {
		return nil, fmt.Errorf("fetching race list: %w", err)
	}
	r.opts.Metrics.SetGauge(MetricRacesListed, float64(len(races)))
	return races, nil
}

// ExtractRace fetches and parses one race page. Failures are logged and reported
// as a nil document.
func (r *Runner) ExtractRace(ctx context.Context, link string) *race.Document {
	start := time.Now()
	doc, err := r.fetcher.FetchRace(ctx, link)
	r.opts.Metrics.RecordTiming(MetricPageExtract, time.Since(start))

	if err != nil {
		r.opts.Metrics.IncrCounter(MetricPagesFailed)
		logger.Error("Race page failed", logger.Fields{"url": link}, err)
		return nil
	}

	r.opts.Metrics.IncrCounter(MetricPagesFetched)
	logger.Debug("Race page parsed", logger.Fields{
		"url":      link,
		"race":     docName(doc),
		"sections": len(doc.TriathlonResults),
	})
	return doc
}

// Check lists the races, extracts every race not yet tracked and writes the
// documents. Listing or tracked-file failures abort the run; per-race failures
// are logged and reported in Report.Failed.
func (r *Runner) Check(ctx context.Context) (*Report, error) {
	report := &Report{
		CheckedAt: time.Now().UTC(),
		IndexURL:  r.opts.IndexURL,
		NewRaces:  []race.Race{},
		Written:   []Written{},
		Failed:    []race.Race{},
	}

	listed, err := r.ListRaces(ctx)
	if err != nil {
		return nil, err
	}
	report.Listed = len(listed)

	tracked, err := r.store.LoadTracked()
	if err != nil {
		return nil, fmt.Errorf("loading tracked races: %w", err)
	}

	report.NewRaces = race.NewRaces(listed, tracked)
	r.opts.Metrics.SetGauge(MetricRacesNew, float64(len(report.NewRaces)))

	if len(report.NewRaces) == 0 {
		logger.Info("No new races found.", logger.Fields{"listed": len(listed)})
		return report, nil
	}

	if path, err := r.store.SaveCandidates(r.opts.NewRacesFile, report.NewRaces); err != nil {
		r.opts.Metrics.IncrCounter(MetricWritesFailed)
		logger.Error("Saving new races failed", logger.Fields{"file": r.opts.NewRacesFile}, err)
	} else {
		report.CandidatesAt = path
		logger.Info("New races have been written", logger.Fields{"path": path, "count": len(report.NewRaces)})
	}

	docs := r.extractAll(ctx, report)

	r.notify(docs)

	if r.opts.UpdateTracked && len(report.Written) > 0 {
		done := make([]race.Race, 0, len(report.Written))
		for _, w := range report.Written {
			done = append(done, w.Race)
		}
		if err := r.store.SaveTracked(race.Merge(tracked, done)); err != nil {
			r.opts.Metrics.IncrCounter(MetricWritesFailed)
			logger.Error("Updating tracked races failed", nil, err)
		} else {
			report.TrackedUpdate = true
			r.opts.Metrics.IncrCounter(MetricTrackedUpdate)
		}
	}

	return report, ctx.Err()
}

// extractAll runs one task per new race and waits for all of them. Results are
// recorded in race-list order.
func (r *Runner) extractAll(ctx context.Context, report *Report) []*race.Document {
	type outcome struct {
		doc  *race.Document
		path string
	}
	outcomes := make([]outcome, len(report.NewRaces))

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)

	for i, candidate := range report.NewRaces {
		i, candidate := i, candidate
		g.Go(func() error {
			doc := r.ExtractRace(gctx, candidate.Link)
			if doc == nil {
				return nil
			}

			path, err := r.store.SaveDocument(doc, candidate.Name)
			if err != nil {
				r.opts.Metrics.IncrCounter(MetricWritesFailed)
				logger.Error("Writing race document failed", logger.Fields{"race": candidate.Name}, err)
				return nil
			}

			r.opts.Metrics.IncrCounter(MetricRacesWritten)
			logger.Info("Data has been written", logger.Fields{"race": candidate.Name, "path": path})

			mu.Lock()
			outcomes[i] = outcome{doc: doc, path: path}
			mu.Unlock()
			return nil
		})
	}

	// Tasks never return errors, so Wait only joins them
	_ = g.Wait()

	docs := make([]*race.Document, 0, len(outcomes))
	for i, o := range outcomes {
		if o.doc == nil {
			report.Failed = append(report.Failed, report.NewRaces[i])
			continue
		}
		report.Written = append(report.Written, Written{Race: report.NewRaces[i], Path: o.path})
		docs = append(docs, o.doc)
	}
	return docs
}

// notify announces written documents; failures are logged only
func (r *Runner) notify(docs []*race.Document) {
	if r.opts.Notifier == nil || len(docs) == 0 {
		return
	}
	if err := r.opts.Notifier.Notify(docs); err != nil {
		r.opts.Metrics.IncrCounter(MetricNotifyFailed)
		logger.Error("Announcing new races failed", logger.Fields{"count": len(docs)}, err)
	}
}

// Extract runs the page driver on explicit URLs and writes each document.
// When write is false, documents are returned without being persisted.
func (r *Runner) Extract(ctx context.Context, links []string, write bool) ([]*race.Document, []Written) {
	docs := make([]*race.Document, len(links))
	paths := make([]string, len(links))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)

	for i, link := range links {
		i, link := i, link
		g.Go(func() error {
			doc := r.ExtractRace(gctx, link)
			if doc == nil {
				return nil
			}
			docs[i] = doc

			if !write {
				return nil
			}
			path, err := r.store.SaveDocument(doc, "")
			if err != nil {
				r.opts.Metrics.IncrCounter(MetricWritesFailed)
				logger.Error("Writing race document failed", logger.Fields{"url": link}, err)
				return nil
			}
			r.opts.Metrics.IncrCounter(MetricRacesWritten)
			paths[i] = path
			return nil
		})
	}
	_ = g.Wait()

	extracted := make([]*race.Document, 0, len(docs))
	written := make([]Written, 0, len(docs))
	for i, doc := range docs {
		if doc == nil {
			continue
		}
		extracted = append(extracted, doc)
		if paths[i] != "" {
			written = append(written, Written{
				Race: race.Race{Name: docName(doc), Link: links[i]},
				Path: paths[i],
			})
		}
	}
	return extracted, written
}

func docName(doc *race.Document) string {
	if doc.RaceInfo == nil {
		return ""
	}
	return doc.RaceInfo.Name
}
