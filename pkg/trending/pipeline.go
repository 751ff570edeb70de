package trending

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/trendtower/pkg/errors"
	"github.com/matzehuels/trendtower/pkg/httputil"
	"github.com/matzehuels/trendtower/pkg/observability"
)

// defaultWorkers bounds enrichment concurrency per language. Kept small:
// the detail source enforces an external call quota and the listing page
// caps out at 25 rows anyway.
const defaultWorkers = 4

// PipelineConfig tunes a Pipeline. The zero value gets sensible defaults.
type PipelineConfig struct {
	// Retry is the backoff schedule applied to rate-limited or timed-out
	// detail lookups. Zero value means httputil.DefaultPolicy.
	Retry httputil.Policy

	// Workers bounds concurrent detail lookups within one language run.
	Workers int

	// Logger receives debug output. Nil discards.
	Logger *log.Logger
}

// Pipeline runs the per-language fetch-and-merge flow: one listing page,
// truncated to quota, each retained row enriched through the detail source.
type Pipeline struct {
	listing ListingSource
	detail  DetailSource
	retry   httputil.Policy
	workers int
	logger  *log.Logger
}

// NewPipeline creates a pipeline over the two sources.
func NewPipeline(listing ListingSource, detail DetailSource, cfg PipelineConfig) *Pipeline {
	retry := cfg.Retry
	if retry.MaxAttempts == 0 {
		retry = httputil.DefaultPolicy()
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Pipeline{
		listing: listing,
		detail:  detail,
		retry:   retry,
		workers: workers,
		logger:  logger,
	}
}

// Run executes one per-language aggregation: fetch the listing page, keep
// the first quota rows, enrich them, and rank them 1..n in page order.
// A quota of 0 short-circuits without calling any collaborator, and an
// empty listing page returns an empty slice with no error.
func (p *Pipeline) Run(ctx context.Context, language string, quota int, timeframe Timeframe) ([]Entry, error) {
	if quota <= 0 {
		return nil, nil
	}
	rows, err := p.FetchListing(ctx, language, timeframe)
	if err != nil {
		return nil, err
	}
	if len(rows) > quota {
		rows = rows[:quota]
	}
	return p.Enrich(ctx, language, rows), nil
}

// FetchListing retrieves the full listing page for a language. The page is
// authoritative for rank order. Transport failures surface as
// SOURCE_UNAVAILABLE; an empty page is a valid result.
func (p *Pipeline) FetchListing(ctx context.Context, language string, timeframe Timeframe) ([]ListingRow, error) {
	start := time.Now()
	rows, err := p.listing.FetchPage(ctx, language, timeframe)
	observability.Aggregation().OnListingFetch(ctx, languageLabel(language), string(timeframe), len(rows), time.Since(start), err)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSourceUnavailable, err,
			"fetch trending page for %s", languageLabel(language))
	}
	p.logger.Debug("fetched trending page",
		"language", languageLabel(language),
		"timeframe", timeframe,
		"rows", len(rows),
		"duration", time.Since(start).Round(time.Millisecond))
	return rows, nil
}

// Enrich looks up detail metadata for each row through a bounded worker
// pool and returns entries ranked 1..len(rows) in row order. Enrichment
// failures degrade the affected entry to listing-only fields; they never
// remove it or abort the run.
func (p *Pipeline) Enrich(ctx context.Context, language string, rows []ListingRow) []Entry {
	entries := make([]Entry, len(rows))

	var g errgroup.Group
	g.SetLimit(p.workers)
	for i, row := range rows {
		i, row := i, row
		g.Go(func() error {
			entries[i] = p.enrichRow(ctx, language, row, i+1)
			return nil
		})
	}
	_ = g.Wait() // workers degrade instead of failing

	return entries
}

func (p *Pipeline) enrichRow(ctx context.Context, language string, row ListingRow, rank int) Entry {
	entry := entryFromListing(language, row, rank)

	start := time.Now()
	rec, err := p.lookup(ctx, entry.FullName)
	observability.Aggregation().OnEnrich(ctx, entry.FullName, err == nil, time.Since(start))
	if err != nil {
		p.logger.Debug("detail lookup degraded",
			"repo", entry.FullName,
			"code", errors.GetCode(err),
			"err", err)
		return entry
	}

	// Detail fields are authoritative where present.
	if rec.Description != "" {
		entry.Description = rec.Description
	}
	if rec.HTMLURL != "" {
		entry.RepoURL = rec.HTMLURL
	}
	entry.StarsTotal = rec.Stars
	entry.ForksTotal = rec.Forks
	entry.UpdatedAt = rec.UpdatedAt
	entry.DetailEnriched = true
	return entry
}

// lookup applies the retry policy to a single detail lookup. Only quota
// and timeout errors are retried; "not found" degrades immediately.
func (p *Pipeline) lookup(ctx context.Context, fullName string) (*DetailRecord, error) {
	var rec *DetailRecord
	err := p.retry.Do(ctx, func() error {
		r, err := p.detail.Lookup(ctx, fullName)
		if err != nil {
			switch errors.GetCode(err) {
			case errors.ErrCodeRateLimited, errors.ErrCodeTimeout:
				return httputil.Retryable(err)
			}
			return err
		}
		rec = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func entryFromListing(language string, row ListingRow, rank int) Entry {
	return Entry{
		FullName:        row.FullName(),
		Owner:           row.Owner,
		Name:            row.Name,
		RepoURL:         "https://github.com/" + row.FullName(),
		Rank:            rank,
		Language:        languageLabel(language),
		Description:     row.Description,
		PrimaryLanguage: row.PrimaryLanguage,
		StarsTotal:      row.StarsTotal,
		ForksTotal:      row.ForksTotal,
		StarsInPeriod:   row.StarsInPeriod,
		PeriodLabel:     row.PeriodLabel,
	}
}

// languageLabel renders the internal sentinel as the user-facing "all".
func languageLabel(language string) string {
	if language == AllLanguages {
		return AllLanguagesLabel
	}
	return language
}
