package trending

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/trendtower/pkg/errors"
	"github.com/matzehuels/trendtower/pkg/observability"
)

// Service is the stable facade consumed by the CLI, the HTTP server, and
// the stream scheduler. It owns no mutable state beyond its collaborators;
// every FetchTrending call is independent.
type Service struct {
	pipeline *Pipeline
	logger   *log.Logger
}

// NewService creates the facade over the two sources.
func NewService(listing ListingSource, detail DetailSource, cfg PipelineConfig) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Service{
		pipeline: NewPipeline(listing, detail, cfg),
		logger:   logger,
	}
}

// ListLanguages returns the immutable language catalog.
func (s *Service) ListLanguages() Catalog {
	return Languages()
}

// FetchTrending executes one aggregation request end to end:
// allocate per-language quotas, fetch listing pages in parallel,
// plan shortfall redistribution, enrich the retained rows, and assemble
// the final ordered result.
//
// A failed listing fetch for one language degrades to a partial result;
// the request only fails when every language's listing source is down.
// Detail-source failures never fail the request at all.
func (s *Service) FetchTrending(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	if req.Limit < 1 || req.Limit > MaxLimit {
		return nil, errors.New(errors.ErrCodeInvalidLimit,
			"limit must be in [1, %d] (got %d)", MaxLimit, req.Limit)
	}
	if req.Timeframe == "" {
		req.Timeframe = DefaultTimeframe
	}

	order := req.Languages
	if req.IsAllMode() {
		order = []string{AllLanguages}
	}
	quotas := Allocate(req.Limit, req.Languages)

	// Phase 1: listing pages, one per language, in parallel. Languages
	// with quota 0 are skipped entirely.
	listings := make([][]ListingRow, len(order))
	listingErrs := make([]error, len(order))

	var g errgroup.Group
	for i, language := range order {
		if quotas[language] == 0 {
			continue
		}
		i, language := i, language
		g.Go(func() error {
			listings[i], listingErrs[i] = s.pipeline.FetchListing(ctx, language, req.Timeframe)
			return nil
		})
	}
	_ = g.Wait()

	supply := make(map[string]int, len(order))
	var partial []string
	var firstErr error
	failed := 0
	fetched := 0
	for i, language := range order {
		if quotas[language] == 0 {
			continue
		}
		fetched++
		if err := listingErrs[i]; err != nil {
			failed++
			partial = append(partial, languageLabel(language))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		supply[language] = len(listings[i])
	}
	if fetched > 0 && failed == fetched {
		err := errors.Wrap(errors.ErrCodeSourceUnavailable, firstErr,
			"trending listings unavailable for every requested language")
		observability.Aggregation().OnSnapshot(ctx, req.ResolvedLanguages(), 0, time.Since(start), err)
		return nil, err
	}

	// Phase 2: decide contributions (pure), then enrich exactly the rows
	// that will appear in the output. Redistribution means a language can
	// contribute beyond its quota when another under-delivers, so the
	// detail budget is spent on at most req.Limit lookups either way.
	take := Plan(order, supply, quotas, req.Limit)

	groups := make(map[string][]Entry, len(order))
	var eg errgroup.Group
	var mu sync.Mutex
	for i, language := range order {
		n := take[language]
		if n == 0 {
			continue
		}
		language := language
		rows := listings[i][:n]
		eg.Go(func() error {
			entries := s.pipeline.Enrich(ctx, language, rows)
			mu.Lock()
			groups[language] = entries
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()

	entries := Assemble(order, groups, req.Limit)
	result := &Result{
		Entries:        entries,
		RequestedLimit: req.Limit,
		Timeframe:      req.Timeframe,
		Languages:      req.ResolvedLanguages(),
		Retrieved:      len(entries),
		Partial:        partial,
	}

	observability.Aggregation().OnSnapshot(ctx, result.Languages, len(entries), time.Since(start), nil)
	s.logger.Info("aggregated trending repositories",
		"languages", result.Languages,
		"retrieved", len(entries),
		"requested", req.Limit,
		"duration", time.Since(start).Round(time.Millisecond))

	return result, nil
}
