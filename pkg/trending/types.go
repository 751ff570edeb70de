package trending

import (
	"context"
	"time"

	"github.com/matzehuels/trendtower/pkg/errors"
)

// Defaults and bounds shared by every transport.
const (
	// DefaultLimit is the number of entries returned when the caller does
	// not specify one.
	DefaultLimit = 10

	// MaxLimit is the protective ceiling on any single request.
	MaxLimit = 100

	// AllLanguages is the internal sentinel for an unfiltered pull.
	// Transports render it as "all".
	AllLanguages = ""

	// AllLanguagesLabel is the user-facing spelling of the sentinel.
	AllLanguagesLabel = "all"
)

// Timeframe is a trending time window.
type Timeframe string

// Supported time windows.
const (
	TimeframeDaily   Timeframe = "daily"
	TimeframeWeekly  Timeframe = "weekly"
	TimeframeMonthly Timeframe = "monthly"
)

// DefaultTimeframe is used when the caller does not specify a window.
const DefaultTimeframe = TimeframeDaily

// ParseTimeframe folds and validates a raw timeframe string.
// An empty string resolves to the default window.
func ParseTimeframe(raw string) (Timeframe, error) {
	switch Timeframe(normalizeToken(raw)) {
	case "":
		return DefaultTimeframe, nil
	case TimeframeDaily:
		return TimeframeDaily, nil
	case TimeframeWeekly:
		return TimeframeWeekly, nil
	case TimeframeMonthly:
		return TimeframeMonthly, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidTimeframe,
			"timeframe must be one of daily, weekly, monthly (got %q)", raw)
	}
}

// ListingRow is one repository row scraped from a trending page,
// in page order. Fields the page did not report are zero or nil.
type ListingRow struct {
	Owner           string
	Name            string
	Description     string
	PrimaryLanguage string
	StarsTotal      int
	ForksTotal      int
	StarsInPeriod   *int
	PeriodLabel     string
}

// FullName returns the canonical "owner/name" key for the row.
func (r ListingRow) FullName() string {
	return r.Owner + "/" + r.Name
}

// DetailRecord is the authoritative per-repository metadata returned by
// the detail source.
type DetailRecord struct {
	Description string
	Stars       int
	Forks       int
	UpdatedAt   *time.Time
	HTMLURL     string
}

// ListingSource provides one ordered page of trending rows for a language
// and time window. An unpopular language legitimately yields an empty page;
// implementations return an error only for transport failures.
type ListingSource interface {
	FetchPage(ctx context.Context, language string, timeframe Timeframe) ([]ListingRow, error)
}

// DetailSource provides authoritative metadata for a single repository.
// Implementations signal "not found" with errors.ErrCodeNotFound,
// quota exhaustion with errors.ErrCodeRateLimited, and slow responses
// with errors.ErrCodeTimeout.
type DetailSource interface {
	Lookup(ctx context.Context, fullName string) (*DetailRecord, error)
}

// Entry is one ranked repository in an aggregation result.
type Entry struct {
	FullName        string     `json:"full_name"`
	Owner           string     `json:"owner"`
	Name            string     `json:"name"`
	RepoURL         string     `json:"repo_url"`
	Rank            int        `json:"rank"`
	Language        string     `json:"language"`
	Description     string     `json:"description,omitempty"`
	PrimaryLanguage string     `json:"primary_language,omitempty"`
	StarsTotal      int        `json:"stars_total"`
	ForksTotal      int        `json:"forks_total"`
	StarsInPeriod   *int       `json:"stars_in_period,omitempty"`
	PeriodLabel     string     `json:"period_label,omitempty"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
	DetailEnriched  bool       `json:"detail_enriched"`
}

// Request is a fully canonicalized aggregation request. Build one with
// NewRequest; downstream components assume canonical language ids.
type Request struct {
	// Languages holds distinct canonical ids in caller order.
	// Empty means the unfiltered "all" pull.
	Languages []string `json:"languages,omitempty"`

	// Limit is the total number of entries requested, in [1, MaxLimit].
	Limit int `json:"limit"`

	// Timeframe is the trending window.
	Timeframe Timeframe `json:"timeframe"`
}

// Result is one complete, internally consistent aggregation snapshot.
type Result struct {
	Entries        []Entry   `json:"entries"`
	RequestedLimit int       `json:"requested_limit"`
	Timeframe      Timeframe `json:"timeframe"`
	Languages      []string  `json:"languages"`
	Retrieved      int       `json:"retrieved"`

	// Partial lists languages whose listing fetch failed. The request
	// still succeeds as long as at least one language delivered.
	Partial []string `json:"partial,omitempty"`
}
