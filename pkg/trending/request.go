package trending

import (
	"github.com/matzehuels/trendtower/pkg/errors"
)

// NewRequest canonicalizes and validates raw request parameters.
//
// Languages are case-folded and alias-resolved exactly once here;
// downstream components only ever see canonical ids. A request naming
// "all" anywhere (or naming no language) collapses to the unfiltered
// pull. Two spellings resolving to the same canonical id are rejected
// rather than silently doubling that language's quota.
//
// A limit of 0 resolves to DefaultLimit; an empty timeframe resolves to
// DefaultTimeframe. Anything out of range is an INVALID_* error and no
// collaborator is ever called for the request.
func NewRequest(rawLanguages []string, limit int, rawTimeframe string) (Request, error) {
	timeframe, err := ParseTimeframe(rawTimeframe)
	if err != nil {
		return Request{}, err
	}

	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < 0 {
		return Request{}, errors.New(errors.ErrCodeInvalidLimit, "limit must be positive (got %d)", limit)
	}
	if limit > MaxLimit {
		return Request{}, errors.New(errors.ErrCodeInvalidLimit, "limit cannot exceed %d (got %d)", MaxLimit, limit)
	}

	var (
		languages []string
		seen      = make(map[string]bool)
		allMode   bool
	)
	for _, raw := range rawLanguages {
		if normalizeToken(raw) == "" {
			continue
		}
		canonical, err := CanonicalLanguage(raw)
		if err != nil {
			return Request{}, err
		}
		if canonical == AllLanguages {
			allMode = true
			continue
		}
		if seen[canonical] {
			return Request{}, errors.New(errors.ErrCodeInvalidLanguage,
				"language %q requested more than once (resolves to %q)", raw, canonical)
		}
		seen[canonical] = true
		languages = append(languages, canonical)
	}

	// "all" anywhere in the list wins: the limit applies to a single
	// unfiltered pull, matching the trending page itself.
	if allMode {
		languages = nil
	}

	return Request{Languages: languages, Limit: limit, Timeframe: timeframe}, nil
}

// IsAllMode reports whether the request is an unfiltered pull.
func (r Request) IsAllMode() bool {
	return len(r.Languages) == 0
}

// ResolvedLanguages returns the user-facing language list for result
// metadata: canonical ids, or ["all"] for an unfiltered pull.
func (r Request) ResolvedLanguages() []string {
	if r.IsAllMode() {
		return []string{AllLanguagesLabel}
	}
	out := make([]string, len(r.Languages))
	copy(out, r.Languages)
	return out
}
