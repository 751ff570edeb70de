package github

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/matzehuels/trendtower/pkg/cache"
	"github.com/matzehuels/trendtower/pkg/errors"
	"github.com/matzehuels/trendtower/pkg/integrations"
	"github.com/matzehuels/trendtower/pkg/trending"
)

const defaultBaseURL = "https://api.github.com"

// Published REST quota: 60 requests per hour anonymous, 5000 with a
// token. The limiter paces proactively so a long run degrades gracefully
// instead of burning the quota in the first seconds.
const (
	anonymousHourlyQuota     = 60
	authenticatedHourlyQuota = 5000
	limiterBurst             = 5
)

// Config tunes a detail client. The zero value talks anonymously to the
// public API with no cache.
type Config struct {
	// Token is a personal access token. Empty means anonymous requests
	// with the much lower hourly quota.
	Token string

	// BaseURL overrides the API root. Used by tests.
	BaseURL string

	// Cache stores repository records between runs. Nil disables caching.
	Cache cache.Cache

	// CacheTTL bounds how old a cached record may be.
	CacheTTL time.Duration

	// Limiter overrides the default quota-derived pacing. Used by tests.
	Limiter *rate.Limiter
}

// Client fetches authoritative per-repository metadata from the GitHub
// REST API. It implements the detail side of the aggregation pipeline:
// cached, paced against the published quota, with stable error codes
// for not-found, quota exhaustion, and timeouts.
type Client struct {
	api     *integrations.Client
	baseURL string
	limiter *rate.Limiter
}

// NewClient creates a detail client. Pass an empty token for
// unauthenticated requests.
func NewClient(cfg Config) *Client {
	headers := map[string]string{
		"Accept":               "application/vnd.github+json",
		"X-GitHub-Api-Version": "2022-11-28",
	}
	if cfg.Token != "" {
		headers["Authorization"] = "Bearer " + cfg.Token
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	limiter := cfg.Limiter
	if limiter == nil {
		quota := anonymousHourlyQuota
		if cfg.Token != "" {
			quota = authenticatedHourlyQuota
		}
		limiter = rate.NewLimiter(rate.Every(time.Hour/time.Duration(quota)), limiterBurst)
	}

	return &Client{
		api:     integrations.NewClient(cfg.Cache, cfg.CacheTTL, headers),
		baseURL: baseURL,
		limiter: limiter,
	}
}

// Quota returns the counter tracking API calls made by this client.
func (c *Client) Quota() *integrations.QuotaCounter {
	return c.api.Quota()
}

// Lookup fetches the repository record for an "owner/repo" name.
// Cached records skip the limiter and the network entirely.
func (c *Client) Lookup(ctx context.Context, fullName string) (*trending.DetailRecord, error) {
	if err := errors.ValidateRepoFullName(fullName); err != nil {
		return nil, err
	}

	var data repoResponse
	err := c.api.Cached(ctx, "github:repo:"+fullName, &data, func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return errors.Wrap(errors.ErrCodeTimeout, err, "pacing wait for %s aborted", fullName)
		}
		return c.api.Get(ctx, c.baseURL+"/repos/"+fullName, &data)
	})
	if err != nil {
		return nil, err
	}

	return &trending.DetailRecord{
		Description: data.Description,
		Stars:       data.Stars,
		Forks:       data.Forks,
		UpdatedAt:   data.PushedAt,
		HTMLURL:     data.HTMLURL,
	}, nil
}

var _ trending.DetailSource = (*Client)(nil)

type repoResponse struct {
	Description string     `json:"description"`
	Stars       int        `json:"stargazers_count"`
	Forks       int        `json:"forks_count"`
	PushedAt    *time.Time `json:"pushed_at"`
	HTMLURL     string     `json:"html_url"`
}
