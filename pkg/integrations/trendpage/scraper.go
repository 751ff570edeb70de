package trendpage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/matzehuels/trendtower/pkg/cache"
	"github.com/matzehuels/trendtower/pkg/errors"
	"github.com/matzehuels/trendtower/pkg/httputil"
	"github.com/matzehuels/trendtower/pkg/integrations"
	"github.com/matzehuels/trendtower/pkg/trending"
)

const defaultBaseURL = "https://github.com"

// Config tunes a Scraper. The zero value scrapes the public site with
// no cache.
type Config struct {
	// BaseURL overrides the site root. Used by tests.
	BaseURL string

	// Cache stores parsed pages between runs. Nil disables caching.
	Cache cache.Cache

	// CacheTTL bounds how old a cached page may be. Trending pages
	// refresh upstream on their own cadence, so short TTLs are fine.
	CacheTTL time.Duration
}

// Scraper fetches and parses trending listing pages. It implements the
// listing side of the aggregation pipeline: one HTML page per language
// and time window, parsed into rows in page order. The page markup is
// the contract; rows the parser cannot identify are skipped rather than
// failing the whole page.
type Scraper struct {
	api     *integrations.Client
	baseURL string
}

// NewScraper creates a listing scraper.
func NewScraper(cfg Config) *Scraper {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Scraper{
		api:     integrations.NewClient(cfg.Cache, cfg.CacheTTL, nil),
		baseURL: baseURL,
	}
}

// FetchPage retrieves the trending page for a language and time window.
// The empty language means the unfiltered page. An empty result is
// valid; unpopular language pages legitimately list nothing.
func (s *Scraper) FetchPage(ctx context.Context, language string, timeframe trending.Timeframe) ([]trending.ListingRow, error) {
	pageURL := s.pageURL(language, timeframe)
	key := fmt.Sprintf("trending:%s:%s", language, timeframe)

	var rows []trending.ListingRow
	err := s.api.Cached(ctx, key, &rows, func() error {
		return httputil.RetryWithBackoff(ctx, func() error {
			html, err := s.api.GetText(ctx, pageURL)
			if err != nil {
				return err
			}
			rows, err = parsePage(html)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Scraper) pageURL(language string, timeframe trending.Timeframe) string {
	path := s.baseURL + "/trending"
	if language != trending.AllLanguages {
		path += "/" + url.PathEscape(language)
	}
	return path + "?since=" + string(timeframe)
}

// parsePage extracts listing rows from trending page HTML. Row order is
// preserved; it is the rank order downstream.
func parsePage(html string) ([]trending.ListingRow, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeSourceUnavailable, err, "parse trending page")
	}

	var rows []trending.ListingRow
	doc.Find("article.Box-row").Each(func(_ int, article *goquery.Selection) {
		row, ok := parseRow(article)
		if ok {
			rows = append(rows, row)
		}
	})
	return rows, nil
}

func parseRow(article *goquery.Selection) (trending.ListingRow, bool) {
	href, _ := article.Find("h2 a").First().Attr("href")
	owner, name, ok := splitRepoHref(href)
	if !ok {
		return trending.ListingRow{}, false
	}

	row := trending.ListingRow{
		Owner:           owner,
		Name:            name,
		Description:     cleanText(article.Find("p").First().Text()),
		PrimaryLanguage: cleanText(article.Find("[itemprop=programmingLanguage]").First().Text()),
	}

	article.Find("a.Link--muted").Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		switch {
		case strings.HasSuffix(href, "/stargazers"):
			row.StarsTotal = parseCount(link.Text())
		case strings.HasSuffix(href, "/forks"), strings.HasSuffix(href, "/network/members"):
			row.ForksTotal = parseCount(link.Text())
		}
	})

	if delta := cleanText(article.Find("span.d-inline-block.float-sm-right").First().Text()); delta != "" {
		count := parseCount(delta)
		row.StarsInPeriod = &count
		row.PeriodLabel = periodLabel(delta)
	}
	return row, true
}

// splitRepoHref turns "/owner/repo" into its parts.
func splitRepoHref(href string) (owner, name string, ok bool) {
	href = strings.TrimPrefix(strings.TrimSpace(href), "/")
	owner, name, found := strings.Cut(href, "/")
	if !found || owner == "" || name == "" || strings.Contains(name, "/") {
		return "", "", false
	}
	return owner, name, true
}

// parseCount reads a count like "12,345" out of mixed text. Unparseable
// text counts as zero.
func parseCount(text string) int {
	n := 0
	seen := false
	for _, r := range text {
		switch {
		case r >= '0' && r <= '9':
			n = n*10 + int(r-'0')
			seen = true
		case r == ',':
			// thousands separator
		default:
			if seen {
				return n
			}
		}
	}
	if !seen {
		return 0
	}
	return n
}

// periodLabel strips the leading count from a delta like
// "1,234 stars today", leaving "stars today".
func periodLabel(delta string) string {
	i := strings.IndexFunc(delta, func(r rune) bool {
		return !(r >= '0' && r <= '9' || r == ',')
	})
	if i < 0 {
		return ""
	}
	return cleanText(delta[i:])
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

var _ trending.ListingSource = (*Scraper)(nil)
