// Package cli implements the trendtower command-line interface.
package cli

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/trendtower/pkg/buildinfo"
	"github.com/matzehuels/trendtower/pkg/cache"
	"github.com/matzehuels/trendtower/pkg/integrations/github"
	"github.com/matzehuels/trendtower/pkg/integrations/trendpage"
	"github.com/matzehuels/trendtower/pkg/trending"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "trendtower"

	// defaultCacheTTL bounds how long scraped pages and repository
	// records are reused between runs.
	defaultCacheTTL = time.Hour
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "trendtower",
		Short:        "Trendtower aggregates trending GitHub repositories",
		Long:         `Trendtower fetches trending repository listings for one or more languages and time windows, enriches them with repository metadata from the GitHub API, and serves the merged ranking on the command line or over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.fetchCommand())
	root.AddCommand(c.languagesCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Service Factory
// =============================================================================

// newService wires the two upstream sources into the aggregation facade.
func (c *CLI) newService(token string, noCache bool) *trending.Service {
	store := newCache(noCache)
	listing := trendpage.NewScraper(trendpage.Config{Cache: store, CacheTTL: defaultCacheTTL})
	detail := github.NewClient(github.Config{Token: token, Cache: store, CacheTTL: defaultCacheTTL})
	return trending.NewService(listing, detail, trending.PipelineConfig{Logger: c.Logger})
}

func newCache(noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache()
	}
	store, err := cache.NewFileCache(dir)
	if err != nil {
		return cache.NewNullCache()
	}
	return store
}

// githubToken resolves the detail-source credential from the
// environment. Empty means anonymous access with the low hourly quota.
func githubToken() string {
	if tok := os.Getenv("GITHUB_TOKEN"); tok != "" {
		return tok
	}
	return os.Getenv("GITHUB_PAT")
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/trendtower/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
