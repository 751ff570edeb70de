package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/trendtower/internal/config"
	"github.com/matzehuels/trendtower/internal/server"
	"github.com/matzehuels/trendtower/pkg/cache"
	"github.com/matzehuels/trendtower/pkg/integrations/github"
	"github.com/matzehuels/trendtower/pkg/integrations/trendpage"
	"github.com/matzehuels/trendtower/pkg/trending"
)

const shutdownGrace = 10 * time.Second

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		configPath string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP/SSE server",
		Long: `Serve the aggregation engine over HTTP: synchronous JSON endpoints
(/health, /languages, /trending) and a server-sent-events stream
(/trending/stream). Settings come from an optional TOML config file;
flags override file values.`,
		Example: `  trendtower serve
  trendtower serve --addr :9000
  trendtower serve --config /etc/trendtower.toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return c.runServer(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config file)")
	cmd.Flags().StringVar(&configPath, "config", "", "path to TOML config file")

	return cmd
}

func (c *CLI) runServer(ctx context.Context, cfg config.Config) error {
	store, err := serverCache(ctx, cfg.Cache)
	if err != nil {
		return err
	}
	defer store.Close()

	listing := trendpage.NewScraper(trendpage.Config{Cache: store, CacheTTL: cfg.Cache.TTL.Duration})
	detail := github.NewClient(github.Config{
		Token:    cfg.GitHubToken(),
		Cache:    store,
		CacheTTL: cfg.Cache.TTL.Duration,
	})
	svc := trending.NewService(listing, detail, trending.PipelineConfig{Logger: c.Logger})

	handler := server.New(svc, server.Config{
		DefaultInterval: cfg.Stream.Interval.Duration,
		Logger:          c.Logger,
	}).Handler()

	httpServer := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("server listening", "addr", cfg.Server.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	c.Logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return ctx.Err()
}

// serverCache builds the configured cache backend. The redis backend is
// the one meant for multi-instance deployments; file is the default.
func serverCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case "none":
		return cache.NewNullCache(), nil
	case "redis":
		return cache.NewRedisCache(ctx, cfg.RedisAddr)
	default:
		dir := cfg.Dir
		if dir == "" {
			d, err := cacheDir()
			if err != nil {
				return cache.NewNullCache(), nil
			}
			dir = d
		}
		return cache.NewFileCache(dir)
	}
}
