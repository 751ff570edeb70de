// Package server exposes the aggregation engine over HTTP: synchronous
// JSON endpoints plus a server-sent-events stream for periodic
// snapshots.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/trendtower/pkg/errors"
	"github.com/matzehuels/trendtower/pkg/stream"
	"github.com/matzehuels/trendtower/pkg/trending"
)

// API is the engine surface the server exposes. Satisfied by
// *trending.Service; tests substitute a fake.
type API interface {
	FetchTrending(ctx context.Context, req trending.Request) (*trending.Result, error)
	ListLanguages() trending.Catalog
}

// Config tunes a Server.
type Config struct {
	// DefaultInterval is used for recurring streams when the client
	// does not pass one.
	DefaultInterval time.Duration

	// Logger receives request logs. Nil discards.
	Logger *log.Logger
}

// Server routes HTTP requests to the aggregation engine.
type Server struct {
	api             API
	scheduler       *stream.Scheduler
	logger          *log.Logger
	defaultInterval time.Duration
}

// New creates a server over the engine facade.
func New(api API, cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	interval := cfg.DefaultInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Server{
		api:             api,
		scheduler:       stream.NewScheduler(stream.Config{Fetch: api.FetchTrending, Logger: logger}),
		logger:          logger,
		defaultInterval: interval,
	}
}

// Handler builds the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/health", s.handleHealth)
	r.Get("/languages", s.handleLanguages)
	r.Get("/trending", s.handleTrending)
	r.Get("/trending/stream", s.handleTrendingStream)
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Millisecond))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLanguages(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.api.ListLanguages())
}

func (s *Server) handleTrending(w http.ResponseWriter, r *http.Request) {
	req, err := requestFromQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	result, err := s.api.FetchTrending(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleTrendingStream(w http.ResponseWriter, r *http.Request) {
	req, err := requestFromQuery(r)
	if err != nil {
		writeError(w, err)
		return
	}
	interval, err := s.streamInterval(r)
	if err != nil {
		writeError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, errors.New(errors.ErrCodeUnsupported, "streaming not supported by this connection"))
		return
	}

	sub, err := s.scheduler.Subscribe(r.Context(), req, interval)
	if err != nil {
		writeError(w, err)
		return
	}
	defer sub.Close()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for snap := range sub.Snapshots() {
		if snap.Err != nil {
			writeEvent(w, flusher, "error", map[string]string{
				"code":    string(errors.GetCode(snap.Err)),
				"message": errors.UserMessage(snap.Err),
			})
			return
		}
		writeEvent(w, flusher, "trending", snap.Result)
	}
}

// streamInterval reads the refresh switch and interval from the query.
// No refresh means a one-shot stream, signalled to the scheduler as a
// zero interval.
func (s *Server) streamInterval(r *http.Request) (time.Duration, error) {
	if r.URL.Query().Get("refresh") != "true" {
		return 0, nil
	}
	raw := r.URL.Query().Get("interval")
	if raw == "" {
		return s.defaultInterval, nil
	}
	secs, err := strconv.Atoi(raw)
	if err != nil || secs <= 0 {
		return 0, errors.New(errors.ErrCodeInvalidInterval,
			"interval must be a positive number of seconds (got %q)", raw)
	}
	return time.Duration(secs) * time.Second, nil
}

func requestFromQuery(r *http.Request) (trending.Request, error) {
	q := r.URL.Query()

	var languages []string
	if raw := q.Get("languages"); raw != "" {
		languages = strings.Split(raw, ",")
	}

	limit := 0
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return trending.Request{}, errors.New(errors.ErrCodeInvalidLimit,
				"limit must be an integer (got %q)", raw)
		}
		limit = n
	}

	return trending.NewRequest(languages, limit, q.Get("timeframe"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.IsValidation(err):
		status = http.StatusBadRequest
	case errors.Is(err, errors.ErrCodeSourceUnavailable):
		status = http.StatusBadGateway
	case errors.Is(err, errors.ErrCodeNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errors.ErrCodeUnsupported):
		status = http.StatusNotImplemented
	}
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"code":    string(errors.GetCode(err)),
			"message": errors.UserMessage(err),
		},
	})
}

func writeEvent(w http.ResponseWriter, flusher http.Flusher, event string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, _ = w.Write([]byte("event: " + event + "\n"))
	_, _ = w.Write([]byte("data: "))
	_, _ = w.Write(data)
	_, _ = w.Write([]byte("\n\n"))
	flusher.Flush()
}
