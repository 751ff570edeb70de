package stream

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/trendtower/pkg/errors"
	"github.com/matzehuels/trendtower/pkg/trending"
)

// MinInterval is the shortest accepted refresh interval. Anything
// tighter would hammer the listing source for pages that change far
// more slowly.
const MinInterval = time.Second

// FetchFunc produces one aggregation snapshot. The scheduler treats it
// as opaque; in practice it is Service.FetchTrending.
type FetchFunc func(ctx context.Context, req trending.Request) (*trending.Result, error)

// Snapshot is one emission on a subscription: a complete result, or the
// error that terminated the stream. Exactly one of Result and Err is set.
type Snapshot struct {
	Result *trending.Result
	Err    error
	Seq    int
	At     time.Time
}

// Ticker abstracts time.Ticker so tests can drive ticks manually.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type realTicker struct{ *time.Ticker }

func (t realTicker) C() <-chan time.Time { return t.Ticker.C }

// Config tunes a Scheduler. Only Fetch is required.
type Config struct {
	Fetch FetchFunc

	// Logger receives per-tick debug output. Nil discards.
	Logger *log.Logger

	// NewTicker overrides tick delivery. Used by tests.
	NewTicker func(d time.Duration) Ticker
}

// Scheduler runs aggregation requests on behalf of streaming
// subscribers: once for one-shot subscriptions, repeatedly on an
// interval for recurring ones. Each subscription owns one goroutine;
// runs within a subscription are serialized, so a slow run causes ticks
// to be skipped rather than stacked.
type Scheduler struct {
	fetch     FetchFunc
	logger    *log.Logger
	newTicker func(d time.Duration) Ticker
}

// NewScheduler creates a scheduler over the fetch function.
func NewScheduler(cfg Config) *Scheduler {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	newTicker := cfg.NewTicker
	if newTicker == nil {
		newTicker = func(d time.Duration) Ticker {
			return realTicker{time.NewTicker(d)}
		}
	}
	return &Scheduler{
		fetch:     cfg.Fetch,
		logger:    logger,
		newTicker: newTicker,
	}
}

// Subscription is one active stream. Snapshots arrive on Snapshots()
// until the channel closes: after one emission for a one-shot
// subscription, after Close or a fatal error for a recurring one.
type Subscription struct {
	ID        uuid.UUID
	Request   trending.Request
	Interval  time.Duration
	Recurring bool

	snapshots chan Snapshot
	done      chan struct{}
	closeOnce sync.Once
}

// Snapshots returns the emission channel. It is closed when the
// subscription terminates.
func (s *Subscription) Snapshots() <-chan Snapshot {
	return s.snapshots
}

// Close detaches the subscriber. No further snapshots are emitted;
// an in-flight run finishes but its result is discarded. Safe to call
// more than once.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

// Subscribe starts a stream for the request. An interval of 0 means
// one-shot: one snapshot, then the channel closes. A positive interval
// means recurring: an immediate snapshot, then one per tick. The stream
// ends when ctx is cancelled, Close is called, or a fetch fails; the
// failure is emitted as a final error snapshot.
func (s *Scheduler) Subscribe(ctx context.Context, req trending.Request, interval time.Duration) (*Subscription, error) {
	if interval < 0 || (interval > 0 && interval < MinInterval) {
		return nil, errors.New(errors.ErrCodeInvalidInterval,
			"refresh interval must be at least %s (got %s)", MinInterval, interval)
	}

	sub := &Subscription{
		ID:        uuid.New(),
		Request:   req,
		Interval:  interval,
		Recurring: interval > 0,
		snapshots: make(chan Snapshot),
		done:      make(chan struct{}),
	}
	go s.run(ctx, sub)
	return sub, nil
}

func (s *Scheduler) run(ctx context.Context, sub *Subscription) {
	defer close(sub.snapshots)

	seq := 0
	runOnce := func() (fatal bool) {
		seq++
		result, err := s.fetch(ctx, sub.Request)
		snap := Snapshot{Result: result, Err: err, Seq: seq, At: time.Now()}
		if err != nil {
			snap.Result = nil
			s.logger.Warn("stream run failed",
				"subscription", sub.ID,
				"seq", seq,
				"err", err)
		} else {
			s.logger.Debug("stream snapshot",
				"subscription", sub.ID,
				"seq", seq,
				"retrieved", result.Retrieved)
		}
		if !s.emit(ctx, sub, snap) {
			return true
		}
		return err != nil
	}

	if runOnce() || !sub.Recurring {
		return
	}

	ticker := s.newTicker(sub.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.done:
			return
		case <-ticker.C():
			if runOnce() {
				return
			}
			// A run slower than the interval leaves a tick queued;
			// drop it so runs never stack.
			select {
			case <-ticker.C():
			default:
			}
		}
	}
}

// emit delivers a snapshot unless the subscriber is already gone.
// Reports whether delivery happened.
func (s *Scheduler) emit(ctx context.Context, sub *Subscription, snap Snapshot) bool {
	select {
	case sub.snapshots <- snap:
		return true
	case <-ctx.Done():
		return false
	case <-sub.done:
		return false
	}
}
