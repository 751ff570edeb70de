package stream

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/trendtower/pkg/errors"
	"github.com/matzehuels/trendtower/pkg/trending"
)

// manualTicker delivers ticks only when the test fires them.
type manualTicker struct {
	ch      chan time.Time
	stopped atomic.Bool
}

func newManualTicker() *manualTicker {
	return &manualTicker{ch: make(chan time.Time)}
}

func (t *manualTicker) C() <-chan time.Time { return t.ch }
func (t *manualTicker) Stop()               { t.stopped.Store(true) }

func (t *manualTicker) tick(tb testing.TB) {
	tb.Helper()
	select {
	case t.ch <- time.Now():
	case <-time.After(time.Second):
		tb.Fatal("tick not consumed")
	}
}

func fixedResult(n int) *trending.Result {
	return &trending.Result{
		Entries:        make([]trending.Entry, n),
		RequestedLimit: n,
		Retrieved:      n,
		Timeframe:      trending.TimeframeDaily,
		Languages:      []string{"go"},
	}
}

func testRequest() trending.Request {
	return trending.Request{Languages: []string{"go"}, Limit: 5, Timeframe: trending.TimeframeDaily}
}

func recvSnapshot(t *testing.T, sub *Subscription) Snapshot {
	t.Helper()
	select {
	case snap, ok := <-sub.Snapshots():
		if !ok {
			t.Fatal("snapshot channel closed early")
		}
		return snap
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
	}
	return Snapshot{}
}

func requireClosed(t *testing.T, sub *Subscription) {
	t.Helper()
	select {
	case snap, ok := <-sub.Snapshots():
		if ok {
			t.Fatalf("got unexpected snapshot %+v, want closed channel", snap)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel close")
	}
}

func TestSubscribeOneshot(t *testing.T) {
	var calls atomic.Int64
	sched := NewScheduler(Config{
		Fetch: func(context.Context, trending.Request) (*trending.Result, error) {
			calls.Add(1)
			return fixedResult(5), nil
		},
	})

	sub, err := sched.Subscribe(context.Background(), testRequest(), 0)
	if err != nil {
		t.Fatalf("Subscribe error: %v", err)
	}
	if sub.Recurring {
		t.Error("zero interval should be a one-shot subscription")
	}

	snap := recvSnapshot(t, sub)
	if snap.Err != nil {
		t.Fatalf("snapshot error: %v", snap.Err)
	}
	if snap.Seq != 1 || snap.Result.Retrieved != 5 {
		t.Errorf("snapshot = seq %d retrieved %d, want 1/5", snap.Seq, snap.Result.Retrieved)
	}

	requireClosed(t, sub)
	if calls.Load() != 1 {
		t.Errorf("fetch calls = %d, want exactly 1", calls.Load())
	}
}

func TestSubscribeRecurringEmitsOnTicks(t *testing.T) {
	ticker := newManualTicker()
	var calls atomic.Int64
	sched := NewScheduler(Config{
		Fetch: func(context.Context, trending.Request) (*trending.Result, error) {
			calls.Add(1)
			return fixedResult(3), nil
		},
		NewTicker: func(time.Duration) Ticker { return ticker },
	})

	sub, err := sched.Subscribe(context.Background(), testRequest(), 30*time.Second)
	if err != nil {
		t.Fatalf("Subscribe error: %v", err)
	}
	defer sub.Close()

	// Immediate snapshot, then one per tick.
	first := recvSnapshot(t, sub)
	if first.Seq != 1 {
		t.Errorf("first Seq = %d, want 1", first.Seq)
	}

	ticker.tick(t)
	second := recvSnapshot(t, sub)
	if second.Seq != 2 {
		t.Errorf("second Seq = %d, want 2", second.Seq)
	}

	ticker.tick(t)
	third := recvSnapshot(t, sub)
	if third.Seq != 3 {
		t.Errorf("third Seq = %d, want 3", third.Seq)
	}
	if calls.Load() != 3 {
		t.Errorf("fetch calls = %d, want 3", calls.Load())
	}
}

func TestSubscribeCloseStopsTicks(t *testing.T) {
	ticker := newManualTicker()
	var calls atomic.Int64
	sched := NewScheduler(Config{
		Fetch: func(context.Context, trending.Request) (*trending.Result, error) {
			calls.Add(1)
			return fixedResult(3), nil
		},
		NewTicker: func(time.Duration) Ticker { return ticker },
	})

	sub, err := sched.Subscribe(context.Background(), testRequest(), 30*time.Second)
	if err != nil {
		t.Fatalf("Subscribe error: %v", err)
	}

	recvSnapshot(t, sub)
	sub.Close()
	sub.Close() // idempotent

	requireClosed(t, sub)
	if calls.Load() != 1 {
		t.Errorf("fetch calls after disconnect = %d, want exactly 1", calls.Load())
	}
	if !ticker.stopped.Load() {
		t.Error("ticker not stopped after disconnect")
	}
}

func TestSubscribeContextCancelStopsStream(t *testing.T) {
	ticker := newManualTicker()
	sched := NewScheduler(Config{
		Fetch: func(context.Context, trending.Request) (*trending.Result, error) {
			return fixedResult(3), nil
		},
		NewTicker: func(time.Duration) Ticker { return ticker },
	})

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := sched.Subscribe(ctx, testRequest(), 30*time.Second)
	if err != nil {
		t.Fatalf("Subscribe error: %v", err)
	}

	recvSnapshot(t, sub)
	cancel()
	requireClosed(t, sub)
}

func TestSubscribeFatalErrorEmitsOnceThenCloses(t *testing.T) {
	pipelineErr := errors.New(errors.ErrCodeSourceUnavailable, "all sources down")
	var calls atomic.Int64
	sched := NewScheduler(Config{
		Fetch: func(context.Context, trending.Request) (*trending.Result, error) {
			calls.Add(1)
			return nil, pipelineErr
		},
		NewTicker: func(time.Duration) Ticker { return newManualTicker() },
	})

	sub, err := sched.Subscribe(context.Background(), testRequest(), 30*time.Second)
	if err != nil {
		t.Fatalf("Subscribe error: %v", err)
	}

	snap := recvSnapshot(t, sub)
	if snap.Err == nil {
		t.Fatal("snapshot carries no error, want the pipeline failure")
	}
	if !errors.Is(snap.Err, errors.ErrCodeSourceUnavailable) {
		t.Errorf("snapshot error code = %v, want SOURCE_UNAVAILABLE", errors.GetCode(snap.Err))
	}
	if snap.Result != nil {
		t.Error("error snapshot also carries a result")
	}

	requireClosed(t, sub)
	if calls.Load() != 1 {
		t.Errorf("fetch calls = %d, want no retries after a fatal error", calls.Load())
	}
}

func TestSubscribeRejectsBadIntervals(t *testing.T) {
	sched := NewScheduler(Config{
		Fetch: func(context.Context, trending.Request) (*trending.Result, error) {
			return fixedResult(1), nil
		},
	})

	for _, interval := range []time.Duration{-time.Second, 500 * time.Millisecond} {
		_, err := sched.Subscribe(context.Background(), testRequest(), interval)
		if err == nil {
			t.Errorf("Subscribe(%s) succeeded, want INVALID_INTERVAL", interval)
			continue
		}
		if !errors.Is(err, errors.ErrCodeInvalidInterval) {
			t.Errorf("Subscribe(%s) code = %v, want INVALID_INTERVAL", interval, errors.GetCode(err))
		}
	}
}
