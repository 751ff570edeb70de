package integrations

import (
	"net/http"
	"strconv"
	"sync/atomic"
)

// QuotaCounter tracks upstream API consumption across a client's
// lifetime. Calls counts every request sent; Remaining mirrors the most
// recent X-RateLimit-Remaining header, or -1 before any response
// carried one. Safe for concurrent use.
type QuotaCounter struct {
	calls     atomic.Int64
	remaining atomic.Int64
}

// NewQuotaCounter creates a counter with no observations yet.
func NewQuotaCounter() *QuotaCounter {
	q := &QuotaCounter{}
	q.remaining.Store(-1)
	return q
}

// RecordCall counts one outgoing request.
func (q *QuotaCounter) RecordCall() {
	q.calls.Add(1)
}

// Observe captures rate-limit headers from an upstream response.
func (q *QuotaCounter) Observe(h http.Header) {
	if s := h.Get("X-RateLimit-Remaining"); s != "" {
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			q.remaining.Store(n)
		}
	}
}

// Calls returns the number of requests sent so far.
func (q *QuotaCounter) Calls() int64 {
	return q.calls.Load()
}

// Remaining returns the last reported rate-limit headroom, or -1 when
// no response has reported one yet.
func (q *QuotaCounter) Remaining() int64 {
	return q.remaining.Load()
}
