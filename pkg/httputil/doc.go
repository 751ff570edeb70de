// Package httputil provides retry utilities for HTTP clients.
//
// The central type is [Policy], a bounded exponential backoff schedule with
// an injectable sleep function. Transient failures are marked by wrapping
// them in [RetryableError]; everything else fails fast.
//
// # Usage
//
//	policy := httputil.DefaultPolicy()
//	err := policy.Do(ctx, func() error {
//	    rec, err := client.Lookup(ctx, name)
//	    if isTransient(err) {
//	        return httputil.Retryable(err)
//	    }
//	    return err
//	})
//
// Tests can substitute Policy.Sleep to observe delays without real waits.
package httputil
