// Package httputil provides HTTP utilities for package registry clients.
//
// # Retry
//
// [Retry] wraps registry requests with automatic retry for transient failures.
// Only errors wrapped in [RetryableError] are retried; clients decide which
// failures qualify:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// The delay doubles after every failed attempt:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    return fetch(ctx, url)
//	})
//
// # Configuration
//
// [DefaultPolicy] allows 3 attempts with a 1 second base backoff. Callers
// that need a different budget build their own [Policy]. There is no
// response cache; every run sees the registry's current state.
package httputil
