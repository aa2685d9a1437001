// Package httputil provides HTTP helpers shared by the catalog client and
// the artifact downloader.
//
// # Retry
//
// [Retry] re-runs an operation for transient failures:
//
//   - Network errors
//   - 5xx server errors
//
// Callers mark such failures by wrapping them with [Retryable]. Every other
// error is returned immediately. The delay doubles after each attempt:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    return fetchProject(ctx, id)
//	})
//
// # Configuration
//
// [RetryWithBackoff] uses 3 attempts and a 1 second base delay.
package httputil
