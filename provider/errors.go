package provider

import "errors"

// Sentinel errors classifying backend failures.
//
// Backends wrap these with fmt.Errorf("...: %w", Err...) so that callers
// can classify failures with errors.Is without depending on backend
// internals.
var (
	// ErrInvalidInput indicates the request itself was malformed
	// (empty prompt, nil text, non-positive token bound).
	ErrInvalidInput = errors.New("provider: invalid input")

	// ErrAuth indicates an authentication or authorization failure.
	// Never retried; batch operations abort on it.
	ErrAuth = errors.New("provider: authentication failed")

	// ErrRateLimited indicates the backend refused the call due to
	// rate limiting. Treated like ErrAuth by batch operations.
	ErrRateLimited = errors.New("provider: rate limited")

	// ErrUnavailable indicates a transient backend failure (timeout,
	// connection reset, 5xx). Safe to count and skip in batches.
	ErrUnavailable = errors.New("provider: backend unavailable")
)

// IsInvalidInput reports whether err is an invalid-input failure.
func IsInvalidInput(err error) bool { return errors.Is(err, ErrInvalidInput) }

// IsAuth reports whether err is an authentication failure.
func IsAuth(err error) bool { return errors.Is(err, ErrAuth) }

// IsRateLimited reports whether err is a rate-limit failure.
func IsRateLimited(err error) bool { return errors.Is(err, ErrRateLimited) }

// IsTransient reports whether err is a transient backend failure.
func IsTransient(err error) bool { return errors.Is(err, ErrUnavailable) }

// IsFatal reports whether err should terminate a batch operation:
// authentication and rate-limit failures are never skipped.
func IsFatal(err error) bool { return IsAuth(err) || IsRateLimited(err) }
