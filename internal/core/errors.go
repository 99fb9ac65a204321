package core

import "errors"

// Authentication failures. Deliveries failing verification are dropped and
// logged; they are never parsed, retried or reported.
var (
	ErrMissingSignature  = errors.New("webhook signature header missing")
	ErrSignatureMismatch = errors.New("webhook signature mismatch")
)

// Normalization failures.
var (
	// ErrUnsupportedEvent marks event types the normalizer has no decoder
	// for. This is routine traffic, not a processing failure.
	ErrUnsupportedEvent = errors.New("unsupported event type")
	ErrMalformedPayload = errors.New("malformed webhook payload")
)

// Policy resolution failures.
var (
	// ErrNotOnboarded means the repository has no registered policy. Events
	// for such repositories are silently ignored.
	ErrNotOnboarded = errors.New("repository not onboarded")
	// ErrStoreUnavailable means the policy store could not be reached. The
	// pipeline retries with bounded backoff; the event stays queued.
	ErrStoreUnavailable = errors.New("policy store unavailable")
)

// ErrSkipAction lets a synchronous action report that it deliberately did
// nothing for this event, producing a Skipped result instead of a Failure.
var ErrSkipAction = errors.New("action skipped")
