package idempotency

import (
	"context"
	"time"
)

// Key is the caller-provided idempotency key (Idempotency-Key header).
type Key string

// Fingerprint identifies a request uniquely for idempotency purposes.
//
// Strategy: key + route + request body hash. Route is represented as HTTP method +
// route pattern (e.g. "POST /api/rsvps").
type Fingerprint struct {
	Key      Key
	Method   string
	Route    string
	BodyHash string
}

// Record is the stored response we can replay for a duplicate request.
type Record struct {
	StatusCode  int
	ContentType string
	Body        []byte
	CreatedAt   time.Time
}

// Store persists idempotency records for replaying safe responses on retries.
type Store interface {
	Get(ctx context.Context, fp Fingerprint) (Record, bool, error)
	Put(ctx context.Context, fp Fingerprint, rec Record) error

	// Reserve stores rec only if fp is absent. It reports whether this call stored it;
	// exactly one of any number of concurrent callers wins.
	Reserve(ctx context.Context, fp Fingerprint, rec Record) (bool, error)

	// Release removes fp. Releasing a missing fingerprint is not an error.
	Release(ctx context.Context, fp Fingerprint) error
}
