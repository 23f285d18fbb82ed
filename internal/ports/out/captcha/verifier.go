package captcha

import (
	"context"
	"errors"
)

// ErrRejected indicates the challenge response was checked and found invalid.
var ErrRejected = errors.New("captcha rejected")

// Verifier checks a challenge response token produced by the client-side widget.
type Verifier interface {
	// Verify returns nil for a valid token, ErrRejected for an invalid one, and any
	// other error when the provider could not be reached.
	Verify(ctx context.Context, token string, remoteIP string) error
}
