package guestbookrepo

import (
	"context"

	"github.com/ever-after-studio/wedding-site-api/internal/domain"
)

type ListOptions struct {
	// Limit caps the number of returned messages; it must be positive.
	Limit int
	// IncludeUnapproved returns unapproved messages too (admin view).
	IncludeUnapproved bool
}

// Repository persists guestbook messages.
//
// Soft-deleted messages are never returned by List and cannot be modified.
type Repository interface {
	Create(ctx context.Context, m domain.GuestbookMessage) error

	// List returns non-deleted messages ordered by CreatedAt descending.
	List(ctx context.Context, opts ListOptions) ([]domain.GuestbookMessage, error)

	// SetApproved flips the approval flag. ErrNotFound is returned for unknown or deleted messages.
	SetApproved(ctx context.Context, id domain.MessageID, approved bool) error

	// SoftDelete marks the message deleted and unapproved. ErrNotFound is returned for unknown
	// or already deleted messages.
	SoftDelete(ctx context.Context, id domain.MessageID) error
}
