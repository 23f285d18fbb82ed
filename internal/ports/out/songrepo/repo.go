package songrepo

import (
	"context"

	"github.com/ever-after-studio/wedding-site-api/internal/domain"
)

type ListOptions struct {
	// Limit caps the number of returned suggestions; it must be positive.
	Limit int
	// IncludeUnapproved returns unapproved suggestions too (admin view).
	IncludeUnapproved bool
}

// Repository persists song suggestions.
//
// Result ordering expectations:
// - List orders by Likes descending, then CreatedAt descending, then ID ascending.
type Repository interface {
	Create(ctx context.Context, s domain.SongSuggestion) error

	List(ctx context.Context, opts ListOptions) ([]domain.SongSuggestion, error)

	// IncrementLikes atomically adds one like and returns the new count.
	// ErrNotFound is returned for unknown or deleted suggestions.
	IncrementLikes(ctx context.Context, id domain.SongID) (int, error)

	SetApproved(ctx context.Context, id domain.SongID, approved bool) error
	SoftDelete(ctx context.Context, id domain.SongID) error
}
