package rsvprepo

import (
	"context"

	"github.com/ever-after-studio/wedding-site-api/internal/domain"
)

// Repository persists RSVP records.
//
// Uniqueness: implementations must guarantee at most one RSVP per normalized email
// (domain.NormalizeEmail). Create enforces it atomically and returns ErrEmailAlreadyExists
// rather than relying on a prior ExistsByEmail call.
type Repository interface {
	// Create inserts a new RSVP. ErrEmailAlreadyExists is returned when the email is taken.
	Create(ctx context.Context, r domain.RSVP) error

	// ExistsByEmail reports whether an RSVP exists for the normalized email.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// List returns all RSVPs ordered by CreatedAt descending.
	List(ctx context.Context) ([]domain.RSVP, error)
}
