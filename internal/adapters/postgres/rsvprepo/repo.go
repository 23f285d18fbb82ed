package rsvprepo

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/ever-after-studio/wedding-site-api/internal/adapters/postgres"
	"github.com/ever-after-studio/wedding-site-api/internal/domain"
	"github.com/ever-after-studio/wedding-site-api/internal/ports/out/rsvprepo"
)

const emailConstraint = "rsvps_email_key"

// Repo is a Postgres implementation of rsvprepo.Repository.
// Email uniqueness is enforced by the rsvps_email_key index on lower(btrim(email)).
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Create(ctx context.Context, rec domain.RSVP) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	guests := rec.GuestNames
	if guests == nil {
		guests = []string{}
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO rsvps (
			id, name, email, attending, party_size, guest_names,
			dietary_restrictions, message, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		string(rec.ID),
		rec.Name,
		rec.Email,
		rec.Attending,
		rec.PartySize,
		guests,
		rec.DietaryRestrictions,
		rec.Message,
		rec.CreatedAt.UTC(),
	)
	if err != nil {
		if postgres.IsUniqueViolation(err, emailConstraint) {
			return rsvprepo.ErrEmailAlreadyExists
		}
		if postgres.IsUniqueViolation(err, "rsvps_pkey") {
			return rsvprepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if r.pool == nil {
		return false, errors.New("nil postgres pool")
	}
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM rsvps WHERE lower(btrim(email)) = $1)
	`, domain.NormalizeEmail(email)).Scan(&exists)
	return exists, err
}

func (r *Repo) List(ctx context.Context) ([]domain.RSVP, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, name, email, attending, party_size, guest_names,
		       dietary_restrictions, message, created_at
		FROM rsvps
		ORDER BY created_at DESC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.RSVP, 0)
	for rows.Next() {
		var (
			rec       domain.RSVP
			id        string
			createdAt time.Time
		)
		if err := rows.Scan(
			&id,
			&rec.Name,
			&rec.Email,
			&rec.Attending,
			&rec.PartySize,
			&rec.GuestNames,
			&rec.DietaryRestrictions,
			&rec.Message,
			&createdAt,
		); err != nil {
			return nil, err
		}
		rec.ID = domain.RSVPID(id)
		rec.CreatedAt = createdAt.UTC()
		if rec.GuestNames == nil {
			rec.GuestNames = []string{}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
