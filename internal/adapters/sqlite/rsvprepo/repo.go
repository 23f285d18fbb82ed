package rsvprepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/ever-after-studio/wedding-site-api/internal/adapters/sqlite"
	"github.com/ever-after-studio/wedding-site-api/internal/domain"
	"github.com/ever-after-studio/wedding-site-api/internal/ports/out/rsvprepo"
)

// Repo is a SQLite implementation of rsvprepo.Repository.
// Guest names are stored as a JSON array; email_key holds the normalized email under a UNIQUE constraint.
type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, rec domain.RSVP) error {
	if r.db == nil {
		return errors.New("nil sqlite db")
	}
	guests := rec.GuestNames
	if guests == nil {
		guests = []string{}
	}
	guestJSON, err := json.Marshal(guests)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO rsvps (
			id, name, email, email_key, attending, party_size, guest_names,
			dietary_restrictions, message, created_at
		) VALUES (?,?,?,?,?,?,?,?,?,?)
	`,
		string(rec.ID),
		rec.Name,
		rec.Email,
		domain.NormalizeEmail(rec.Email),
		rec.Attending,
		rec.PartySize,
		string(guestJSON),
		rec.DietaryRestrictions,
		rec.Message,
		sqlite.ToUnix(rec.CreatedAt),
	)
	if msg, ok := sqlite.UniqueViolation(err); ok {
		if strings.Contains(msg, "rsvps.email_key") {
			return rsvprepo.ErrEmailAlreadyExists
		}
		return rsvprepo.ErrAlreadyExists
	}
	return err
}

func (r *Repo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if r.db == nil {
		return false, errors.New("nil sqlite db")
	}
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM rsvps WHERE email_key = ?)`,
		domain.NormalizeEmail(email),
	).Scan(&exists)
	return exists, err
}

func (r *Repo) List(ctx context.Context) ([]domain.RSVP, error) {
	if r.db == nil {
		return nil, errors.New("nil sqlite db")
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, email, attending, party_size, guest_names,
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
			guestJSON string
			createdAt int64
		)
		if err := rows.Scan(
			&id,
			&rec.Name,
			&rec.Email,
			&rec.Attending,
			&rec.PartySize,
			&guestJSON,
			&rec.DietaryRestrictions,
			&rec.Message,
			&createdAt,
		); err != nil {
			return nil, err
		}
		rec.GuestNames = []string{}
		if err := json.Unmarshal([]byte(guestJSON), &rec.GuestNames); err != nil {
			return nil, err
		}
		if rec.GuestNames == nil {
			rec.GuestNames = []string{}
		}
		rec.ID = domain.RSVPID(id)
		rec.CreatedAt = sqlite.FromUnix(createdAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}
