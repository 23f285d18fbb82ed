package guestbookrepo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/ever-after-studio/wedding-site-api/internal/adapters/postgres"
	"github.com/ever-after-studio/wedding-site-api/internal/domain"
	"github.com/ever-after-studio/wedding-site-api/internal/ports/out/guestbookrepo"
)

// Repo is a Postgres implementation of guestbookrepo.Repository.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Create(ctx context.Context, m domain.GuestbookMessage) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO guestbook_messages (id, name, relationship, message, is_approved, is_deleted, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		string(m.ID),
		m.Name,
		string(m.Relationship),
		m.Message,
		m.IsApproved,
		m.IsDeleted,
		m.CreatedAt.UTC(),
	)
	if err != nil {
		if postgres.IsUniqueViolation(err, "") {
			return guestbookrepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repo) List(ctx context.Context, opts guestbookrepo.ListOptions) ([]domain.GuestbookMessage, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, name, relationship, message, is_approved, is_deleted, created_at
		FROM guestbook_messages
		WHERE NOT is_deleted
		  AND (is_approved OR $1)
		ORDER BY created_at DESC, id ASC
		LIMIT $2
	`, opts.IncludeUnapproved, limitOrAll(opts.Limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.GuestbookMessage, 0)
	for rows.Next() {
		var (
			m            domain.GuestbookMessage
			id           string
			relationship string
			createdAt    time.Time
		)
		if err := rows.Scan(&id, &m.Name, &relationship, &m.Message, &m.IsApproved, &m.IsDeleted, &createdAt); err != nil {
			return nil, err
		}
		m.ID = domain.MessageID(id)
		m.Relationship = domain.Relationship(relationship)
		m.CreatedAt = createdAt.UTC()
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *Repo) SetApproved(ctx context.Context, id domain.MessageID, approved bool) error {
	return r.update(ctx, id, `
		UPDATE guestbook_messages SET is_approved = $2
		WHERE id = $1 AND NOT is_deleted
	`, approved)
}

func (r *Repo) SoftDelete(ctx context.Context, id domain.MessageID) error {
	return r.update(ctx, id, `
		UPDATE guestbook_messages SET is_deleted = TRUE, is_approved = FALSE
		WHERE id = $1 AND NOT is_deleted
	`)
}

func (r *Repo) update(ctx context.Context, id domain.MessageID, sql string, args ...any) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	uid, err := uuid.Parse(string(id))
	if err != nil {
		return guestbookrepo.ErrNotFound
	}
	tag, err := r.pool.Exec(ctx, sql, append([]any{uid}, args...)...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return guestbookrepo.ErrNotFound
	}
	return nil
}

// limitOrAll maps a non-positive limit to NULL, which Postgres treats as LIMIT ALL.
func limitOrAll(limit int) *int {
	if limit <= 0 {
		return nil
	}
	return &limit
}
