package guestbookrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ever-after-studio/wedding-site-api/internal/adapters/sqlite"
	"github.com/ever-after-studio/wedding-site-api/internal/domain"
	"github.com/ever-after-studio/wedding-site-api/internal/ports/out/guestbookrepo"
)

// Repo is a SQLite implementation of guestbookrepo.Repository.
type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, m domain.GuestbookMessage) error {
	if r.db == nil {
		return errors.New("nil sqlite db")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO guestbook_messages (id, name, relationship, message, is_approved, is_deleted, created_at)
		VALUES (?,?,?,?,?,?,?)
	`,
		string(m.ID),
		m.Name,
		string(m.Relationship),
		m.Message,
		m.IsApproved,
		m.IsDeleted,
		sqlite.ToUnix(m.CreatedAt),
	)
	if _, ok := sqlite.UniqueViolation(err); ok {
		return guestbookrepo.ErrAlreadyExists
	}
	return err
}

func (r *Repo) List(ctx context.Context, opts guestbookrepo.ListOptions) ([]domain.GuestbookMessage, error) {
	if r.db == nil {
		return nil, errors.New("nil sqlite db")
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, relationship, message, is_approved, is_deleted, created_at
		FROM guestbook_messages
		WHERE is_deleted = 0
		  AND (is_approved = 1 OR ?)
		ORDER BY created_at DESC, id ASC
		LIMIT ?
	`, opts.IncludeUnapproved, sqlite.Limit(opts.Limit))
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
			createdAt    int64
		)
		if err := rows.Scan(&id, &m.Name, &relationship, &m.Message, &m.IsApproved, &m.IsDeleted, &createdAt); err != nil {
			return nil, err
		}
		m.ID = domain.MessageID(id)
		m.Relationship = domain.Relationship(relationship)
		m.CreatedAt = sqlite.FromUnix(createdAt)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *Repo) SetApproved(ctx context.Context, id domain.MessageID, approved bool) error {
	return r.update(ctx,
		`UPDATE guestbook_messages SET is_approved = ? WHERE id = ? AND is_deleted = 0`,
		approved, string(id))
}

func (r *Repo) SoftDelete(ctx context.Context, id domain.MessageID) error {
	return r.update(ctx,
		`UPDATE guestbook_messages SET is_deleted = 1, is_approved = 0 WHERE id = ? AND is_deleted = 0`,
		string(id))
}

func (r *Repo) update(ctx context.Context, query string, args ...any) error {
	if r.db == nil {
		return errors.New("nil sqlite db")
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return guestbookrepo.ErrNotFound
	}
	return nil
}
