package songrepo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ever-after-studio/wedding-site-api/internal/adapters/sqlite"
	"github.com/ever-after-studio/wedding-site-api/internal/domain"
	"github.com/ever-after-studio/wedding-site-api/internal/ports/out/songrepo"
)

// Repo is a SQLite implementation of songrepo.Repository.
type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Create(ctx context.Context, s domain.SongSuggestion) error {
	if r.db == nil {
		return errors.New("nil sqlite db")
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO song_suggestions (
			id, title, artist, suggested_by, reason, likes, is_approved, is_deleted, created_at
		) VALUES (?,?,?,?,?,?,?,?,?)
	`,
		string(s.ID),
		s.Title,
		s.Artist,
		s.SuggestedBy,
		s.Reason,
		s.Likes,
		s.IsApproved,
		s.IsDeleted,
		sqlite.ToUnix(s.CreatedAt),
	)
	if _, ok := sqlite.UniqueViolation(err); ok {
		return songrepo.ErrAlreadyExists
	}
	return err
}

func (r *Repo) List(ctx context.Context, opts songrepo.ListOptions) ([]domain.SongSuggestion, error) {
	if r.db == nil {
		return nil, errors.New("nil sqlite db")
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, artist, suggested_by, reason, likes, is_approved, is_deleted, created_at
		FROM song_suggestions
		WHERE is_deleted = 0
		  AND (is_approved = 1 OR ?)
		ORDER BY likes DESC, created_at DESC, id ASC
		LIMIT ?
	`, opts.IncludeUnapproved, sqlite.Limit(opts.Limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.SongSuggestion, 0)
	for rows.Next() {
		var (
			s         domain.SongSuggestion
			id        string
			createdAt int64
		)
		if err := rows.Scan(&id, &s.Title, &s.Artist, &s.SuggestedBy, &s.Reason, &s.Likes, &s.IsApproved, &s.IsDeleted, &createdAt); err != nil {
			return nil, err
		}
		s.ID = domain.SongID(id)
		s.CreatedAt = sqlite.FromUnix(createdAt)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repo) IncrementLikes(ctx context.Context, id domain.SongID) (int, error) {
	if r.db == nil {
		return 0, errors.New("nil sqlite db")
	}
	var likes int
	err := r.db.QueryRowContext(ctx, `
		UPDATE song_suggestions SET likes = likes + 1
		WHERE id = ? AND is_deleted = 0
		RETURNING likes
	`, string(id)).Scan(&likes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, songrepo.ErrNotFound
		}
		return 0, err
	}
	return likes, nil
}

func (r *Repo) SetApproved(ctx context.Context, id domain.SongID, approved bool) error {
	return r.update(ctx,
		`UPDATE song_suggestions SET is_approved = ? WHERE id = ? AND is_deleted = 0`,
		approved, string(id))
}

func (r *Repo) SoftDelete(ctx context.Context, id domain.SongID) error {
	return r.update(ctx,
		`UPDATE song_suggestions SET is_deleted = 1, is_approved = 0 WHERE id = ? AND is_deleted = 0`,
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
		return songrepo.ErrNotFound
	}
	return nil
}
