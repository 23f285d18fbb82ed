package songrepo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/ever-after-studio/wedding-site-api/internal/adapters/postgres"
	"github.com/ever-after-studio/wedding-site-api/internal/domain"
	"github.com/ever-after-studio/wedding-site-api/internal/ports/out/songrepo"
)

// Repo is a Postgres implementation of songrepo.Repository.
// Likes are incremented in a single UPDATE so concurrent likes are never lost.
type Repo struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

func (r *Repo) Create(ctx context.Context, s domain.SongSuggestion) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO song_suggestions (
			id, title, artist, suggested_by, reason, likes, is_approved, is_deleted, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`,
		string(s.ID),
		s.Title,
		s.Artist,
		s.SuggestedBy,
		s.Reason,
		s.Likes,
		s.IsApproved,
		s.IsDeleted,
		s.CreatedAt.UTC(),
	)
	if err != nil {
		if postgres.IsUniqueViolation(err, "") {
			return songrepo.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *Repo) List(ctx context.Context, opts songrepo.ListOptions) ([]domain.SongSuggestion, error) {
	if r.pool == nil {
		return nil, errors.New("nil postgres pool")
	}
	var limit *int
	if opts.Limit > 0 {
		limit = &opts.Limit
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id::text, title, artist, suggested_by, reason, likes, is_approved, is_deleted, created_at
		FROM song_suggestions
		WHERE NOT is_deleted
		  AND (is_approved OR $1)
		ORDER BY likes DESC, created_at DESC, id ASC
		LIMIT $2
	`, opts.IncludeUnapproved, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.SongSuggestion, 0)
	for rows.Next() {
		var (
			s         domain.SongSuggestion
			id        string
			createdAt time.Time
		)
		if err := rows.Scan(&id, &s.Title, &s.Artist, &s.SuggestedBy, &s.Reason, &s.Likes, &s.IsApproved, &s.IsDeleted, &createdAt); err != nil {
			return nil, err
		}
		s.ID = domain.SongID(id)
		s.CreatedAt = createdAt.UTC()
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repo) IncrementLikes(ctx context.Context, id domain.SongID) (int, error) {
	if r.pool == nil {
		return 0, errors.New("nil postgres pool")
	}
	uid, err := uuid.Parse(string(id))
	if err != nil {
		return 0, songrepo.ErrNotFound
	}
	var likes int
	err = r.pool.QueryRow(ctx, `
		UPDATE song_suggestions SET likes = likes + 1
		WHERE id = $1 AND NOT is_deleted
		RETURNING likes
	`, uid).Scan(&likes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, songrepo.ErrNotFound
		}
		return 0, err
	}
	return likes, nil
}

func (r *Repo) SetApproved(ctx context.Context, id domain.SongID, approved bool) error {
	return r.update(ctx, id, `
		UPDATE song_suggestions SET is_approved = $2
		WHERE id = $1 AND NOT is_deleted
	`, approved)
}

func (r *Repo) SoftDelete(ctx context.Context, id domain.SongID) error {
	return r.update(ctx, id, `
		UPDATE song_suggestions SET is_deleted = TRUE, is_approved = FALSE
		WHERE id = $1 AND NOT is_deleted
	`)
}

func (r *Repo) update(ctx context.Context, id domain.SongID, sql string, args ...any) error {
	if r.pool == nil {
		return errors.New("nil postgres pool")
	}
	uid, err := uuid.Parse(string(id))
	if err != nil {
		return songrepo.ErrNotFound
	}
	tag, err := r.pool.Exec(ctx, sql, append([]any{uid}, args...)...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return songrepo.ErrNotFound
	}
	return nil
}
