package songrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/ever-after-studio/wedding-site-api/internal/domain"
	"github.com/ever-after-studio/wedding-site-api/internal/ports/out/songrepo"
)

// Repo is an in-memory implementation of songrepo.Repository.
// It is safe for concurrent use; IncrementLikes is atomic under the write lock.
type Repo struct {
	mu sync.RWMutex
	m  map[domain.SongID]domain.SongSuggestion
}

func NewRepo() *Repo {
	return &Repo{m: make(map[domain.SongID]domain.SongSuggestion)}
}

func (r *Repo) Create(ctx context.Context, s domain.SongSuggestion) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.m[s.ID]; ok {
		return songrepo.ErrAlreadyExists
	}
	r.m[s.ID] = s
	return nil
}

func (r *Repo) List(ctx context.Context, opts songrepo.ListOptions) ([]domain.SongSuggestion, error) {
	_ = ctx
	r.mu.RLock()
	out := make([]domain.SongSuggestion, 0, len(r.m))
	for _, v := range r.m {
		if v.IsDeleted {
			continue
		}
		if !v.IsApproved && !opts.IncludeUnapproved {
			continue
		}
		out = append(out, v)
	}
	r.mu.RUnlock()

	SortByPopularity(out)
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

// SortByPopularity orders suggestions by likes descending, newest first on ties,
// and finally by ID so the order is total.
func SortByPopularity(ss []domain.SongSuggestion) {
	sort.SliceStable(ss, func(i, j int) bool {
		if ss[i].Likes != ss[j].Likes {
			return ss[i].Likes > ss[j].Likes
		}
		if !ss[i].CreatedAt.Equal(ss[j].CreatedAt) {
			return ss[i].CreatedAt.After(ss[j].CreatedAt)
		}
		return ss[i].ID < ss[j].ID
	})
}

func (r *Repo) IncrementLikes(ctx context.Context, id domain.SongID) (int, error) {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.m[id]
	if !ok || v.IsDeleted {
		return 0, songrepo.ErrNotFound
	}
	v.Likes++
	r.m[id] = v
	return v.Likes, nil
}

func (r *Repo) SetApproved(ctx context.Context, id domain.SongID, approved bool) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.m[id]
	if !ok || v.IsDeleted {
		return songrepo.ErrNotFound
	}
	v.IsApproved = approved
	r.m[id] = v
	return nil
}

func (r *Repo) SoftDelete(ctx context.Context, id domain.SongID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.m[id]
	if !ok || v.IsDeleted {
		return songrepo.ErrNotFound
	}
	v.IsDeleted = true
	v.IsApproved = false
	r.m[id] = v
	return nil
}
