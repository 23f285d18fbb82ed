package rsvprepo

import (
	"context"
	"sort"
	"sync"

	"github.com/ever-after-studio/wedding-site-api/internal/domain"
	"github.com/ever-after-studio/wedding-site-api/internal/ports/out/rsvprepo"
)

// Repo is an in-memory implementation of rsvprepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu sync.RWMutex

	byID    map[domain.RSVPID]domain.RSVP
	byEmail map[string]domain.RSVPID
}

func NewRepo() *Repo {
	return &Repo{
		byID:    make(map[domain.RSVPID]domain.RSVP),
		byEmail: make(map[string]domain.RSVPID),
	}
}

func (r *Repo) Create(ctx context.Context, rec domain.RSVP) error {
	_ = ctx
	key := domain.NormalizeEmail(rec.Email)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[rec.ID]; ok {
		return rsvprepo.ErrAlreadyExists
	}
	if _, ok := r.byEmail[key]; ok {
		return rsvprepo.ErrEmailAlreadyExists
	}
	r.byID[rec.ID] = cloneRSVP(rec)
	r.byEmail[key] = rec.ID
	return nil
}

func (r *Repo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byEmail[domain.NormalizeEmail(email)]
	return ok, nil
}

func (r *Repo) List(ctx context.Context) ([]domain.RSVP, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.RSVP, 0, len(r.byID))
	for _, v := range r.byID {
		out = append(out, cloneRSVP(v))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func cloneRSVP(r domain.RSVP) domain.RSVP {
	out := r
	out.GuestNames = append(make([]string, 0, len(r.GuestNames)), r.GuestNames...)
	return out
}
