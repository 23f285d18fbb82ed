package guestbookrepo

import (
	"context"
	"sort"
	"sync"

	"github.com/ever-after-studio/wedding-site-api/internal/domain"
	"github.com/ever-after-studio/wedding-site-api/internal/ports/out/guestbookrepo"
)

// Repo is an in-memory implementation of guestbookrepo.Repository.
// It is safe for concurrent use.
type Repo struct {
	mu sync.RWMutex
	m  map[domain.MessageID]domain.GuestbookMessage
}

func NewRepo() *Repo {
	return &Repo{m: make(map[domain.MessageID]domain.GuestbookMessage)}
}

func (r *Repo) Create(ctx context.Context, msg domain.GuestbookMessage) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.m[msg.ID]; ok {
		return guestbookrepo.ErrAlreadyExists
	}
	r.m[msg.ID] = msg
	return nil
}

func (r *Repo) List(ctx context.Context, opts guestbookrepo.ListOptions) ([]domain.GuestbookMessage, error) {
	_ = ctx
	r.mu.RLock()
	out := make([]domain.GuestbookMessage, 0, len(r.m))
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

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (r *Repo) SetApproved(ctx context.Context, id domain.MessageID, approved bool) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.m[id]
	if !ok || v.IsDeleted {
		return guestbookrepo.ErrNotFound
	}
	v.IsApproved = approved
	r.m[id] = v
	return nil
}

func (r *Repo) SoftDelete(ctx context.Context, id domain.MessageID) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.m[id]
	if !ok || v.IsDeleted {
		return guestbookrepo.ErrNotFound
	}
	v.IsDeleted = true
	v.IsApproved = false
	r.m[id] = v
	return nil
}
