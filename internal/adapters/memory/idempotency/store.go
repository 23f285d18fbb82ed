package idempotency

import (
	"context"
	"sync"

	"github.com/ever-after-studio/wedding-site-api/internal/ports/out/idempotency"
)

// Store is an in-memory implementation of idempotency.Store.
// It is safe for concurrent use.
type Store struct {
	mu sync.RWMutex
	m  map[idempotency.Fingerprint]idempotency.Record
}

func NewStore() *Store {
	return &Store{
		m: make(map[idempotency.Fingerprint]idempotency.Record),
	}
}

func (s *Store) Get(ctx context.Context, fp idempotency.Fingerprint) (idempotency.Record, bool, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.m[fp]
	if !ok {
		return idempotency.Record{}, false, nil
	}
	rec.Body = append([]byte(nil), rec.Body...)
	return rec, true, nil
}

func (s *Store) Put(ctx context.Context, fp idempotency.Fingerprint, rec idempotency.Record) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	rec.Body = append([]byte(nil), rec.Body...)
	s.m[fp] = rec
	return nil
}

func (s *Store) Reserve(ctx context.Context, fp idempotency.Fingerprint, rec idempotency.Record) (bool, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[fp]; ok {
		return false, nil
	}
	rec.Body = append([]byte(nil), rec.Body...)
	s.m[fp] = rec
	return true, nil
}

func (s *Store) Release(ctx context.Context, fp idempotency.Fingerprint) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, fp)
	return nil
}
