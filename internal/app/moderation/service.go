package moderation

import (
	"context"
	"errors"
	"strings"

	"github.com/ever-after-studio/wedding-site-api/internal/app/apperr"
	"github.com/ever-after-studio/wedding-site-api/internal/domain"
	"github.com/ever-after-studio/wedding-site-api/internal/ports/out/guestbookrepo"
	"github.com/ever-after-studio/wedding-site-api/internal/ports/out/songrepo"
)

// Service approves and soft-deletes guest submissions. Callers are expected to have
// passed the admin gate; the service does no authorization itself.
type Service struct {
	guestbook guestbookrepo.Repository
	songs     songrepo.Repository
}

func NewService(guestbook guestbookrepo.Repository, songs songrepo.Repository) *Service {
	return &Service{guestbook: guestbook, songs: songs}
}

// SetApproval changes the approval flag of a non-deleted record.
func (s *Service) SetApproval(ctx context.Context, kind string, id string, approved bool) error {
	k, err := parseTarget(kind, id)
	if err != nil {
		return err
	}
	switch k {
	case domain.CollectionGuestbook:
		err = s.guestbook.SetApproved(ctx, domain.MessageID(id), approved)
	case domain.CollectionSongs:
		err = s.songs.SetApproved(ctx, domain.SongID(id), approved)
	}
	return mapNotFound(err)
}

// SoftDelete hides a record from every listing and clears its approval. Records are never removed.
func (s *Service) SoftDelete(ctx context.Context, kind string, id string) error {
	k, err := parseTarget(kind, id)
	if err != nil {
		return err
	}
	switch k {
	case domain.CollectionGuestbook:
		err = s.guestbook.SoftDelete(ctx, domain.MessageID(id))
	case domain.CollectionSongs:
		err = s.songs.SoftDelete(ctx, domain.SongID(id))
	}
	return mapNotFound(err)
}

func parseTarget(kind string, id string) (domain.CollectionKind, error) {
	k, ok := domain.ParseCollectionKind(strings.TrimSpace(kind))
	if !ok {
		return "", apperr.Validation("invalid collection", map[string]any{"collection": "must be one of guestbook, songs"})
	}
	if strings.TrimSpace(id) == "" {
		return "", apperr.NotFound("record not found")
	}
	return k, nil
}

func mapNotFound(err error) error {
	if errors.Is(err, guestbookrepo.ErrNotFound) || errors.Is(err, songrepo.ErrNotFound) {
		return apperr.NotFound("record not found")
	}
	return err
}
