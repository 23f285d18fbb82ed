package songs

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ever-after-studio/wedding-site-api/internal/app/apperr"
	"github.com/ever-after-studio/wedding-site-api/internal/app/guestbook"
	"github.com/ever-after-studio/wedding-site-api/internal/domain"
	clockport "github.com/ever-after-studio/wedding-site-api/internal/ports/out/clock"
	"github.com/ever-after-studio/wedding-site-api/internal/ports/out/songrepo"
)

const (
	maxFieldLength  = 200
	maxReasonLength = 1000
)

type Service struct {
	repo songrepo.Repository
	clk  clockport.Clock

	newSongID func() domain.SongID
}

func NewService(repo songrepo.Repository, clk clockport.Clock) *Service {
	return &Service{
		repo: repo,
		clk:  clk,
		newSongID: func() domain.SongID {
			return domain.SongID(uuid.NewString())
		},
	}
}

type SubmitSongInput struct {
	Title       string
	Artist      string
	SuggestedBy string
	Reason      string
}

func (s *Service) SubmitSongSuggestion(ctx context.Context, in SubmitSongInput) (domain.SongSuggestion, error) {
	details := map[string]any{}
	required := func(field, v string) string {
		v = strings.TrimSpace(v)
		switch {
		case v == "":
			details[field] = "must be non-empty"
		case utf8.RuneCountInString(v) > maxFieldLength:
			details[field] = fmt.Sprintf("must be at most %d characters", maxFieldLength)
		}
		return v
	}
	title := required("title", in.Title)
	artist := required("artist", in.Artist)
	suggestedBy := domain.NormalizeHumanName(required("suggestedBy", in.SuggestedBy))

	reason := strings.TrimSpace(in.Reason)
	if utf8.RuneCountInString(reason) > maxReasonLength {
		details["reason"] = fmt.Sprintf("must be at most %d characters", maxReasonLength)
	}

	if len(details) > 0 {
		return domain.SongSuggestion{}, apperr.Validation("invalid song suggestion", details)
	}

	song := domain.SongSuggestion{
		ID:          s.newSongID(),
		Title:       title,
		Artist:      artist,
		SuggestedBy: suggestedBy,
		Reason:      reason,
		Likes:       0,
		IsApproved:  false,
		CreatedAt:   domain.StoredTime(s.clk.Now()),
	}
	if err := s.repo.Create(ctx, song); err != nil {
		return domain.SongSuggestion{}, err
	}
	return song, nil
}

// ListSongSuggestions orders by likes descending, then newest first.
func (s *Service) ListSongSuggestions(ctx context.Context, maxCount int, includeUnapproved bool) ([]domain.SongSuggestion, error) {
	return s.repo.List(ctx, songrepo.ListOptions{
		Limit:             guestbook.ClampLimit(maxCount),
		IncludeUnapproved: includeUnapproved,
	})
}

// LikeSongSuggestion adds one like and returns the new total. There is no per-guest dedup.
func (s *Service) LikeSongSuggestion(ctx context.Context, id domain.SongID) (int, error) {
	if strings.TrimSpace(string(id)) == "" {
		return 0, apperr.NotFound("song suggestion not found")
	}
	likes, err := s.repo.IncrementLikes(ctx, id)
	if err != nil {
		if errors.Is(err, songrepo.ErrNotFound) {
			return 0, apperr.NotFound("song suggestion not found")
		}
		return 0, err
	}
	return likes, nil
}
