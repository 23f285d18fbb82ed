package guestbook

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ever-after-studio/wedding-site-api/internal/app/apperr"
	"github.com/ever-after-studio/wedding-site-api/internal/domain"
	clockport "github.com/ever-after-studio/wedding-site-api/internal/ports/out/clock"
	"github.com/ever-after-studio/wedding-site-api/internal/ports/out/guestbookrepo"
)

const (
	DefaultListLimit = 50
	MaxListLimit     = 500

	maxNameLength    = 100
	maxMessageLength = 2000
)

type Service struct {
	repo guestbookrepo.Repository
	clk  clockport.Clock

	newMessageID func() domain.MessageID
}

func NewService(repo guestbookrepo.Repository, clk clockport.Clock) *Service {
	return &Service{
		repo: repo,
		clk:  clk,
		newMessageID: func() domain.MessageID {
			return domain.MessageID(uuid.NewString())
		},
	}
}

type SubmitMessageInput struct {
	Name         string
	Relationship string
	Message      string
}

// SubmitGuestbookMessage stores a new message awaiting moderation.
func (s *Service) SubmitGuestbookMessage(ctx context.Context, in SubmitMessageInput) (domain.GuestbookMessage, error) {
	details := map[string]any{}

	name := domain.NormalizeHumanName(in.Name)
	switch {
	case name == "":
		details["name"] = "must be non-empty"
	case utf8.RuneCountInString(name) > maxNameLength:
		details["name"] = fmt.Sprintf("must be at most %d characters", maxNameLength)
	}

	rel, ok := domain.ParseRelationship(in.Relationship)
	if !ok {
		details["relationship"] = "must be one of Family, Friend, Colleague, Other"
	}

	msg := strings.TrimSpace(in.Message)
	switch {
	case msg == "":
		details["message"] = "must be non-empty"
	case utf8.RuneCountInString(msg) > maxMessageLength:
		details["message"] = fmt.Sprintf("must be at most %d characters", maxMessageLength)
	}

	if len(details) > 0 {
		return domain.GuestbookMessage{}, apperr.Validation("invalid guestbook message", details)
	}

	m := domain.GuestbookMessage{
		ID:           s.newMessageID(),
		Name:         name,
		Relationship: rel,
		Message:      msg,
		IsApproved:   false,
		CreatedAt:    domain.StoredTime(s.clk.Now()),
	}
	if err := s.repo.Create(ctx, m); err != nil {
		return domain.GuestbookMessage{}, err
	}
	return m, nil
}

// ListGuestbookMessages returns non-deleted messages, newest first. The public view
// (includeUnapproved=false) is limited to approved messages.
func (s *Service) ListGuestbookMessages(ctx context.Context, maxCount int, includeUnapproved bool) ([]domain.GuestbookMessage, error) {
	return s.repo.List(ctx, guestbookrepo.ListOptions{
		Limit:             ClampLimit(maxCount),
		IncludeUnapproved: includeUnapproved,
	})
}

// ClampLimit maps non-positive limits to DefaultListLimit and caps at MaxListLimit.
func ClampLimit(n int) int {
	if n <= 0 {
		return DefaultListLimit
	}
	if n > MaxListLimit {
		return MaxListLimit
	}
	return n
}
