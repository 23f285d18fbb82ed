package rsvps

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ever-after-studio/wedding-site-api/internal/app/apperr"
	"github.com/ever-after-studio/wedding-site-api/internal/domain"
	clockport "github.com/ever-after-studio/wedding-site-api/internal/ports/out/clock"
	"github.com/ever-after-studio/wedding-site-api/internal/ports/out/rsvprepo"
)

const (
	maxNameLength    = 100
	maxEmailLength   = 254
	maxDietaryLength = 500
	maxMessageLength = 2000
)

type Service struct {
	repo rsvprepo.Repository
	clk  clockport.Clock

	newRSVPID func() domain.RSVPID

	// Deadline closes submissions at the given instant; nil keeps them open.
	Deadline *time.Time
}

func NewService(repo rsvprepo.Repository, clk clockport.Clock, deadline *time.Time) *Service {
	return &Service{
		repo: repo,
		clk:  clk,
		newRSVPID: func() domain.RSVPID {
			return domain.RSVPID(uuid.NewString())
		},
		Deadline: deadline,
	}
}

// IsOpen reports whether submissions are accepted at the current time.
func (s *Service) IsOpen() bool {
	return s.Deadline == nil || s.clk.Now().Before(*s.Deadline)
}

func (s *Service) SubmitRSVP(ctx context.Context, in SubmitRSVPInput) (domain.RSVP, error) {
	if !s.IsOpen() {
		return domain.RSVP{}, &apperr.Error{
			Status:  http.StatusForbidden,
			Code:    apperr.CodeRSVPDeadlinePassed,
			Message: "The RSVP deadline has passed.",
		}
	}

	rec, err := validate(in)
	if err != nil {
		return domain.RSVP{}, err
	}

	exists, err := s.repo.ExistsByEmail(ctx, rec.Email)
	if err != nil {
		return domain.RSVP{}, err
	}
	if exists {
		return domain.RSVP{}, alreadyExists()
	}

	rec.ID = s.newRSVPID()
	rec.CreatedAt = domain.StoredTime(s.clk.Now())
	if err := s.repo.Create(ctx, rec); err != nil {
		// The store closes the race the advisory check above leaves open.
		if errors.Is(err, rsvprepo.ErrEmailAlreadyExists) {
			return domain.RSVP{}, alreadyExists()
		}
		return domain.RSVP{}, err
	}
	return rec, nil
}

func (s *Service) HasExistingRSVP(ctx context.Context, email string) (bool, error) {
	if domain.NormalizeEmail(email) == "" {
		return false, apperr.Validation("invalid email", map[string]any{"email": "must be non-empty"})
	}
	return s.repo.ExistsByEmail(ctx, email)
}

// ListRSVPs returns every response, newest first.
func (s *Service) ListRSVPs(ctx context.Context) ([]domain.RSVP, error) {
	return s.repo.List(ctx)
}

// Summary counts responses; TotalGuests sums the party sizes of attending responses.
func (s *Service) Summary(ctx context.Context) (domain.RSVPSummary, error) {
	rs, err := s.repo.List(ctx)
	if err != nil {
		return domain.RSVPSummary{}, err
	}
	return Summarize(rs), nil
}

func Summarize(rs []domain.RSVP) domain.RSVPSummary {
	var sum domain.RSVPSummary
	for _, r := range rs {
		sum.Responses++
		if r.Attending {
			sum.Attending++
			sum.TotalGuests += r.PartySize
		} else {
			sum.Declined++
		}
	}
	return sum
}

func alreadyExists() *apperr.Error {
	return &apperr.Error{
		Status:  http.StatusConflict,
		Code:    apperr.CodeRSVPAlreadyExists,
		Message: "An RSVP has already been submitted for this email address.",
	}
}

func validate(in SubmitRSVPInput) (domain.RSVP, error) {
	details := map[string]any{}

	name := domain.NormalizeHumanName(in.Name)
	switch {
	case name == "":
		details["name"] = "must be non-empty"
	case utf8.RuneCountInString(name) > maxNameLength:
		details["name"] = fmt.Sprintf("must be at most %d characters", maxNameLength)
	}

	email := strings.TrimSpace(in.Email)
	if err := validateEmail(email); err != nil {
		details["email"] = err.Error()
	}

	if in.PartySize < domain.MinPartySize || in.PartySize > domain.MaxPartySize {
		details["partySize"] = fmt.Sprintf("must be between %d and %d", domain.MinPartySize, domain.MaxPartySize)
	}

	guests := []string{}
	if in.Attending && details["partySize"] == nil {
		var problem string
		guests, problem = additionalGuests(name, in.GuestNames, in.PartySize)
		if problem != "" {
			details["guestNames"] = problem
		}
	}

	dietary := strings.TrimSpace(in.DietaryRestrictions)
	if utf8.RuneCountInString(dietary) > maxDietaryLength {
		details["dietaryRestrictions"] = fmt.Sprintf("must be at most %d characters", maxDietaryLength)
	}
	message := strings.TrimSpace(in.Message)
	if utf8.RuneCountInString(message) > maxMessageLength {
		details["message"] = fmt.Sprintf("must be at most %d characters", maxMessageLength)
	}

	if len(details) > 0 {
		return domain.RSVP{}, apperr.Validation("invalid rsvp", details)
	}
	return domain.RSVP{
		Name:                name,
		Email:               email,
		Attending:           in.Attending,
		PartySize:           in.PartySize,
		GuestNames:          guests,
		DietaryRestrictions: dietary,
		Message:             message,
	}, nil
}

// additionalGuests returns the normalized additional attendee names for a party of
// partySize. Exactly partySize-1 non-blank names are required. A list of partySize
// names whose first entry is the guest's own name is also accepted; the self entry is dropped.
func additionalGuests(name string, raw []string, partySize int) ([]string, string) {
	names := make([]string, 0, len(raw))
	for _, g := range raw {
		names = append(names, domain.NormalizeHumanName(g))
	}
	if len(names) == partySize && strings.EqualFold(names[0], name) {
		names = names[1:]
	}

	want := partySize - 1
	if len(names) != want {
		return nil, fmt.Sprintf("must list exactly %d additional guest name(s)", want)
	}
	for _, n := range names {
		if n == "" {
			return nil, "must not contain blank names"
		}
		if utf8.RuneCountInString(n) > maxNameLength {
			return nil, fmt.Sprintf("names must be at most %d characters", maxNameLength)
		}
	}
	return names, ""
}

func validateEmail(email string) error {
	if email == "" {
		return errors.New("must be non-empty")
	}
	if len(email) > maxEmailLength {
		return fmt.Errorf("must be at most %d characters", maxEmailLength)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return errors.New("must be a valid email address")
	}
	// Ensure no "Name <email@x>" format sneaks in.
	if addr.Address != email {
		return errors.New("must be a bare email address")
	}
	return nil
}
