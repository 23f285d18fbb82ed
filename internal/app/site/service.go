package site

import (
	"time"
)

// Settings is the public configuration the pages need to render forms.
type Settings struct {
	CaptchaRequired bool
	CaptchaSiteKey  string
	RSVPDeadline    *time.Time
	RSVPOpen        bool
}

type rsvpWindow interface {
	IsOpen() bool
}

type Service struct {
	captchaSiteKey string
	deadline       *time.Time
	rsvps          rsvpWindow
}

func NewService(captchaSiteKey string, deadline *time.Time, rsvps rsvpWindow) *Service {
	return &Service{captchaSiteKey: captchaSiteKey, deadline: deadline, rsvps: rsvps}
}

func (s *Service) Settings() Settings {
	return Settings{
		CaptchaRequired: s.captchaSiteKey != "",
		CaptchaSiteKey:  s.captchaSiteKey,
		RSVPDeadline:    s.deadline,
		RSVPOpen:        s.rsvps == nil || s.rsvps.IsOpen(),
	}
}
