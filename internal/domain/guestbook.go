package domain

import (
	"strings"
	"time"
)

type Relationship string

const (
	RelationshipFamily    Relationship = "Family"
	RelationshipFriend    Relationship = "Friend"
	RelationshipColleague Relationship = "Colleague"
	RelationshipOther     Relationship = "Other"
)

var relationships = []Relationship{
	RelationshipFamily,
	RelationshipFriend,
	RelationshipColleague,
	RelationshipOther,
}

// ParseRelationship matches s case-insensitively against the known labels and
// returns the canonical spelling.
func ParseRelationship(s string) (Relationship, bool) {
	s = strings.TrimSpace(s)
	for _, r := range relationships {
		if strings.EqualFold(s, string(r)) {
			return r, true
		}
	}
	return "", false
}

// GuestbookMessage is a note left by a guest. Messages start unapproved and are
// only shown publicly once a moderator approves them.
type GuestbookMessage struct {
	ID MessageID

	Name         string
	Relationship Relationship
	Message      string

	IsApproved bool
	IsDeleted  bool

	CreatedAt time.Time
}

// Date is the submission day (UTC) in YYYY-MM-DD form.
func (m GuestbookMessage) Date() string { return DateOf(m.CreatedAt) }

// DateOf formats t as a UTC calendar date.
func DateOf(t time.Time) string { return t.UTC().Format(time.DateOnly) }
