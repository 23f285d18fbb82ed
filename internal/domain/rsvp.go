package domain

import "time"

const (
	MinPartySize = 1
	MaxPartySize = 4
)

// RSVP is a guest's response to the invitation.
//
// GuestNames lists the additional attendees only (the submitting guest is Name);
// it is empty when Attending is false.
type RSVP struct {
	ID RSVPID

	Name      string
	Email     string
	Attending bool
	PartySize int

	GuestNames          []string
	DietaryRestrictions string
	Message             string

	CreatedAt time.Time
}

// RSVPSummary aggregates responses for the admin dashboard.
type RSVPSummary struct {
	Responses   int
	Attending   int
	Declined    int
	TotalGuests int
}
