package rsvps

type SubmitRSVPInput struct {
	Name      string
	Email     string
	Attending bool
	PartySize int

	// GuestNames lists additional attendees; ignored when Attending is false.
	GuestNames []string

	DietaryRestrictions string
	Message             string
}
