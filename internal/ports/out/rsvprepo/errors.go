package rsvprepo

import "errors"

var (
	// ErrEmailAlreadyExists indicates an RSVP has already been recorded for the email.
	ErrEmailAlreadyExists = errors.New("rsvp email already exists")

	// ErrAlreadyExists indicates an RSVP already exists with the provided ID.
	ErrAlreadyExists = errors.New("rsvp already exists")
)
