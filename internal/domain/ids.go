package domain

// RSVPID is an internal identifier for an RSVP record.
type RSVPID string

// MessageID is an internal identifier for a guestbook message.
type MessageID string

// SongID is an internal identifier for a song suggestion.
type SongID string
