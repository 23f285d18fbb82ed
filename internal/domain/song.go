package domain

import "time"

// SongSuggestion is a song a guest would like to hear at the reception.
type SongSuggestion struct {
	ID SongID

	Title       string
	Artist      string
	SuggestedBy string
	Reason      string

	Likes int

	IsApproved bool
	IsDeleted  bool

	CreatedAt time.Time
}

// Date is the suggestion day (UTC) in YYYY-MM-DD form.
func (s SongSuggestion) Date() string { return DateOf(s.CreatedAt) }
