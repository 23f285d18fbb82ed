package httpapi

import (
	"time"

	"github.com/oapi-codegen/nullable"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/ever-after-studio/wedding-site-api/internal/domain"
)

type ErrorBody struct {
	Code      string                            `json:"code"`
	Message   string                            `json:"message"`
	Details   nullable.Nullable[map[string]any] `json:"details,omitempty"`
	RequestId nullable.Nullable[string]         `json:"requestId,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type SiteSettingsResponse struct {
	CaptchaRequired bool                         `json:"captchaRequired"`
	CaptchaSiteKey  nullable.Nullable[string]    `json:"captchaSiteKey,omitempty"`
	RSVPDeadline    nullable.Nullable[time.Time] `json:"rsvpDeadline,omitempty"`
	RSVPOpen        bool                         `json:"rsvpOpen"`
}

type SubmitRSVPRequest struct {
	Name                string                    `json:"name"`
	Email               string                    `json:"email"`
	Attending           bool                      `json:"attending"`
	PartySize           int                       `json:"partySize"`
	GuestNames          []string                  `json:"guestNames,omitempty"`
	DietaryRestrictions nullable.Nullable[string] `json:"dietaryRestrictions,omitempty"`
	Message             nullable.Nullable[string] `json:"message,omitempty"`
}

type RSVP struct {
	Id                  string                    `json:"id"`
	Name                string                    `json:"name"`
	Email               string                    `json:"email"`
	Attending           bool                      `json:"attending"`
	PartySize           int                       `json:"partySize"`
	GuestCount          int                       `json:"guestCount"`
	GuestNames          []string                  `json:"guestNames"`
	DietaryRestrictions nullable.Nullable[string] `json:"dietaryRestrictions,omitempty"`
	Message             nullable.Nullable[string] `json:"message,omitempty"`
	CreatedAt           time.Time                 `json:"createdAt"`
}

type SubmitRSVPResponse struct {
	RSVP RSVP `json:"rsvp"`
}

type RSVPExistsResponse struct {
	Exists bool `json:"exists"`
}

type RSVPSummary struct {
	Responses   int `json:"responses"`
	Attending   int `json:"attending"`
	Declined    int `json:"declined"`
	TotalGuests int `json:"totalGuests"`
}

type AdminRSVPsResponse struct {
	Summary RSVPSummary `json:"summary"`
	RSVPs   []RSVP      `json:"rsvps"`
}

type SubmitGuestbookMessageRequest struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Message      string `json:"message"`
}

type GuestbookMessage struct {
	Id           string             `json:"id"`
	Name         string             `json:"name"`
	Relationship string             `json:"relationship"`
	Message      string             `json:"message"`
	Date         openapi_types.Date `json:"date"`
	CreatedAt    time.Time          `json:"createdAt"`
	IsApproved   bool               `json:"isApproved"`
}

type GuestbookMessageResponse struct {
	Message GuestbookMessage `json:"message"`
}

type ListGuestbookMessagesResponse struct {
	Messages []GuestbookMessage `json:"messages"`
}

type SubmitSongSuggestionRequest struct {
	Title       string                    `json:"title"`
	Artist      string                    `json:"artist"`
	SuggestedBy string                    `json:"suggestedBy"`
	Reason      nullable.Nullable[string] `json:"reason,omitempty"`
}

type SongSuggestion struct {
	Id          string                    `json:"id"`
	Title       string                    `json:"title"`
	Artist      string                    `json:"artist"`
	SuggestedBy string                    `json:"suggestedBy"`
	Reason      nullable.Nullable[string] `json:"reason,omitempty"`
	Likes       int                       `json:"likes"`
	Date        openapi_types.Date        `json:"date"`
	CreatedAt   time.Time                 `json:"createdAt"`
	IsApproved  bool                      `json:"isApproved"`
}

type SongSuggestionResponse struct {
	Song SongSuggestion `json:"song"`
}

type ListSongSuggestionsResponse struct {
	Songs []SongSuggestion `json:"songs"`
}

type LikeSongResponse struct {
	Id    string `json:"id"`
	Likes int    `json:"likes"`
}

type LoginRequest struct {
	Password string `json:"password"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type SetApprovalRequest struct {
	Approved *bool `json:"approved"`
}

func nullableString(s string) nullable.Nullable[string] {
	if s == "" {
		return nil
	}
	return nullable.NewNullableWithValue(s)
}

// optionalString reads an optional request field; null and omitted both mean "".
func optionalString(n nullable.Nullable[string]) string {
	if v, err := n.Get(); err == nil {
		return v
	}
	return ""
}

// dateOf converts a domain calendar date (YYYY-MM-DD) to its JSON form.
func dateOf(day string) openapi_types.Date {
	t, err := time.Parse(time.DateOnly, day)
	if err != nil {
		return openapi_types.Date{}
	}
	return openapi_types.Date{Time: t}
}

func rsvpFromDomain(r domain.RSVP) RSVP {
	guests := r.GuestNames
	if guests == nil {
		guests = []string{}
	}
	out := RSVP{
		Id:                  string(r.ID),
		Name:                r.Name,
		Email:               r.Email,
		Attending:           r.Attending,
		PartySize:           r.PartySize,
		GuestNames:          guests,
		DietaryRestrictions: nullableString(r.DietaryRestrictions),
		Message:             nullableString(r.Message),
		CreatedAt:           r.CreatedAt.UTC(),
	}
	if r.Attending {
		out.GuestCount = r.PartySize
	}
	return out
}

func guestbookMessageFromDomain(m domain.GuestbookMessage) GuestbookMessage {
	return GuestbookMessage{
		Id:           string(m.ID),
		Name:         m.Name,
		Relationship: string(m.Relationship),
		Message:      m.Message,
		Date:         dateOf(m.Date()),
		CreatedAt:    m.CreatedAt.UTC(),
		IsApproved:   m.IsApproved,
	}
}

func songFromDomain(s domain.SongSuggestion) SongSuggestion {
	return SongSuggestion{
		Id:          string(s.ID),
		Title:       s.Title,
		Artist:      s.Artist,
		SuggestedBy: s.SuggestedBy,
		Reason:      nullableString(s.Reason),
		Likes:       s.Likes,
		Date:        dateOf(s.Date()),
		CreatedAt:   s.CreatedAt.UTC(),
		IsApproved:  s.IsApproved,
	}
}
