package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/nullable"
	"go.uber.org/zap"

	"github.com/ever-after-studio/wedding-site-api/internal/app/adminauth"
	"github.com/ever-after-studio/wedding-site-api/internal/app/apperr"
	"github.com/ever-after-studio/wedding-site-api/internal/app/guestbook"
	"github.com/ever-after-studio/wedding-site-api/internal/app/moderation"
	"github.com/ever-after-studio/wedding-site-api/internal/app/rsvps"
	"github.com/ever-after-studio/wedding-site-api/internal/app/site"
	"github.com/ever-after-studio/wedding-site-api/internal/app/songs"
	"github.com/ever-after-studio/wedding-site-api/internal/domain"
	"github.com/ever-after-studio/wedding-site-api/internal/ports/out/idempotency"
)

const maxBodyBytes = 64 << 10

type Services struct {
	RSVPs      *rsvps.Service
	Guestbook  *guestbook.Service
	Songs      *songs.Service
	Moderation *moderation.Service
	Admin      *adminauth.Service
	Site       *site.Service
}

// Server implements the HTTP handlers on top of the application services.
type Server struct {
	Services

	Idem idempotency.Store
	Log  *zap.Logger
}

func NewServer(svcs Services, idem idempotency.Store, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{Services: svcs, Idem: idem, Log: log}
}

func (s *Server) GetSiteSettings(w http.ResponseWriter, r *http.Request) {
	st := s.Site.Settings()
	resp := SiteSettingsResponse{
		CaptchaRequired: st.CaptchaRequired,
		CaptchaSiteKey:  nullableString(st.CaptchaSiteKey),
		RSVPOpen:        st.RSVPOpen,
	}
	if st.RSVPDeadline != nil {
		resp.RSVPDeadline = nullable.NewNullableWithValue(st.RSVPDeadline.UTC())
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) SubmitRSVP(w http.ResponseWriter, r *http.Request) {
	var req SubmitRSVPRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	canon := req
	canon.Name = domain.NormalizeHumanName(canon.Name)
	canon.Email = domain.NormalizeEmail(canon.Email)

	s.createIdempotent(w, r, "/api/rsvps", canon, func() (any, error) {
		rec, err := s.RSVPs.SubmitRSVP(r.Context(), rsvps.SubmitRSVPInput{
			Name:                req.Name,
			Email:               req.Email,
			Attending:           req.Attending,
			PartySize:           req.PartySize,
			GuestNames:          req.GuestNames,
			DietaryRestrictions: optionalString(req.DietaryRestrictions),
			Message:             optionalString(req.Message),
		})
		if err != nil {
			return nil, err
		}
		return SubmitRSVPResponse{RSVP: rsvpFromDomain(rec)}, nil
	})
}

func (s *Server) RSVPExists(w http.ResponseWriter, r *http.Request) {
	exists, err := s.RSVPs.HasExistingRSVP(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		writeAppError(s.Log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RSVPExistsResponse{Exists: exists})
}

func (s *Server) SubmitGuestbookMessage(w http.ResponseWriter, r *http.Request) {
	var req SubmitGuestbookMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	canon := req
	canon.Name = domain.NormalizeHumanName(canon.Name)

	s.createIdempotent(w, r, "/api/guestbook", canon, func() (any, error) {
		m, err := s.Guestbook.SubmitGuestbookMessage(r.Context(), guestbook.SubmitMessageInput{
			Name:         req.Name,
			Relationship: req.Relationship,
			Message:      req.Message,
		})
		if err != nil {
			return nil, err
		}
		return GuestbookMessageResponse{Message: guestbookMessageFromDomain(m)}, nil
	})
}

func (s *Server) ListGuestbookMessages(w http.ResponseWriter, r *http.Request) {
	s.listGuestbookMessages(w, r, false)
}

func (s *Server) AdminListGuestbookMessages(w http.ResponseWriter, r *http.Request) {
	s.listGuestbookMessages(w, r, true)
}

func (s *Server) listGuestbookMessages(w http.ResponseWriter, r *http.Request, includeUnapproved bool) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	ms, err := s.Guestbook.ListGuestbookMessages(r.Context(), limit, includeUnapproved)
	if err != nil {
		writeAppError(s.Log, w, r, err)
		return
	}
	out := make([]GuestbookMessage, 0, len(ms))
	for _, m := range ms {
		out = append(out, guestbookMessageFromDomain(m))
	}
	writeJSON(w, http.StatusOK, ListGuestbookMessagesResponse{Messages: out})
}

func (s *Server) SubmitSongSuggestion(w http.ResponseWriter, r *http.Request) {
	var req SubmitSongSuggestionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	canon := req
	canon.Title = strings.TrimSpace(canon.Title)
	canon.Artist = strings.TrimSpace(canon.Artist)
	canon.SuggestedBy = domain.NormalizeHumanName(canon.SuggestedBy)

	s.createIdempotent(w, r, "/api/songs", canon, func() (any, error) {
		song, err := s.Songs.SubmitSongSuggestion(r.Context(), songs.SubmitSongInput{
			Title:       req.Title,
			Artist:      req.Artist,
			SuggestedBy: req.SuggestedBy,
			Reason:      optionalString(req.Reason),
		})
		if err != nil {
			return nil, err
		}
		return SongSuggestionResponse{Song: songFromDomain(song)}, nil
	})
}

func (s *Server) ListSongSuggestions(w http.ResponseWriter, r *http.Request) {
	s.listSongSuggestions(w, r, false)
}

func (s *Server) AdminListSongSuggestions(w http.ResponseWriter, r *http.Request) {
	s.listSongSuggestions(w, r, true)
}

func (s *Server) listSongSuggestions(w http.ResponseWriter, r *http.Request, includeUnapproved bool) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	ss, err := s.Songs.ListSongSuggestions(r.Context(), limit, includeUnapproved)
	if err != nil {
		writeAppError(s.Log, w, r, err)
		return
	}
	out := make([]SongSuggestion, 0, len(ss))
	for _, song := range ss {
		out = append(out, songFromDomain(song))
	}
	writeJSON(w, http.StatusOK, ListSongSuggestionsResponse{Songs: out})
}

func (s *Server) LikeSongSuggestion(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "songId")
	likes, err := s.Songs.LikeSongSuggestion(r.Context(), domain.SongID(id))
	if err != nil {
		writeAppError(s.Log, w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, LikeSongResponse{Id: id, Likes: likes})
}

func (s *Server) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	sess, err := s.Admin.Login(r.Context(), req.Password)
	if err != nil {
		var ae *apperr.Error
		if errors.As(err, &ae) && ae.Code == apperr.CodeUnauthorized {
			s.Log.Warn("admin login rejected", zap.String("remoteIp", clientIP(r)))
		}
		writeAppError(s.Log, w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, LoginResponse{Token: sess.Token, ExpiresAt: sess.ExpiresAt.UTC()})
}

func (s *Server) AdminLogout(w http.ResponseWriter, r *http.Request) {
	token, ok := SessionTokenFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, apperr.CodeUnauthorized, "missing session", nil)
		return
	}
	if err := s.Admin.Logout(r.Context(), token); err != nil {
		writeAppError(s.Log, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) AdminListRSVPs(w http.ResponseWriter, r *http.Request) {
	rs, err := s.RSVPs.ListRSVPs(r.Context())
	if err != nil {
		writeAppError(s.Log, w, r, err)
		return
	}
	sum := rsvps.Summarize(rs)
	out := AdminRSVPsResponse{
		Summary: RSVPSummary{
			Responses:   sum.Responses,
			Attending:   sum.Attending,
			Declined:    sum.Declined,
			TotalGuests: sum.TotalGuests,
		},
		RSVPs: make([]RSVP, 0, len(rs)),
	}
	for _, rec := range rs {
		out.RSVPs = append(out.RSVPs, rsvpFromDomain(rec))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) AdminSetApproval(w http.ResponseWriter, r *http.Request) {
	var req SetApprovalRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Approved == nil {
		writeError(w, r, http.StatusUnprocessableEntity, apperr.CodeValidation, "invalid approval", map[string]any{"approved": "is required"})
		return
	}
	err := s.Moderation.SetApproval(r.Context(), chi.URLParam(r, "collection"), chi.URLParam(r, "recordId"), *req.Approved)
	if err != nil {
		writeAppError(s.Log, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) AdminSoftDelete(w http.ResponseWriter, r *http.Request) {
	err := s.Moderation.SoftDelete(r.Context(), chi.URLParam(r, "collection"), chi.URLParam(r, "recordId"))
	if err != nil {
		writeAppError(s.Log, w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		msg := "malformed JSON"
		if errors.Is(err, io.EOF) {
			msg = "missing request body"
		}
		writeError(w, r, http.StatusUnprocessableEntity, apperr.CodeValidation, "invalid request body", map[string]any{"body": msg})
		return false
	}
	return true
}

func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, apperr.CodeValidation, "invalid limit", map[string]any{"limit": "must be an integer"})
		return 0, false
	}
	return n, true
}
