package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ever-after-studio/wedding-site-api/internal/ports/out/captcha"
)

type RouterOptions struct {
	// Captcha, when set, guards the guest submission endpoints.
	Captcha captcha.Verifier

	// StaticDir, when set, is served at / for the site pages.
	StaticDir string

	// AccessLog toggles per-request logging.
	AccessLog bool
}

// NewRouter constructs the API HTTP router with default options.
func NewRouter(s *Server) http.Handler {
	return NewRouterWithOptions(s, RouterOptions{})
}

func NewRouterWithOptions(s *Server, opts RouterOptions) http.Handler {
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()

	// Baseline production-safe middleware (minimal but useful).
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if opts.AccessLog {
		r.Use(NewAccessLogMiddleware(log))
	}
	r.Use(middleware.Recoverer)

	// Health endpoint is used for infra checks.
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	captchaMW := NewCaptchaMiddleware(opts.Captcha, log)
	adminMW := NewAdminAuthMiddleware(s.Admin)

	r.Route("/api", func(r chi.Router) {
		r.Get("/site", s.GetSiteSettings)

		r.With(captchaMW).Post("/rsvps", s.SubmitRSVP)
		r.Get("/rsvps/exists", s.RSVPExists)

		r.With(captchaMW).Post("/guestbook", s.SubmitGuestbookMessage)
		r.Get("/guestbook", s.ListGuestbookMessages)

		r.With(captchaMW).Post("/songs", s.SubmitSongSuggestion)
		r.Get("/songs", s.ListSongSuggestions)
		r.Post("/songs/{songId}/like", s.LikeSongSuggestion)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/session", s.AdminLogin)

			r.Group(func(r chi.Router) {
				r.Use(adminMW)
				r.Delete("/session", s.AdminLogout)
				r.Get("/rsvps", s.AdminListRSVPs)
				r.Get("/guestbook", s.AdminListGuestbookMessages)
				r.Get("/songs", s.AdminListSongSuggestions)
				r.Put("/{collection}/{recordId}/approval", s.AdminSetApproval)
				r.Delete("/{collection}/{recordId}", s.AdminSoftDelete)
			})
		})
	})

	if opts.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(opts.StaticDir)))
	}
	return r
}
