package httpapi

import (
	"errors"
	"net"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/ever-after-studio/wedding-site-api/internal/app/apperr"
	"github.com/ever-after-studio/wedding-site-api/internal/ports/out/captcha"
)

const CaptchaHeader = "X-Captcha-Token"

// NewCaptchaMiddleware requires a valid challenge token on guest submissions.
// A nil verifier disables the check.
func NewCaptchaMiddleware(v captcha.Verifier, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if v == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimSpace(r.Header.Get(CaptchaHeader))
			if token == "" {
				writeError(w, r, http.StatusBadRequest, apperr.CodeCaptchaRequired, "Please complete the CAPTCHA challenge.", nil)
				return
			}
			if err := v.Verify(r.Context(), token, clientIP(r)); err != nil {
				if errors.Is(err, captcha.ErrRejected) {
					writeError(w, r, http.StatusBadRequest, apperr.CodeCaptchaFailed, "CAPTCHA verification failed. Please try again.", nil)
					return
				}
				writeAppError(log, w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP strips the port from RemoteAddr; middleware.RealIP may already have replaced it.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
