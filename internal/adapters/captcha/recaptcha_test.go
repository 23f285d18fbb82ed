package captcha

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ever-after-studio/wedding-site-api/internal/ports/out/captcha"
)

func newSiteverify(t *testing.T, status int, body string, gotToken *string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
		}
		if r.PostForm.Get("secret") != "s3cret" {
			t.Errorf("secret=%q, want s3cret", r.PostForm.Get("secret"))
		}
		if gotToken != nil {
			*gotToken = r.PostForm.Get("response")
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestReCaptcha_Success(t *testing.T) {
	t.Parallel()

	var token string
	srv := newSiteverify(t, http.StatusOK, `{"success":true}`, &token)
	v, err := NewReCaptcha(Options{Secret: "s3cret", VerifyURL: srv.URL})
	if err != nil {
		t.Fatalf("NewReCaptcha: %v", err)
	}
	if err := v.Verify(context.Background(), "tok-1", "203.0.113.9"); err != nil {
		t.Fatalf("Verify err=%v, want nil", err)
	}
	if token != "tok-1" {
		t.Fatalf("response=%q, want tok-1", token)
	}
}

func TestReCaptcha_Rejected(t *testing.T) {
	t.Parallel()

	srv := newSiteverify(t, http.StatusOK, `{"success":false,"error-codes":["invalid-input-response"]}`, nil)
	v, _ := NewReCaptcha(Options{Secret: "s3cret", VerifyURL: srv.URL})
	if err := v.Verify(context.Background(), "bad", ""); !errors.Is(err, captcha.ErrRejected) {
		t.Fatalf("Verify err=%v, want %v", err, captcha.ErrRejected)
	}
}

func TestReCaptcha_EmptyTokenRejectedWithoutCall(t *testing.T) {
	t.Parallel()

	v, _ := NewReCaptcha(Options{Secret: "s3cret", VerifyURL: "http://127.0.0.1:0"})
	if err := v.Verify(context.Background(), "  ", ""); !errors.Is(err, captcha.ErrRejected) {
		t.Fatalf("Verify err=%v, want %v", err, captcha.ErrRejected)
	}
}

func TestReCaptcha_ProviderFailureIsNotRejection(t *testing.T) {
	t.Parallel()

	srv := newSiteverify(t, http.StatusBadGateway, "upstream down", nil)
	v, _ := NewReCaptcha(Options{Secret: "s3cret", VerifyURL: srv.URL})
	err := v.Verify(context.Background(), "tok", "")
	if err == nil || errors.Is(err, captcha.ErrRejected) {
		t.Fatalf("Verify err=%v, want transport error", err)
	}
}

func TestNewReCaptcha_RequiresSecret(t *testing.T) {
	t.Parallel()

	if _, err := NewReCaptcha(Options{}); err == nil {
		t.Fatalf("NewReCaptcha err=nil, want error")
	}
}
