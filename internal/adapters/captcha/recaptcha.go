package captcha

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ever-after-studio/wedding-site-api/internal/ports/out/captcha"
)

const DefaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// ReCaptcha verifies challenge tokens against a reCAPTCHA compatible siteverify endpoint.
type ReCaptcha struct {
	secret    string
	verifyURL string
	client    *http.Client
}

type Options struct {
	Secret string
	// VerifyURL overrides DefaultVerifyURL (tests, self-hosted proxies).
	VerifyURL string
	// HTTPClient defaults to a client with a 5s timeout.
	HTTPClient *http.Client
}

func NewReCaptcha(opts Options) (*ReCaptcha, error) {
	if strings.TrimSpace(opts.Secret) == "" {
		return nil, errors.New("captcha secret is required")
	}
	u := strings.TrimSpace(opts.VerifyURL)
	if u == "" {
		u = DefaultVerifyURL
	}
	c := opts.HTTPClient
	if c == nil {
		c = &http.Client{Timeout: 5 * time.Second}
	}
	return &ReCaptcha{secret: opts.Secret, verifyURL: u, client: c}, nil
}

type siteverifyResponse struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes"`
}

func (v *ReCaptcha) Verify(ctx context.Context, token string, remoteIP string) error {
	if strings.TrimSpace(token) == "" {
		return captcha.ErrRejected
	}
	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("siteverify request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("siteverify status %d", resp.StatusCode)
	}
	var out siteverifyResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&out); err != nil {
		return fmt.Errorf("decode siteverify response: %w", err)
	}
	if !out.Success {
		return captcha.ErrRejected
	}
	return nil
}
