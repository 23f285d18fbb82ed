package sessiontoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
)

const MinSecretLength = 32

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

type Config struct {
	Secret    []byte
	Issuer    string
	Subject   string
	TTL       time.Duration
	ClockSkew time.Duration
}

// Manager issues and verifies HS256-signed admin session tokens and keeps a
// revocation list of logged-out token ids until they would have expired.
type Manager struct {
	cfg   Config
	clock Clock

	mu      sync.Mutex
	revoked map[string]time.Time
}

func New(cfg Config, clock Clock) (*Manager, error) {
	if len(cfg.Secret) < MinSecretLength {
		return nil, fmt.Errorf("session secret must be at least %d bytes", MinSecretLength)
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("session ttl must be positive")
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "wedding-site-api"
	}
	if cfg.Subject == "" {
		cfg.Subject = "admin"
	}
	if clock == nil {
		clock = realClock{}
	}
	return &Manager{cfg: cfg, clock: clock, revoked: map[string]time.Time{}}, nil
}

type header struct {
	Alg string `json:"alg"`
	Typ string `json:"typ"`
}

type Claims struct {
	Iss string `json:"iss"`
	Sub string `json:"sub"`
	Iat int64  `json:"iat"`
	Exp int64  `json:"exp"`
	Jti string `json:"jti"`
}

func (c Claims) ExpiresAt() time.Time { return time.Unix(c.Exp, 0).UTC() }

// Issue mints a new session token valid for the configured TTL.
func (m *Manager) Issue() (string, time.Time, error) {
	now := m.clock.Now().UTC()
	exp := now.Add(m.cfg.TTL)
	c := Claims{
		Iss: m.cfg.Issuer,
		Sub: m.cfg.Subject,
		Iat: now.Unix(),
		Exp: exp.Unix(),
		Jti: uuid.NewString(),
	}
	hb, err := json.Marshal(header{Alg: "HS256", Typ: "JWT"})
	if err != nil {
		return "", time.Time{}, err
	}
	cb, err := json.Marshal(c)
	if err != nil {
		return "", time.Time{}, err
	}
	signingInput := base64.RawURLEncoding.EncodeToString(hb) + "." + base64.RawURLEncoding.EncodeToString(cb)
	sig := m.sign(signingInput)
	return signingInput + "." + base64.RawURLEncoding.EncodeToString(sig), c.ExpiresAt(), nil
}

// Verify checks signature, issuer, subject, expiry (with clock skew) and revocation.
func (m *Manager) Verify(token string) (Claims, error) {
	h, c, signingInput, sig, err := parseToken(token)
	if err != nil {
		return Claims{}, ErrUnauthorized
	}
	if h.Alg != "HS256" {
		return Claims{}, ErrUnauthorized
	}
	if !hmac.Equal(sig, m.sign(signingInput)) {
		return Claims{}, ErrUnauthorized
	}
	if err := m.validateClaims(c); err != nil {
		return Claims{}, ErrUnauthorized
	}
	if m.isRevoked(c.Jti) {
		return Claims{}, ErrUnauthorized
	}
	return c, nil
}

// Revoke verifies token and records its id as revoked until its expiry.
func (m *Manager) Revoke(token string) error {
	c, err := m.Verify(token)
	if err != nil {
		return err
	}
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()
	for jti, exp := range m.revoked {
		if now.After(exp.Add(m.cfg.ClockSkew)) {
			delete(m.revoked, jti)
		}
	}
	m.revoked[c.Jti] = c.ExpiresAt()
	return nil
}

func (m *Manager) isRevoked(jti string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.revoked[jti]
	return ok
}

func (m *Manager) validateClaims(c Claims) error {
	now := m.clock.Now()
	skew := m.cfg.ClockSkew

	if c.Iss != m.cfg.Issuer {
		return fmt.Errorf("iss mismatch")
	}
	if c.Sub != m.cfg.Subject {
		return fmt.Errorf("sub mismatch")
	}
	if c.Jti == "" {
		return fmt.Errorf("missing jti")
	}
	if c.Exp == 0 {
		return fmt.Errorf("missing exp")
	}
	if now.After(time.Unix(c.Exp, 0).Add(skew)) {
		return fmt.Errorf("token expired")
	}
	if now.Before(time.Unix(c.Iat, 0).Add(-skew)) {
		return fmt.Errorf("token issued in the future")
	}
	return nil
}

func (m *Manager) sign(signingInput string) []byte {
	mac := hmac.New(sha256.New, m.cfg.Secret)
	mac.Write([]byte(signingInput))
	return mac.Sum(nil)
}

func parseToken(token string) (header, Claims, string, []byte, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return header{}, Claims{}, "", nil, fmt.Errorf("bad token parts")
	}
	headerB, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return header{}, Claims{}, "", nil, err
	}
	claimsB, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return header{}, Claims{}, "", nil, err
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return header{}, Claims{}, "", nil, err
	}
	var h header
	if err := json.Unmarshal(headerB, &h); err != nil {
		return header{}, Claims{}, "", nil, err
	}
	var c Claims
	if err := json.Unmarshal(claimsB, &c); err != nil {
		return header{}, Claims{}, "", nil, err
	}
	return h, c, parts[0] + "." + parts[1], sig, nil
}
