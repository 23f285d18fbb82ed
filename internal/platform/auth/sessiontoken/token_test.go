package sessiontoken_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ever-after-studio/wedding-site-api/internal/platform/auth/sessiontoken"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }
func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newManager(t *testing.T, clk sessiontoken.Clock) *sessiontoken.Manager {
	t.Helper()
	m, err := sessiontoken.New(sessiontoken.Config{
		Secret:    testSecret,
		Issuer:    "test-iss",
		TTL:       time.Hour,
		ClockSkew: 30 * time.Second,
	}, clk)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func TestManager_IssueVerify(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{now: time.Unix(1700000000, 0)}
	m := newManager(t, clk)

	tok, exp, err := m.Issue()
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if want := clk.Now().Add(time.Hour).UTC(); !exp.Equal(want) {
		t.Fatalf("expiresAt=%v, want %v", exp, want)
	}
	c, err := m.Verify(tok)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if c.Iss != "test-iss" || c.Sub != "admin" || c.Jti == "" {
		t.Fatalf("unexpected claims: %+v", c)
	}
}

func TestManager_Verify_Expired(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{now: time.Unix(1700000000, 0)}
	m := newManager(t, clk)
	tok, _, _ := m.Issue()

	// Within skew: still valid.
	clk.Advance(time.Hour + 10*time.Second)
	if _, err := m.Verify(tok); err != nil {
		t.Fatalf("Verify within skew err=%v, want nil", err)
	}
	clk.Advance(time.Minute)
	if _, err := m.Verify(tok); !errors.Is(err, sessiontoken.ErrUnauthorized) {
		t.Fatalf("Verify expired err=%v, want %v", err, sessiontoken.ErrUnauthorized)
	}
}

func TestManager_Verify_TamperedOrForeign(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{now: time.Unix(1700000000, 0)}
	m := newManager(t, clk)
	tok, _, _ := m.Issue()

	parts := strings.Split(tok, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]
	if _, err := m.Verify(tampered); !errors.Is(err, sessiontoken.ErrUnauthorized) {
		t.Fatalf("Verify tampered err=%v, want %v", err, sessiontoken.ErrUnauthorized)
	}

	other, err := sessiontoken.New(sessiontoken.Config{
		Secret: []byte("ffffffffffffffffffffffffffffffff"),
		Issuer: "test-iss",
		TTL:    time.Hour,
	}, clk)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	foreign, _, _ := other.Issue()
	if _, err := m.Verify(foreign); !errors.Is(err, sessiontoken.ErrUnauthorized) {
		t.Fatalf("Verify foreign err=%v, want %v", err, sessiontoken.ErrUnauthorized)
	}

	for _, bad := range []string{"", "a.b", "not.a.token"} {
		if _, err := m.Verify(bad); !errors.Is(err, sessiontoken.ErrUnauthorized) {
			t.Fatalf("Verify(%q) err=%v, want %v", bad, err, sessiontoken.ErrUnauthorized)
		}
	}
}

func TestManager_Revoke(t *testing.T) {
	t.Parallel()

	clk := &fakeClock{now: time.Unix(1700000000, 0)}
	m := newManager(t, clk)
	a, _, _ := m.Issue()
	b, _, _ := m.Issue()

	if err := m.Revoke(a); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if _, err := m.Verify(a); !errors.Is(err, sessiontoken.ErrUnauthorized) {
		t.Fatalf("Verify revoked err=%v, want %v", err, sessiontoken.ErrUnauthorized)
	}
	if _, err := m.Verify(b); err != nil {
		t.Fatalf("Verify other session err=%v, want nil", err)
	}
	if err := m.Revoke(a); !errors.Is(err, sessiontoken.ErrUnauthorized) {
		t.Fatalf("Revoke twice err=%v, want %v", err, sessiontoken.ErrUnauthorized)
	}
}

func TestNew_RejectsShortSecret(t *testing.T) {
	t.Parallel()

	if _, err := sessiontoken.New(sessiontoken.Config{Secret: []byte("short"), TTL: time.Hour}, nil); err == nil {
		t.Fatalf("New err=nil, want error")
	}
	if _, err := sessiontoken.New(sessiontoken.Config{Secret: testSecret}, nil); err == nil {
		t.Fatalf("New(no ttl) err=nil, want error")
	}
}
