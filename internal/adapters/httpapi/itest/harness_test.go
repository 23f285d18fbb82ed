package itest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ever-after-studio/wedding-site-api/internal/adapters/httpapi"
	memclock "github.com/ever-after-studio/wedding-site-api/internal/adapters/memory/clock"
	memguestbookrepo "github.com/ever-after-studio/wedding-site-api/internal/adapters/memory/guestbookrepo"
	memidempotency "github.com/ever-after-studio/wedding-site-api/internal/adapters/memory/idempotency"
	memrsvprepo "github.com/ever-after-studio/wedding-site-api/internal/adapters/memory/rsvprepo"
	memsongrepo "github.com/ever-after-studio/wedding-site-api/internal/adapters/memory/songrepo"
	pgguestbookrepo "github.com/ever-after-studio/wedding-site-api/internal/adapters/postgres/guestbookrepo"
	pgidempotency "github.com/ever-after-studio/wedding-site-api/internal/adapters/postgres/idempotency"
	pgrsvprepo "github.com/ever-after-studio/wedding-site-api/internal/adapters/postgres/rsvprepo"
	pgsongrepo "github.com/ever-after-studio/wedding-site-api/internal/adapters/postgres/songrepo"
	postgres_testutil "github.com/ever-after-studio/wedding-site-api/internal/adapters/postgres/testutil"
	"github.com/ever-after-studio/wedding-site-api/internal/adapters/sqlite"
	sqliteguestbookrepo "github.com/ever-after-studio/wedding-site-api/internal/adapters/sqlite/guestbookrepo"
	sqliteidempotency "github.com/ever-after-studio/wedding-site-api/internal/adapters/sqlite/idempotency"
	sqlitersvprepo "github.com/ever-after-studio/wedding-site-api/internal/adapters/sqlite/rsvprepo"
	sqlitesongrepo "github.com/ever-after-studio/wedding-site-api/internal/adapters/sqlite/songrepo"
	"github.com/ever-after-studio/wedding-site-api/internal/app/adminauth"
	"github.com/ever-after-studio/wedding-site-api/internal/app/guestbook"
	"github.com/ever-after-studio/wedding-site-api/internal/app/moderation"
	"github.com/ever-after-studio/wedding-site-api/internal/app/rsvps"
	"github.com/ever-after-studio/wedding-site-api/internal/app/site"
	"github.com/ever-after-studio/wedding-site-api/internal/app/songs"
	"github.com/ever-after-studio/wedding-site-api/internal/platform/auth/sessiontoken"
	guestbookrepoport "github.com/ever-after-studio/wedding-site-api/internal/ports/out/guestbookrepo"
	idempotencyport "github.com/ever-after-studio/wedding-site-api/internal/ports/out/idempotency"
	rsvprepoport "github.com/ever-after-studio/wedding-site-api/internal/ports/out/rsvprepo"
	songrepoport "github.com/ever-after-studio/wedding-site-api/internal/ports/out/songrepo"
)

const adminPassword = "itest-admin-password"

type backend string

const (
	backendMemory   backend = "memory"
	backendPostgres backend = "postgres"
	backendSQLite   backend = "sqlite"
)

func backendsFromEnv(t *testing.T) []backend {
	t.Helper()
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ITEST_BACKEND"))) {
	case "", "memory":
		return []backend{backendMemory}
	case "postgres":
		return []backend{backendPostgres}
	case "sqlite":
		return []backend{backendSQLite}
	case "all":
		return []backend{backendMemory, backendSQLite, backendPostgres}
	default:
		t.Fatalf("unknown ITEST_BACKEND value (expected memory|postgres|sqlite|all)")
		return nil
	}
}

type serverOptions struct {
	deadline *time.Time
}

type testServer struct {
	baseURL string
	client  *http.Client
	clk     *memclock.ManualClock
}

func newTestServer(t *testing.T, b backend, opts serverOptions) *testServer {
	t.Helper()

	clk := memclock.NewManualClock(time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC))

	var (
		rsvpRepo      rsvprepoport.Repository
		guestbookRepo guestbookrepoport.Repository
		songRepo      songrepoport.Repository
		idemStore     idempotencyport.Store
	)

	switch b {
	case backendPostgres:
		pool := postgres_testutil.OpenMigratedPool(t)
		rsvpRepo = pgrsvprepo.NewRepo(pool)
		guestbookRepo = pgguestbookrepo.NewRepo(pool)
		songRepo = pgsongrepo.NewRepo(pool)
		idemStore = pgidempotency.NewStore(pool)
	case backendSQLite:
		db, err := sqlite.Open(filepath.Join(t.TempDir(), "itest.db"))
		if err != nil {
			t.Fatalf("sqlite.Open: %v", err)
		}
		t.Cleanup(func() { _ = db.Close() })
		rsvpRepo = sqlitersvprepo.NewRepo(db)
		guestbookRepo = sqliteguestbookrepo.NewRepo(db)
		songRepo = sqlitesongrepo.NewRepo(db)
		idemStore = sqliteidempotency.NewStore(db)
	case backendMemory:
		rsvpRepo = memrsvprepo.NewRepo()
		guestbookRepo = memguestbookrepo.NewRepo()
		songRepo = memsongrepo.NewRepo()
		idemStore = memidempotency.NewStore()
	default:
		t.Fatalf("unknown backend: %s", b)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash admin password: %v", err)
	}
	tokens, err := sessiontoken.New(sessiontoken.Config{
		Secret: []byte("itest-session-secret-0123456789ab"),
		TTL:    time.Hour,
	}, clk)
	if err != nil {
		t.Fatalf("sessiontoken.New: %v", err)
	}
	admin, err := adminauth.NewService(string(hash), tokens)
	if err != nil {
		t.Fatalf("adminauth.NewService: %v", err)
	}

	rsvpSvc := rsvps.NewService(rsvpRepo, clk, opts.deadline)
	api := httpapi.NewServer(httpapi.Services{
		RSVPs:      rsvpSvc,
		Guestbook:  guestbook.NewService(guestbookRepo, clk),
		Songs:      songs.NewService(songRepo, clk),
		Moderation: moderation.NewService(guestbookRepo, songRepo),
		Admin:      admin,
		Site:       site.NewService("", opts.deadline, rsvpSvc),
	}, idemStore, zap.NewNop())
	handler := httpapi.NewRouterWithOptions(api, httpapi.RouterOptions{})

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return &testServer{
		baseURL: srv.URL,
		client:  srv.Client(),
		clk:     clk,
	}
}

func (s *testServer) url(path string) string {
	if strings.HasPrefix(path, "/") {
		return s.baseURL + path
	}
	return s.baseURL + "/" + path
}

func (s *testServer) doJSON(t *testing.T, method string, path string, token string, body any) (int, []byte, http.Header) {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, s.url(path), r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out, resp.Header
}

func (s *testServer) doJSONWithHeaders(t *testing.T, method string, path string, body any, headers map[string]string) (int, []byte, http.Header) {
	t.Helper()

	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req, err := http.NewRequest(method, s.url(path), bytes.NewReader(b))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out, resp.Header
}

func (s *testServer) login(t *testing.T) string {
	t.Helper()
	status, body, _ := s.doJSON(t, http.MethodPost, "/api/admin/session", "", map[string]any{"password": adminPassword})
	if status != http.StatusCreated {
		t.Fatalf("login status=%d body=%s", status, string(body))
	}
	return mustUnmarshal[httpapi.LoginResponse](t, body).Token
}

type errorResponse struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"requestId"`
	} `json:"error"`
}

func mustUnmarshal[T any](t *testing.T, b []byte) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v\nbody=%s", err, string(b))
	}
	return out
}

func requireStatus(t *testing.T, status int, body []byte, want int) {
	t.Helper()
	if status != want {
		t.Fatalf("status=%d want=%d body=%s", status, want, string(body))
	}
}

func requireErrorCode(t *testing.T, status int, body []byte, wantStatus int, wantCode string) {
	t.Helper()
	requireStatus(t, status, body, wantStatus)
	got := mustUnmarshal[errorResponse](t, body)
	if got.Error.Code != wantCode {
		t.Fatalf("error.code=%q want=%q body=%s", got.Error.Code, wantCode, string(body))
	}
	if got.Error.RequestID == "" {
		t.Fatalf("expected requestId in error body: %s", string(body))
	}
}
