package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	captchaadapter "github.com/ever-after-studio/wedding-site-api/internal/adapters/captcha"
	"github.com/ever-after-studio/wedding-site-api/internal/adapters/httpapi"
	memguestbookrepo "github.com/ever-after-studio/wedding-site-api/internal/adapters/memory/guestbookrepo"
	memidempotency "github.com/ever-after-studio/wedding-site-api/internal/adapters/memory/idempotency"
	memrsvprepo "github.com/ever-after-studio/wedding-site-api/internal/adapters/memory/rsvprepo"
	memsongrepo "github.com/ever-after-studio/wedding-site-api/internal/adapters/memory/songrepo"
	postgres "github.com/ever-after-studio/wedding-site-api/internal/adapters/postgres"
	pgguestbookrepo "github.com/ever-after-studio/wedding-site-api/internal/adapters/postgres/guestbookrepo"
	pgidempotency "github.com/ever-after-studio/wedding-site-api/internal/adapters/postgres/idempotency"
	pgrsvprepo "github.com/ever-after-studio/wedding-site-api/internal/adapters/postgres/rsvprepo"
	pgsongrepo "github.com/ever-after-studio/wedding-site-api/internal/adapters/postgres/songrepo"
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
	platformclock "github.com/ever-after-studio/wedding-site-api/internal/platform/clock"
	"github.com/ever-after-studio/wedding-site-api/internal/platform/config"
	"github.com/ever-after-studio/wedding-site-api/internal/platform/logging"
	captchaport "github.com/ever-after-studio/wedding-site-api/internal/ports/out/captcha"
	guestbookrepoport "github.com/ever-after-studio/wedding-site-api/internal/ports/out/guestbookrepo"
	idempotencyport "github.com/ever-after-studio/wedding-site-api/internal/ports/out/idempotency"
	rsvprepoport "github.com/ever-after-studio/wedding-site-api/internal/ports/out/rsvprepo"
	songrepoport "github.com/ever-after-studio/wedding-site-api/internal/ports/out/songrepo"
)

type stores struct {
	rsvps     rsvprepoport.Repository
	guestbook guestbookrepoport.Repository
	songs     songrepoport.Repository
	idem      idempotencyport.Store
	close     func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}

	os.Exit(finish(log, run(cfg, log)))
}

// finish logs a failed run, flushes the logger and returns the process exit code.
func finish(log *zap.Logger, err error) int {
	code := 0
	if err != nil {
		log.Error("api exited", zap.Error(err))
		code = 1
	}
	_ = log.Sync()
	return code
}

func run(cfg config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clk := platformclock.NewSystemClock()

	st, err := openStores(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()
	log.Info("storage ready", zap.String("backend", cfg.StorageBackend))

	admin, err := newAdminAuth(cfg, log)
	if err != nil {
		return err
	}

	var verifier captchaport.Verifier
	if cfg.CaptchaEnabled() {
		rc, err := captchaadapter.NewReCaptcha(captchaadapter.Options{
			Secret:    cfg.CaptchaSecretKey,
			VerifyURL: cfg.CaptchaVerifyURL,
		})
		if err != nil {
			return fmt.Errorf("captcha: %w", err)
		}
		verifier = rc
	}

	rsvpSvc := rsvps.NewService(st.rsvps, clk, cfg.RSVPDeadline)
	api := httpapi.NewServer(httpapi.Services{
		RSVPs:      rsvpSvc,
		Guestbook:  guestbook.NewService(st.guestbook, clk),
		Songs:      songs.NewService(st.songs, clk),
		Moderation: moderation.NewService(st.guestbook, st.songs),
		Admin:      admin,
		Site:       site.NewService(cfg.CaptchaSiteKey, cfg.RSVPDeadline, rsvpSvc),
	}, st.idem, log)

	handler := httpapi.NewRouterWithOptions(api, httpapi.RouterOptions{
		Captcha:   verifier,
		StaticDir: cfg.StaticDir,
		AccessLog: true,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("api listening", zap.String("addr", srv.Addr), zap.Bool("captcha", verifier != nil))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func openStores(ctx context.Context, cfg config.Config) (stores, error) {
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.PoolOptions{})
		if err != nil {
			return stores{}, fmt.Errorf("postgres: %w", err)
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return stores{}, fmt.Errorf("postgres migrate: %w", err)
		}
		return stores{
			rsvps:     pgrsvprepo.NewRepo(pool),
			guestbook: pgguestbookrepo.NewRepo(pool),
			songs:     pgsongrepo.NewRepo(pool),
			idem:      pgidempotency.NewStore(pool),
			close:     pool.Close,
		}, nil
	case config.BackendSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return stores{}, fmt.Errorf("sqlite: %w", err)
		}
		return stores{
			rsvps:     sqlitersvprepo.NewRepo(db),
			guestbook: sqliteguestbookrepo.NewRepo(db),
			songs:     sqlitesongrepo.NewRepo(db),
			idem:      sqliteidempotency.NewStore(db),
			close:     func() { _ = db.Close() },
		}, nil
	default:
		return stores{
			rsvps:     memrsvprepo.NewRepo(),
			guestbook: memguestbookrepo.NewRepo(),
			songs:     memsongrepo.NewRepo(),
			idem:      memidempotency.NewStore(),
			close:     func() {},
		}, nil
	}
}

func newAdminAuth(cfg config.Config, log *zap.Logger) (*adminauth.Service, error) {
	hash := cfg.AdminPasswordHash
	if hash == "" {
		h, err := adminauth.HashPassword(cfg.AdminPassword)
		if err != nil {
			return nil, fmt.Errorf("hash admin password: %w", err)
		}
		hash = h
	}

	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		secret = make([]byte, sessiontoken.MinSecretLength)
		if _, err := rand.Read(secret); err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
		log.Warn("SESSION_SECRET not set; admin sessions will not survive a restart")
	}

	tokens, err := sessiontoken.New(sessiontoken.Config{Secret: secret, TTL: cfg.SessionTTL}, nil)
	if err != nil {
		return nil, fmt.Errorf("session tokens: %w", err)
	}
	return adminauth.NewService(hash, tokens)
}
