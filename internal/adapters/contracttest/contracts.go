package contracttest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ever-after-studio/wedding-site-api/internal/domain"
	guestbookrepoport "github.com/ever-after-studio/wedding-site-api/internal/ports/out/guestbookrepo"
	idempotencyport "github.com/ever-after-studio/wedding-site-api/internal/ports/out/idempotency"
	rsvprepoport "github.com/ever-after-studio/wedding-site-api/internal/ports/out/rsvprepo"
	songrepoport "github.com/ever-after-studio/wedding-site-api/internal/ports/out/songrepo"
)

type CleanupFunc = func()

type RSVPRepoFactory func(t *testing.T) (rsvprepoport.Repository, CleanupFunc)
type GuestbookRepoFactory func(t *testing.T) (guestbookrepoport.Repository, CleanupFunc)
type SongRepoFactory func(t *testing.T) (songrepoport.Repository, CleanupFunc)
type IdemStoreFactory func(t *testing.T) (idempotencyport.Store, CleanupFunc)

func RunIdempotencyStore(t *testing.T, newStore IdemStoreFactory) {
	t.Helper()
	ctx := context.Background()

	store, cleanup := newStore(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	fp := idempotencyport.Fingerprint{
		Key:      "k-1",
		Method:   "POST",
		Route:    "/api/rsvps",
		BodyHash: "",
	}
	if _, ok, err := store.Get(ctx, fp); err != nil || ok {
		t.Fatalf("Get(missing) ok=%v err=%v, want ok=false err=nil", ok, err)
	}

	rec := idempotencyport.Record{
		StatusCode:  0,
		ContentType: "text/plain",
		Body:        []byte("hash-abc"),
		CreatedAt:   time.Unix(123, 0).UTC(),
	}
	if err := store.Put(ctx, fp, rec); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := store.Get(ctx, fp)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatalf("expected ok=true")
	}
	if string(got.Body) != "hash-abc" || got.ContentType != "text/plain" || got.StatusCode != 0 {
		t.Fatalf("unexpected record: %+v", got)
	}

	// Overwrite semantics.
	rec2 := rec
	rec2.Body = []byte("hash-def")
	if err := store.Put(ctx, fp, rec2); err != nil {
		t.Fatalf("Put overwrite: %v", err)
	}
	got, ok, err = store.Get(ctx, fp)
	if err != nil || !ok || string(got.Body) != "hash-def" {
		t.Fatalf("expected overwritten record, got ok=%v err=%v body=%q", ok, err, string(got.Body))
	}

	// A different body hash is a different fingerprint.
	other := fp
	other.BodyHash = "hash-def"
	if _, ok, err := store.Get(ctx, other); err != nil || ok {
		t.Fatalf("Get(other fingerprint) ok=%v err=%v, want ok=false", ok, err)
	}

	// Reserve never overwrites an existing record.
	if ok, err := store.Reserve(ctx, fp, idempotencyport.Record{ContentType: "text/plain", Body: []byte("hash-xyz")}); err != nil || ok {
		t.Fatalf("Reserve(existing) ok=%v err=%v, want ok=false", ok, err)
	}
	got, _, _ = store.Get(ctx, fp)
	if string(got.Body) != "hash-def" {
		t.Fatalf("Reserve overwrote record: body=%q", string(got.Body))
	}

	// Concurrent reservations of one fingerprint: exactly one wins.
	race := idempotencyport.Fingerprint{Key: "k-race", Method: "POST", Route: "/api/guestbook"}
	const n = 20
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		mu    sync.Mutex
		wins  int
		errs  []error
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			ok, err := store.Reserve(ctx, race, idempotencyport.Record{ContentType: "text/plain", Body: []byte("h")})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, err)
			}
			if ok {
				wins++
			}
		}()
	}
	close(start)
	wg.Wait()
	if len(errs) > 0 {
		t.Fatalf("Reserve errors: %v", errs)
	}
	if wins != 1 {
		t.Fatalf("Reserve winners=%d, want 1", wins)
	}

	// Release frees the fingerprint for a new reservation.
	if err := store.Release(ctx, race); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if _, ok, err := store.Get(ctx, race); err != nil || ok {
		t.Fatalf("Get(released) ok=%v err=%v, want ok=false", ok, err)
	}
	if ok, err := store.Reserve(ctx, race, idempotencyport.Record{ContentType: "text/plain", Body: []byte("h")}); err != nil || !ok {
		t.Fatalf("Reserve(after release) ok=%v err=%v, want ok=true", ok, err)
	}
	if err := store.Release(ctx, idempotencyport.Fingerprint{Key: "missing"}); err != nil {
		t.Fatalf("Release(missing): %v", err)
	}
}

func RunRSVPRepo(t *testing.T, newRepo RSVPRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	t1 := time.Unix(1000, 0).UTC()
	t2 := time.Unix(2000, 0).UTC()

	ana := domain.RSVP{
		ID:                  domain.RSVPID(uuid.NewString()),
		Name:                "Ana Lee",
		Email:               "Ana@X.com",
		Attending:           true,
		PartySize:           2,
		GuestNames:          []string{"Ben Lee"},
		DietaryRestrictions: "vegetarian",
		CreatedAt:           t1,
	}
	if err := repo.Create(ctx, ana); err != nil {
		t.Fatalf("Create ana: %v", err)
	}

	exists, err := repo.ExistsByEmail(ctx, "  ana@x.com ")
	if err != nil {
		t.Fatalf("ExistsByEmail: %v", err)
	}
	if !exists {
		t.Fatalf("ExistsByEmail(ana) = false, want true")
	}
	if exists, err := repo.ExistsByEmail(ctx, "nobody@x.com"); err != nil || exists {
		t.Fatalf("ExistsByEmail(nobody) = %v err=%v, want false", exists, err)
	}

	// Email uniqueness is enforced by the store.
	dup := ana
	dup.ID = domain.RSVPID(uuid.NewString())
	dup.Email = "ana@x.com"
	if err := repo.Create(ctx, dup); !errors.Is(err, rsvprepoport.ErrEmailAlreadyExists) {
		t.Fatalf("Create duplicate err=%v, want %v", err, rsvprepoport.ErrEmailAlreadyExists)
	}

	cara := domain.RSVP{
		ID:        domain.RSVPID(uuid.NewString()),
		Name:      "Cara Diaz",
		Email:     "cara@example.com",
		Attending: false,
		PartySize: 1,
		Message:   "So sorry to miss it",
		CreatedAt: t2,
	}
	if err := repo.Create(ctx, cara); err != nil {
		t.Fatalf("Create cara: %v", err)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("List len=%d, want 2", len(list))
	}
	// Newest first.
	if list[0].ID != cara.ID || list[1].ID != ana.ID {
		t.Fatalf("List order=[%s %s], want [%s %s]", list[0].ID, list[1].ID, cara.ID, ana.ID)
	}
	got := list[1]
	if got.Name != "Ana Lee" || !got.Attending || got.PartySize != 2 || got.DietaryRestrictions != "vegetarian" {
		t.Fatalf("unexpected ana record: %+v", got)
	}
	if len(got.GuestNames) != 1 || got.GuestNames[0] != "Ben Lee" {
		t.Fatalf("GuestNames=%v, want [Ben Lee]", got.GuestNames)
	}
	if !got.CreatedAt.Equal(t1) {
		t.Fatalf("CreatedAt=%v, want %v", got.CreatedAt, t1)
	}
	if list[0].GuestNames == nil || len(list[0].GuestNames) != 0 {
		t.Fatalf("GuestNames for cara=%v, want empty non-nil slice", list[0].GuestNames)
	}

	// Concurrent submissions with the same email: exactly one wins.
	const n = 8
	var wg sync.WaitGroup
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- repo.Create(ctx, domain.RSVP{
				ID:        domain.RSVPID(uuid.NewString()),
				Name:      "Racer",
				Email:     "race@example.com",
				PartySize: 1,
				CreatedAt: t2,
			})
		}()
	}
	wg.Wait()
	close(results)
	wins := 0
	for err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, rsvprepoport.ErrEmailAlreadyExists):
		default:
			t.Fatalf("concurrent Create unexpected err=%v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("concurrent Create wins=%d, want 1", wins)
	}
}

func RunGuestbookRepo(t *testing.T, newRepo GuestbookRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	older := domain.GuestbookMessage{
		ID:           domain.MessageID(uuid.NewString()),
		Name:         "Dana",
		Relationship: domain.RelationshipFamily,
		Message:      "Welcome to the family!",
		CreatedAt:    time.Unix(1000, 0).UTC(),
	}
	newer := domain.GuestbookMessage{
		ID:           domain.MessageID(uuid.NewString()),
		Name:         "Eli",
		Relationship: domain.RelationshipFriend,
		Message:      "Congrats!",
		CreatedAt:    time.Unix(2000, 0).UTC(),
	}
	for _, m := range []domain.GuestbookMessage{older, newer} {
		if err := repo.Create(ctx, m); err != nil {
			t.Fatalf("Create %s: %v", m.Name, err)
		}
	}

	public, err := repo.List(ctx, guestbookrepoport.ListOptions{Limit: 50})
	if err != nil {
		t.Fatalf("List public: %v", err)
	}
	if len(public) != 0 {
		t.Fatalf("public List len=%d, want 0 before approval", len(public))
	}

	all, err := repo.List(ctx, guestbookrepoport.ListOptions{Limit: 50, IncludeUnapproved: true})
	if err != nil {
		t.Fatalf("List admin: %v", err)
	}
	if len(all) != 2 || all[0].ID != newer.ID || all[1].ID != older.ID {
		t.Fatalf("admin List=%+v, want [newer older]", all)
	}
	if all[0].IsApproved || all[0].IsDeleted || all[0].Relationship != domain.RelationshipFriend {
		t.Fatalf("unexpected stored message: %+v", all[0])
	}

	limited, err := repo.List(ctx, guestbookrepoport.ListOptions{Limit: 1, IncludeUnapproved: true})
	if err != nil || len(limited) != 1 || limited[0].ID != newer.ID {
		t.Fatalf("limited List=%+v err=%v, want [newer]", limited, err)
	}

	if err := repo.SetApproved(ctx, newer.ID, true); err != nil {
		t.Fatalf("SetApproved: %v", err)
	}
	public, err = repo.List(ctx, guestbookrepoport.ListOptions{Limit: 50})
	if err != nil || len(public) != 1 || public[0].ID != newer.ID || !public[0].IsApproved {
		t.Fatalf("public List after approve=%+v err=%v", public, err)
	}

	if err := repo.SoftDelete(ctx, newer.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	public, err = repo.List(ctx, guestbookrepoport.ListOptions{Limit: 50})
	if err != nil || len(public) != 0 {
		t.Fatalf("public List after delete=%+v err=%v, want empty", public, err)
	}
	all, err = repo.List(ctx, guestbookrepoport.ListOptions{Limit: 50, IncludeUnapproved: true})
	if err != nil || len(all) != 1 || all[0].ID != older.ID {
		t.Fatalf("admin List after delete=%+v err=%v, want [older]", all, err)
	}

	// Deleted records cannot be approved again.
	if err := repo.SetApproved(ctx, newer.ID, true); !errors.Is(err, guestbookrepoport.ErrNotFound) {
		t.Fatalf("SetApproved(deleted) err=%v, want %v", err, guestbookrepoport.ErrNotFound)
	}
	if err := repo.SoftDelete(ctx, newer.ID); !errors.Is(err, guestbookrepoport.ErrNotFound) {
		t.Fatalf("SoftDelete(deleted) err=%v, want %v", err, guestbookrepoport.ErrNotFound)
	}
	unknown := domain.MessageID(uuid.NewString())
	if err := repo.SetApproved(ctx, unknown, true); !errors.Is(err, guestbookrepoport.ErrNotFound) {
		t.Fatalf("SetApproved(unknown) err=%v, want %v", err, guestbookrepoport.ErrNotFound)
	}
}

func RunSongRepo(t *testing.T, newRepo SongRepoFactory) {
	t.Helper()
	ctx := context.Background()

	repo, cleanup := newRepo(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}

	mk := func(title string, likes int, ts int64) domain.SongSuggestion {
		return domain.SongSuggestion{
			ID:          domain.SongID(uuid.NewString()),
			Title:       title,
			Artist:      "Artist " + title,
			SuggestedBy: "Guest",
			Likes:       likes,
			IsApproved:  true,
			CreatedAt:   time.Unix(ts, 0).UTC(),
		}
	}
	a := mk("A", 3, 10)
	b := mk("B", 5, 5)
	c := mk("C", 5, 8)
	for _, s := range []domain.SongSuggestion{a, b, c} {
		if err := repo.Create(ctx, s); err != nil {
			t.Fatalf("Create %s: %v", s.Title, err)
		}
	}

	list, err := repo.List(ctx, songrepoport.ListOptions{Limit: 50})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	// Equal likes: the newer suggestion (C) comes first.
	if len(list) != 3 || list[0].ID != c.ID || list[1].ID != b.ID || list[2].ID != a.ID {
		t.Fatalf("List order=%v, want [C B A]", titles(list))
	}

	pending := domain.SongSuggestion{
		ID:          domain.SongID(uuid.NewString()),
		Title:       "Pending",
		Artist:      "Someone",
		SuggestedBy: "Guest",
		Reason:      "first dance",
		CreatedAt:   time.Unix(20, 0).UTC(),
	}
	if err := repo.Create(ctx, pending); err != nil {
		t.Fatalf("Create pending: %v", err)
	}
	list, err = repo.List(ctx, songrepoport.ListOptions{Limit: 50})
	if err != nil || len(list) != 3 {
		t.Fatalf("public List len=%d err=%v, want 3", len(list), err)
	}
	all, err := repo.List(ctx, songrepoport.ListOptions{Limit: 50, IncludeUnapproved: true})
	if err != nil || len(all) != 4 || all[3].ID != pending.ID || all[3].Reason != "first dance" {
		t.Fatalf("admin List=%v err=%v, want pending last", titles(all), err)
	}

	// Concurrent likes are not lost.
	const n = 25
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.IncrementLikes(ctx, a.ID)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("IncrementLikes: %v", err)
		}
	}
	got, err := repo.IncrementLikes(ctx, a.ID)
	if err != nil {
		t.Fatalf("IncrementLikes: %v", err)
	}
	if want := 3 + n + 1; got != want {
		t.Fatalf("likes=%d, want %d", got, want)
	}
	list, err = repo.List(ctx, songrepoport.ListOptions{Limit: 1})
	if err != nil || len(list) != 1 || list[0].ID != a.ID {
		t.Fatalf("List(limit 1)=%v err=%v, want [A]", titles(list), err)
	}

	if _, err := repo.IncrementLikes(ctx, domain.SongID(uuid.NewString())); !errors.Is(err, songrepoport.ErrNotFound) {
		t.Fatalf("IncrementLikes(unknown) err=%v, want %v", err, songrepoport.ErrNotFound)
	}

	if err := repo.SetApproved(ctx, pending.ID, true); err != nil {
		t.Fatalf("SetApproved: %v", err)
	}
	if err := repo.SoftDelete(ctx, b.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	all, err = repo.List(ctx, songrepoport.ListOptions{Limit: 50, IncludeUnapproved: true})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	for _, s := range all {
		if s.ID == b.ID {
			t.Fatalf("deleted suggestion returned by admin List")
		}
	}
	if len(all) != 3 {
		t.Fatalf("admin List len=%d, want 3", len(all))
	}
	if _, err := repo.IncrementLikes(ctx, b.ID); !errors.Is(err, songrepoport.ErrNotFound) {
		t.Fatalf("IncrementLikes(deleted) err=%v, want %v", err, songrepoport.ErrNotFound)
	}
	if err := repo.SetApproved(ctx, b.ID, true); !errors.Is(err, songrepoport.ErrNotFound) {
		t.Fatalf("SetApproved(deleted) err=%v, want %v", err, songrepoport.ErrNotFound)
	}
}

func titles(ss []domain.SongSuggestion) []string {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		out = append(out, s.Title)
	}
	return out
}
