package songs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	memclock "github.com/ever-after-studio/wedding-site-api/internal/adapters/memory/clock"
	memsongrepo "github.com/ever-after-studio/wedding-site-api/internal/adapters/memory/songrepo"
	"github.com/ever-after-studio/wedding-site-api/internal/app/apperr"
	"github.com/ever-after-studio/wedding-site-api/internal/domain"
)

func newTestService(t *testing.T) (*Service, *memsongrepo.Repo, *memclock.ManualClock) {
	t.Helper()
	repo := memsongrepo.NewRepo()
	clk := memclock.NewManualClock(time.Unix(1_800_000_000, 0).UTC())
	return NewService(repo, clk), repo, clk
}

func TestService_SubmitSongSuggestion(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()
	s, err := svc.SubmitSongSuggestion(ctx, SubmitSongInput{
		Title:       " September ",
		Artist:      "Earth, Wind & Fire",
		SuggestedBy: "Dana",
	})
	if err != nil {
		t.Fatalf("SubmitSongSuggestion err=%v", err)
	}
	if s.Likes != 0 || s.IsApproved || s.Title != "September" {
		t.Fatalf("unexpected suggestion: %+v", s)
	}
	public, err := svc.ListSongSuggestions(ctx, 50, false)
	if err != nil || len(public) != 0 {
		t.Fatalf("public list=%+v err=%v, want empty", public, err)
	}
	admin, err := svc.ListSongSuggestions(ctx, 0, true)
	if err != nil || len(admin) != 1 {
		t.Fatalf("admin list=%+v err=%v, want 1", admin, err)
	}
}

func TestService_SubmitSongSuggestion_Validation(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	_, err := svc.SubmitSongSuggestion(context.Background(), SubmitSongInput{Reason: "no fields"})
	ae := (*apperr.Error)(nil)
	if !errors.As(err, &ae) || ae.Status != 422 {
		t.Fatalf("err=%v, want VALIDATION_ERROR 422", err)
	}
	for _, f := range []string{"title", "artist", "suggestedBy"} {
		if _, ok := ae.Details[f]; !ok {
			t.Fatalf("details=%v, missing %s", ae.Details, f)
		}
	}
}

func TestService_ListOrdering(t *testing.T) {
	t.Parallel()

	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	mk := func(id string, likes int, ts int64) domain.SongSuggestion {
		return domain.SongSuggestion{
			ID: domain.SongID(id), Title: id, Artist: "x", SuggestedBy: "y",
			Likes: likes, IsApproved: true, CreatedAt: time.Unix(ts, 0).UTC(),
		}
	}
	for _, s := range []domain.SongSuggestion{mk("A", 3, 10), mk("B", 5, 5), mk("C", 5, 8)} {
		if err := repo.Create(ctx, s); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	got, err := svc.ListSongSuggestions(ctx, 50, false)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 || got[0].ID != "C" || got[1].ID != "B" || got[2].ID != "A" {
		t.Fatalf("order=%v", got)
	}
}

func TestService_LikeSongSuggestion_Concurrent(t *testing.T) {
	t.Parallel()

	svc, _, _ := newTestService(t)
	ctx := context.Background()
	s, err := svc.SubmitSongSuggestion(ctx, SubmitSongInput{Title: "T", Artist: "A", SuggestedBy: "G"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.LikeSongSuggestion(ctx, s.ID); err != nil {
				t.Errorf("Like: %v", err)
			}
		}()
	}
	wg.Wait()

	likes, err := svc.LikeSongSuggestion(ctx, s.ID)
	if err != nil {
		t.Fatalf("Like: %v", err)
	}
	if likes != n+1 {
		t.Fatalf("likes=%d, want %d", likes, n+1)
	}
}

func TestService_LikeSongSuggestion_NotFound(t *testing.T) {
	t.Parallel()

	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	for _, id := range []domain.SongID{"", "missing"} {
		_, err := svc.LikeSongSuggestion(ctx, id)
		ae := (*apperr.Error)(nil)
		if !errors.As(err, &ae) || ae.Status != 404 || ae.Code != apperr.CodeNotFound {
			t.Fatalf("Like(%q) err=%v, want NOT_FOUND 404", id, err)
		}
	}

	s, _ := svc.SubmitSongSuggestion(ctx, SubmitSongInput{Title: "T", Artist: "A", SuggestedBy: "G"})
	if err := repo.SoftDelete(ctx, s.ID); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if _, err := svc.LikeSongSuggestion(ctx, s.ID); err == nil {
		t.Fatalf("Like(deleted) err=nil, want NOT_FOUND")
	}
}

func TestService_SubmitSongSuggestion_MicrosecondCreatedAt(t *testing.T) {
	t.Parallel()

	svc, _, clk := newTestService(t)
	ctx := context.Background()
	clk.Set(time.Unix(1_800_000_000, 987_654_321).UTC())

	s, err := svc.SubmitSongSuggestion(ctx, SubmitSongInput{Title: "Title", Artist: "Artist", SuggestedBy: "Guest"})
	if err != nil {
		t.Fatalf("SubmitSongSuggestion err=%v", err)
	}
	if s.CreatedAt.Nanosecond() != 987_654_000 {
		t.Fatalf("CreatedAt=%v, want microsecond precision", s.CreatedAt)
	}
	listed, err := svc.ListSongSuggestions(ctx, 0, true)
	if err != nil || len(listed) != 1 || !listed[0].CreatedAt.Equal(s.CreatedAt) {
		t.Fatalf("listed=%+v err=%v, want CreatedAt %v", listed, err, s.CreatedAt)
	}
}
