package httpapi

import (
	"testing"
	"time"

	"github.com/ever-after-studio/wedding-site-api/internal/domain"
)

func TestDateFields_UseUTCSubmissionDay(t *testing.T) {
	t.Parallel()

	// 23:30 in New York on June 1 is already June 2 in UTC.
	ny := time.FixedZone("EDT", -4*60*60)
	created := time.Date(2026, 6, 1, 23, 30, 0, 0, ny)

	msg := guestbookMessageFromDomain(domain.GuestbookMessage{ID: "m1", Relationship: domain.RelationshipFriend, CreatedAt: created})
	if got := msg.Date.Format(time.DateOnly); got != "2026-06-02" {
		t.Fatalf("guestbook date=%s, want 2026-06-02", got)
	}

	song := songFromDomain(domain.SongSuggestion{ID: "s1", CreatedAt: created})
	if got := song.Date.Format(time.DateOnly); got != "2026-06-02" {
		t.Fatalf("song date=%s, want 2026-06-02", got)
	}
	if !song.CreatedAt.Equal(created) || song.CreatedAt.Location() != time.UTC {
		t.Fatalf("createdAt=%v, want %v in UTC", song.CreatedAt, created)
	}
}
