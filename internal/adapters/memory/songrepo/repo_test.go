package songrepo

import (
	"testing"
	"time"

	"github.com/ever-after-studio/wedding-site-api/internal/domain"
)

func TestSortByPopularity_TiesBrokenByRecency(t *testing.T) {
	t.Parallel()

	ss := []domain.SongSuggestion{
		{ID: "a", Title: "A", Likes: 3, CreatedAt: time.Unix(10, 0)},
		{ID: "b", Title: "B", Likes: 5, CreatedAt: time.Unix(5, 0)},
		{ID: "c", Title: "C", Likes: 5, CreatedAt: time.Unix(8, 0)},
	}
	SortByPopularity(ss)

	got := []domain.SongID{ss[0].ID, ss[1].ID, ss[2].ID}
	want := []domain.SongID{"c", "b", "a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order=%v, want %v", got, want)
		}
	}
}
