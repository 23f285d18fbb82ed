package songrepo

import (
	"path/filepath"
	"testing"

	"github.com/ever-after-studio/wedding-site-api/internal/adapters/contracttest"
	"github.com/ever-after-studio/wedding-site-api/internal/adapters/sqlite"
	songrepoport "github.com/ever-after-studio/wedding-site-api/internal/ports/out/songrepo"
)

func TestContract_SQLiteSongRepo(t *testing.T) {
	contracttest.RunSongRepo(t, func(t *testing.T) (songrepoport.Repository, func()) {
		t.Helper()
		db, err := sqlite.Open(filepath.Join(t.TempDir(), "wedding.db"))
		if err != nil {
			t.Fatalf("open sqlite: %v", err)
		}
		return NewRepo(db), func() { _ = db.Close() }
	})
}
