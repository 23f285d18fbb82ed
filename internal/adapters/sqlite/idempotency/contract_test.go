package idempotency

import (
	"path/filepath"
	"testing"

	"github.com/ever-after-studio/wedding-site-api/internal/adapters/contracttest"
	"github.com/ever-after-studio/wedding-site-api/internal/adapters/sqlite"
	idempotencyport "github.com/ever-after-studio/wedding-site-api/internal/ports/out/idempotency"
)

func TestContract_SQLiteIdempotencyStore(t *testing.T) {
	contracttest.RunIdempotencyStore(t, func(t *testing.T) (idempotencyport.Store, func()) {
		t.Helper()
		db, err := sqlite.Open(filepath.Join(t.TempDir(), "wedding.db"))
		if err != nil {
			t.Fatalf("open sqlite: %v", err)
		}
		return NewStore(db), func() { _ = db.Close() }
	})
}
