package guestbookrepo

import (
	"testing"

	"github.com/ever-after-studio/wedding-site-api/internal/adapters/contracttest"
	guestbookrepoport "github.com/ever-after-studio/wedding-site-api/internal/ports/out/guestbookrepo"
)

func TestContract_GuestbookRepo(t *testing.T) {
	contracttest.RunGuestbookRepo(t, func(t *testing.T) (guestbookrepoport.Repository, func()) {
		t.Helper()
		return NewRepo(), nil
	})
}
