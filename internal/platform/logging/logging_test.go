package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNew(t *testing.T) {
	t.Parallel()

	l, err := New("warn", "json")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if l.Core().Enabled(zapcore.InfoLevel) {
		t.Fatalf("info enabled at warn level")
	}
	if !l.Core().Enabled(zapcore.ErrorLevel) {
		t.Fatalf("error disabled at warn level")
	}

	if _, err := New("debug", "console"); err != nil {
		t.Fatalf("New(console): %v", err)
	}
	if _, err := New("loud", "json"); err == nil {
		t.Fatalf("New(bad level) err=nil, want error")
	}
	if _, err := New("info", "xml"); err == nil {
		t.Fatalf("New(bad format) err=nil, want error")
	}
}
