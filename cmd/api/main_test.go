package main

import (
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type syncCountingCore struct {
	zapcore.Core
	syncs int
}

func (c *syncCountingCore) Sync() error {
	c.syncs++
	return c.Core.Sync()
}

func TestFinish(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantLogs int
	}{
		{name: "clean shutdown", err: nil, wantCode: 0, wantLogs: 0},
		{name: "run failed", err: errors.New("listen: address already in use"), wantCode: 1, wantLogs: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			obs, logs := observer.New(zap.InfoLevel)
			core := &syncCountingCore{Core: obs}

			if got := finish(zap.New(core), tt.err); got != tt.wantCode {
				t.Fatalf("finish code=%d, want %d", got, tt.wantCode)
			}
			if n := logs.FilterMessage("api exited").Len(); n != tt.wantLogs {
				t.Fatalf("exit logs=%d, want %d", n, tt.wantLogs)
			}
			if core.syncs != 1 {
				t.Fatalf("Sync calls=%d, want 1", core.syncs)
			}
		})
	}
}
