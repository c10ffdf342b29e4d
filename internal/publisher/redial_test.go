package publisher

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestRedial_RetriesUntilDialSucceeds(t *testing.T) {
	calls := 0
	dial := func() error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	}

	ok := redial(context.Background(), dial, func() bool { return false }, time.Millisecond, zap.NewNop())
	if !ok {
		t.Fatal("expected reconnect to succeed")
	}
	if calls != 3 {
		t.Errorf("expected 3 dial attempts, got %d", calls)
	}
}

func TestRedial_StopsWhenClosed(t *testing.T) {
	calls := 0
	dial := func() error {
		calls++
		return errors.New("connection refused")
	}
	stopped := func() bool { return calls >= 2 }

	if redial(context.Background(), dial, stopped, time.Millisecond, zap.NewNop()) {
		t.Fatal("expected redial to give up")
	}
	if calls != 2 {
		t.Errorf("expected 2 dial attempts, got %d", calls)
	}
}

func TestRedial_HonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dialed := false
	if redial(ctx, func() error { dialed = true; return nil }, func() bool { return false }, time.Hour, zap.NewNop()) {
		t.Fatal("expected redial to give up on a cancelled context")
	}
	if dialed {
		t.Error("expected no dial after cancellation")
	}
}
