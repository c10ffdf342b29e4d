package pool_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/Harsh-BH/SetForge/internal/domain"
	"github.com/Harsh-BH/SetForge/internal/pool"
)

type runnerFunc func(ctx context.Context, req *domain.RunRequest) (*domain.RunReport, error)

func (f runnerFunc) Execute(ctx context.Context, req *domain.RunRequest) (*domain.RunReport, error) {
	return f(ctx, req)
}

func succeed(_ context.Context, req *domain.RunRequest) (*domain.RunReport, error) {
	return domain.NewRunReport(req), nil
}

func newTestPool(t *testing.T, size int, runner runnerFunc) (chan *domain.RunMessage, *pool.WorkerPool, context.CancelFunc) {
	t.Helper()

	ch := make(chan *domain.RunMessage, 16)
	ctx, cancel := context.WithCancel(context.Background())
	wp := pool.NewWorkerPool(size, ch, runner, zap.NewNop())
	wp.Start(ctx)

	return ch, wp, cancel
}

func sendRun(ch chan<- *domain.RunMessage, acked, nacked *atomic.Int32) {
	ch <- &domain.RunMessage{
		Request: &domain.RunRequest{Kind: domain.RunAggregate},
		Ack: func() error {
			acked.Add(1)
			return nil
		},
		Nack: func(requeue bool) error {
			nacked.Add(1)
			return nil
		},
	}
}

func TestPool_ProcessAndAck(t *testing.T) {
	ch, wp, cancel := newTestPool(t, 2, succeed)

	var acked, nacked atomic.Int32
	for i := 0; i < 5; i++ {
		sendRun(ch, &acked, &nacked)
	}

	time.Sleep(200 * time.Millisecond)
	cancel()
	wp.Stop()

	if acked.Load() != 5 {
		t.Errorf("expected 5 ACKs, got %d", acked.Load())
	}
	if nacked.Load() != 0 {
		t.Errorf("expected 0 NACKs, got %d", nacked.Load())
	}
}

func TestPool_NacksOnFailure(t *testing.T) {
	ch, wp, cancel := newTestPool(t, 1, func(context.Context, *domain.RunRequest) (*domain.RunReport, error) {
		return nil, errors.New("list aggregatable jobs: connection refused")
	})

	var acked, nacked atomic.Int32
	sendRun(ch, &acked, &nacked)

	time.Sleep(200 * time.Millisecond)
	cancel()
	wp.Stop()

	if nacked.Load() != 1 || acked.Load() != 0 {
		t.Errorf("expected 1 NACK and 0 ACKs, got %d / %d", nacked.Load(), acked.Load())
	}
}

func TestPool_RunInProgressIsAcked(t *testing.T) {
	ch, wp, cancel := newTestPool(t, 1, func(context.Context, *domain.RunRequest) (*domain.RunReport, error) {
		return nil, domain.ErrRunInProgress
	})

	var acked, nacked atomic.Int32
	sendRun(ch, &acked, &nacked)

	time.Sleep(200 * time.Millisecond)
	cancel()
	wp.Stop()

	if acked.Load() != 1 || nacked.Load() != 0 {
		t.Errorf("expected 1 ACK and 0 NACKs, got %d / %d", acked.Load(), nacked.Load())
	}
}

func TestPool_PanicIsolated(t *testing.T) {
	var calls atomic.Int32
	ch, wp, cancel := newTestPool(t, 1, func(ctx context.Context, req *domain.RunRequest) (*domain.RunReport, error) {
		if calls.Add(1) == 1 {
			panic("boom")
		}
		return succeed(ctx, req)
	})

	var acked, nacked atomic.Int32
	sendRun(ch, &acked, &nacked)
	sendRun(ch, &acked, &nacked)

	time.Sleep(200 * time.Millisecond)
	cancel()
	wp.Stop()

	if nacked.Load() != 1 || acked.Load() != 1 {
		t.Errorf("expected the worker to survive a panic, got %d ACKs / %d NACKs", acked.Load(), nacked.Load())
	}
}

func TestPool_GracefulShutdown(t *testing.T) {
	ch, wp, cancel := newTestPool(t, 4, succeed)

	var acked, nacked atomic.Int32
	sendRun(ch, &acked, &nacked)
	sendRun(ch, &acked, &nacked)

	time.Sleep(50 * time.Millisecond)
	cancel()
	wp.Stop()
	close(ch)

	if total := acked.Load() + nacked.Load(); total < 1 {
		t.Errorf("expected at least 1 processed run, got %d", total)
	}
}
