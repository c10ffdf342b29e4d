package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Harsh-BH/SetForge/internal/domain"
	"github.com/Harsh-BH/SetForge/internal/metrics"
	"github.com/Harsh-BH/SetForge/internal/usecase"
)

// WorkerPool runs queued batch runs on a fixed number of goroutines.
type WorkerPool struct {
	size   int
	runs   <-chan *domain.RunMessage
	runner usecase.Runner
	logger *zap.Logger
	wg     sync.WaitGroup
}

// NewWorkerPool creates a new fixed-size worker pool.
func NewWorkerPool(size int, runs <-chan *domain.RunMessage, runner usecase.Runner, logger *zap.Logger) *WorkerPool {
	if size < 1 {
		size = 1
	}
	return &WorkerPool{
		size:   size,
		runs:   runs,
		runner: runner,
		logger: logger,
	}
}

// Start launches all worker goroutines. Call Stop to wait for them to finish.
func (p *WorkerPool) Start(ctx context.Context) {
	p.logger.Info("Starting worker pool", zap.Int("pool_size", p.size))

	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// Stop waits for all workers to finish their current run and exit.
func (p *WorkerPool) Stop() {
	p.wg.Wait()
	p.logger.Info("Worker pool stopped")
}

func (p *WorkerPool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	p.logger.Debug("Worker started", zap.Int("worker_id", id))

	for {
		select {
		case <-ctx.Done():
			p.logger.Debug("Worker shutting down", zap.Int("worker_id", id))
			return
		case msg, ok := <-p.runs:
			if !ok {
				p.logger.Debug("Run channel closed", zap.Int("worker_id", id))
				return
			}
			p.process(ctx, id, msg)
		}
	}
}

func (p *WorkerPool) process(ctx context.Context, id int, msg *domain.RunMessage) {
	req := msg.Request

	metrics.WorkersActive.Inc()
	defer metrics.WorkersActive.Dec()

	err := p.execute(ctx, req)

	switch {
	case err == nil, errors.Is(err, domain.ErrRunInProgress):
		// A trigger that lost the race against a running batch is dropped; the
		// next schedule tick picks up whatever that run left behind.
		if ackErr := msg.Ack(); ackErr != nil {
			p.logger.Error("Failed to ACK message",
				zap.String("run_id", req.RunID.String()),
				zap.Error(ackErr),
			)
		}
	default:
		p.logger.Error("Run failed",
			zap.Int("worker_id", id),
			zap.String("run_id", req.RunID.String()),
			zap.String("kind", string(req.Kind)),
			zap.Error(err),
		)
		// Runs are not requeued: a failed run already notified the operators.
		if nackErr := msg.Nack(false); nackErr != nil {
			p.logger.Error("Failed to NACK message",
				zap.String("run_id", req.RunID.String()),
				zap.Error(nackErr),
			)
		}
	}
}

func (p *WorkerPool) execute(ctx context.Context, req *domain.RunRequest) (err error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Worker panic recovered",
				zap.String("run_id", req.RunID.String()),
				zap.Any("panic", r),
			)
			err = fmt.Errorf("%w: panic: %v", domain.ErrUnexpected, r)
		}
	}()
	_, err = p.runner.Execute(ctx, req)
	return err
}
