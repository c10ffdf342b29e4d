package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Harsh-BH/SetForge/internal/domain"
)

// Schedule enqueues a run of kind every interval until ctx is done. A tick is
// dropped when the previous scheduled run is still queued.
func Schedule(ctx context.Context, runs chan<- *domain.RunMessage, kind domain.RunKind, interval time.Duration, logger *zap.Logger) {
	if interval <= 0 {
		return
	}
	logger.Info("Run scheduled", zap.String("kind", string(kind)), zap.Duration("interval", interval))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		msg := ScheduledMessage(kind)
		select {
		case runs <- msg:
			logger.Debug("Scheduled run enqueued", zap.String("kind", string(kind)), zap.String("run_id", msg.Request.RunID.String()))
		case <-ctx.Done():
			return
		default:
			logger.Warn("Run channel full, scheduled run dropped", zap.String("kind", string(kind)))
		}
	}
}

// ScheduledMessage wraps a local run request in no-op ACK/NACK callbacks.
func ScheduledMessage(kind domain.RunKind) *domain.RunMessage {
	return &domain.RunMessage{
		Request: &domain.RunRequest{
			RunID:       uuid.Must(uuid.NewV7()),
			Kind:        kind,
			RequestedAt: time.Now().UTC(),
		},
		Ack:  func() error { return nil },
		Nack: func(bool) error { return nil },
	}
}
