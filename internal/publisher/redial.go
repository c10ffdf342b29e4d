package publisher

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Redial calls dial until it succeeds, waiting reconnectDelay after the first
// failure and doubling up to maxReconnectDelay. It returns false without a
// connection once ctx is done or stopped reports true.
func Redial(ctx context.Context, dial func() error, stopped func() bool, logger *zap.Logger) bool {
	return redial(ctx, dial, stopped, reconnectDelay, logger)
}

func redial(ctx context.Context, dial func() error, stopped func() bool, delay time.Duration, logger *zap.Logger) bool {
	for attempt := 1; ; attempt++ {
		if stopped() {
			return false
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return false
		case <-timer.C:
		}

		if stopped() {
			return false
		}
		err := dial()
		if err == nil {
			logger.Info("RabbitMQ reconnected", zap.Int("attempt", attempt))
			return true
		}

		logger.Warn("RabbitMQ reconnect failed",
			zap.Error(err),
			zap.Int("attempt", attempt),
			zap.Duration("retry_in", delay),
		)
		delay = min(delay*2, maxReconnectDelay)
	}
}
