package session

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RunSweeper runs m.Sweep on interval until ctx is cancelled, logging
// the number of sessions removed on each pass. It blocks and should be
// started on its own goroutine.
func RunSweeper(ctx context.Context, m *Manager, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				logger.Debug("session sweep removed expired sessions", zap.Int("count", n))
			}
		}
	}
}
