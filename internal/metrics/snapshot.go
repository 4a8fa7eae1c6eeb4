package metrics

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// LogSnapshot logs a periodic summary of invocation counts per tool
// until ctx is cancelled. Used when the server is started with
// --log-metrics-interval, since no /metrics HTTP endpoint is exposed.
func LogSnapshot(ctx context.Context, r *Recorder, interval time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			families, err := r.Gather()
			if err != nil {
				logger.Warn("metrics snapshot failed", zap.Error(err))
				continue
			}
			for _, f := range families {
				logger.Info("metrics snapshot", zap.String("metric", f.GetName()), zap.Int("series", len(f.GetMetric())))
			}
		}
	}
}
