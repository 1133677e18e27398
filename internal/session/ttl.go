package session

import (
	"context"
	"log/slog"
	"time"
)

const ttlWorkerInterval = 5 * time.Minute

// StartTTLWorker runs a background goroutine that periodically sweeps
// idle sessions out of the registry. An expired session is simply
// dropped; there is nothing to persist.
func StartTTLWorker(ctx context.Context, m *Manager, ttl time.Duration) {
	ticker := time.NewTicker(ttlWorkerInterval)
	go func() {
		defer ticker.Stop()
		slog.Info("session TTL worker started", "interval", ttlWorkerInterval, "ttl", ttl)

		for {
			select {
			case <-ticker.C:
				if removed := m.expire(ttl); removed > 0 {
					slog.Info("session TTL sweep completed", "expired", removed)
				}
			case <-ctx.Done():
				slog.Info("session TTL worker shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}
