package db

import (
	"context"
	"time"

	"github.com/atinyakov/catalog/internal/metrics"
	"go.uber.org/zap"
)

// Pinger is the part of the store the health probe needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StartHealthProbe pings the backing medium once before returning and then
// every interval until ctx is cancelled, publishing each result as the
// catalog_store_up gauge. Only state transitions are logged so a long outage
// does not flood the log.
func StartHealthProbe(
	ctx context.Context,
	store Pinger,
	interval time.Duration,
	timeout time.Duration,
	log *zap.Logger,
) {
	check := func(wasUp bool) bool {
		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		err := store.Ping(pingCtx)
		cancel()

		metrics.SetStoreUp(err == nil)
		switch {
		case err != nil && wasUp:
			log.Error("document store unreachable", zap.Error(err))
		case err == nil && !wasUp:
			log.Info("document store reachable again")
		}
		return err == nil
	}

	up := check(true)
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				up = check(up)
			}
		}
	}()
}
