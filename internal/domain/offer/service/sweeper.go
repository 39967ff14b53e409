package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// StartSweeper runs the expiry sweep on a fixed interval until the context is
// cancelled. One immediate sweep runs at startup so a restart does not leave
// expired offers active for a full interval.
func StartSweeper(ctx context.Context, offers OfferService, interval time.Duration, logger *zap.Logger) {
	go func() {
		if _, err := offers.DeactivateExpired(); err != nil {
			logger.Error("offer expiry sweep failed", zap.Error(err))
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := offers.DeactivateExpired(); err != nil {
					logger.Error("offer expiry sweep failed", zap.Error(err))
				}
			}
		}
	}()
}
