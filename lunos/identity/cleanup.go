package identity

import (
	"context"
	"time"

	"codeberg.org/lunos/server/internal/logger"
)

// periodically removes expired sessions from the store
type CleanupService struct {
	adapter       Adapter
	checkInterval time.Duration
	now           func() time.Time
}

// creates a new cleanup service
func NewCleanupService(adapter Adapter, checkInterval time.Duration) *CleanupService {
	return &CleanupService{
		adapter:       adapter,
		checkInterval: checkInterval,
		now:           time.Now,
	}
}

// begins the cleanup service background loop
func (s *CleanupService) Start(ctx context.Context) {
	logger.Info("starting session cleanup service", "check_interval", s.checkInterval)

	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("session cleanup service stopped")
			return
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// deletes sessions that are already past their expiry
func (s *CleanupService) Sweep(ctx context.Context) int64 {
	removed, err := s.adapter.DeleteExpiredSessions(ctx, s.now())
	if err != nil {
		logger.ErrorErr(err, "failed to delete expired sessions")
		return 0
	}

	if removed > 0 {
		logger.Info("expired sessions removed", "count", removed)
	}

	return removed
}
