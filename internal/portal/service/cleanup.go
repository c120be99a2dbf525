package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/campusworks/portal/internal/portal/store"
)

// CleanupService periodically sweeps expired transport sessions and refresh
// tokens. Expiry is enforced at read time regardless; the sweep just keeps
// the tables from growing without bound.
type CleanupService struct {
	store    store.Store
	logger   *slog.Logger
	interval time.Duration

	stop chan struct{}
	done chan struct{}
}

func NewCleanupService(st store.Store, logger *slog.Logger, interval time.Duration) *CleanupService {
	if interval <= 0 {
		interval = time.Hour
	}
	return &CleanupService{
		store:    st,
		logger:   logger,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (s *CleanupService) Start() {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.stop:
				return
			}
		}
	}()
}

func (s *CleanupService) Stop() {
	close(s.stop)
	<-s.done
}

func (s *CleanupService) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.store.TransportSessions().DeleteExpired(ctx); err != nil {
		s.logger.Error("expired session sweep failed", "err", err)
	}
	if err := s.store.RefreshTokens().DeleteExpired(ctx); err != nil {
		s.logger.Error("expired token sweep failed", "err", err)
	}
}
