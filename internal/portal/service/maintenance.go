package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/campusworks/portal/internal/portal/domain"
	"github.com/campusworks/portal/internal/portal/store"
)

// maintenanceCacheTTL bounds how stale the gate's view of the killswitch can
// be. Toggles through this process are write-through and take effect
// immediately; toggles from another process are visible within this window.
const maintenanceCacheTTL = 2 * time.Second

// MaintenanceService owns the portal-wide killswitch. Reads are cached since
// the gate consults the state on every request.
type MaintenanceService struct {
	Store store.Store
	Audit *AuditService

	Now func() time.Time

	mu        sync.RWMutex
	cached    domain.MaintenanceState
	fetchedAt time.Time
}

func (s *MaintenanceService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// Current returns the killswitch state, served from cache when fresh.
func (s *MaintenanceService) Current(ctx context.Context) (domain.MaintenanceState, error) {
	now := s.now()

	s.mu.RLock()
	if !s.fetchedAt.IsZero() && now.Sub(s.fetchedAt) < maintenanceCacheTTL {
		st := s.cached
		s.mu.RUnlock()
		return st, nil
	}
	s.mu.RUnlock()

	st, err := s.Store.Maintenance().Get(ctx)
	if err != nil {
		return domain.MaintenanceState{}, fmt.Errorf("read maintenance state: %w", err)
	}

	s.mu.Lock()
	s.cached = st
	s.fetchedAt = now
	s.mu.Unlock()

	return st, nil
}

// Set toggles the killswitch. Only a super admin may do so; the write goes
// through the cache so the new state is observed by the very next request.
func (s *MaintenanceService) Set(ctx context.Context, actor domain.Account, enabled bool, announcement string) (domain.MaintenanceState, error) {
	if !actor.IsSuperAdmin() {
		return domain.MaintenanceState{}, ErrPermissionDenied
	}

	st := domain.MaintenanceState{
		Enabled:      enabled,
		Announcement: announcement,
		UpdatedBy:    actor.Handle,
		UpdatedAt:    s.now(),
	}

	if err := s.Store.Maintenance().Set(ctx, st); err != nil {
		return domain.MaintenanceState{}, fmt.Errorf("write maintenance state: %w", err)
	}

	s.mu.Lock()
	s.cached = st
	s.fetchedAt = st.UpdatedAt
	s.mu.Unlock()

	detail := "disabled"
	if enabled {
		detail = "enabled"
	}
	s.Audit.Record(actor.Handle, domain.AuditMaintenanceToggled, detail, "")

	return st, nil
}
