package service

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/campusworks/portal/internal/portal/domain"
	"github.com/campusworks/portal/internal/portal/store"
	"github.com/campusworks/portal/pkg/idx"
)

// AuditService buffers audit entries and writes them asynchronously so a slow
// disk never sits on the request path. Entries are drained on Close; the drop
// counter tracks what was lost to a full buffer.
type AuditService struct {
	store  store.Store
	logger *slog.Logger

	ch        chan domain.AuditEntry
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	closeOnce sync.Once
}

func NewAuditService(st store.Store, logger *slog.Logger, bufferSize int) *AuditService {
	if bufferSize <= 0 {
		bufferSize = 64
	}

	s := &AuditService{
		store:  st,
		logger: logger,
		ch:     make(chan domain.AuditEntry, bufferSize),
		done:   make(chan struct{}),
	}

	s.wg.Add(1)
	go s.run()

	return s
}

func (s *AuditService) run() {
	defer s.wg.Done()

	for {
		select {
		case e := <-s.ch:
			s.write(e)
		case <-s.done:
			// Drain whatever is still buffered before exiting.
			for {
				select {
				case e := <-s.ch:
					s.write(e)
				default:
					return
				}
			}
		}
	}
}

func (s *AuditService) write(e domain.AuditEntry) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.store.Audit().Append(ctx, e); err != nil {
		s.logger.Error("audit append failed", "action", e.Action, "err", err)
	}
}

// Record enqueues an entry. Fire-and-forget: a full buffer drops the entry
// and bumps the counter rather than blocking the request.
func (s *AuditService) Record(actor, action, detail, ip string) {
	if s == nil {
		return
	}

	e := domain.AuditEntry{
		ID:        idx.New().String(),
		Actor:     actor,
		Action:    action,
		Detail:    detail,
		IP:        ip,
		CreatedAt: time.Now().UTC(),
	}

	select {
	case s.ch <- e:
	case <-s.done:
	default:
		s.dropped.Add(1)
	}
}

// ListRecent returns entries newest-first for the audit-log view.
func (s *AuditService) ListRecent(ctx context.Context, limit int) ([]domain.AuditEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.store.Audit().ListRecent(ctx, limit)
}

// Dropped returns the number of entries lost to a full buffer.
func (s *AuditService) Dropped() uint64 { return s.dropped.Load() }

// Close stops the writer after draining the buffer.
func (s *AuditService) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.wg.Wait()
	})
}
