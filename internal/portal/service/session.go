package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campusworks/portal/internal/portal/domain"
	"github.com/campusworks/portal/internal/portal/store"
)

// Registration is the outcome of a TryRegister call.
type Registration struct {
	Registered bool
	Conflict   *domain.ConflictInfo
}

// SessionService is the session registry: the single source of truth that at
// most one active session exists per account. All mutations run inside a
// store transaction; the account_id primary key on session_records turns a
// lost race into a constraint violation rather than a second row.
type SessionService struct {
	Store store.Store

	Now func() time.Time
}

func (s *SessionService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

// TryRegister atomically claims the account's session slot.
//
// No existing record: the caller's info is written and Registered returned.
// Existing record with the caller's own session id: a no-op refresh of
// last_activity, still Registered. Existing record with a different session
// id: Conflict, with the holder's device/ip/last-activity exposed so the
// caller can decide to force it out. The record is never mutated on conflict.
func (s *SessionService) TryRegister(ctx context.Context, accountID string, info domain.SessionInfo) (Registration, error) {
	var reg Registration

	attempt := func() error {
		return s.Store.WithTx(ctx, func(tx store.Tx) error {
			existing, err := tx.Sessions().Get(ctx, accountID)
			switch {
			case errors.Is(err, store.ErrNotFound):
				now := s.now()
				if err := tx.Sessions().Create(ctx, domain.SessionRecord{
					AccountID:    accountID,
					SessionID:    info.SessionID,
					IP:           info.IP,
					UserAgent:    info.UserAgent,
					DeviceName:   info.DeviceName,
					CreatedAt:    now,
					LastActivity: now,
				}); err != nil {
					return err
				}
				reg = Registration{Registered: true}
				return nil

			case err != nil:
				return err

			case existing.SessionID == info.SessionID:
				if err := tx.Sessions().Touch(ctx, accountID, s.now()); err != nil {
					return err
				}
				reg = Registration{Registered: true}
				return nil

			default:
				reg = Registration{Conflict: &domain.ConflictInfo{
					DeviceName:   existing.DeviceName,
					IP:           existing.IP,
					LastActivity: existing.LastActivity,
				}}
				return nil
			}
		})
	}

	err := attempt()
	if errors.Is(err, store.ErrAlreadyExists) {
		// Lost the insert race: a concurrent login claimed the slot between
		// our read and write. Re-run to observe the winner as a conflict.
		err = attempt()
	}
	if err != nil {
		return Registration{}, fmt.Errorf("session registry: %w", err)
	}

	return reg, nil
}

// ForceReplace unconditionally evicts the account's current session and
// installs the caller's. The evicted session's transport record is deleted
// and its refresh tokens revoked, so the other device is actually logged out:
// its next request fails identity resolution instead of reaching a handler.
func (s *SessionService) ForceReplace(ctx context.Context, accountID string, info domain.SessionInfo) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		existing, err := tx.Sessions().Get(ctx, accountID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}

		if err == nil {
			if err := tx.TransportSessions().Delete(ctx, existing.SessionID); err != nil {
				return err
			}
			if err := tx.RefreshTokens().RevokeBySession(ctx, existing.SessionID); err != nil {
				return err
			}
			if err := tx.Sessions().Delete(ctx, accountID); err != nil {
				return err
			}
		}

		now := s.now()
		return tx.Sessions().Create(ctx, domain.SessionRecord{
			AccountID:    accountID,
			SessionID:    info.SessionID,
			IP:           info.IP,
			UserAgent:    info.UserAgent,
			DeviceName:   info.DeviceName,
			CreatedAt:    now,
			LastActivity: now,
		})
	})
}

// Clear removes the account's session on logout, invalidating the transport
// session and refresh tokens along with the registry record.
func (s *SessionService) Clear(ctx context.Context, accountID string) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		existing, err := tx.Sessions().Get(ctx, accountID)
		if errors.Is(err, store.ErrNotFound) {
			return nil // already logged out
		}
		if err != nil {
			return err
		}

		if err := tx.TransportSessions().Delete(ctx, existing.SessionID); err != nil {
			return err
		}
		if err := tx.RefreshTokens().RevokeBySession(ctx, existing.SessionID); err != nil {
			return err
		}
		return tx.Sessions().Delete(ctx, accountID)
	})
}

// Get reads the registry record without mutating it. Used by the arbitration
// gate on every authenticated request.
func (s *SessionService) Get(ctx context.Context, accountID string) (domain.SessionRecord, error) {
	return s.Store.Sessions().Get(ctx, accountID)
}

// Touch bumps last_activity outside a registration cycle.
func (s *SessionService) Touch(ctx context.Context, accountID string) error {
	return s.Store.Sessions().Touch(ctx, accountID, s.now())
}
