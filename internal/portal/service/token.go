package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/campusworks/portal/internal/portal/domain"
	"github.com/campusworks/portal/internal/portal/store"
	"github.com/campusworks/portal/pkg/cryptox"
	"github.com/campusworks/portal/pkg/idx"
	"github.com/campusworks/portal/pkg/jwtx"
)

// TokenService mints access/refresh pairs for a verified login and rotates
// refresh tokens. Access tokens are signed JWTs carrying the session id;
// refresh tokens are opaque and stored by fingerprint only.
type TokenService struct {
	Signer *jwtx.Signer
	Store  store.Store

	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	Now func() time.Time
}

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func (s *TokenService) accessTTL() time.Duration {
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return jwtx.DefaultAccessTokenTTL
}

func (s *TokenService) refreshTTL() time.Duration {
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return jwtx.DefaultRefreshTokenTTL
}

// Issue creates a token pair for the account's registered session.
func (s *TokenService) Issue(ctx context.Context, account domain.Account, sessionID string) (domain.TokenPair, error) {
	now := s.now()

	claims := jwtx.NewAccessClaims(
		account.ID, sessionID, account.Handle, account.Role,
		s.accessTTL(), s.Issuer, now,
	)

	access, err := s.Signer.Sign(claims)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}

	refresh, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("generate refresh token: %w", err)
	}

	if err := s.Store.RefreshTokens().Create(ctx, domain.RefreshToken{
		ID:        idx.New().String(),
		AccountID: account.ID,
		SessionID: sessionID,
		TokenHash: cryptox.FingerprintToken(refresh),
		ExpiresAt: now.Add(s.refreshTTL()),
		CreatedAt: now,
	}); err != nil {
		return domain.TokenPair{}, fmt.Errorf("store refresh token: %w", err)
	}

	return domain.TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh rotates a refresh token: the presented token is revoked and a fresh
// pair minted, provided the token is live and its session still exists. A
// token whose session was force-replaced fails here with
// ErrInvalidRefreshToken, which the HTTP layer renders as unauthenticated.
func (s *TokenService) Refresh(ctx context.Context, raw string) (domain.TokenPair, error) {
	hash := cryptox.FingerprintToken(raw)

	stored, err := s.Store.RefreshTokens().GetByHash(ctx, hash)
	if errors.Is(err, store.ErrNotFound) {
		return domain.TokenPair{}, ErrInvalidRefreshToken
	}
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("lookup refresh token: %w", err)
	}

	now := s.now()
	if stored.Revoked || now.After(stored.ExpiresAt) {
		return domain.TokenPair{}, ErrInvalidRefreshToken
	}

	// The transport session must still exist; force-replace deletes it.
	if _, err := s.Store.TransportSessions().GetByID(ctx, stored.SessionID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.TokenPair{}, ErrInvalidRefreshToken
		}
		return domain.TokenPair{}, fmt.Errorf("lookup transport session: %w", err)
	}

	account, err := s.Store.Accounts().GetByID(ctx, stored.AccountID)
	if err != nil {
		return domain.TokenPair{}, fmt.Errorf("lookup account: %w", err)
	}

	if err := s.Store.RefreshTokens().Revoke(ctx, hash); err != nil {
		return domain.TokenPair{}, fmt.Errorf("revoke refresh token: %w", err)
	}

	return s.Issue(ctx, account, stored.SessionID)
}
