package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/campusworks/portal/internal/portal/domain"
	"github.com/campusworks/portal/internal/portal/store"
	"github.com/campusworks/portal/pkg/cryptox"
	"github.com/campusworks/portal/pkg/httpx"
	"github.com/campusworks/portal/pkg/jwtx"
	"github.com/campusworks/portal/pkg/slogx"
)

// SessionCookieName is the browser-facing session cookie.
const SessionCookieName = "portal_session"

// CallerIdentity is the resolved caller: the full account plus the session id
// the request arrived on. Both the bearer and cookie paths produce the same
// identity; Bearer records which transport carried it, for the few places
// where the two are treated differently (the maintenance gate).
type CallerIdentity struct {
	Account   domain.Account
	SessionID string
	Bearer    bool
}

type identityCtxKey struct{}

// IdentityFromContext returns the caller identity, ok=false when anonymous.
func IdentityFromContext(ctx context.Context) (CallerIdentity, bool) {
	id, ok := ctx.Value(identityCtxKey{}).(CallerIdentity)
	return id, ok
}

// IdentityMiddleware resolves the caller from either a bearer access token or
// the session cookie. Resolution is best-effort: an anonymous or
// stale-credential request passes through without an identity, and the gates
// or RequireAuth decide what that means for the route.
//
// A bearer token only resolves when the transport session named by its sid
// claim still exists; force-logout deletes that row, so an evicted device's
// otherwise-valid JWT stops resolving immediately.
func IdentityMiddleware(verifier *jwtx.Verifier, st store.Store) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if id, ok := resolveBearer(ctx, verifier, st, r); ok {
				next.ServeHTTP(w, r.WithContext(withIdentity(ctx, id)))
				return
			}

			if id, ok := resolveCookie(ctx, st, r); ok {
				next.ServeHTTP(w, r.WithContext(withIdentity(ctx, id)))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func withIdentity(ctx context.Context, id CallerIdentity) context.Context {
	ctx = context.WithValue(ctx, identityCtxKey{}, id)
	return context.WithValue(ctx, httpx.CtxKeyAccountID, id.Account.ID)
}

func resolveBearer(ctx context.Context, verifier *jwtx.Verifier, st store.Store, r *http.Request) (CallerIdentity, bool) {
	raw := httpx.BearerToken(r)
	if raw == "" {
		return CallerIdentity{}, false
	}

	claims, err := verifier.Verify(raw)
	if err != nil {
		return CallerIdentity{}, false
	}

	transport, err := st.TransportSessions().GetByID(ctx, claims.SID)
	if err != nil || transport.Stage != domain.SessionStageActive || time.Now().After(transport.ExpiresAt) {
		return CallerIdentity{}, false
	}

	account, err := st.Accounts().GetByID(ctx, claims.Subject)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slogx.FromContext(ctx).Error("identity account lookup failed", "err", err)
		}
		return CallerIdentity{}, false
	}

	return CallerIdentity{Account: account, SessionID: claims.SID, Bearer: true}, true
}

func resolveCookie(ctx context.Context, st store.Store, r *http.Request) (CallerIdentity, bool) {
	cookie, err := r.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return CallerIdentity{}, false
	}

	transport, err := st.TransportSessions().GetActiveByCookieHash(ctx, cryptox.FingerprintToken(cookie.Value))
	if err != nil {
		return CallerIdentity{}, false
	}

	account, err := st.Accounts().GetByID(ctx, transport.AccountID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slogx.FromContext(ctx).Error("identity account lookup failed", "err", err)
		}
		return CallerIdentity{}, false
	}

	return CallerIdentity{Account: account, SessionID: transport.ID}, true
}

// RequireAuth rejects requests that carry no resolved identity.
func RequireAuth() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := IdentityFromContext(r.Context()); !ok {
				httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "valid session required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireSuperAdmin rejects callers without the elevated role. Must run after
// IdentityMiddleware.
func RequireSuperAdmin() httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "valid session required")
				return
			}
			if !id.Account.IsSuperAdmin() {
				httpx.WriteError(w, http.StatusForbidden, "forbidden", "super admin role required")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
