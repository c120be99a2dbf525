package http

import (
	"errors"
	"net/http"

	"github.com/campusworks/portal/internal/portal/domain"
	"github.com/campusworks/portal/internal/portal/service"
	"github.com/campusworks/portal/internal/portal/store"
	"github.com/campusworks/portal/pkg/httpx"
	"github.com/campusworks/portal/pkg/slogx"
)

// sessionGateExempt names the auth endpoints the arbitration gate never
// applies to: they are exactly the routes a displaced device needs to reach
// to resolve its own conflict.
var sessionGateExempt = map[string]bool{
	"/api/auth/login":          true,
	"/api/auth/verify-otp":     true,
	"/api/auth/force-logout":   true,
	"/api/auth/logout":         true,
	"/api/auth/reset-password": true,
	"/api/auth/refresh":        true,
}

// SessionGate enforces single-session arbitration on every authenticated
// request: a caller whose session id no longer matches the registry record
// was displaced by a newer login and is answered with a conflict describing
// the device that displaced it. A caller with no registry record at all is
// let through; their credentials were already judged live by identity
// resolution, and the registry simply has nothing to arbitrate.
func SessionGate(sessions *service.SessionService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			if sessionGateExempt[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			id, ok := IdentityFromContext(ctx)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			rec, err := sessions.Get(ctx, id.Account.ID)
			if errors.Is(err, store.ErrNotFound) {
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				slogx.FromContext(ctx).Error("session registry read failed", "err", err)
				httpx.WriteError(w, http.StatusInternalServerError, "server_error", "session check failed")
				return
			}

			if rec.SessionID != id.SessionID {
				httpx.WriteJSON(w, http.StatusConflict, map[string]any{
					"status": domain.StatusSessionConflict,
					"conflict": domain.ConflictInfo{
						DeviceName:   rec.DeviceName,
						IP:           rec.IP,
						LastActivity: rec.LastActivity,
					},
				})
				return
			}

			if err := sessions.Touch(ctx, id.Account.ID); err != nil {
				slogx.FromContext(ctx).Warn("session touch failed", "err", err)
			}

			next.ServeHTTP(w, r)
		})
	}
}
