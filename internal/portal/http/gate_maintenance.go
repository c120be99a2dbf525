package http

import (
	"net/http"
	"strings"

	"github.com/campusworks/portal/internal/portal/domain"
	"github.com/campusworks/portal/internal/portal/service"
	"github.com/campusworks/portal/pkg/httpx"
	"github.com/campusworks/portal/pkg/slogx"
)

// maintenanceAllowlist names the routes that stay reachable while the
// killswitch is on: the whole login pipeline (so a super admin can get in and
// turn it off), the maintenance endpoint itself, health checks and static
// assets.
var maintenanceAllowlist = []string{
	"/api/auth/",
	"/api/maintenance-mode",
	"/livez",
	"/readyz",
	"/swagger/",
	"/static/",
}

func maintenanceAllowed(path string) bool {
	for _, prefix := range maintenanceAllowlist {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// MaintenanceGate blocks everything outside the allowlist while maintenance
// mode is enabled. Super admins pass unconditionally, and any admin presenting
// a bearer token passes on API routes so token-based clients keep working
// through a maintenance window that targets the browser portal.
func MaintenanceGate(maintenance *service.MaintenanceService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			st, err := maintenance.Current(ctx)
			if err != nil {
				// Fail open: an unreadable killswitch must not take the
				// portal down on its own.
				slogx.FromContext(ctx).Error("maintenance state read failed", "err", err)
				next.ServeHTTP(w, r)
				return
			}

			if !st.Enabled || maintenanceAllowed(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			if id, ok := IdentityFromContext(ctx); ok {
				if id.Account.IsSuperAdmin() {
					next.ServeHTTP(w, r)
					return
				}
				if id.Bearer && strings.HasPrefix(r.URL.Path, "/api/") {
					next.ServeHTTP(w, r)
					return
				}
			}

			httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":       domain.StatusMaintenanceActive,
				"announcement": st.Announcement,
			})
		})
	}
}
