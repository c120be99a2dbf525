package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/campusworks/portal/internal/portal/service"
	"github.com/campusworks/portal/internal/portal/store"
	"github.com/campusworks/portal/pkg/httpx"
	"github.com/campusworks/portal/pkg/jwtx"
	"github.com/campusworks/portal/pkg/slogx"

	_ "github.com/campusworks/portal/api/portal" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	verifier     *jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	cookieSecure bool

	store              store.Store
	LoginService       *service.LoginService
	TokenService       *service.TokenService
	AdminService       *service.AdminService
	SessionService     *service.SessionService
	MaintenanceService *service.MaintenanceService
	StatsService       *service.StatsService
	AuditService       *service.AuditService
}

func NewRouter(
	keys *jwtx.KeySet,
	verifier *jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
	cookieSecure bool,
) *Router {
	return &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
		cookieSecure: cookieSecure,
	}
}

// ApplyRoutes wires the middleware chain and registers all endpoints. The
// global chain runs logging, identity resolution, then the two gates:
// maintenance first (it can see the resolved identity for the super admin
// bypass), session arbitration second.
func (r *Router) ApplyRoutes() {
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		IdentityMiddleware(r.verifier, r.store),
		MaintenanceGate(r.MaintenanceService),
		SessionGate(r.SessionService),
	}

	r.registerAuth()
	r.registerAdmin()
	r.registerMaintenance()
	r.registerDashboard()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Campus Admin Portal API
//	@version		0.1.0
//	@description	Authentication and session arbitration for the college admin portal. Each account may hold at most one active session; logins complete with an emailed one-time code.
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	// Credential and OTP endpoints get the strict limit: these are the
	// brute-forceable surfaces.
	r.Mux.Handle("POST /api/auth/login",
		httpx.Chain(&LoginHandler{LoginService: r.LoginService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /api/auth/verify-otp",
		httpx.Chain(&VerifyOTPHandler{LoginService: r.LoginService, CookieSecure: r.cookieSecure},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /api/auth/reset-password",
		httpx.Chain(&ResetPasswordHandler{LoginService: r.LoginService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /api/auth/force-logout",
		httpx.Chain(&ForceLogoutHandler{LoginService: r.LoginService},
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	r.Mux.Handle("POST /api/auth/refresh",
		httpx.Chain(&RefreshHandler{TokenService: r.TokenService},
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("POST /api/auth/logout",
		httpx.Chain(&LogoutHandler{LoginService: r.LoginService},
			RequireAuth(),
			httpx.RateLimitByAccount(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerAdmin() {
	r.Mux.Handle("POST /api/auth/create-admin",
		httpx.Chain(&CreateAdminHandler{AdminService: r.AdminService},
			RequireSuperAdmin(),
			httpx.RateLimitByAccount(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("GET /api/audit-log",
		httpx.Chain(&AuditLogHandler{AuditService: r.AuditService},
			RequireSuperAdmin(),
			httpx.RateLimitByAccount(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerMaintenance() {
	h := &MaintenanceHandler{MaintenanceService: r.MaintenanceService}

	// Read is public so clients can render the banner pre-login.
	r.Mux.Handle("GET /api/maintenance-mode",
		httpx.Chain(http.HandlerFunc(h.HandleGet),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	r.Mux.Handle("POST /api/maintenance-mode",
		httpx.Chain(http.HandlerFunc(h.HandlePost),
			RequireSuperAdmin(),
			httpx.RateLimitByAccount(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerDashboard() {
	r.Mux.Handle("GET /api/dashboard-stats",
		httpx.Chain(&StatsHandler{StatsService: r.StatsService},
			RequireAuth(),
			httpx.RateLimitByAccount(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.keys),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
