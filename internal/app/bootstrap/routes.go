// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"

	attendancefeature "github.com/dalemusser/crewhub/internal/app/features/attendance"
	expensesfeature "github.com/dalemusser/crewhub/internal/app/features/expenses"
	healthfeature "github.com/dalemusser/crewhub/internal/app/features/health"
	loginfeature "github.com/dalemusser/crewhub/internal/app/features/login"
	membersfeature "github.com/dalemusser/crewhub/internal/app/features/members"
	notificationsfeature "github.com/dalemusser/crewhub/internal/app/features/notifications"
	paymentsfeature "github.com/dalemusser/crewhub/internal/app/features/payments"
	registrationsfeature "github.com/dalemusser/crewhub/internal/app/features/registrations"
	reportsfeature "github.com/dalemusser/crewhub/internal/app/features/reports"
	sitesfeature "github.com/dalemusser/crewhub/internal/app/features/sites"
	auditstore "github.com/dalemusser/crewhub/internal/app/store/audit"
	"github.com/dalemusser/crewhub/internal/app/system/auditlog"
	"github.com/dalemusser/crewhub/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. At this point you have access to:
//   - coreCfg: WAFFLE core configuration (ports, env, timeouts, etc.)
//   - appCfg: app-specific configuration defined in AppConfig
//   - deps: any DB or backend clients bundled in DBDeps
//   - logger: the fully configured zap.Logger for this app
//
// CrewHub initializes the session store, constructs the audit logger and
// document storage backend, and mounts feature routers for every part of
// the application: login, registrations, members, sites, expenses,
// attendance, payments, notifications, and reports.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode. The idle window
	// doubles as the cookie MaxAge so an inactive session signs out.
	secure := coreCfg.Env == "prod"
	idleSeconds := appCfg.SessionIdleMinutes * 60
	if err := auth.InitSessionStore(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, idleSeconds, logger); err != nil {
		logger.Error("session store init failed", zap.Error(err))
		return nil, err
	}

	docStore, err := buildStorage(context.Background(), appCfg, logger)
	if err != nil {
		logger.Error("document storage init failed", zap.Error(err))
		return nil, err
	}

	auditLog := auditlog.New(auditstore.New(deps.CrewHubMongoDatabase), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	db := deps.CrewHubMongoDatabase

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	// This makes the current user available to all handlers via auth.CurrentUser(r).
	r.Use(auth.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.CrewHubMongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Uploaded documents served from local storage
	if appCfg.StorageType == "local" && appCfg.StorageLocalURL != "" {
		r.Handle(appCfg.StorageLocalURL+"/*", fileserver.Handler(appCfg.StorageLocalURL, appCfg.StorageLocalPath))
	}

	// Authentication
	loginHandler := loginfeature.NewHandler(db, auditLog, logger)
	r.Mount("/", loginfeature.Routes(loginHandler))

	// Member registration and approval
	registrationsHandler := registrationsfeature.NewHandler(db, docStore, auditLog, logger)
	r.Mount("/registrations", registrationsfeature.Routes(registrationsHandler))

	// Member management
	membersHandler := membersfeature.NewHandler(db, auditLog, logger)
	r.Mount("/members", membersfeature.Routes(membersHandler))

	// Team names in use, for assignment pickers
	r.Group(func(pr chi.Router) {
		pr.Use(auth.RequireSignedIn)
		pr.Get("/teams", membersHandler.HandleTeams)
	})

	// Site administration
	sitesHandler := sitesfeature.NewHandler(db, auditLog, logger)
	r.Mount("/sites", sitesfeature.Routes(sitesHandler))

	// Expense submission, approval, and import
	expensesHandler := expensesfeature.NewHandler(db, docStore, auditLog, logger)
	r.Mount("/expenses", expensesfeature.Routes(expensesHandler))
	r.Mount("/admin/expenses", expensesfeature.AdminRoutes(expensesHandler))

	// Attendance punch-in and approval
	attendanceHandler := attendancefeature.NewHandler(db, auditLog, logger)
	r.Mount("/attendance", attendancefeature.Routes(attendanceHandler))

	// Payments to members
	paymentsHandler := paymentsfeature.NewHandler(db, auditLog, logger)
	r.Mount("/payments", paymentsfeature.Routes(paymentsHandler))

	// Notifications
	notificationsHandler := notificationsfeature.NewHandler(db, logger)
	r.Mount("/notifications", notificationsfeature.Routes(notificationsHandler))

	// Voucher and ledger exports
	reportsHandler := reportsfeature.NewHandler(db, logger)
	r.Mount("/reports", reportsfeature.Routes(reportsHandler))

	return r, nil
}
