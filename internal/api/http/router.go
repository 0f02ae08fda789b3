package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/job-board/internal/api/http/handlers"
	"github.com/spec-kit/job-board/internal/auth"
	"github.com/spec-kit/job-board/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Dashboard      *handlers.DashboardHandler
	Profile        *handlers.ProfileHandler
	Jobs           *handlers.JobsHandler
	Admin          *handlers.AdminHandler
	Session        *auth.SessionMiddleware
	Metrics        fiber.Handler
	AllowedOrigins []string
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", cfg.Metrics)
	}

	web := app.Group("", CSRF(cfg.AllowedOrigins), cfg.Session.Handle)
	web.Get("/", cfg.Dashboard.Home)

	authGroup := web.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Auth.Logout)

	dashboard := web.Group("/dashboard", auth.RequireSession())
	dashboard.Get("", cfg.Dashboard.Dashboard)
	dashboard.Get("/seeker", auth.RequireRole(domain.RoleSeeker), cfg.Dashboard.Seeker)
	dashboard.Get("/employer", auth.RequireRole(domain.RoleEmployer), cfg.Dashboard.Employer)
	dashboard.Get("/admin", auth.RequireRole(domain.RoleAdmin), cfg.Dashboard.Admin)

	profile := web.Group("/profile", auth.RequireSession())
	profile.Get("", cfg.Profile.Get)
	profile.Put("", cfg.Profile.Update)

	jobs := web.Group("/jobs")
	jobs.Get("", cfg.Jobs.List)
	jobs.Get("/search", cfg.Jobs.Search)
	jobs.Get("/:id", cfg.Jobs.Get)
	jobs.Post("", auth.RequireRole(domain.RoleEmployer), cfg.Jobs.Create)
	jobs.Post("/:id/deactivate", auth.RequireRole(domain.RoleEmployer, domain.RoleAdmin), cfg.Jobs.Deactivate)
	jobs.Post("/:id/apply", auth.RequireRole(domain.RoleSeeker), cfg.Jobs.Apply)

	web.Put("/applications/:id/status", auth.RequireRole(domain.RoleEmployer, domain.RoleAdmin), cfg.Jobs.UpdateApplicationStatus)

	admin := web.Group("/admin", auth.RequireRole(domain.RoleAdmin))
	admin.Get("/reports/overview", auth.RequirePermission(domain.CapViewReports), cfg.Admin.Overview)

	manageUsers := auth.RequirePermission(domain.CapManageUsers)
	admin.Get("/users", manageUsers, cfg.Admin.ListUsers)
	admin.Put("/users/:id/active", manageUsers, cfg.Admin.SetActive)
	admin.Post("/admins", manageUsers, cfg.Admin.CreateAdmin)
	admin.Put("/admins/:id/permissions", manageUsers, cfg.Admin.UpdatePermissions)
}
