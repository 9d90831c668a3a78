package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/hirelane/recruitment-service/internal/api/http/handlers"
	"github.com/hirelane/recruitment-service/internal/auth"
	"github.com/hirelane/recruitment-service/internal/domain"
	"github.com/hirelane/recruitment-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Accounts       *handlers.AccountsHandler
	Applications   *handlers.ApplicationsHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	authn := cfg.AuthMiddleware.Handle

	accounts := app.Group("/accounts")
	accounts.Post("/register", cfg.Accounts.Register)
	accounts.Get("/register/verify/:uidb64/:token", cfg.Accounts.Verify)
	accounts.Post("/login", cfg.Accounts.Login)
	accounts.Post("/logout", authn, cfg.Accounts.Logout)

	accounts.Post("/password/reset", cfg.Accounts.RequestPasswordReset)
	accounts.Get("/password/reset/done", cfg.Accounts.ResetDone)
	accounts.Get("/password/reset/confirm/:uidb64/:token", cfg.Accounts.ResetConfirmForm)
	accounts.Post("/password/reset/confirm/:uidb64/:token", cfg.Accounts.ResetConfirm)
	accounts.Get("/password/reset/complete", cfg.Accounts.ResetComplete)
	accounts.Post("/password/change", authn, cfg.Accounts.ChangePassword)

	accounts.Get("/me", authn, cfg.Accounts.Me)
	accounts.Patch("/me/profile", authn, cfg.Accounts.UpdateProfile)
	accounts.Post("/me/picture", authn, cfg.Accounts.PictureUpload)
	accounts.Get("/profile/:username", authn, cfg.Accounts.PublicProfile)

	applications := app.Group("/applications")
	applications.Get("/form-options", cfg.Applications.FormOptions)
	applications.Post("", cfg.Applications.Submit)

	admin := app.Group("/admin", authn, auth.RequireSupervisor())
	perm := auth.RequirePermission

	admin.Get("/users", perm(domain.PermViewUser), cfg.Admin.ListUsers)
	admin.Post("/users", perm(domain.PermAddUser), cfg.Admin.CreateUser)
	admin.Get("/users/:id", perm(domain.PermViewUser), cfg.Admin.GetUser)
	admin.Patch("/users/:id", perm(domain.PermChangeUser), cfg.Admin.UpdateUser)

	admin.Get("/groups", perm(domain.PermViewGroup), cfg.Admin.ListGroups)
	admin.Post("/groups", perm(domain.PermAddGroup), cfg.Admin.CreateGroup)
	admin.Get("/groups/:id", perm(domain.PermViewGroup), cfg.Admin.GetGroup)
	admin.Put("/groups/:id", perm(domain.PermChangeGroup), cfg.Admin.UpdateGroup)
	admin.Get("/permissions", perm(domain.PermViewGroup), cfg.Admin.Permissions)

	admin.Get("/lookups/:kind", perm(domain.PermViewLookup), cfg.Admin.ListLookups)
	admin.Post("/lookups/:kind", perm(domain.PermChangeLookup), cfg.Admin.CreateLookup)
	admin.Put("/lookups/:kind/:id", perm(domain.PermChangeLookup), cfg.Admin.UpdateLookup)

	admin.Get("/applications", perm(domain.PermViewApplication), cfg.Applications.List)
	admin.Get("/applications/:id", perm(domain.PermViewApplication), cfg.Applications.Get)
	admin.Patch("/applications/:id/pipeline", perm(domain.PermChangeApplication), cfg.Applications.UpdatePipeline)
	admin.Get("/applications/:id/history", perm(domain.PermViewApplication), cfg.Applications.History)

	admin.Get("/persons", perm(domain.PermViewPerson), cfg.Admin.ListPersons)
	admin.Get("/persons/:id", perm(domain.PermViewPerson), cfg.Admin.GetPerson)
	admin.Patch("/persons/:id", perm(domain.PermChangePerson), cfg.Admin.UpdatePerson)
}
