package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/municipal-helpdesk/internal/api/http/handlers"
	"github.com/spec-kit/municipal-helpdesk/internal/auth"
	"github.com/spec-kit/municipal-helpdesk/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health       *handlers.HealthHandler
	Auth         *handlers.AuthHandler
	Tickets      *handlers.TicketsHandler
	Users        *handlers.UsersHandler
	Pages        *handlers.PagesHandler
	Sessions     *auth.SessionResolver
	Gate         *auth.Gate
	LoginLimiter *LoginLimiter
	Gatherer     prometheus.Gatherer
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	authenticated := cfg.Sessions.Authenticate
	adminOnly := auth.RequireRole(domain.RoleAdmin)
	normalOnly := auth.RequireRole(domain.RoleNormal)

	authGroup := app.Group("/auth")
	authGroup.Post("/login", cfg.LoginLimiter.Middleware(), cfg.Auth.Login)
	authGroup.Post("/logout", authenticated, auth.RequireAuthenticated(), cfg.Auth.Logout)
	authGroup.Get("/session", authenticated, auth.RequireAuthenticated(), cfg.Auth.Session)

	tickets := app.Group("/tickets", authenticated, auth.RequireAuthenticated())
	tickets.Get("/mine", cfg.Tickets.ListMine)
	tickets.Get("/next-folio", normalOnly, cfg.Tickets.NextFolio)
	tickets.Post("/", normalOnly, cfg.Tickets.CreateTicket)
	tickets.Get("/", adminOnly, cfg.Tickets.ListAll)
	tickets.Patch("/", adminOnly, cfg.Tickets.UpdateStatus)
	tickets.Delete("/", adminOnly, cfg.Tickets.DeleteTicket)

	users := app.Group("/users", authenticated, adminOnly)
	users.Post("/", cfg.Users.Create)
	users.Get("/", cfg.Users.List)
	users.Delete("/:id", cfg.Users.Delete)
	users.Put("/:id/change-password", cfg.Users.ChangePassword)

	gate := auth.PageGate(cfg.Gate, cfg.Sessions)
	for _, path := range []string{"/", "/dashboard", "/login", "/forbidden"} {
		app.Get(path, gate, cfg.Pages.View)
	}
	app.Get("/admin/*", gate, cfg.Pages.View)
	app.Get("/user/*", gate, cfg.Pages.View)
}
