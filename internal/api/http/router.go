package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/spec-kit/directory-service/internal/api/http/handlers"
	"github.com/spec-kit/directory-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health        *handlers.HealthHandler
	Requests      *handlers.RequestsHandler
	Directory     *handlers.DirectoryHandler
	Sync          *handlers.SyncHandler
	Notifications *handlers.NotificationsHandler
	Metrics       *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if registry := cfg.Metrics.Registry(); registry != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	api := app.Group("/api/v1")

	requests := api.Group("/requests")
	requests.Post("/", cfg.Requests.Submit)
	requests.Get("/", cfg.Requests.List)
	requests.Get("/:id", cfg.Requests.Get)
	requests.Post("/:id/approve", cfg.Requests.Approve)
	requests.Post("/:id/reject", cfg.Requests.Reject)
	requests.Post("/:id/retry", cfg.Requests.Retry)

	directory := api.Group("/directory")
	directory.Get("/users", cfg.Directory.ListUsers)
	directory.Get("/users/:employeeId", cfg.Directory.GetUser)

	sync := api.Group("/sync")
	sync.Get("/status", cfg.Sync.Status)
	sync.Put("/config/:side", cfg.Sync.Configure)
	sync.Post("/connect", cfg.Sync.Connect)
	sync.Get("/entries", cfg.Sync.Entries)
	sync.Post("/refresh", cfg.Sync.Refresh)
	sync.Post("/run", cfg.Sync.Run)

	api.Get("/notifications", cfg.Notifications.List)
}
