package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/davidlopz/expotec-api/internal/config"
	"github.com/davidlopz/expotec-api/internal/handler"
	"github.com/davidlopz/expotec-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	UserHandler       *handler.UserHandler
	ProjectHandler    *handler.ProjectHandler
	EvaluationHandler *handler.EvaluationHandler
	GalleryHandler    *handler.GalleryHandler
	CatalogHandler    *handler.CatalogHandler
	JWTMiddleware     fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	app.Get("/metrics", observability.MetricsHandler())

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Public gallery: listing stays open, voting checks identity in-handler.
	if deps.GalleryHandler != nil {
		gallery := app.Group("/api/v1", jwtOptional(jwtMiddleware))
		deps.GalleryHandler.Register(gallery)
	}

	if deps.UserHandler != nil {
		users := app.Group("/api/v1", jwtMiddleware)
		deps.UserHandler.Register(users)
	}

	if deps.ProjectHandler != nil {
		projects := app.Group("/api/v1", jwtMiddleware)
		deps.ProjectHandler.Register(projects)
	}

	if deps.EvaluationHandler != nil {
		evaluations := app.Group("/api/v1", jwtMiddleware)
		deps.EvaluationHandler.Register(evaluations)
	}

	if deps.CatalogHandler != nil {
		catalog := app.Group("/api/v1", jwtMiddleware)
		deps.CatalogHandler.Register(catalog)
	}
}

// jwtOptional runs the JWT middleware only when credentials are presented,
// so anonymous visitors can still browse public routes.
func jwtOptional(protected fiber.Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get("Authorization") == "" {
			return c.Next()
		}
		return protected(c)
	}
}
