package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/davidlopz/expotec-api/internal/observability"
)

// CorrelationID ensures every request carries a correlation identifier and
// binds it to the request context so service logs can reference it.
func CorrelationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		incoming := strings.TrimSpace(c.Get("X-Correlation-ID"))
		if incoming == "" {
			incoming = uuid.NewString()
		}

		c.Locals("correlation_id", incoming)
		c.Set("X-Correlation-ID", incoming)

		c.SetUserContext(observability.WithCorrelationID(c.UserContext(), incoming))

		return c.Next()
	}
}
