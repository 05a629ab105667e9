package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/davidlopz/expotec-api/internal/models"
	"github.com/davidlopz/expotec-api/internal/service"
)

func parseParamUint(c *fiber.Ctx, key string) (uint, error) {
	value, err := strconv.ParseUint(c.Params(key), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(value), nil
}

func parseQueryInt(c *fiber.Ctx, key string) (int, error) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		return 0, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

// actorFromContext reads the authenticated identity bound by the JWT
// middleware. A request without claims acts as an anonymous guest.
func actorFromContext(c *fiber.Ctx) service.Actor {
	actor := service.Actor{Role: models.RoleGuest}
	if id, ok := c.Locals("user_id").(uint); ok {
		actor.ID = id
	}
	if role, ok := c.Locals("user_role").(models.Role); ok && role.Valid() {
		actor.Role = role
	}
	return actor
}
