package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/davidlopz/expotec-api/internal/dto"
	"github.com/davidlopz/expotec-api/internal/middleware"
	"github.com/davidlopz/expotec-api/internal/models"
	"github.com/davidlopz/expotec-api/internal/service"
	"github.com/davidlopz/expotec-api/internal/utils"
)

// UserHandler exposes account provisioning and profile endpoints.
type UserHandler struct {
	users  service.UserService
	logger zerolog.Logger
}

func NewUserHandler(users service.UserService, logger zerolog.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		logger: logger.With().Str("component", "user_handler").Logger(),
	}
}

func (h *UserHandler) Register(router fiber.Router) {
	router.Post("/users/ensure", h.ensure)
	router.Get("/users/:id", h.get)
	router.Put("/users/:id/group/:groupId", middleware.RequireRole(models.RoleAdmin), h.assignGroup)
	router.Put("/users/:id/assignments", middleware.RequireRole(models.RoleTeacher, models.RoleAdmin), h.updateAssignments)
}

func (h *UserHandler) ensure(c *fiber.Ctx) error {
	var payload dto.EnsureUserRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.users.EnsureUser(c.UserContext(), payload)
	if err != nil {
		return utils.SendDomainError(c, err)
	}

	return utils.SendSuccess(c, "user resolved", user)
}

func (h *UserHandler) get(c *fiber.Ctx) error {
	id, err := parseParamUint(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	user, err := h.users.Get(c.UserContext(), id)
	if err != nil {
		return utils.SendDomainError(c, err)
	}

	return utils.SendSuccess(c, "user retrieved", user)
}

func (h *UserHandler) assignGroup(c *fiber.Ctx) error {
	userID, err := parseParamUint(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}
	groupID, err := parseParamUint(c, "groupId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid group id")
	}

	user, err := h.users.AssignGroup(c.UserContext(), userID, groupID, actorFromContext(c))
	if err != nil {
		return utils.SendDomainError(c, err)
	}

	return utils.SendSuccess(c, "group assigned", user)
}

func (h *UserHandler) updateAssignments(c *fiber.Ctx) error {
	userID, err := parseParamUint(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid user id")
	}

	var payload dto.UpdateAssignmentsRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	user, err := h.users.UpdateTeacherAssignments(c.UserContext(), userID, payload, actorFromContext(c))
	if err != nil {
		return utils.SendDomainError(c, err)
	}

	return utils.SendSuccess(c, "assignments updated", user)
}
