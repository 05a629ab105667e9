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

// ProjectHandler exposes project lifecycle and team membership endpoints.
type ProjectHandler struct {
	projects   service.ProjectService
	membership service.MembershipService
	logger     zerolog.Logger
}

func NewProjectHandler(projects service.ProjectService, membership service.MembershipService, logger zerolog.Logger) *ProjectHandler {
	return &ProjectHandler{
		projects:   projects,
		membership: membership,
		logger:     logger.With().Str("component", "project_handler").Logger(),
	}
}

func (h *ProjectHandler) Register(router fiber.Router) {
	students := middleware.RequireRole(models.RoleStudent)

	router.Post("/projects", students, h.create)
	router.Get("/projects/:id", h.get)
	router.Patch("/projects/:id", h.update)
	router.Delete("/projects/:id", students, h.remove)

	router.Post("/projects/:id/members", students, h.addMember)
	router.Delete("/projects/:id/members/:memberId", students, h.removeMember)
}

func (h *ProjectHandler) create(c *fiber.Ctx) error {
	var payload dto.ProjectCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	project, err := h.projects.Create(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		return utils.SendDomainError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "project created", project)
}

func (h *ProjectHandler) get(c *fiber.Ctx) error {
	id, err := parseParamUint(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid project id")
	}

	project, err := h.projects.Get(c.UserContext(), id)
	if err != nil {
		return utils.SendDomainError(c, err)
	}

	return utils.SendSuccess(c, "project retrieved", project)
}

func (h *ProjectHandler) update(c *fiber.Ctx) error {
	id, err := parseParamUint(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid project id")
	}

	var payload dto.ProjectUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	project, err := h.projects.Update(c.UserContext(), id, actorFromContext(c), payload)
	if err != nil {
		return utils.SendDomainError(c, err)
	}

	return utils.SendSuccess(c, "project updated", project)
}

func (h *ProjectHandler) remove(c *fiber.Ctx) error {
	id, err := parseParamUint(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid project id")
	}

	if err := h.projects.Delete(c.UserContext(), id, actorFromContext(c)); err != nil {
		return utils.SendDomainError(c, err)
	}

	return utils.SendSuccess(c, "project deleted", nil)
}

func (h *ProjectHandler) addMember(c *fiber.Ctx) error {
	id, err := parseParamUint(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid project id")
	}

	var payload dto.AddMemberRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.membership.AddMember(c.UserContext(), id, actorFromContext(c).ID, payload.Target)
	if err != nil {
		return utils.SendDomainError(c, err)
	}

	return utils.SendSuccess(c, "membership processed", result)
}

func (h *ProjectHandler) removeMember(c *fiber.Ctx) error {
	id, err := parseParamUint(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid project id")
	}
	memberID, err := parseParamUint(c, "memberId")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid member id")
	}

	result, err := h.membership.RemoveMember(c.UserContext(), id, memberID, actorFromContext(c).ID)
	if err != nil {
		return utils.SendDomainError(c, err)
	}

	return utils.SendSuccess(c, "membership processed", result)
}
