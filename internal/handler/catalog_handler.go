package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/davidlopz/expotec-api/internal/middleware"
	"github.com/davidlopz/expotec-api/internal/models"
	"github.com/davidlopz/expotec-api/internal/service"
	"github.com/davidlopz/expotec-api/internal/utils"
)

// CatalogHandler exposes group and course administration endpoints.
type CatalogHandler struct {
	catalog service.CatalogService
	logger  zerolog.Logger
}

func NewCatalogHandler(catalog service.CatalogService, logger zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: catalog,
		logger:  logger.With().Str("component", "catalog_handler").Logger(),
	}
}

func (h *CatalogHandler) Register(router fiber.Router) {
	admins := middleware.RequireRole(models.RoleAdmin)

	router.Get("/groups", h.listGroups)
	router.Post("/groups", admins, h.createGroup)
	router.Put("/groups/:id", admins, h.updateGroup)
	router.Delete("/groups/:id", admins, h.deactivateGroup)

	router.Get("/courses", h.listCourses)
	router.Post("/courses", admins, h.createCourse)
	router.Delete("/courses/:id", admins, h.deactivateCourse)
}

func (h *CatalogHandler) listGroups(c *fiber.Ctx) error {
	groups, err := h.catalog.ListGroups(c.UserContext())
	if err != nil {
		return utils.SendDomainError(c, err)
	}

	return utils.SendSuccess(c, "groups retrieved", groups)
}

func (h *CatalogHandler) createGroup(c *fiber.Ctx) error {
	var payload service.GroupPayload
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	group, err := h.catalog.CreateGroup(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		return utils.SendDomainError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "group created", group)
}

func (h *CatalogHandler) updateGroup(c *fiber.Ctx) error {
	id, err := parseParamUint(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid group id")
	}

	var payload service.GroupPayload
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	group, err := h.catalog.UpdateGroup(c.UserContext(), id, actorFromContext(c), payload)
	if err != nil {
		return utils.SendDomainError(c, err)
	}

	return utils.SendSuccess(c, "group updated", group)
}

func (h *CatalogHandler) deactivateGroup(c *fiber.Ctx) error {
	id, err := parseParamUint(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid group id")
	}

	if err := h.catalog.DeactivateGroup(c.UserContext(), id, actorFromContext(c)); err != nil {
		return utils.SendDomainError(c, err)
	}

	return utils.SendSuccess(c, "group deactivated", nil)
}

func (h *CatalogHandler) listCourses(c *fiber.Ctx) error {
	career := strings.TrimSpace(c.Query("career"))

	courses, err := h.catalog.ListCourses(c.UserContext(), career)
	if err != nil {
		return utils.SendDomainError(c, err)
	}

	return utils.SendSuccess(c, "courses retrieved", courses)
}

func (h *CatalogHandler) createCourse(c *fiber.Ctx) error {
	var payload service.CoursePayload
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	course, err := h.catalog.CreateCourse(c.UserContext(), actorFromContext(c), payload)
	if err != nil {
		return utils.SendDomainError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "course created", course)
}

func (h *CatalogHandler) deactivateCourse(c *fiber.Ctx) error {
	id, err := parseParamUint(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid course id")
	}

	if err := h.catalog.DeactivateCourse(c.UserContext(), id, actorFromContext(c)); err != nil {
		return utils.SendDomainError(c, err)
	}

	return utils.SendSuccess(c, "course deactivated", nil)
}
