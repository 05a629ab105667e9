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

// EvaluationHandler exposes grading and feedback endpoints.
type EvaluationHandler struct {
	evaluations service.EvaluationService
	logger      zerolog.Logger
}

func NewEvaluationHandler(evaluations service.EvaluationService, logger zerolog.Logger) *EvaluationHandler {
	return &EvaluationHandler{
		evaluations: evaluations,
		logger:      logger.With().Str("component", "evaluation_handler").Logger(),
	}
}

func (h *EvaluationHandler) Register(router fiber.Router) {
	router.Post("/projects/:id/evaluations", middleware.RequireRole(models.RoleTeacher, models.RoleAdmin), h.create)
	router.Get("/projects/:id/evaluations", h.list)
	router.Patch("/evaluations/:id/visibility", h.changeVisibility)
}

func (h *EvaluationHandler) create(c *fiber.Ctx) error {
	projectID, err := parseParamUint(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid project id")
	}

	var payload dto.EvaluationCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	evaluation, err := h.evaluations.Create(c.UserContext(), projectID, actorFromContext(c), payload)
	if err != nil {
		return utils.SendDomainError(c, err)
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "evaluation recorded", evaluation)
}

func (h *EvaluationHandler) list(c *fiber.Ctx) error {
	projectID, err := parseParamUint(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid project id")
	}

	evaluations, err := h.evaluations.ListByProject(c.UserContext(), projectID, actorFromContext(c))
	if err != nil {
		return utils.SendDomainError(c, err)
	}

	return utils.SendSuccess(c, "evaluations retrieved", evaluations)
}

func (h *EvaluationHandler) changeVisibility(c *fiber.Ctx) error {
	evaluationID, err := parseParamUint(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid evaluation id")
	}

	var payload dto.VisibilityRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}
	if payload.Visible == nil {
		return utils.SendError(c, fiber.StatusBadRequest, "visible flag is required")
	}

	evaluation, err := h.evaluations.ChangeVisibility(c.UserContext(), evaluationID, actorFromContext(c).ID, *payload.Visible)
	if err != nil {
		return utils.SendDomainError(c, err)
	}

	return utils.SendSuccess(c, "visibility updated", evaluation)
}
