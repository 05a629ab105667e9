package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/davidlopz/expotec-api/internal/dto"
	"github.com/davidlopz/expotec-api/internal/repository"
	"github.com/davidlopz/expotec-api/internal/service"
	"github.com/davidlopz/expotec-api/internal/utils"
)

// GalleryHandler exposes the public gallery listing and star voting.
type GalleryHandler struct {
	ranking service.RankingService
	logger  zerolog.Logger
}

func NewGalleryHandler(ranking service.RankingService, logger zerolog.Logger) *GalleryHandler {
	return &GalleryHandler{
		ranking: ranking,
		logger:  logger.With().Str("component", "gallery_handler").Logger(),
	}
}

func (h *GalleryHandler) Register(router fiber.Router) {
	router.Get("/gallery", h.list)
	router.Post("/gallery/:id/votes", h.vote)
}

func (h *GalleryHandler) list(c *fiber.Ctx) error {
	page, err := parseQueryInt(c, "page")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page")
	}
	pageSize, err := parseQueryInt(c, "page_size")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid page_size")
	}
	groupID, err := parseQueryInt(c, "group_id")
	if err != nil || groupID < 0 {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid group_id")
	}

	filter := repository.ProjectFilter{
		GroupID:  uint(groupID),
		Search:   strings.TrimSpace(c.Query("q")),
		Page:     page,
		PageSize: pageSize,
	}

	listing, err := h.ranking.Gallery(c.UserContext(), filter)
	if err != nil {
		return utils.SendDomainError(c, err)
	}

	return utils.SendSuccess(c, "gallery retrieved", listing)
}

func (h *GalleryHandler) vote(c *fiber.Ctx) error {
	projectID, err := parseParamUint(c, "id")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid project id")
	}

	actor := actorFromContext(c)
	if actor.ID == 0 {
		return utils.SendError(c, fiber.StatusUnauthorized, "authentication required")
	}

	var payload dto.VoteRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid request body")
	}

	result, err := h.ranking.CastVote(c.UserContext(), projectID, actor.ID, payload.Stars)
	if err != nil {
		return utils.SendDomainError(c, err)
	}

	return utils.SendSuccess(c, "vote processed", result)
}
