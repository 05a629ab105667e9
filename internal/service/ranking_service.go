package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/davidlopz/expotec-api/internal/apperr"
	"github.com/davidlopz/expotec-api/internal/dto"
	"github.com/davidlopz/expotec-api/internal/observability"
	"github.com/davidlopz/expotec-api/internal/repository"
)

// RankingService maintains the public gallery: guest votes and the combined
// project score ordering.
type RankingService interface {
	// CastVote records stars (1-5) for voterID. A repeated vote replaces the
	// previous contribution instead of accumulating it.
	CastVote(ctx context.Context, projectID, voterID uint, stars int) (dto.ActionResult, error)
	Gallery(ctx context.Context, filter repository.ProjectFilter) (dto.GalleryListResponse, error)
}

type rankingService struct {
	projects repository.ProjectRepository
	cache    *redis.Client
	cacheTTL time.Duration
	scale    PointScale
	logger   zerolog.Logger
}

// NewRankingService constructs the ranking service. cache may be nil, in
// which case every gallery read hits the store.
func NewRankingService(projects repository.ProjectRepository, cache *redis.Client, cacheTTL time.Duration, scale PointScale, logger zerolog.Logger) RankingService {
	return &rankingService{
		projects: projects,
		cache:    cache,
		cacheTTL: cacheTTL,
		scale:    scale,
		logger:   logger.With().Str("component", "ranking_service").Logger(),
	}
}

func (s *rankingService) CastVote(ctx context.Context, projectID, voterID uint, stars int) (dto.ActionResult, error) {
	if stars < 1 || stars > 5 {
		return dto.ActionResult{}, apperr.Validation("stars must be between 1 and 5")
	}

	voterKey := strconv.FormatUint(uint64(voterID), 10)

	for attempt := 0; attempt < versionRetries; attempt++ {
		project, err := s.projects.GetByID(ctx, projectID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.ActionResult{}, apperr.NotFound("project %d not found", projectID)
			}
			return dto.ActionResult{}, apperr.Store(err, "loading project")
		}

		if !project.Public {
			return dto.Rejected("the project is not open for public voting"), nil
		}
		if !project.Mutable() {
			return dto.Rejected("the project is archived and no longer accepts votes"), nil
		}

		previous, voted := starsFromVotes(project.Votes, voterKey)
		if voted && previous == stars {
			return dto.Accepted("vote unchanged"), nil
		}

		// Replacement subtracts the old contribution before adding the new
		// one so a voter never counts twice.
		if voted {
			project.PointsTotal -= s.scale.FromStars(previous)
		} else {
			project.VoteCount++
		}
		project.PointsTotal += s.scale.FromStars(stars)

		if project.Votes == nil {
			project.Votes = datatypes.JSONMap{}
		}
		project.Votes[voterKey] = stars

		err = s.projects.UpdateVersioned(ctx, &project)
		if errors.Is(err, repository.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return dto.ActionResult{}, apperr.Store(err, "recording vote")
		}

		observability.Votes().WithLabelValues(strconv.Itoa(stars)).Inc()
		s.invalidateGallery(ctx)

		if voted {
			return dto.Accepted("vote updated"), nil
		}
		return dto.Accepted("vote recorded"), nil
	}

	return dto.ActionResult{}, apperr.Conflict("the project changed concurrently, try again")
}

func (s *rankingService) Gallery(ctx context.Context, filter repository.ProjectFilter) (dto.GalleryListResponse, error) {
	start := time.Now()
	defer func() {
		observability.GalleryLatency().Observe(time.Since(start).Seconds())
	}()

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 || filter.PageSize > 100 {
		filter.PageSize = 20
	}

	cacheKey := fmt.Sprintf("gallery:g%d:q%s:p%d:s%d", filter.GroupID, filter.Search, filter.Page, filter.PageSize)
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var response dto.GalleryListResponse
			if err := json.Unmarshal([]byte(cached), &response); err == nil {
				return response, nil
			}
		}
	}

	projects, total, err := s.projects.ListPublic(ctx, filter)
	if err != nil {
		return dto.GalleryListResponse{}, apperr.Store(err, "listing public projects")
	}

	items := make([]dto.GalleryProjectResponse, 0, len(projects))
	for _, project := range projects {
		items = append(items, dto.GalleryProjectResponse{
			ID:          project.ID,
			Title:       project.Title,
			VideoURL:    project.VideoURL,
			PointsTotal: project.PointsTotal,
			VoteCount:   project.VoteCount,
			CreatedAt:   project.CreatedAt,
		})
	}

	response := dto.GalleryListResponse{
		Items: items,
		Pagination: dto.PaginationMeta{
			Page:       filter.Page,
			PageSize:   filter.PageSize,
			TotalItems: total,
			TotalPages: int(math.Ceil(float64(total) / float64(filter.PageSize))),
		},
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(response); err == nil {
			if err := s.cache.Set(ctx, cacheKey, encoded, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to cache gallery page")
			}
		}
	}

	return response, nil
}

// invalidateGallery drops cached gallery pages after a ranking change.
func (s *rankingService) invalidateGallery(ctx context.Context) {
	if s.cache == nil {
		return
	}
	iter := s.cache.Scan(ctx, 0, "gallery:*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.cache.Del(ctx, iter.Val()).Err(); err != nil {
			s.logger.Warn().Err(err).Str("key", iter.Val()).Msg("failed to invalidate gallery cache")
			return
		}
	}
	if err := iter.Err(); err != nil {
		s.logger.Warn().Err(err).Msg("gallery cache scan failed")
	}
}

// starsFromVotes reads a voter's previous stars from the persisted map,
// which yields float64 values after a JSON round trip.
func starsFromVotes(votes datatypes.JSONMap, voterKey string) (int, bool) {
	raw, ok := votes[voterKey]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i), true
		}
	}
	return 0, false
}
