package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/davidlopz/expotec-api/internal/apperr"
	"github.com/davidlopz/expotec-api/internal/canvas"
	"github.com/davidlopz/expotec-api/internal/dto"
	"github.com/davidlopz/expotec-api/internal/models"
	"github.com/davidlopz/expotec-api/internal/observability"
	"github.com/davidlopz/expotec-api/internal/repository"
)

// ProjectService manages the project lifecycle: creation, canvas updates and
// deletion with membership release.
type ProjectService interface {
	Create(ctx context.Context, requester Actor, payload dto.ProjectCreateRequest) (dto.ProjectResponse, error)
	Get(ctx context.Context, id uint) (dto.ProjectResponse, error)
	Update(ctx context.Context, id uint, requester Actor, payload dto.ProjectUpdateRequest) (dto.ProjectResponse, error)
	Delete(ctx context.Context, id uint, requester Actor) error
}

type projectService struct {
	projects  repository.ProjectRepository
	users     repository.UserRepository
	cleaner   *canvas.Cleaner
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewProjectService constructs the project service.
func NewProjectService(projects repository.ProjectRepository, users repository.UserRepository, cleaner *canvas.Cleaner, validator *validator.Validate, logger zerolog.Logger) ProjectService {
	return &projectService{
		projects:  projects,
		users:     users,
		cleaner:   cleaner,
		validator: validator,
		logger:    logger.With().Str("component", "project_service").Logger(),
	}
}

func (s *projectService) Create(ctx context.Context, requester Actor, payload dto.ProjectCreateRequest) (dto.ProjectResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProjectResponse{}, apperr.Validation("invalid project payload: %v", err)
	}

	if requester.Role != models.RoleStudent {
		return dto.ProjectResponse{}, apperr.Unauthorized("only students may create projects")
	}

	user, err := s.users.GetByID(ctx, requester.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProjectResponse{}, apperr.NotFound("user %d not found", requester.ID)
		}
		return dto.ProjectResponse{}, apperr.Store(err, "loading requester")
	}
	if user.HasProject() {
		return dto.ProjectResponse{}, apperr.Conflict("the student already belongs to a project")
	}
	if user.GroupID == nil {
		return dto.ProjectResponse{}, apperr.Conflict("the student has no group assigned")
	}

	project := models.Project{
		Title:     payload.Title,
		LeaderID:  user.ID,
		MemberIDs: []uint{user.ID},
		GroupID:   *user.GroupID,
		State:     models.ProjectStateDraft,
		Public:    false,
	}
	// Create also claims the leader's project reference in the same
	// transaction, so a failed insert never strands either side.
	if err := s.projects.Create(ctx, &project); err != nil {
		return dto.ProjectResponse{}, apperr.Store(err, "creating project")
	}

	s.logger.Info().
		Str("correlation_id", observability.CorrelationID(ctx)).
		Uint("project_id", project.ID).
		Uint("leader_id", user.ID).
		Msg("project created")

	return dto.NewProjectResponse(project), nil
}

func (s *projectService) Get(ctx context.Context, id uint) (dto.ProjectResponse, error) {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ProjectResponse{}, apperr.NotFound("project %d not found", id)
		}
		return dto.ProjectResponse{}, apperr.Store(err, "loading project")
	}

	return dto.NewProjectResponse(project), nil
}

func (s *projectService) Update(ctx context.Context, id uint, requester Actor, payload dto.ProjectUpdateRequest) (dto.ProjectResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.ProjectResponse{}, apperr.Validation("invalid update payload: %v", err)
	}

	for attempt := 0; attempt < versionRetries; attempt++ {
		project, err := s.projects.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return dto.ProjectResponse{}, apperr.NotFound("project %d not found", id)
			}
			return dto.ProjectResponse{}, apperr.Store(err, "loading project")
		}

		if requester.ID != project.LeaderID && requester.Role != models.RoleAdmin {
			return dto.ProjectResponse{}, apperr.Unauthorized("only the leader may update the project")
		}

		if payload.Title != nil {
			project.Title = *payload.Title
		}
		if payload.VideoURL != nil {
			project.VideoURL = *payload.VideoURL
		}
		if payload.Public != nil {
			project.Public = *payload.Public
		}
		if payload.State != nil {
			project.State = *payload.State
		}

		err = s.projects.UpdateVersioned(ctx, &project)
		if errors.Is(err, repository.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return dto.ProjectResponse{}, apperr.Store(err, "updating project")
		}

		if payload.Blocks != nil {
			blocks := make([]models.ContentBlock, 0, len(*payload.Blocks))
			for _, b := range *payload.Blocks {
				block := models.ContentBlock{
					ProjectID:  project.ID,
					Type:       models.ContentBlockType(b.Type),
					Content:    b.Content,
					OrderIndex: b.OrderIndex,
					Metadata:   b.Metadata,
				}
				s.cleaner.CleanBlock(&block)
				blocks = append(blocks, block)
			}
			if err := s.projects.ReplaceBlocks(ctx, project.ID, blocks); err != nil {
				return dto.ProjectResponse{}, apperr.Store(err, "replacing canvas blocks")
			}
			project.Blocks = blocks
		}

		return dto.NewProjectResponse(project), nil
	}

	return dto.ProjectResponse{}, apperr.Conflict("the project changed concurrently, try again")
}

func (s *projectService) Delete(ctx context.Context, id uint, requester Actor) error {
	project, err := s.projects.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("project %d not found", id)
		}
		return apperr.Store(err, "loading project")
	}

	if requester.ID != project.LeaderID {
		return apperr.Unauthorized("only the leader may delete the project")
	}

	// The cascade releases every member before the record disappears; a
	// partial failure rolls back so no user keeps a dangling reference.
	if err := s.projects.DeleteCascade(ctx, project); err != nil {
		return apperr.Store(err, "deleting project")
	}

	s.logger.Info().
		Str("correlation_id", observability.CorrelationID(ctx)).
		Uint("project_id", project.ID).
		Int("members", len(project.MemberIDs)).
		Msg("project deleted")

	return nil
}
