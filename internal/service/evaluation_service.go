package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/gorm"

	"github.com/davidlopz/expotec-api/internal/apperr"
	"github.com/davidlopz/expotec-api/internal/dto"
	"github.com/davidlopz/expotec-api/internal/models"
	"github.com/davidlopz/expotec-api/internal/observability"
	"github.com/davidlopz/expotec-api/internal/repository"
)

// EvaluationService manages teacher evaluations and their visibility.
type EvaluationService interface {
	Create(ctx context.Context, projectID uint, requester Actor, payload dto.EvaluationCreateRequest) (dto.EvaluationResponse, error)
	ChangeVisibility(ctx context.Context, evaluationID uint, requesterID uint, visible bool) (dto.EvaluationResponse, error)
	ListByProject(ctx context.Context, projectID uint, requester Actor) ([]dto.EvaluationResponse, error)
}

type evaluationService struct {
	evaluations repository.EvaluationRepository
	projects    repository.ProjectRepository
	users       repository.UserRepository
	scale       PointScale
	validator   *validator.Validate
	logger      zerolog.Logger
}

// NewEvaluationService constructs the evaluation service.
func NewEvaluationService(evaluations repository.EvaluationRepository, projects repository.ProjectRepository, users repository.UserRepository, scale PointScale, validator *validator.Validate, logger zerolog.Logger) EvaluationService {
	return &evaluationService{
		evaluations: evaluations,
		projects:    projects,
		users:       users,
		scale:       scale,
		validator:   validator,
		logger:      logger.With().Str("component", "evaluation_service").Logger(),
	}
}

func (s *evaluationService) Create(ctx context.Context, projectID uint, requester Actor, payload dto.EvaluationCreateRequest) (dto.EvaluationResponse, error) {
	tracer := otel.Tracer("github.com/davidlopz/expotec-api/internal/service/evaluation")
	ctx, span := tracer.Start(ctx, "evaluation.create")
	span.SetAttributes(
		attribute.Int64("evaluation.project_id", int64(projectID)),
		attribute.Int64("evaluation.teacher_id", int64(requester.ID)),
	)
	defer span.End()

	if err := s.validator.Struct(payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "validation_failed")
		return dto.EvaluationResponse{}, apperr.Validation("invalid evaluation payload: %v", err)
	}

	if requester.Role != models.RoleTeacher && requester.Role != models.RoleAdmin {
		return dto.EvaluationResponse{}, apperr.Unauthorized("only teachers may evaluate projects")
	}

	evalType := models.EvaluationType(payload.Type)
	if evalType == models.EvaluationOfficial && payload.Grade == nil {
		return dto.EvaluationResponse{}, apperr.Validation("an official evaluation requires a grade")
	}
	if evalType == models.EvaluationSuggestion && payload.Grade != nil {
		return dto.EvaluationResponse{}, apperr.Validation("a suggestion must not carry a grade")
	}

	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			span.SetStatus(codes.Error, "project_not_found")
			return dto.EvaluationResponse{}, apperr.NotFound("project %d not found", projectID)
		}
		span.RecordError(err)
		return dto.EvaluationResponse{}, apperr.Store(err, "loading project")
	}

	evaluation := models.Evaluation{
		ProjectID: project.ID,
		TeacherID: requester.ID,
		Type:      evalType,
		Content:   payload.Content,
		Grade:     payload.Grade,
		Visible:   false,
	}
	if evalType == models.EvaluationOfficial {
		evaluation.Points = s.scale.FromGrade(*payload.Grade)
	}

	if err := s.evaluations.Create(ctx, &evaluation); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "evaluation_create_failed")
		return dto.EvaluationResponse{}, apperr.Store(err, "creating evaluation")
	}

	if evaluation.Points > 0 {
		if err := s.addPoints(ctx, project.ID, evaluation.Points); err != nil {
			return dto.EvaluationResponse{}, err
		}
	}

	observability.Evaluations().WithLabelValues(string(evalType)).Inc()
	span.SetAttributes(attribute.Int("evaluation.points", evaluation.Points))

	return dto.NewEvaluationResponse(evaluation), nil
}

// addPoints folds an official evaluation's contribution into the project
// ranking total, retrying around concurrent writers.
func (s *evaluationService) addPoints(ctx context.Context, projectID uint, points int) error {
	for attempt := 0; attempt < versionRetries; attempt++ {
		project, err := s.projects.GetByID(ctx, projectID)
		if err != nil {
			return apperr.Store(err, "reloading project for points")
		}
		project.PointsTotal += points

		err = s.projects.UpdateVersioned(ctx, &project)
		if errors.Is(err, repository.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return apperr.Store(err, "updating project points")
		}
		return nil
	}

	return apperr.Conflict("the project changed concurrently, try again")
}

func (s *evaluationService) ChangeVisibility(ctx context.Context, evaluationID uint, requesterID uint, visible bool) (dto.EvaluationResponse, error) {
	evaluation, err := s.evaluations.GetByID(ctx, evaluationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EvaluationResponse{}, apperr.NotFound("evaluation %d not found", evaluationID)
		}
		return dto.EvaluationResponse{}, apperr.Store(err, "loading evaluation")
	}

	requester, err := s.users.GetByID(ctx, requesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.EvaluationResponse{}, apperr.NotFound("user %d not found", requesterID)
		}
		return dto.EvaluationResponse{}, apperr.Store(err, "loading requester")
	}

	if requester.ID != evaluation.TeacherID && requester.Role != models.RoleAdmin {
		return dto.EvaluationResponse{}, apperr.Unauthorized("only the authoring teacher or an administrator may change visibility")
	}

	if evaluation.Visible != visible {
		evaluation.Visible = visible
		if err := s.evaluations.Update(ctx, &evaluation); err != nil {
			return dto.EvaluationResponse{}, apperr.Store(err, "updating evaluation visibility")
		}
	}

	return dto.NewEvaluationResponse(evaluation), nil
}

func (s *evaluationService) ListByProject(ctx context.Context, projectID uint, requester Actor) ([]dto.EvaluationResponse, error) {
	evaluations, err := s.evaluations.ListByProject(ctx, projectID)
	if err != nil {
		return nil, apperr.Store(err, "listing evaluations")
	}

	privileged := requester.Role == models.RoleTeacher || requester.Role == models.RoleAdmin
	if !privileged {
		visible := evaluations[:0]
		for _, evaluation := range evaluations {
			if evaluation.Visible {
				visible = append(visible, evaluation)
			}
		}
		evaluations = visible
	}

	return dto.NewEvaluationResponseSlice(evaluations), nil
}
