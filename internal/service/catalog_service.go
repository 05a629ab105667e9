package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/davidlopz/expotec-api/internal/apperr"
	"github.com/davidlopz/expotec-api/internal/models"
	"github.com/davidlopz/expotec-api/internal/repository"
)

// GroupPayload describes an admin group create/update.
type GroupPayload struct {
	Name       string `json:"name" validate:"required,max=64"`
	Career     string `json:"career" validate:"required,max=128"`
	Shift      string `json:"shift" validate:"omitempty,max=32"`
	Term       int    `json:"term" validate:"required,min=1,max=14"`
	TeacherIDs []uint `json:"teacher_ids"`
}

// CoursePayload describes an admin course create/update.
type CoursePayload struct {
	Name   string `json:"name" validate:"required,max=160"`
	Career string `json:"career" validate:"required,max=128"`
	Term   int    `json:"term" validate:"required,min=1,max=14"`
}

// CatalogService manages the group and course catalog. All mutations are
// admin-gated; deletion is a soft deactivate so history keeps resolving.
type CatalogService interface {
	CreateGroup(ctx context.Context, requester Actor, payload GroupPayload) (models.Group, error)
	UpdateGroup(ctx context.Context, id uint, requester Actor, payload GroupPayload) (models.Group, error)
	DeactivateGroup(ctx context.Context, id uint, requester Actor) error
	ListGroups(ctx context.Context) ([]models.Group, error)

	CreateCourse(ctx context.Context, requester Actor, payload CoursePayload) (models.Course, error)
	DeactivateCourse(ctx context.Context, id uint, requester Actor) error
	ListCourses(ctx context.Context, career string) ([]models.Course, error)
}

type catalogService struct {
	groups    repository.GroupRepository
	courses   repository.CourseRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewCatalogService constructs the catalog service.
func NewCatalogService(groups repository.GroupRepository, courses repository.CourseRepository, validator *validator.Validate, logger zerolog.Logger) CatalogService {
	return &catalogService{
		groups:    groups,
		courses:   courses,
		validator: validator,
		logger:    logger.With().Str("component", "catalog_service").Logger(),
	}
}

func (s *catalogService) requireAdmin(requester Actor) error {
	if requester.Role != models.RoleAdmin {
		return apperr.Unauthorized("only administrators may manage the catalog")
	}
	return nil
}

func (s *catalogService) CreateGroup(ctx context.Context, requester Actor, payload GroupPayload) (models.Group, error) {
	if err := s.requireAdmin(requester); err != nil {
		return models.Group{}, err
	}
	if err := s.validator.Struct(payload); err != nil {
		return models.Group{}, apperr.Validation("invalid group payload: %v", err)
	}

	group := models.Group{
		Name:       payload.Name,
		Career:     payload.Career,
		Shift:      payload.Shift,
		Term:       payload.Term,
		TeacherIDs: payload.TeacherIDs,
		Active:     true,
	}
	if err := s.groups.Create(ctx, &group); err != nil {
		return models.Group{}, apperr.Store(err, "creating group")
	}

	return group, nil
}

func (s *catalogService) UpdateGroup(ctx context.Context, id uint, requester Actor, payload GroupPayload) (models.Group, error) {
	if err := s.requireAdmin(requester); err != nil {
		return models.Group{}, err
	}
	if err := s.validator.Struct(payload); err != nil {
		return models.Group{}, apperr.Validation("invalid group payload: %v", err)
	}

	group, err := s.groups.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Group{}, apperr.NotFound("group %d not found", id)
		}
		return models.Group{}, apperr.Store(err, "loading group")
	}

	group.Name = payload.Name
	group.Career = payload.Career
	group.Shift = payload.Shift
	group.Term = payload.Term
	group.TeacherIDs = payload.TeacherIDs
	if err := s.groups.Update(ctx, &group); err != nil {
		return models.Group{}, apperr.Store(err, "updating group")
	}

	return group, nil
}

func (s *catalogService) DeactivateGroup(ctx context.Context, id uint, requester Actor) error {
	if err := s.requireAdmin(requester); err != nil {
		return err
	}
	if _, err := s.groups.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("group %d not found", id)
		}
		return apperr.Store(err, "loading group")
	}
	if err := s.groups.Deactivate(ctx, id); err != nil {
		return apperr.Store(err, "deactivating group")
	}

	return nil
}

func (s *catalogService) ListGroups(ctx context.Context) ([]models.Group, error) {
	groups, err := s.groups.ListActive(ctx)
	if err != nil {
		return nil, apperr.Store(err, "listing groups")
	}
	return groups, nil
}

func (s *catalogService) CreateCourse(ctx context.Context, requester Actor, payload CoursePayload) (models.Course, error) {
	if err := s.requireAdmin(requester); err != nil {
		return models.Course{}, err
	}
	if err := s.validator.Struct(payload); err != nil {
		return models.Course{}, apperr.Validation("invalid course payload: %v", err)
	}

	course := models.Course{
		Name:   payload.Name,
		Career: payload.Career,
		Term:   payload.Term,
		Active: true,
	}
	if err := s.courses.Create(ctx, &course); err != nil {
		return models.Course{}, apperr.Store(err, "creating course")
	}

	return course, nil
}

func (s *catalogService) DeactivateCourse(ctx context.Context, id uint, requester Actor) error {
	if err := s.requireAdmin(requester); err != nil {
		return err
	}
	if _, err := s.courses.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("course %d not found", id)
		}
		return apperr.Store(err, "loading course")
	}
	if err := s.courses.Deactivate(ctx, id); err != nil {
		return apperr.Store(err, "deactivating course")
	}

	return nil
}

func (s *catalogService) ListCourses(ctx context.Context, career string) ([]models.Course, error) {
	courses, err := s.courses.ListActiveByCareer(ctx, career)
	if err != nil {
		return nil, apperr.Store(err, "listing courses")
	}
	return courses, nil
}
