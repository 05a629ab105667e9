package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/davidlopz/expotec-api/internal/apperr"
	"github.com/davidlopz/expotec-api/internal/dto"
	"github.com/davidlopz/expotec-api/internal/identity"
	"github.com/davidlopz/expotec-api/internal/models"
	"github.com/davidlopz/expotec-api/internal/repository"
)

// UserService manages account bootstrap and profile edits.
type UserService interface {
	// EnsureUser upserts the account for an authenticated login. The call is
	// idempotent: a second login with the same email returns the same user.
	EnsureUser(ctx context.Context, payload dto.EnsureUserRequest) (dto.UserResponse, error)
	Get(ctx context.Context, id uint) (dto.UserResponse, error)
	AssignGroup(ctx context.Context, userID, groupID uint, requester Actor) (dto.UserResponse, error)
	UpdateTeacherAssignments(ctx context.Context, userID uint, payload dto.UpdateAssignmentsRequest, requester Actor) (dto.UserResponse, error)
}

type userService struct {
	users     repository.UserRepository
	groups    repository.GroupRepository
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewUserService constructs the user service.
func NewUserService(users repository.UserRepository, groups repository.GroupRepository, validator *validator.Validate, logger zerolog.Logger) UserService {
	return &userService{
		users:     users,
		groups:    groups,
		validator: validator,
		logger:    logger.With().Str("component", "user_service").Logger(),
	}
}

func (s *userService) EnsureUser(ctx context.Context, payload dto.EnsureUserRequest) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, apperr.Validation("invalid login payload: %v", err)
	}

	resolved, err := identity.Resolve(payload.Email)
	if err != nil {
		return dto.UserResponse{}, err
	}

	existing, err := s.users.GetByEmail(ctx, resolved.Email)
	if err == nil {
		return dto.NewUserResponse(existing), nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return dto.UserResponse{}, apperr.Store(err, "loading user by email")
	}

	user := models.User{
		Name:      payload.Name,
		Email:     resolved.Email,
		Role:      resolved.Role,
		Matricula: resolved.Matricula,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return dto.UserResponse{}, apperr.Store(err, "creating user")
	}

	s.logger.Info().Uint("user_id", user.ID).Str("role", string(user.Role)).Msg("user created on first login")

	return dto.NewUserResponse(user), nil
}

func (s *userService) Get(ctx context.Context, id uint) (dto.UserResponse, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, apperr.NotFound("user %d not found", id)
		}
		return dto.UserResponse{}, apperr.Store(err, "loading user")
	}

	return dto.NewUserResponse(user), nil
}

func (s *userService) AssignGroup(ctx context.Context, userID, groupID uint, requester Actor) (dto.UserResponse, error) {
	if requester.Role != models.RoleAdmin {
		return dto.UserResponse{}, apperr.Unauthorized("only administrators may assign groups")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, apperr.NotFound("user %d not found", userID)
		}
		return dto.UserResponse{}, apperr.Store(err, "loading user")
	}

	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, apperr.NotFound("group %d not found", groupID)
		}
		return dto.UserResponse{}, apperr.Store(err, "loading group")
	}
	if !group.Active {
		return dto.UserResponse{}, apperr.Conflict("group %d is inactive", groupID)
	}

	user.GroupID = &group.ID
	if err := s.users.Update(ctx, &user); err != nil {
		return dto.UserResponse{}, apperr.Store(err, "updating user group")
	}

	return dto.NewUserResponse(user), nil
}

func (s *userService) UpdateTeacherAssignments(ctx context.Context, userID uint, payload dto.UpdateAssignmentsRequest, requester Actor) (dto.UserResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.UserResponse{}, apperr.Validation("invalid assignments payload: %v", err)
	}

	if requester.Role != models.RoleAdmin && requester.ID != userID {
		return dto.UserResponse{}, apperr.Unauthorized("assignments may only be edited by their owner or an administrator")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.UserResponse{}, apperr.NotFound("user %d not found", userID)
		}
		return dto.UserResponse{}, apperr.Store(err, "loading user")
	}
	if user.Role != models.RoleTeacher {
		return dto.UserResponse{}, apperr.Conflict("user %d is not a teacher", userID)
	}

	assignments := make([]models.TeacherAssignment, 0, len(payload.Assignments))
	for _, a := range payload.Assignments {
		assignments = append(assignments, models.TeacherAssignment{
			Career:   a.Career,
			CourseID: a.CourseID,
			GroupIDs: a.GroupIDs,
		})
	}
	if err := s.users.ReplaceAssignments(ctx, userID, assignments); err != nil {
		return dto.UserResponse{}, apperr.Store(err, "replacing teacher assignments")
	}

	updated, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return dto.UserResponse{}, apperr.Store(err, "reloading user")
	}

	return dto.NewUserResponse(updated), nil
}
