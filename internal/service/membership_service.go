package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/davidlopz/expotec-api/internal/apperr"
	"github.com/davidlopz/expotec-api/internal/dto"
	"github.com/davidlopz/expotec-api/internal/models"
	"github.com/davidlopz/expotec-api/internal/observability"
	"github.com/davidlopz/expotec-api/internal/repository"
)

// versionRetries bounds how often a mutation is recomputed after losing a
// conditional write against a concurrent update.
const versionRetries = 3

var matriculaTarget = regexp.MustCompile(`^\d{8}$`)

// MembershipService enforces the team membership rules: leader-gated
// add/remove and the one-active-project-per-student invariant.
type MembershipService interface {
	// AddMember resolves target (email or matricula) and adds it to the
	// project. Domain rejections come back as an unsuccessful ActionResult;
	// not-found and authorization failures are returned as errors.
	AddMember(ctx context.Context, projectID, requesterID uint, target string) (dto.ActionResult, error)
	RemoveMember(ctx context.Context, projectID, memberID, requesterID uint) (dto.ActionResult, error)
}

type membershipService struct {
	projects repository.ProjectRepository
	users    repository.UserRepository
	logger   zerolog.Logger
}

// NewMembershipService constructs the membership service.
func NewMembershipService(projects repository.ProjectRepository, users repository.UserRepository, logger zerolog.Logger) MembershipService {
	return &membershipService{
		projects: projects,
		users:    users,
		logger:   logger.With().Str("component", "membership_service").Logger(),
	}
}

func (s *membershipService) AddMember(ctx context.Context, projectID, requesterID uint, target string) (dto.ActionResult, error) {
	if strings.TrimSpace(target) == "" {
		return dto.ActionResult{}, apperr.Validation("member target must not be empty")
	}

	candidate, err := s.resolveTarget(ctx, target)
	if err != nil {
		return dto.ActionResult{}, err
	}

	for attempt := 0; attempt < versionRetries; attempt++ {
		project, err := s.loadProject(ctx, projectID)
		if err != nil {
			return dto.ActionResult{}, err
		}
		if project.LeaderID != requesterID {
			return dto.ActionResult{}, apperr.Unauthorized("only the project leader may add members")
		}
		if !project.Mutable() {
			return dto.Rejected("the project is archived and no longer accepts members"), nil
		}
		if candidate.Role != models.RoleStudent {
			return dto.Rejected("only students can join a project"), nil
		}
		if candidate.HasProject() {
			return dto.Rejected("the student already belongs to a project"), nil
		}
		if candidate.GroupID == nil || *candidate.GroupID != project.GroupID {
			return dto.Rejected("the student is not in the project's group"), nil
		}
		if project.HasMember(candidate.ID) {
			return dto.Rejected("the student is already a member of this project"), nil
		}

		project.MemberIDs = append(project.MemberIDs, candidate.ID)

		// One transactional write moves both sides of the membership
		// invariant: the project's member list and the user's reference.
		err = s.projects.UpdateVersionedMembership(ctx, &project, candidate.ID, &project.ID)
		if errors.Is(err, repository.ErrVersionConflict) {
			// re-read and recompute from fresh state
			refreshed, rerr := s.resolveTarget(ctx, target)
			if rerr != nil {
				return dto.ActionResult{}, rerr
			}
			candidate = refreshed
			continue
		}
		if err != nil {
			return dto.ActionResult{}, apperr.Store(err, "updating project members")
		}

		s.logger.Info().
			Str("correlation_id", observability.CorrelationID(ctx)).
			Uint("project_id", project.ID).
			Uint("member_id", candidate.ID).
			Msg("member added")

		return dto.Accepted("member added to the project"), nil
	}

	return dto.ActionResult{}, apperr.Conflict("the project changed concurrently, try again")
}

func (s *membershipService) RemoveMember(ctx context.Context, projectID, memberID, requesterID uint) (dto.ActionResult, error) {
	for attempt := 0; attempt < versionRetries; attempt++ {
		project, err := s.loadProject(ctx, projectID)
		if err != nil {
			return dto.ActionResult{}, err
		}

		if requesterID != memberID && requesterID != project.LeaderID {
			return dto.ActionResult{}, apperr.Unauthorized("only the leader may remove another member")
		}
		if !project.HasMember(memberID) {
			return dto.ActionResult{}, apperr.NotFound("user %d is not a member of project %d", memberID, projectID)
		}
		if memberID == project.LeaderID && len(project.MemberIDs) > 1 {
			return dto.Rejected("the leader cannot leave while the team has other members"), nil
		}

		members := make([]uint, 0, len(project.MemberIDs)-1)
		for _, id := range project.MemberIDs {
			if id != memberID {
				members = append(members, id)
			}
		}
		project.MemberIDs = members

		err = s.projects.UpdateVersionedMembership(ctx, &project, memberID, nil)
		if errors.Is(err, repository.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return dto.ActionResult{}, apperr.Store(err, "updating project members")
		}

		s.logger.Info().
			Str("correlation_id", observability.CorrelationID(ctx)).
			Uint("project_id", project.ID).
			Uint("member_id", memberID).
			Msg("member removed")

		return dto.Accepted("member removed from the project"), nil
	}

	return dto.ActionResult{}, apperr.Conflict("the project changed concurrently, try again")
}

func (s *membershipService) loadProject(ctx context.Context, projectID uint) (models.Project, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Project{}, apperr.NotFound("project %d not found", projectID)
		}
		return models.Project{}, apperr.Store(err, "loading project")
	}
	return project, nil
}

func (s *membershipService) resolveTarget(ctx context.Context, target string) (models.User, error) {
	target = strings.ToLower(strings.TrimSpace(target))

	var (
		user models.User
		err  error
	)
	if matriculaTarget.MatchString(target) {
		user, err = s.users.GetByMatricula(ctx, target)
	} else {
		user, err = s.users.GetByEmail(ctx, target)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, apperr.NotFound("no user matches %q", target)
		}
		return models.User{}, apperr.Store(err, "resolving member target")
	}
	return user, nil
}
