package dto

import (
	"time"

	"github.com/davidlopz/expotec-api/internal/models"
)

// EnsureUserRequest carries the identity of an authenticated login.
type EnsureUserRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"omitempty,max=255"`
}

// TeacherAssignmentPayload describes one career/course/groups assignment.
type TeacherAssignmentPayload struct {
	Career   string `json:"career" validate:"required,max=128"`
	CourseID uint   `json:"course_id" validate:"required"`
	GroupIDs []uint `json:"group_ids" validate:"required,min=1"`
}

// UpdateAssignmentsRequest replaces a teacher's assignment list.
type UpdateAssignmentsRequest struct {
	Assignments []TeacherAssignmentPayload `json:"assignments" validate:"required,dive"`
}

// UserResponse is the serialized representation returned to API clients.
type UserResponse struct {
	ID        uint        `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	Matricula string      `json:"matricula,omitempty"`
	ProjectID *uint       `json:"project_id,omitempty"`
	GroupID   *uint       `json:"group_id,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

// NewUserResponse converts a model into a DTO.
func NewUserResponse(user models.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		Matricula: user.Matricula,
		ProjectID: user.ProjectID,
		GroupID:   user.GroupID,
		CreatedAt: user.CreatedAt,
	}
}
