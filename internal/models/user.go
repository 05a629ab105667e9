package models

import (
	"time"

	"gorm.io/datatypes"
)

// Role classifies what a user may do across the platform.
type Role string

const (
	// RoleStudent is assigned to accounts resolved from an 8-digit matricula address.
	RoleStudent Role = "student"
	// RoleTeacher is assigned to institutional staff accounts.
	RoleTeacher Role = "teacher"
	// RoleGuest is assigned to external visitors; guests may only browse and vote.
	RoleGuest Role = "guest"
	// RoleAdmin is assigned to platform administrator accounts.
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleGuest, RoleAdmin:
		return true
	}
	return false
}

// User represents an authenticated account. Accounts are created lazily on
// first login and are never hard-deleted.
type User struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"size:255" json:"name"`
	Email     string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role      Role   `gorm:"size:32;not null" json:"role"`
	Matricula string `gorm:"size:16;index" json:"matricula,omitempty"`
	// ProjectID is non-nil iff the user is currently a member of that project.
	ProjectID *uint     `gorm:"index" json:"project_id,omitempty"`
	GroupID   *uint     `gorm:"index" json:"group_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Assignments []TeacherAssignment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"assignments,omitempty"`
}

// HasProject reports whether the user currently belongs to a project.
func (u User) HasProject() bool {
	return u.ProjectID != nil && *u.ProjectID != 0
}

// TeacherAssignment links a teacher to the career, course and groups they
// attend during the current term.
type TeacherAssignment struct {
	ID       uint                      `gorm:"primaryKey" json:"id"`
	UserID   uint                      `gorm:"index;not null" json:"user_id"`
	Career   string                    `gorm:"size:128;not null" json:"career"`
	CourseID uint                      `gorm:"index" json:"course_id"`
	GroupIDs datatypes.JSONSlice[uint] `gorm:"type:json" json:"group_ids"`
}
