package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ProjectState tracks the lifecycle of a project.
type ProjectState string

const (
	// ProjectStateDraft is the initial state after creation.
	ProjectStateDraft ProjectState = "draft"
	// ProjectStateActive marks a project opened for evaluation and voting.
	ProjectStateActive ProjectState = "active"
	// ProjectStateArchived marks a project closed at the end of the term.
	ProjectStateArchived ProjectState = "archived"
)

// ContentBlockType tags the kind of a canvas block.
type ContentBlockType string

const (
	BlockText    ContentBlockType = "text"
	BlockHeading ContentBlockType = "heading"
	BlockImage   ContentBlockType = "image"
	BlockVideo   ContentBlockType = "video"
	BlockCode    ContentBlockType = "code"
	BlockTable   ContentBlockType = "table"
)

// Project is the central aggregate: a student team, its canvas document and
// its ranking counters. MemberIDs always contains the leader and mirrors the
// ProjectID field of every member.
type Project struct {
	ID        uint                      `gorm:"primaryKey" json:"id"`
	Title     string                    `gorm:"size:255;not null" json:"title"`
	LeaderID  uint                      `gorm:"index;not null" json:"leader_id"`
	MemberIDs datatypes.JSONSlice[uint] `gorm:"type:json" json:"member_ids"`
	TeacherID *uint                     `gorm:"index" json:"teacher_id,omitempty"`
	GroupID   uint                      `gorm:"index;not null" json:"group_id"`
	State     ProjectState              `gorm:"size:32;not null" json:"state"`
	VideoURL  string                    `gorm:"size:512" json:"video_url"`
	Public    bool                      `gorm:"index" json:"public"`

	// Ranking counters. Votes maps voter id (decimal string) to the star
	// rating so a voter contributes at most once.
	PointsTotal int               `gorm:"not null;default:0" json:"points_total"`
	VoteCount   int               `gorm:"not null;default:0" json:"vote_count"`
	Votes       datatypes.JSONMap `gorm:"type:json" json:"-"`

	// Version guards against lost updates; every write increments it.
	Version   uint      `gorm:"not null;default:0" json:"-"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Blocks []ContentBlock `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"blocks,omitempty"`
}

// HasMember reports whether the given user id is in the member list.
func (p Project) HasMember(userID uint) bool {
	for _, id := range p.MemberIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// Mutable reports whether membership and content changes are still allowed.
func (p Project) Mutable() bool {
	return p.State == ProjectStateDraft || p.State == ProjectStateActive
}

// BeforeSave normalises the project state prior to persistence.
func (p *Project) BeforeSave(tx *gorm.DB) error {
	switch p.State {
	case ProjectStateDraft, ProjectStateActive, ProjectStateArchived:
	default:
		p.State = ProjectStateDraft
	}
	return nil
}

// ContentBlock is one unit of a project's canvas document. Metadata is kept
// flat by the canvas sanitizer before every write.
type ContentBlock struct {
	ID         uint              `gorm:"primaryKey" json:"id"`
	ProjectID  uint              `gorm:"index;not null" json:"project_id"`
	Type       ContentBlockType  `gorm:"size:32;not null" json:"type"`
	Content    string            `gorm:"type:text" json:"content"`
	OrderIndex int               `gorm:"not null" json:"order_index"`
	Metadata   datatypes.JSONMap `gorm:"type:json" json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}
