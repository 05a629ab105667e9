package dto

import (
	"time"

	"github.com/davidlopz/expotec-api/internal/models"
)

// ActionResult is the structured outcome of a domain mutation that may be
// rejected without being an error the caller retries: the boundary renders
// it as-is and the client branches on Success.
type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Accepted builds a successful result.
func Accepted(message string) ActionResult {
	return ActionResult{Success: true, Message: message}
}

// Rejected builds an unsuccessful result with the rejection reason.
func Rejected(message string) ActionResult {
	return ActionResult{Success: false, Message: message}
}

// ProjectCreateRequest describes the payload for creating a new project.
type ProjectCreateRequest struct {
	Title string `json:"title" validate:"required,min=3,max=255"`
}

// ContentBlockPayload is one canvas block as submitted by the client editor.
type ContentBlockPayload struct {
	Type       string                 `json:"type" validate:"required,oneof=text heading image video code table"`
	Content    string                 `json:"content"`
	OrderIndex int                    `json:"order_index" validate:"gte=0"`
	Metadata   map[string]interface{} `json:"metadata"`
}

// ProjectUpdateRequest describes a partial update; nil fields are untouched.
type ProjectUpdateRequest struct {
	Title    *string                `json:"title" validate:"omitempty,min=3,max=255"`
	VideoURL *string                `json:"video_url" validate:"omitempty,max=512"`
	Public   *bool                  `json:"public"`
	State    *models.ProjectState   `json:"state" validate:"omitempty,oneof=draft active archived"`
	Blocks   *[]ContentBlockPayload `json:"blocks" validate:"omitempty,dive"`
}

// AddMemberRequest identifies the user to add, by email or matricula.
type AddMemberRequest struct {
	Target string `json:"target" validate:"required,min=3,max=255"`
}

// ContentBlockResponse is the serialized canvas block.
type ContentBlockResponse struct {
	ID         uint                    `json:"id"`
	Type       models.ContentBlockType `json:"type"`
	Content    string                  `json:"content"`
	OrderIndex int                     `json:"order_index"`
	Metadata   map[string]interface{}  `json:"metadata,omitempty"`
}

// ProjectResponse is the serialized representation returned to API clients.
type ProjectResponse struct {
	ID          uint                   `json:"id"`
	Title       string                 `json:"title"`
	LeaderID    uint                   `json:"leader_id"`
	MemberIDs   []uint                 `json:"member_ids"`
	TeacherID   *uint                  `json:"teacher_id,omitempty"`
	GroupID     uint                   `json:"group_id"`
	State       models.ProjectState    `json:"state"`
	VideoURL    string                 `json:"video_url,omitempty"`
	Public      bool                   `json:"public"`
	PointsTotal int                    `json:"points_total"`
	VoteCount   int                    `json:"vote_count"`
	Blocks      []ContentBlockResponse `json:"blocks,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// NewProjectResponse converts a model into a DTO.
func NewProjectResponse(project models.Project) ProjectResponse {
	blocks := make([]ContentBlockResponse, 0, len(project.Blocks))
	for _, block := range project.Blocks {
		blocks = append(blocks, ContentBlockResponse{
			ID:         block.ID,
			Type:       block.Type,
			Content:    block.Content,
			OrderIndex: block.OrderIndex,
			Metadata:   block.Metadata,
		})
	}

	return ProjectResponse{
		ID:          project.ID,
		Title:       project.Title,
		LeaderID:    project.LeaderID,
		MemberIDs:   append([]uint(nil), project.MemberIDs...),
		TeacherID:   project.TeacherID,
		GroupID:     project.GroupID,
		State:       project.State,
		VideoURL:    project.VideoURL,
		Public:      project.Public,
		PointsTotal: project.PointsTotal,
		VoteCount:   project.VoteCount,
		Blocks:      blocks,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
}
