package dto

import (
	"time"

	"github.com/davidlopz/expotec-api/internal/models"
)

// EvaluationCreateRequest describes the payload for creating an evaluation.
type EvaluationCreateRequest struct {
	Type    string   `json:"type" validate:"required,oneof=official suggestion"`
	Content string   `json:"content" validate:"required,min=3"`
	Grade   *float64 `json:"grade" validate:"omitempty,gte=0,lte=100"`
}

// VisibilityRequest toggles an evaluation's public flag.
type VisibilityRequest struct {
	Visible *bool `json:"visible" validate:"required"`
}

// EvaluationResponse is the serialized representation returned to API clients.
type EvaluationResponse struct {
	ID        uint                  `json:"id"`
	ProjectID uint                  `json:"project_id"`
	TeacherID uint                  `json:"teacher_id"`
	Type      models.EvaluationType `json:"type"`
	Content   string                `json:"content"`
	Grade     *float64              `json:"grade,omitempty"`
	Points    int                   `json:"points"`
	Visible   bool                  `json:"visible"`
	CreatedAt time.Time             `json:"created_at"`
	UpdatedAt time.Time             `json:"updated_at"`
}

// NewEvaluationResponse converts a model into a DTO.
func NewEvaluationResponse(evaluation models.Evaluation) EvaluationResponse {
	return EvaluationResponse{
		ID:        evaluation.ID,
		ProjectID: evaluation.ProjectID,
		TeacherID: evaluation.TeacherID,
		Type:      evaluation.Type,
		Content:   evaluation.Content,
		Grade:     evaluation.Grade,
		Points:    evaluation.Points,
		Visible:   evaluation.Visible,
		CreatedAt: evaluation.CreatedAt,
		UpdatedAt: evaluation.UpdatedAt,
	}
}

// NewEvaluationResponseSlice converts a slice of models into DTOs.
func NewEvaluationResponseSlice(evaluations []models.Evaluation) []EvaluationResponse {
	responses := make([]EvaluationResponse, 0, len(evaluations))
	for _, evaluation := range evaluations {
		responses = append(responses, NewEvaluationResponse(evaluation))
	}

	return responses
}
