package models

import "time"

// EvaluationType separates graded official reviews from free-form suggestions.
type EvaluationType string

const (
	// EvaluationOfficial carries a 0-100 grade that feeds the project score.
	EvaluationOfficial EvaluationType = "official"
	// EvaluationSuggestion is ungraded feedback.
	EvaluationSuggestion EvaluationType = "suggestion"
)

// Evaluation is a teacher's review of one project. It references its project
// and author without owning them.
type Evaluation struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	ProjectID uint           `gorm:"index;not null" json:"project_id"`
	TeacherID uint           `gorm:"index;not null" json:"teacher_id"`
	Type      EvaluationType `gorm:"size:32;not null" json:"type"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	Grade     *float64       `json:"grade,omitempty"`
	Points    int            `gorm:"not null;default:0" json:"points"`
	Visible   bool           `gorm:"index" json:"visible"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// IsOfficial reports whether the evaluation contributes to the project grade.
func (e Evaluation) IsOfficial() bool {
	return e.Type == EvaluationOfficial
}
