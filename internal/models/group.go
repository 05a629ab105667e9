package models

import (
	"time"

	"gorm.io/datatypes"
)

// Group is a cohort of students for one career, shift and term. Groups are
// soft-deleted through the Active flag so historical references stay valid.
type Group struct {
	ID         uint                      `gorm:"primaryKey" json:"id"`
	Name       string                    `gorm:"size:64;not null" json:"name"`
	Career     string                    `gorm:"size:128;not null" json:"career"`
	Shift      string                    `gorm:"size:32" json:"shift"`
	Term       int                       `gorm:"not null" json:"term"`
	TeacherIDs datatypes.JSONSlice[uint] `gorm:"type:json" json:"teacher_ids"`
	Active     bool                      `gorm:"default:true;index" json:"active"`
	CreatedAt  time.Time                 `json:"created_at"`
	UpdatedAt  time.Time                 `json:"updated_at"`
}

// Course is a subject (materia) within a career at a given term index.
type Course struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:160;not null" json:"name"`
	Career    string    `gorm:"size:128;not null" json:"career"`
	Term      int       `gorm:"not null" json:"term"`
	Active    bool      `gorm:"default:true;index" json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
