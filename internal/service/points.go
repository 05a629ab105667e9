package service

import (
	"math"

	"github.com/davidlopz/expotec-api/internal/models"
)

// Actor identifies the authenticated user performing an operation.
type Actor struct {
	ID   uint
	Role models.Role
}

// PointScale converts official grades and star votes into ranking points.
// The mapping is configuration, not a hidden rule: a 0-100 grade maps
// linearly onto [floor, 100] and one star is worth StarFactor points.
type PointScale struct {
	GradeFloor int
	StarFactor int
}

// FromGrade maps a 0-100 grade to points.
func (s PointScale) FromGrade(grade float64) int {
	floor := float64(s.GradeFloor)
	return int(math.Round(floor + (100-floor)/100*grade))
}

// FromStars maps a 1-5 star vote to points.
func (s PointScale) FromStars(stars int) int {
	return stars * s.StarFactor
}
