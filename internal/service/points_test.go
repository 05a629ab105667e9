package service

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rs/zerolog"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestPointScaleFromGrade(t *testing.T) {
	scale := PointScale{GradeFloor: 10, StarFactor: 20}

	require.Equal(t, 10, scale.FromGrade(0))
	require.Equal(t, 55, scale.FromGrade(50))
	require.Equal(t, 100, scale.FromGrade(100))
	require.Equal(t, 82, scale.FromGrade(80))
}

func TestPointScaleFromStars(t *testing.T) {
	scale := PointScale{GradeFloor: 10, StarFactor: 20}

	require.Equal(t, 20, scale.FromStars(1))
	require.Equal(t, 100, scale.FromStars(5))
}
