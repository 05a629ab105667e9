// Package identity derives a user's role and matricula from an
// institutional email address.
package identity

import (
	"regexp"
	"strings"

	"github.com/davidlopz/expotec-api/internal/apperr"
	"github.com/davidlopz/expotec-api/internal/models"
)

const (
	// StaffDomain hosts teacher and admin accounts.
	StaffDomain = "itdgo.edu.mx"
	// StudentDomain hosts student accounts named by matricula.
	StudentDomain = "alumnos.itdgo.edu.mx"
	// LegacyDomain hosts staff accounts created before the domain migration.
	LegacyDomain = "itdgo.mx"
)

var (
	matriculaPattern = regexp.MustCompile(`^\d{8}$`)
	adminPattern     = regexp.MustCompile(`^admin(\.[a-z0-9]+)?$`)
	teacherPattern   = regexp.MustCompile(`^[a-z]+\.[a-z]+$`)
)

// Identity is the result of resolving an email address.
type Identity struct {
	Email     string
	Role      models.Role
	Matricula string
}

// Resolve normalises the address and detects the account role. First match
// wins: admin convention, student matricula, firstname.lastname staff,
// legacy-domain staff, anything else a guest.
func Resolve(email string) (Identity, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" {
		return Identity{}, apperr.Validation("email must not be empty")
	}

	local, domain, found := strings.Cut(normalized, "@")
	if !found || local == "" || domain == "" {
		return Identity{Email: normalized, Role: models.RoleGuest}, nil
	}

	switch domain {
	case StaffDomain:
		if adminPattern.MatchString(local) {
			return Identity{Email: normalized, Role: models.RoleAdmin}, nil
		}
		if teacherPattern.MatchString(local) {
			return Identity{Email: normalized, Role: models.RoleTeacher}, nil
		}
	case StudentDomain:
		if matriculaPattern.MatchString(local) {
			return Identity{Email: normalized, Role: models.RoleStudent, Matricula: local}, nil
		}
	case LegacyDomain:
		return Identity{Email: normalized, Role: models.RoleTeacher}, nil
	}

	return Identity{Email: normalized, Role: models.RoleGuest}, nil
}
