package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/davidlopz/expotec-api/internal/apperr"
	"github.com/davidlopz/expotec-api/internal/dto"
	"github.com/davidlopz/expotec-api/internal/models"
)

type fakeGroupRepo struct {
	groups map[uint]models.Group
	nextID uint
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{groups: make(map[uint]models.Group), nextID: 1}
}

func (f *fakeGroupRepo) GetByID(ctx context.Context, id uint) (models.Group, error) {
	group, ok := f.groups[id]
	if !ok {
		return models.Group{}, gorm.ErrRecordNotFound
	}
	return group, nil
}

func (f *fakeGroupRepo) ListActive(ctx context.Context) ([]models.Group, error) {
	var results []models.Group
	for _, group := range f.groups {
		if group.Active {
			results = append(results, group)
		}
	}
	return results, nil
}

func (f *fakeGroupRepo) Create(ctx context.Context, group *models.Group) error {
	group.ID = f.nextID
	f.nextID++
	f.groups[group.ID] = *group
	return nil
}

func (f *fakeGroupRepo) Update(ctx context.Context, group *models.Group) error {
	f.groups[group.ID] = *group
	return nil
}

func (f *fakeGroupRepo) Deactivate(ctx context.Context, id uint) error {
	group, ok := f.groups[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	group.Active = false
	f.groups[id] = group
	return nil
}

func newUserService(users *fakeUserRepo, groups *fakeGroupRepo) UserService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewUserService(users, groups, validate, testLogger())
}

func TestEnsureUserFirstLogin(t *testing.T) {
	users := newFakeUserRepo()
	svc := newUserService(users, newFakeGroupRepo())

	resp, err := svc.EnsureUser(context.Background(), dto.EnsureUserRequest{Email: "20210033@Alumnos.ITDGO.edu.mx", Name: "Ana"})
	require.NoError(t, err)
	require.Equal(t, models.RoleStudent, resp.Role)
	require.Equal(t, "20210033", resp.Matricula)
	require.Equal(t, "20210033@alumnos.itdgo.edu.mx", resp.Email)
}

func TestEnsureUserIdempotent(t *testing.T) {
	users := newFakeUserRepo()
	svc := newUserService(users, newFakeGroupRepo())

	first, err := svc.EnsureUser(context.Background(), dto.EnsureUserRequest{Email: "carlos.vega@itdgo.edu.mx"})
	require.NoError(t, err)

	second, err := svc.EnsureUser(context.Background(), dto.EnsureUserRequest{Email: "Carlos.Vega@ITDGO.edu.mx"})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Len(t, users.users, 1)
}

func TestAssignGroupRequiresAdmin(t *testing.T) {
	users := newFakeUserRepo()
	groups := newFakeGroupRepo()
	student := users.add(models.User{Email: "20210034@alumnos.itdgo.edu.mx", Role: models.RoleStudent})

	svc := newUserService(users, groups)

	_, err := svc.AssignGroup(context.Background(), student.ID, 1, Actor{ID: student.ID, Role: models.RoleStudent})
	require.Error(t, err)
	require.True(t, apperr.IsUnauthorized(err))
}

func TestAssignGroupInactiveRejected(t *testing.T) {
	users := newFakeUserRepo()
	groups := newFakeGroupRepo()
	student := users.add(models.User{Email: "20210035@alumnos.itdgo.edu.mx", Role: models.RoleStudent})
	group := models.Group{Name: "7A", Career: "ISC", Term: 7, Active: false}
	require.NoError(t, groups.Create(context.Background(), &group))

	svc := newUserService(users, groups)

	_, err := svc.AssignGroup(context.Background(), student.ID, group.ID, Actor{ID: 99, Role: models.RoleAdmin})
	require.Error(t, err)
	require.True(t, apperr.IsConflict(err))
}

func TestUpdateTeacherAssignments(t *testing.T) {
	users := newFakeUserRepo()
	teacher := users.add(models.User{Email: "sofia.ruiz@itdgo.edu.mx", Role: models.RoleTeacher})

	svc := newUserService(users, newFakeGroupRepo())

	resp, err := svc.UpdateTeacherAssignments(context.Background(), teacher.ID, dto.UpdateAssignmentsRequest{
		Assignments: []dto.TeacherAssignmentPayload{
			{Career: "ISC", CourseID: 4, GroupIDs: []uint{1, 2}},
		},
	}, Actor{ID: teacher.ID, Role: models.RoleTeacher})
	require.NoError(t, err)
	require.Equal(t, teacher.ID, resp.ID)
	require.Len(t, users.users[teacher.ID].Assignments, 1)
}

func TestUpdateTeacherAssignmentsRejectsStudents(t *testing.T) {
	users := newFakeUserRepo()
	student := users.add(models.User{Email: "20210036@alumnos.itdgo.edu.mx", Role: models.RoleStudent})

	svc := newUserService(users, newFakeGroupRepo())

	_, err := svc.UpdateTeacherAssignments(context.Background(), student.ID, dto.UpdateAssignmentsRequest{
		Assignments: []dto.TeacherAssignmentPayload{
			{Career: "ISC", CourseID: 4, GroupIDs: []uint{1}},
		},
	}, Actor{ID: 99, Role: models.RoleAdmin})
	require.Error(t, err)
	require.True(t, apperr.IsConflict(err))
}
