package service

import (
	"context"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/davidlopz/expotec-api/internal/apperr"
	"github.com/davidlopz/expotec-api/internal/canvas"
	"github.com/davidlopz/expotec-api/internal/dto"
	"github.com/davidlopz/expotec-api/internal/models"
)

func newProjectService(users *fakeUserRepo, projects *fakeProjectRepo) ProjectService {
	validate := validator.New(validator.WithRequiredStructEnabled())
	return NewProjectService(projects, users, canvas.NewCleaner(), validate, testLogger())
}

func TestProjectCreate(t *testing.T) {
	users := newFakeUserRepo()
	projects := newFakeProjectRepo(users)
	student := users.add(models.User{Email: "20200001@alumnos.itdgo.edu.mx", Role: models.RoleStudent, Matricula: "20200001", GroupID: groupID(3)})

	svc := newProjectService(users, projects)

	resp, err := svc.Create(context.Background(), Actor{ID: student.ID, Role: models.RoleStudent}, dto.ProjectCreateRequest{Title: "Smart Greenhouse"})
	require.NoError(t, err)
	require.Equal(t, student.ID, resp.LeaderID)
	require.Equal(t, []uint{student.ID}, resp.MemberIDs)
	require.Equal(t, models.ProjectStateDraft, resp.State)
	require.False(t, resp.Public)
	require.Zero(t, resp.PointsTotal)
	require.Zero(t, resp.VoteCount)
	requireConsistent(t, users, projects)
}

func TestProjectCreateRequiresStudent(t *testing.T) {
	users := newFakeUserRepo()
	projects := newFakeProjectRepo(users)
	teacher := users.add(models.User{Email: "juan.soto@itdgo.edu.mx", Role: models.RoleTeacher})

	svc := newProjectService(users, projects)

	_, err := svc.Create(context.Background(), Actor{ID: teacher.ID, Role: models.RoleTeacher}, dto.ProjectCreateRequest{Title: "Nope"})
	require.Error(t, err)
	require.True(t, apperr.IsUnauthorized(err))
}

func TestProjectCreateExclusivity(t *testing.T) {
	users := newFakeUserRepo()
	projects := newFakeProjectRepo(users)
	_, leader, _ := seedTeam(users, projects)

	svc := newProjectService(users, projects)

	_, err := svc.Create(context.Background(), Actor{ID: leader.ID, Role: models.RoleStudent}, dto.ProjectCreateRequest{Title: "Second Project"})
	require.Error(t, err)
	require.True(t, apperr.IsConflict(err))
}

func TestProjectUpdateSanitizesBlocks(t *testing.T) {
	users := newFakeUserRepo()
	projects := newFakeProjectRepo(users)
	project, leader, _ := seedTeam(users, projects)

	svc := newProjectService(users, projects)

	blocks := []dto.ContentBlockPayload{
		{
			Type:       "table",
			OrderIndex: 0,
			Metadata: map[string]interface{}{
				"rows":    [][]string{{"a", "b"}, {"c", "d"}},
				"caption": "t",
				"flag":    nil,
			},
		},
		{
			Type:       "text",
			Content:    `hola <script>x()</script>`,
			OrderIndex: 1,
		},
	}
	title := "Solar Tracker v2"
	resp, err := svc.Update(context.Background(), project.ID, Actor{ID: leader.ID, Role: models.RoleStudent}, dto.ProjectUpdateRequest{Title: &title, Blocks: &blocks})
	require.NoError(t, err)
	require.Equal(t, "Solar Tracker v2", resp.Title)
	require.Len(t, resp.Blocks, 2)

	table := resp.Blocks[0]
	require.IsType(t, "", table.Metadata["rows"])
	require.Equal(t, "t", table.Metadata["caption"])
	require.NotContains(t, table.Metadata, "flag")

	require.NotContains(t, resp.Blocks[1].Content, "script")
}

func TestProjectUpdateRequiresLeader(t *testing.T) {
	users := newFakeUserRepo()
	projects := newFakeProjectRepo(users)
	project, _, free := seedTeam(users, projects)

	svc := newProjectService(users, projects)

	title := "Hijacked"
	_, err := svc.Update(context.Background(), project.ID, Actor{ID: free.ID, Role: models.RoleStudent}, dto.ProjectUpdateRequest{Title: &title})
	require.Error(t, err)
	require.True(t, apperr.IsUnauthorized(err))
}

func TestProjectDeleteCascadesMembership(t *testing.T) {
	users := newFakeUserRepo()
	projects := newFakeProjectRepo(users)
	project, leader, free := seedTeam(users, projects)
	third := users.add(models.User{Email: "20190005@alumnos.itdgo.edu.mx", Role: models.RoleStudent, Matricula: "20190005", GroupID: groupID(1)})

	members := NewMembershipService(projects, users, testLogger())
	_, err := members.AddMember(context.Background(), project.ID, leader.ID, free.Matricula)
	require.NoError(t, err)
	_, err = members.AddMember(context.Background(), project.ID, leader.ID, third.Matricula)
	require.NoError(t, err)

	svc := newProjectService(users, projects)
	require.NoError(t, svc.Delete(context.Background(), project.ID, Actor{ID: leader.ID, Role: models.RoleStudent}))

	require.Nil(t, users.users[leader.ID].ProjectID)
	require.Nil(t, users.users[free.ID].ProjectID)
	require.Nil(t, users.users[third.ID].ProjectID)
	_, err = svc.Get(context.Background(), project.ID)
	require.True(t, apperr.IsNotFound(err))
	requireConsistent(t, users, projects)
}

func TestProjectDeleteRequiresLeader(t *testing.T) {
	users := newFakeUserRepo()
	projects := newFakeProjectRepo(users)
	project, _, free := seedTeam(users, projects)

	svc := newProjectService(users, projects)

	err := svc.Delete(context.Background(), project.ID, Actor{ID: free.ID, Role: models.RoleStudent})
	require.Error(t, err)
	require.True(t, apperr.IsUnauthorized(err))
}

func TestProjectGetNotFound(t *testing.T) {
	users := newFakeUserRepo()
	projects := newFakeProjectRepo(users)

	svc := newProjectService(users, projects)

	_, err := svc.Get(context.Background(), 404)
	require.True(t, apperr.IsNotFound(err))
}
