package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/davidlopz/expotec-api/internal/apperr"
	"github.com/davidlopz/expotec-api/internal/models"
	"github.com/davidlopz/expotec-api/internal/repository"
)

type fakeUserRepo struct {
	users  map[uint]models.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint]models.User), nextID: 1}
}

func (f *fakeUserRepo) add(user models.User) models.User {
	if user.ID == 0 {
		user.ID = f.nextID
		f.nextID++
	} else if user.ID >= f.nextID {
		f.nextID = user.ID + 1
	}
	f.users[user.ID] = user
	return user
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uint) (models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (models.User, error) {
	for _, user := range f.users {
		if strings.EqualFold(user.Email, email) {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetByMatricula(ctx context.Context, matricula string) (models.User, error) {
	for _, user := range f.users {
		if user.Matricula == matricula {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	*user = f.add(*user)
	return nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	f.users[user.ID] = *user
	return nil
}

func (f *fakeUserRepo) setProject(userID uint, projectID *uint) error {
	user, ok := f.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.ProjectID = projectID
	f.users[userID] = user
	return nil
}

func (f *fakeUserRepo) releaseProject(userIDs []uint) {
	for _, id := range userIDs {
		if user, ok := f.users[id]; ok {
			user.ProjectID = nil
			f.users[id] = user
		}
	}
}

func (f *fakeUserRepo) ReplaceAssignments(ctx context.Context, userID uint, assignments []models.TeacherAssignment) error {
	user, ok := f.users[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	user.Assignments = assignments
	f.users[userID] = user
	return nil
}

type fakeProjectRepo struct {
	projects map[uint]models.Project
	blocks   map[uint][]models.ContentBlock
	users    *fakeUserRepo
	nextID   uint

	// failMembership, when set, makes membership writes fail without
	// touching either the project or the user.
	failMembership error
}

func newFakeProjectRepo(users *fakeUserRepo) *fakeProjectRepo {
	return &fakeProjectRepo{
		projects: make(map[uint]models.Project),
		blocks:   make(map[uint][]models.ContentBlock),
		users:    users,
		nextID:   1,
	}
}

func (f *fakeProjectRepo) add(project models.Project) models.Project {
	if project.ID == 0 {
		project.ID = f.nextID
		f.nextID++
	} else if project.ID >= f.nextID {
		f.nextID = project.ID + 1
	}
	if project.CreatedAt.IsZero() {
		project.CreatedAt = time.Now()
	}
	f.projects[project.ID] = project
	return project
}

func (f *fakeProjectRepo) GetByID(ctx context.Context, id uint) (models.Project, error) {
	project, ok := f.projects[id]
	if !ok {
		return models.Project{}, gorm.ErrRecordNotFound
	}
	project.MemberIDs = append([]uint(nil), project.MemberIDs...)
	project.Blocks = append([]models.ContentBlock(nil), f.blocks[id]...)
	return project, nil
}

func (f *fakeProjectRepo) Create(ctx context.Context, project *models.Project) error {
	*project = f.add(*project)
	if f.users != nil {
		if err := f.users.setProject(project.LeaderID, &project.ID); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeProjectRepo) UpdateVersioned(ctx context.Context, project *models.Project) error {
	current, ok := f.projects[project.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if current.Version != project.Version {
		return repository.ErrVersionConflict
	}
	project.Version++
	stored := *project
	stored.Blocks = nil
	f.projects[project.ID] = stored
	return nil
}

func (f *fakeProjectRepo) UpdateVersionedMembership(ctx context.Context, project *models.Project, memberID uint, memberProject *uint) error {
	if f.failMembership != nil {
		return f.failMembership
	}
	if err := f.UpdateVersioned(ctx, project); err != nil {
		return err
	}
	if f.users != nil {
		return f.users.setProject(memberID, memberProject)
	}
	return nil
}

func (f *fakeProjectRepo) DeleteCascade(ctx context.Context, project models.Project) error {
	if _, ok := f.projects[project.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	if f.users != nil {
		f.users.releaseProject(project.MemberIDs)
	}
	delete(f.projects, project.ID)
	delete(f.blocks, project.ID)
	return nil
}

func (f *fakeProjectRepo) ReplaceBlocks(ctx context.Context, projectID uint, blocks []models.ContentBlock) error {
	f.blocks[projectID] = append([]models.ContentBlock(nil), blocks...)
	return nil
}

func (f *fakeProjectRepo) ListPublic(ctx context.Context, filter repository.ProjectFilter) ([]models.Project, int64, error) {
	results := make([]models.Project, 0, len(f.projects))
	for _, project := range f.projects {
		if !project.Public {
			continue
		}
		if filter.GroupID != 0 && project.GroupID != filter.GroupID {
			continue
		}
		results = append(results, project)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].PointsTotal != results[j].PointsTotal {
			return results[i].PointsTotal > results[j].PointsTotal
		}
		if results[i].VoteCount != results[j].VoteCount {
			return results[i].VoteCount > results[j].VoteCount
		}
		return results[i].CreatedAt.Before(results[j].CreatedAt)
	})
	return results, int64(len(results)), nil
}

// requireConsistent checks the bidirectional membership invariant: a user
// references a project iff the project lists the user.
func requireConsistent(t *testing.T, users *fakeUserRepo, projects *fakeProjectRepo) {
	t.Helper()
	for _, project := range projects.projects {
		seen := make(map[uint]bool, len(project.MemberIDs))
		for _, memberID := range project.MemberIDs {
			require.False(t, seen[memberID], "duplicate member %d in project %d", memberID, project.ID)
			seen[memberID] = true
			user, ok := users.users[memberID]
			require.True(t, ok, "member %d of project %d does not exist", memberID, project.ID)
			require.NotNil(t, user.ProjectID, "member %d of project %d has no project reference", memberID, project.ID)
			require.Equal(t, project.ID, *user.ProjectID)
		}
	}
	for _, user := range users.users {
		if user.ProjectID == nil {
			continue
		}
		project, ok := projects.projects[*user.ProjectID]
		require.True(t, ok, "user %d references missing project %d", user.ID, *user.ProjectID)
		require.True(t, project.HasMember(user.ID), "user %d not listed in project %d", user.ID, project.ID)
	}
}

func groupID(id uint) *uint { return &id }

func seedTeam(users *fakeUserRepo, projects *fakeProjectRepo) (models.Project, models.User, models.User) {
	leader := users.add(models.User{Name: "Leader", Email: "20190001@alumnos.itdgo.edu.mx", Role: models.RoleStudent, Matricula: "20190001", GroupID: groupID(1)})
	free := users.add(models.User{Name: "Free", Email: "20190002@alumnos.itdgo.edu.mx", Role: models.RoleStudent, Matricula: "20190002", GroupID: groupID(1)})

	project := projects.add(models.Project{Title: "Solar Tracker", LeaderID: leader.ID, MemberIDs: []uint{leader.ID}, GroupID: 1, State: models.ProjectStateDraft})
	leader.ProjectID = &project.ID
	users.users[leader.ID] = leader

	return project, leader, free
}

func TestAddMemberSuccess(t *testing.T) {
	users := newFakeUserRepo()
	projects := newFakeProjectRepo(users)
	project, leader, free := seedTeam(users, projects)

	svc := NewMembershipService(projects, users, testLogger())

	result, err := svc.AddMember(context.Background(), project.ID, leader.ID, free.Matricula)
	require.NoError(t, err)
	require.True(t, result.Success)

	stored, _ := projects.GetByID(context.Background(), project.ID)
	require.True(t, stored.HasMember(free.ID))
	requireConsistent(t, users, projects)
}

func TestAddMemberByEmail(t *testing.T) {
	users := newFakeUserRepo()
	projects := newFakeProjectRepo(users)
	project, leader, free := seedTeam(users, projects)

	svc := NewMembershipService(projects, users, testLogger())

	result, err := svc.AddMember(context.Background(), project.ID, leader.ID, strings.ToUpper(free.Email))
	require.NoError(t, err)
	require.True(t, result.Success)
	requireConsistent(t, users, projects)
}

func TestAddMemberRequiresLeader(t *testing.T) {
	users := newFakeUserRepo()
	projects := newFakeProjectRepo(users)
	project, _, free := seedTeam(users, projects)

	svc := NewMembershipService(projects, users, testLogger())

	_, err := svc.AddMember(context.Background(), project.ID, free.ID, free.Matricula)
	require.Error(t, err)
	require.True(t, apperr.IsUnauthorized(err))
}

func TestAddMemberTargetNotFound(t *testing.T) {
	users := newFakeUserRepo()
	projects := newFakeProjectRepo(users)
	project, leader, _ := seedTeam(users, projects)

	svc := NewMembershipService(projects, users, testLogger())

	_, err := svc.AddMember(context.Background(), project.ID, leader.ID, "99999999")
	require.Error(t, err)
	require.True(t, apperr.IsNotFound(err))
}

func TestAddMemberExclusivity(t *testing.T) {
	users := newFakeUserRepo()
	projects := newFakeProjectRepo(users)
	project, leader, _ := seedTeam(users, projects)

	// target already leads a different project the requester cannot see
	other := users.add(models.User{Email: "20190003@alumnos.itdgo.edu.mx", Role: models.RoleStudent, Matricula: "20190003", GroupID: groupID(1)})
	otherProject := projects.add(models.Project{Title: "Other", LeaderID: other.ID, MemberIDs: []uint{other.ID}, GroupID: 1, State: models.ProjectStateDraft})
	other.ProjectID = &otherProject.ID
	users.users[other.ID] = other

	svc := NewMembershipService(projects, users, testLogger())

	result, err := svc.AddMember(context.Background(), project.ID, leader.ID, other.Matricula)
	require.NoError(t, err)
	require.False(t, result.Success)
	require.Contains(t, result.Message, "already belongs")
	requireConsistent(t, users, projects)
}

func TestAddMemberGroupMismatch(t *testing.T) {
	users := newFakeUserRepo()
	projects := newFakeProjectRepo(users)
	project, leader, _ := seedTeam(users, projects)

	outsider := users.add(models.User{Email: "20190004@alumnos.itdgo.edu.mx", Role: models.RoleStudent, Matricula: "20190004", GroupID: groupID(2)})

	svc := NewMembershipService(projects, users, testLogger())

	result, err := svc.AddMember(context.Background(), project.ID, leader.ID, outsider.Matricula)
	require.NoError(t, err)
	require.False(t, result.Success)
	requireConsistent(t, users, projects)
}

func TestAddMemberRejectsNonStudent(t *testing.T) {
	users := newFakeUserRepo()
	projects := newFakeProjectRepo(users)
	project, leader, _ := seedTeam(users, projects)

	teacher := users.add(models.User{Email: "maria.lopez@itdgo.edu.mx", Role: models.RoleTeacher, GroupID: groupID(1)})

	svc := NewMembershipService(projects, users, testLogger())

	result, err := svc.AddMember(context.Background(), project.ID, leader.ID, teacher.Email)
	require.NoError(t, err)
	require.False(t, result.Success)
}

func TestRemoveMemberSelf(t *testing.T) {
	users := newFakeUserRepo()
	projects := newFakeProjectRepo(users)
	project, leader, free := seedTeam(users, projects)

	svc := NewMembershipService(projects, users, testLogger())

	_, err := svc.AddMember(context.Background(), project.ID, leader.ID, free.Matricula)
	require.NoError(t, err)

	result, err := svc.RemoveMember(context.Background(), project.ID, free.ID, free.ID)
	require.NoError(t, err)
	require.True(t, result.Success)

	stored, _ := projects.GetByID(context.Background(), project.ID)
	require.False(t, stored.HasMember(free.ID))
	require.Nil(t, users.users[free.ID].ProjectID)
	requireConsistent(t, users, projects)
}

func TestRemoveMemberByLeader(t *testing.T) {
	users := newFakeUserRepo()
	projects := newFakeProjectRepo(users)
	project, leader, free := seedTeam(users, projects)

	svc := NewMembershipService(projects, users, testLogger())

	_, err := svc.AddMember(context.Background(), project.ID, leader.ID, free.Matricula)
	require.NoError(t, err)

	result, err := svc.RemoveMember(context.Background(), project.ID, free.ID, leader.ID)
	require.NoError(t, err)
	require.True(t, result.Success)
	requireConsistent(t, users, projects)
}

func TestRemoveMemberUnauthorized(t *testing.T) {
	users := newFakeUserRepo()
	projects := newFakeProjectRepo(users)
	project, leader, free := seedTeam(users, projects)

	svc := NewMembershipService(projects, users, testLogger())

	_, err := svc.AddMember(context.Background(), project.ID, leader.ID, free.Matricula)
	require.NoError(t, err)

	// a plain member cannot remove the leader
	_, err = svc.RemoveMember(context.Background(), project.ID, leader.ID, free.ID)
	require.Error(t, err)
	require.True(t, apperr.IsUnauthorized(err))
}

func TestRemoveLeaderBlockedWhileTeamRemains(t *testing.T) {
	users := newFakeUserRepo()
	projects := newFakeProjectRepo(users)
	project, leader, free := seedTeam(users, projects)

	svc := NewMembershipService(projects, users, testLogger())

	_, err := svc.AddMember(context.Background(), project.ID, leader.ID, free.Matricula)
	require.NoError(t, err)

	result, err := svc.RemoveMember(context.Background(), project.ID, leader.ID, leader.ID)
	require.NoError(t, err)
	require.False(t, result.Success)
	requireConsistent(t, users, projects)
}

func TestAddMemberKeepsInvariantWhenStoreFails(t *testing.T) {
	users := newFakeUserRepo()
	projects := newFakeProjectRepo(users)
	project, leader, free := seedTeam(users, projects)
	projects.failMembership = errors.New("connection reset")

	svc := NewMembershipService(projects, users, testLogger())

	_, err := svc.AddMember(context.Background(), project.ID, leader.ID, free.Matricula)
	require.Error(t, err)
	require.Equal(t, apperr.KindStore, apperr.KindOf(err))

	stored, _ := projects.GetByID(context.Background(), project.ID)
	require.False(t, stored.HasMember(free.ID))
	require.Nil(t, users.users[free.ID].ProjectID)
	requireConsistent(t, users, projects)
}

func TestRemoveMemberKeepsInvariantWhenStoreFails(t *testing.T) {
	users := newFakeUserRepo()
	projects := newFakeProjectRepo(users)
	project, leader, free := seedTeam(users, projects)

	svc := NewMembershipService(projects, users, testLogger())

	_, err := svc.AddMember(context.Background(), project.ID, leader.ID, free.Matricula)
	require.NoError(t, err)

	projects.failMembership = errors.New("connection reset")

	_, err = svc.RemoveMember(context.Background(), project.ID, free.ID, leader.ID)
	require.Error(t, err)
	require.Equal(t, apperr.KindStore, apperr.KindOf(err))

	stored, _ := projects.GetByID(context.Background(), project.ID)
	require.True(t, stored.HasMember(free.ID))
	require.NotNil(t, users.users[free.ID].ProjectID)
	requireConsistent(t, users, projects)
}

func TestRemoveMemberNotInProject(t *testing.T) {
	users := newFakeUserRepo()
	projects := newFakeProjectRepo(users)
	project, leader, free := seedTeam(users, projects)

	svc := NewMembershipService(projects, users, testLogger())

	_, err := svc.RemoveMember(context.Background(), project.ID, free.ID, leader.ID)
	require.Error(t, err)
	require.True(t, apperr.IsNotFound(err))
}
