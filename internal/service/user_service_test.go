package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/campus-ledger-api/internal/models"
	appErrors "github.com/noah-isme/campus-ledger-api/pkg/errors"
)

type mockUserRepo struct {
	users     map[string]*models.User
	auditLogs []*models.AuditLog
	seq       int
}

func (m *mockUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	var users []models.User
	for _, u := range m.users {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		users = append(users, *u)
	}
	return users, len(users), nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if user, ok := m.users[id]; ok {
		copy := *user
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			copy := *u
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.users == nil {
		m.users = make(map[string]*models.User)
	}
	m.seq++
	user.ID = fmt.Sprintf("user-%d", m.seq)
	copy := *user
	m.users[user.ID] = &copy
	return nil
}

func (m *mockUserRepo) SetActive(ctx context.Context, id string, active bool) error {
	user, ok := m.users[id]
	if !ok {
		return sql.ErrNoRows
	}
	user.Active = active
	return nil
}

func (m *mockUserRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.auditLogs = append(m.auditLogs, log)
	return nil
}

type mockProfileWriter struct {
	next     int64
	students []*models.StudentProfile
	teachers []*models.TeacherProfile
}

func (m *mockProfileWriter) NextNumber(context.Context) (int64, error) {
	m.next++
	return m.next, nil
}

func (m *mockProfileWriter) CreateStudent(_ context.Context, p *models.StudentProfile) error {
	m.students = append(m.students, p)
	return nil
}

func (m *mockProfileWriter) CreateTeacher(_ context.Context, p *models.TeacherProfile) error {
	m.teachers = append(m.teachers, p)
	return nil
}

func newUserServiceForTest() (*UserService, *mockUserRepo, *mockProfileWriter) {
	repo := &mockUserRepo{users: map[string]*models.User{}}
	profiles := &mockProfileWriter{}
	svc := NewUserService(repo, profiles, &fakeTx{}, nil, nil)
	svc.hashCost = bcrypt.MinCost
	return svc, repo, profiles
}

func TestRegisterStudentCreatesProfile(t *testing.T) {
	svc, repo, profiles := newUserServiceForTest()
	dept := departmentA

	reg, err := svc.Register(context.Background(), admin, models.RegisterRequest{
		Email: "Ada@Example.edu", Password: "secret123", FullName: "Ada", Role: models.RoleStudent, DepartmentID: &dept,
	}, models.ClientMeta{})
	require.NoError(t, err)

	assert.Equal(t, "ada@example.edu", reg.User.Email)
	require.NotNil(t, reg.Student)
	assert.Nil(t, reg.Teacher)
	assert.Equal(t, "STU_000001", reg.Student.StudentNumber)
	assert.Equal(t, 1, reg.Student.Year)
	assert.Equal(t, 1, reg.Student.Semester)
	assert.Len(t, profiles.students, 1)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.users[reg.User.ID].PasswordHash), []byte("secret123")))
	require.Len(t, repo.auditLogs, 1)
	assert.Equal(t, models.AuditActionRegister, repo.auditLogs[0].Action)
}

func TestRegisterTeacherAndAdmin(t *testing.T) {
	svc, _, profiles := newUserServiceForTest()
	ctx := context.Background()

	reg, err := svc.Register(ctx, admin, models.RegisterRequest{Email: "t@example.edu", Password: "secret123", FullName: "T", Role: models.RoleTeacher}, models.ClientMeta{})
	require.NoError(t, err)
	require.NotNil(t, reg.Teacher)
	assert.Equal(t, "EMP_000001", reg.Teacher.EmployeeNumber)
	assert.Equal(t, defaultDesignation, reg.Teacher.Designation)

	reg, err = svc.Register(ctx, admin, models.RegisterRequest{Email: "a@example.edu", Password: "secret123", FullName: "A", Role: models.RoleAdmin}, models.ClientMeta{})
	require.NoError(t, err)
	assert.Nil(t, reg.Student)
	assert.Nil(t, reg.Teacher)
	assert.Len(t, profiles.teachers, 1)
	assert.Empty(t, profiles.students)
}

func TestRegisterRejections(t *testing.T) {
	svc, _, _ := newUserServiceForTest()
	ctx := context.Background()
	req := models.RegisterRequest{Email: "dup@example.edu", Password: "secret123", FullName: "D", Role: models.RoleStudent}

	_, err := svc.Register(ctx, teacher(teacherID), req, models.ClientMeta{})
	assert.ErrorIs(t, err, appErrors.ErrUnauthorizedAction)

	_, err = svc.Register(ctx, admin, models.RegisterRequest{Email: "x@example.edu", Password: "short", FullName: "X", Role: models.RoleStudent}, models.ClientMeta{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Register(ctx, admin, models.RegisterRequest{Email: "x@example.edu", Password: "secret123", FullName: "X", Role: "SUPERADMIN"}, models.ClientMeta{})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Register(ctx, admin, req, models.ClientMeta{})
	require.NoError(t, err)
	_, err = svc.Register(ctx, admin, req, models.ClientMeta{})
	assert.ErrorIs(t, err, appErrors.ErrConflict)
}

func TestUserServiceSetActive(t *testing.T) {
	svc, repo, _ := newUserServiceForTest()
	repo.users["u1"] = &models.User{ID: "u1", Active: true}
	ctx := context.Background()

	require.NoError(t, svc.SetActive(ctx, admin, "u1", false))
	assert.False(t, repo.users["u1"].Active)

	assert.ErrorIs(t, svc.SetActive(ctx, admin, adminID, false), appErrors.ErrValidation)
	assert.ErrorIs(t, svc.SetActive(ctx, admin, "missing", true), appErrors.ErrNotFound)
	assert.ErrorIs(t, svc.SetActive(ctx, student(studentID), "u1", true), appErrors.ErrUnauthorizedAction)
}

func TestUserServiceList(t *testing.T) {
	svc, repo, _ := newUserServiceForTest()
	repo.users["u1"] = &models.User{ID: "u1", Role: models.RoleStudent}
	repo.users["u2"] = &models.User{ID: "u2", Role: models.RoleTeacher}

	role := models.RoleStudent
	users, page, err := svc.List(context.Background(), models.UserFilter{Role: &role})
	require.NoError(t, err)
	assert.Len(t, users, 1)
	assert.Equal(t, 1, page.TotalCount)
	assert.Equal(t, 20, page.PageSize)
}
