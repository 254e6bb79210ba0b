package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"iter"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-ledger-api/internal/models"
	"github.com/noah-isme/campus-ledger-api/internal/service"
	appErrors "github.com/noah-isme/campus-ledger-api/pkg/errors"
)

type stubTokens map[string]*models.AccessClaims

func (s stubTokens) ValidateToken(token string) (*models.AccessClaims, error) {
	if claims, ok := s[token]; ok {
		return claims, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

var testTokens = stubTokens{
	"teacher": models.NewAccessClaims(models.Principal{ID: "t-1", Role: models.RoleTeacher}),
	"student": models.NewAccessClaims(models.Principal{ID: "s-1", Role: models.RoleStudent}),
	"admin":   models.NewAccessClaims(models.Principal{ID: "a-1", Role: models.RoleAdmin}),
}

type fakeLedger struct {
	reportFor string
	streamErr error
}

func (f *fakeLedger) RecordGrade(_ context.Context, p models.Principal, req models.RecordGradeRequest) (*models.Grade, error) {
	if *req.MarksObtained > 100 {
		return nil, appErrors.ErrInvalidMarks
	}
	return &models.Grade{ID: "g-1", StudentID: req.StudentID, AssignmentID: req.AssignmentID, MarksObtained: *req.MarksObtained, GradedBy: p.ID}, nil
}

func (f *fakeLedger) VisibleGrades(_ context.Context, _ models.Principal, studentID string) iter.Seq2[models.GradeView, error] {
	return func(yield func(models.GradeView, error) bool) {
		if !yield(models.GradeView{Grade: models.Grade{ID: "g-1", StudentID: studentID}}, nil) {
			return
		}
		if f.streamErr != nil {
			yield(models.GradeView{}, f.streamErr)
		}
	}
}

func (f *fakeLedger) ComputeGPA(_ context.Context, p models.Principal, id string) (float64, error) {
	if p.IsStudent() && id != p.ID {
		return 0, appErrors.ErrUnauthorizedAction
	}
	return 3.2, nil
}

func (f *fakeLedger) StudentGradeReport(_ context.Context, p models.Principal, id string) (*models.GradeReport, error) {
	f.reportFor = id
	if id == "" {
		id = p.ID
	}
	return &models.GradeReport{StudentID: id, GPA: 3.2, Grades: []models.GradeView{}}, nil
}

type fakeEnrollments struct {
	lastReq models.EnrollRequest
	seen    map[string]bool
}

func (f *fakeEnrollments) Enroll(_ context.Context, _ models.Principal, req models.EnrollRequest) (*models.Enrollment, error) {
	f.lastReq = req
	key := req.StudentID + "|" + req.CourseID
	if f.seen[key] {
		return nil, appErrors.ErrAlreadyEnrolled
	}
	f.seen[key] = true
	return &models.Enrollment{ID: "e-1", StudentID: req.StudentID, CourseID: req.CourseID, IsActive: true}, nil
}

func (f *fakeEnrollments) Deactivate(context.Context, models.Principal, string) error { return nil }

func (f *fakeEnrollments) EligibleCourses(context.Context, models.Principal, string) ([]models.Course, error) {
	return []models.Course{}, nil
}

func (f *fakeEnrollments) List(context.Context, models.Principal, models.EnrollmentFilter) ([]models.EnrollmentDetail, *models.Pagination, error) {
	return []models.EnrollmentDetail{}, &models.Pagination{Page: 1, PageSize: 20}, nil
}

type fakeDashboards struct{}

func (fakeDashboards) ForPrincipal(_ context.Context, p models.Principal) (interface{}, bool, error) {
	return gin.H{"role": p.Role}, true, nil
}

type fakeExporter struct{}

func (fakeExporter) Transcript(_ context.Context, _ models.Principal, _ string, format service.TranscriptFormat) (*service.Transcript, error) {
	return &service.Transcript{Filename: "transcript-STU_000001." + string(format), ContentType: "text/csv", Data: []byte("GPA,3.20\n")}, nil
}

type testEnvelope struct {
	Data  json.RawMessage        `json:"data"`
	Error *appErrors.Error       `json:"error"`
	Meta  map[string]interface{} `json:"meta"`
}

type routerFixture struct {
	engine      *gin.Engine
	ledger      *fakeLedger
	enrollments *fakeEnrollments
}

func newRouterFixture() *routerFixture {
	gin.SetMode(gin.TestMode)
	f := &routerFixture{ledger: &fakeLedger{}, enrollments: &fakeEnrollments{seen: map[string]bool{}}}
	f.engine = gin.New()
	Register(f.engine.Group("/api/v1"), Handlers{
		Auth:        NewAuthHandler(nil),
		Grades:      NewGradeHandler(f.ledger),
		Enrollments: NewEnrollmentHandler(f.enrollments),
		Dashboard:   NewDashboardHandler(fakeDashboards{}),
		Export:      NewExportHandler(fakeExporter{}),
	}, RouteDeps{Tokens: testTokens})
	return f
}

func (f *routerFixture) do(t *testing.T, method, path, token, body string) (*httptest.ResponseRecorder, testEnvelope) {
	t.Helper()
	req := httptest.NewRequest(method, "/api/v1"+path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.engine.ServeHTTP(rec, req)

	var env testEnvelope
	if rec.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func TestRecordGradeRoute(t *testing.T) {
	f := newRouterFixture()

	rec, _ := f.do(t, http.MethodPost, "/grades", "", `{}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, env := f.do(t, http.MethodPost, "/grades", "student", `{}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, appErrors.ErrUnauthorizedAction.Code, env.Error.Code)

	rec, env = f.do(t, http.MethodPost, "/grades", "teacher", `{"student_id":"33333333-3333-3333-3333-333333333333","assignment_id":"66666666-6666-6666-6666-666666666666","marks_obtained":42}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var grade models.Grade
	require.NoError(t, json.Unmarshal(env.Data, &grade))
	assert.Equal(t, "t-1", grade.GradedBy)
	assert.Equal(t, 42.0, grade.MarksObtained)

	rec, env = f.do(t, http.MethodPost, "/grades", "teacher", `{"student_id":"33333333-3333-3333-3333-333333333333","assignment_id":"66666666-6666-6666-6666-666666666666","marks_obtained":101}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, appErrors.ErrInvalidMarks.Code, env.Error.Code)

	rec, _ = f.do(t, http.MethodPost, "/grades", "teacher", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListGradesRoute(t *testing.T) {
	f := newRouterFixture()

	rec, env := f.do(t, http.MethodGet, "/grades?student_id=s-9", "admin", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var grades []models.GradeView
	require.NoError(t, json.Unmarshal(env.Data, &grades))
	require.Len(t, grades, 1)
	assert.Equal(t, "s-9", grades[0].StudentID)

	f.ledger.streamErr = errors.New("connection reset")
	rec, env = f.do(t, http.MethodGet, "/grades", "admin", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotNil(t, env.Error)
}

func TestStudentRoutes(t *testing.T) {
	f := newRouterFixture()

	rec, _ := f.do(t, http.MethodGet, "/students/me/report", "student", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "", f.ledger.reportFor)

	rec, _ = f.do(t, http.MethodGet, "/students/s-2/gpa", "student", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env := f.do(t, http.MethodGet, "/students/me/gpa", "student", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"student_id":"s-1","gpa":3.2}`, string(env.Data))

	rec, _ = f.do(t, http.MethodGet, "/students/me/transcript", "student", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="transcript-STU_000001.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "GPA,3.20\n", rec.Body.String())

	rec, _ = f.do(t, http.MethodGet, "/students/me/transcript", "teacher", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestEnrollRoute(t *testing.T) {
	f := newRouterFixture()
	body := `{"course_id":"55555555-5555-5555-5555-555555555555"}`

	rec, _ := f.do(t, http.MethodPost, "/enrollments", "student", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "s-1", f.enrollments.lastReq.StudentID)

	rec, env := f.do(t, http.MethodPost, "/enrollments", "student", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, appErrors.ErrAlreadyEnrolled.Code, env.Error.Code)

	rec, _ = f.do(t, http.MethodPost, "/enrollments", "teacher", body)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDashboardRouteReportsCacheHit(t *testing.T) {
	f := newRouterFixture()

	rec, env := f.do(t, http.MethodGet, "/dashboard", "teacher", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, env.Meta["cache_hit"])
	assert.JSONEq(t, `{"role":"TEACHER"}`, string(env.Data))
}

func TestMeRoute(t *testing.T) {
	f := newRouterFixture()

	rec, env := f.do(t, http.MethodGet, "/auth/me", "admin", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var account models.Account
	require.NoError(t, json.Unmarshal(env.Data, &account))
	assert.Equal(t, "a-1", account.ID)
	assert.Equal(t, models.RoleAdmin, account.Role)
	assert.Contains(t, account.Capabilities, models.CapRegisterUsers)
	assert.NotContains(t, account.Capabilities, models.CapRecordGrade)
}
