package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-ledger-api/internal/dto"
	"github.com/noah-isme/campus-ledger-api/internal/models"
	appErrors "github.com/noah-isme/campus-ledger-api/pkg/errors"
)

type fakeDashboardSources struct {
	countCalls int
}

func (f *fakeDashboardSources) AdminCounts(context.Context) (dto.AdminCounts, error) {
	f.countCalls++
	return dto.AdminCounts{Students: 12, Teachers: 3, Admins: 1, ActiveCourses: 4, ActiveEnrollments: 20, AverageGPA: 3.1}, nil
}

func (f *fakeDashboardSources) TaughtBy(_ context.Context, teacherID string) ([]dto.TeacherCourseRow, error) {
	return []dto.TeacherCourseRow{{CourseID: courseID, Code: "CS101", Name: "Programming", Students: 2}}, nil
}

func (f *fakeDashboardSources) CountByTeacher(context.Context, string) (int, error) { return 7, nil }

func (f *fakeDashboardSources) Summary(context.Context, string) (models.AttendanceSummary, error) {
	return models.AttendanceSummary{Total: 8, Present: 6}, nil
}

type stubAssignmentCount int

func (n stubAssignmentCount) List(context.Context, models.AssignmentFilter) ([]models.Assignment, int, error) {
	return nil, int(n), nil
}

type stubEnrollmentList struct {
	filter models.EnrollmentFilter
}

func (s *stubEnrollmentList) List(_ context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	s.filter = filter
	return []models.EnrollmentDetail{{Enrollment: models.Enrollment{StudentID: filter.StudentID, CourseID: courseID, IsActive: true}, CourseCode: "CS101"}}, 1, nil
}

type stubGradeReader struct{}

func (stubGradeReader) RecentGrades(_ context.Context, p models.Principal, limit int) ([]models.GradeView, error) {
	return []models.GradeView{{Grade: models.Grade{StudentID: studentID}, TeacherID: p.ID, Percentage: 90, Letter: models.GradeAPlus}}, nil
}

func (stubGradeReader) StudentGradeReport(_ context.Context, p models.Principal, id string) (*models.GradeReport, error) {
	return &models.GradeReport{StudentID: id, GPA: 3.48, Grades: []models.GradeView{}}, nil
}

type stubAnnouncementReader struct{}

func (stubAnnouncementReader) VisibleAnnouncements(context.Context, models.Principal, int, int) ([]models.Announcement, *models.Pagination, error) {
	return []models.Announcement{{ID: "ann-1", Title: "Exams"}}, &models.Pagination{Page: 1, PageSize: 5, TotalCount: 1}, nil
}

func newDashboardForTest() (*DashboardService, *fakeDashboardSources, *stubEnrollmentList, *CacheService) {
	sources := &fakeDashboardSources{}
	enrollments := &stubEnrollmentList{}
	cache := NewCacheService(newMemoryCache(), nil, 0, nil, true)
	svc := NewDashboardService(DashboardServiceParams{
		Counts:        sources,
		Courses:       sources,
		Assignments:   stubAssignmentCount(5),
		Grades:        sources,
		Ledger:        stubGradeReader{},
		Enrollments:   enrollments,
		Attendance:    sources,
		Announcements: stubAnnouncementReader{},
		Cache:         cache,
	})
	return svc, sources, enrollments, cache
}

func TestAdminDashboardCachesUntilInvalidated(t *testing.T) {
	svc, sources, _, cache := newDashboardForTest()
	ctx := context.Background()

	first, hit, err := svc.Admin(ctx, admin)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 12, first.Students)
	assert.Equal(t, 3.1, first.AverageGPA)

	_, hit, err = svc.Admin(ctx, admin)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, sources.countCalls)

	cache.InvalidateDashboards(ctx, studentID)
	_, hit, err = svc.Admin(ctx, admin)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 2, sources.countCalls)
}

func TestTeacherDashboard(t *testing.T) {
	svc, _, _, _ := newDashboardForTest()

	resp, _, err := svc.Teacher(context.Background(), teacher(teacherID))
	require.NoError(t, err)
	assert.Equal(t, teacherID, resp.TeacherID)
	assert.Len(t, resp.Courses, 1)
	assert.Equal(t, 5, resp.Assignments)
	assert.Equal(t, 7, resp.GradesRecorded)
	require.Len(t, resp.RecentGrades, 1)
	assert.Equal(t, teacherID, resp.RecentGrades[0].TeacherID)
}

func TestStudentDashboard(t *testing.T) {
	svc, _, enrollments, _ := newDashboardForTest()

	resp, _, err := svc.Student(context.Background(), student(studentID))
	require.NoError(t, err)
	assert.Equal(t, studentID, enrollments.filter.StudentID)
	require.NotNil(t, enrollments.filter.Active)
	assert.True(t, *enrollments.filter.Active)
	assert.Len(t, resp.Enrollments, 1)
	assert.Equal(t, 3.48, resp.Report.GPA)
	assert.Equal(t, 75.0, resp.AttendanceRate)
	assert.Len(t, resp.Announcements, 1)
}

func TestDashboardRoleGuards(t *testing.T) {
	svc, _, _, _ := newDashboardForTest()
	ctx := context.Background()

	_, _, err := svc.Admin(ctx, teacher(teacherID))
	assert.ErrorIs(t, err, appErrors.ErrUnauthorizedAction)
	_, _, err = svc.Teacher(ctx, student(studentID))
	assert.ErrorIs(t, err, appErrors.ErrUnauthorizedAction)
	_, _, err = svc.Student(ctx, admin)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorizedAction)

	resp, _, err := svc.ForPrincipal(ctx, student(studentID))
	require.NoError(t, err)
	assert.IsType(t, &dto.StudentDashboardResponse{}, resp)
}
