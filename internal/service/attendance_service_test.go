package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-ledger-api/internal/models"
	appErrors "github.com/noah-isme/campus-ledger-api/pkg/errors"
)

type memoryAttendance struct {
	rows       map[string]models.Attendance
	lastFilter models.AttendanceFilter
}

func (m *memoryAttendance) Upsert(_ context.Context, a *models.Attendance) error {
	a.ID = a.StudentID + "|" + a.CourseID + "|" + a.Date.Format(attendanceDateLayout)
	m.rows[a.ID] = *a
	return nil
}

func (m *memoryAttendance) List(_ context.Context, filter models.AttendanceFilter) ([]models.Attendance, int, error) {
	m.lastFilter = filter
	return nil, 0, nil
}

func (m *memoryAttendance) Summary(_ context.Context, studentID string) (models.AttendanceSummary, error) {
	var s models.AttendanceSummary
	for _, row := range m.rows {
		if row.StudentID != studentID {
			continue
		}
		s.Total++
		if row.IsPresent {
			s.Present++
		}
	}
	return s, nil
}

// fakeEnrollmentTeachers maps "student|course" to the assigned teacher.
type fakeEnrollmentTeachers map[string]string

func (f fakeEnrollmentTeachers) TeacherOf(_ context.Context, studentID, courseID string) (string, error) {
	id, ok := f[studentID+"|"+courseID]
	if !ok {
		return "", sql.ErrNoRows
	}
	return id, nil
}

func newAttendanceServiceForTest() (*AttendanceService, *memoryAttendance, *memoryCache) {
	repo := &memoryAttendance{rows: map[string]models.Attendance{}}
	cacheRepo := newMemoryCache()
	cache := NewCacheService(cacheRepo, nil, 0, nil, true)
	enrollments := fakeEnrollmentTeachers{
		studentID + "|" + courseID: teacherID,
		otherStud + "|" + courseID: otherTeach,
	}
	return NewAttendanceService(&fakeTx{}, repo, enrollments, cache, nil, nil, nil), repo, cacheRepo
}

func TestMarkAttendanceUpsertsPerDay(t *testing.T) {
	svc, repo, cacheRepo := newAttendanceServiceForTest()
	ctx := context.Background()
	cacheRepo.data["dashboard:STUDENT:"+studentID] = []byte(`{}`)

	req := models.MarkAttendanceRequest{CourseID: courseID, Date: "2024-03-04", Entries: []models.AttendanceEntry{{StudentID: studentID, IsPresent: false}}}
	_, err := svc.MarkAttendance(ctx, teacher(teacherID), req)
	require.NoError(t, err)

	req.Entries[0].IsPresent = true
	req.Entries[0].Remarks = "late"
	marks, err := svc.MarkAttendance(ctx, teacher(teacherID), req)
	require.NoError(t, err)
	require.Len(t, marks, 1)
	assert.Equal(t, teacherID, marks[0].MarkedBy)

	require.Len(t, repo.rows, 1)
	for _, row := range repo.rows {
		assert.True(t, row.IsPresent)
		assert.Equal(t, "late", row.Remarks)
	}
	assert.NotContains(t, cacheRepo.data, "dashboard:STUDENT:"+studentID)

	summary, err := svc.Summary(ctx, student(studentID), "")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 100.0, summary.Rate())
}

func TestMarkAttendanceRejections(t *testing.T) {
	tests := []struct {
		name      string
		principal models.Principal
		req       models.MarkAttendanceRequest
		want      *appErrors.Error
	}{
		{"student principal", student(studentID), models.MarkAttendanceRequest{CourseID: courseID, Date: "2024-03-04", Entries: []models.AttendanceEntry{{StudentID: studentID}}}, appErrors.ErrUnauthorizedAction},
		{"bad date", teacher(teacherID), models.MarkAttendanceRequest{CourseID: courseID, Date: "04/03/2024", Entries: []models.AttendanceEntry{{StudentID: studentID}}}, appErrors.ErrValidation},
		{"no entries", teacher(teacherID), models.MarkAttendanceRequest{CourseID: courseID, Date: "2024-03-04"}, appErrors.ErrValidation},
		{"not enrolled", teacher(teacherID), models.MarkAttendanceRequest{CourseID: courseID, Date: "2024-03-04", Entries: []models.AttendanceEntry{{StudentID: adminID}}}, appErrors.ErrNotEnrolled},
		{"student of another teacher", teacher(teacherID), models.MarkAttendanceRequest{CourseID: courseID, Date: "2024-03-04", Entries: []models.AttendanceEntry{{StudentID: studentID, IsPresent: true}, {StudentID: otherStud}}}, appErrors.ErrUnauthorizedAction},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, _, _ := newAttendanceServiceForTest()
			_, err := svc.MarkAttendance(context.Background(), tc.principal, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestAttendanceScoping(t *testing.T) {
	svc, repo, _ := newAttendanceServiceForTest()
	ctx := context.Background()

	_, _, err := svc.List(ctx, student(studentID), models.AttendanceFilter{StudentID: otherStud})
	require.NoError(t, err)
	assert.Equal(t, studentID, repo.lastFilter.StudentID)

	_, _, err = svc.List(ctx, teacher(teacherID), models.AttendanceFilter{})
	require.NoError(t, err)
	assert.Equal(t, teacherID, repo.lastFilter.TeacherID)

	_, err = svc.Summary(ctx, student(studentID), otherStud)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorizedAction)
	_, err = svc.Summary(ctx, teacher(teacherID), studentID)
	assert.ErrorIs(t, err, appErrors.ErrUnauthorizedAction)
	_, err = svc.Summary(ctx, admin, studentID)
	assert.NoError(t, err)
}
