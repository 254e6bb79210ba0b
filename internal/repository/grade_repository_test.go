package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-ledger-api/internal/models"
)

var gradeViewColumns = []string{
	"id", "student_id", "assignment_id", "marks_obtained", "feedback", "graded_by", "graded_at", "updated_at",
	"student_name", "assignment_title", "assignment_kind", "max_marks", "teacher_id", "course_id", "course_code", "course_name",
}

func TestUpsertGradeUsesConflictTarget(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	first := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (student_id, assignment_id) DO UPDATE SET")).
		WithArgs(sqlmock.AnyArg(), "s-1", "a-1", 45.0, nil, "t-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "assignment_id", "marks_obtained", "feedback", "graded_by", "graded_at", "updated_at"}).
			AddRow("g-existing", "s-1", "a-1", "45.00", nil, "t-1", first, first))

	g := &models.Grade{StudentID: "s-1", AssignmentID: "a-1", MarksObtained: 45, GradedBy: "t-1"}
	require.NoError(t, repo.Upsert(context.Background(), g))
	assert.Equal(t, "g-existing", g.ID)
	assert.Equal(t, 45.0, g.MarksObtained)
	assert.Nil(t, g.Feedback)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGradeViewQueryScopes(t *testing.T) {
	query, args := gradeViewQuery(models.GradeScope{})
	assert.NotContains(t, query, "WHERE")
	assert.Empty(t, args)
	assert.Contains(t, query, "ORDER BY g.graded_at DESC, g.id")

	query, args = gradeViewQuery(models.GradeScope{StudentID: "s-1", TeacherID: "t-1", Limit: 5})
	assert.Contains(t, query, "WHERE g.student_id = $1 AND a.teacher_id = $2 ORDER BY g.graded_at DESC, g.id LIMIT 5")
	assert.Equal(t, []interface{}{"s-1", "t-1"}, args)
}

func TestEachStreamsAndStopsEarly(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(gradeViewColumns).
		AddRow("g-2", "s-1", "a-2", "9.00", nil, "t-1", now, now, "Ada", "Quiz 2", "quiz", "10.00", "t-1", "c-1", "CS101", "Intro").
		AddRow("g-1", "s-1", "a-1", "42.00", "solid", "t-1", now.Add(-time.Hour), now, "Ada", "Midterm", "midterm", "50.00", "t-1", "c-1", "CS101", "Intro")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE g.student_id = $1 ORDER BY g.graded_at DESC")).
		WithArgs("s-1").
		WillReturnRows(rows)

	var seen []string
	err := repo.Each(context.Background(), models.GradeScope{StudentID: "s-1"}, func(v models.GradeView) bool {
		seen = append(seen, v.ID)
		assert.Equal(t, 10.0, v.MaxMarks)
		return false
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"g-2"}, seen)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEachPropagatesQueryError(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectQuery("FROM grades g").WillReturnError(errors.New("connection reset"))

	err := repo.Each(context.Background(), models.GradeScope{}, func(models.GradeView) bool { return true })
	assert.ErrorContains(t, err, "connection reset")
}

func TestMarks(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewGradeRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT g.marks_obtained, a.max_marks FROM grades g")).
		WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows([]string{"marks_obtained", "max_marks"}).AddRow("70.00", "100.00").AddRow("45.00", "50.00"))

	marks, err := repo.Marks(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, []models.GradeMark{{MarksObtained: 70, MaxMarks: 100}, {MarksObtained: 45, MaxMarks: 50}}, marks)
}
