package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-ledger-api/internal/models"
)

var courseRowColumns = []string{"id", "code", "name", "description", "credits", "department_id", "semester", "is_active", "created_at"}

func TestEligibleCoursesFiltersDepartmentSemesterActive(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM courses WHERE department_id = $1 AND semester = $2 AND is_active = TRUE ORDER BY code")).
		WithArgs("dept-1", 3).
		WillReturnRows(sqlmock.NewRows(courseRowColumns).
			AddRow("c-1", "CS201", "Data Structures", "", 4, "dept-1", 3, true, now))

	courses, err := repo.Eligible(context.Background(), "dept-1", 3)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, "CS201", courses[0].Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListCoursesWithFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	active := true
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + courseColumns + " FROM courses WHERE department_id = $1 AND is_active = $2 ORDER BY code LIMIT 10 OFFSET 10")).
		WithArgs("dept-1", true).
		WillReturnRows(sqlmock.NewRows(courseRowColumns))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM courses WHERE department_id = $1 AND is_active = $2")).
		WithArgs("dept-1", true).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	items, total, err := repo.List(context.Background(), models.CourseFilter{DepartmentID: "dept-1", Active: &active, Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Equal(t, 11, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaughtBy(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE e.teacher_id = $1")).
		WithArgs("t-1").
		WillReturnRows(sqlmock.NewRows([]string{"course_id", "code", "name", "students"}).AddRow("c-1", "CS101", "Intro", 12))

	rows, err := repo.TaughtBy(context.Background(), "t-1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 12, rows[0].Students)
	assert.NoError(t, mock.ExpectationsWereMet())
}
