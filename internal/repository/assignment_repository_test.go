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

func TestFindAssignment(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	due := time.Now().Add(48 * time.Hour)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + assignmentColumns + " FROM assignments WHERE id = $1")).
		WithArgs("a-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "course_id", "teacher_id", "title", "description", "kind", "max_marks", "due_at", "is_active", "created_at"}).
			AddRow("a-1", "c-1", "t-1", "Midterm", "", "midterm", "50.00", due, true, time.Now()))

	a, err := repo.FindByID(context.Background(), "a-1")
	require.NoError(t, err)
	assert.Equal(t, 50.0, a.MaxMarks)
	assert.Equal(t, models.AssignmentMidterm, a.Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateAssignment(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewAssignmentRepository(db)

	mock.ExpectExec("INSERT INTO assignments").WillReturnResult(sqlmock.NewResult(1, 1))

	a := &models.Assignment{CourseID: "c-1", TeacherID: "t-1", Title: "Quiz 1", Kind: models.AssignmentQuiz, MaxMarks: 10, DueAt: time.Now(), IsActive: true}
	require.NoError(t, repo.Create(context.Background(), a))
	assert.NotEmpty(t, a.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
