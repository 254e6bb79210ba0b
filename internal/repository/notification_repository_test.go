package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-ledger-api/internal/models"
)

func TestCreateBatchSingleStatement(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectExec("INSERT INTO notifications").WillReturnResult(sqlmock.NewResult(0, 2))

	items := []models.Notification{{RecipientID: "u-1", Title: "t", Message: "m"}, {RecipientID: "u-2", Title: "t", Message: "m"}}
	require.NoError(t, repo.CreateBatch(context.Background(), items))
	assert.NotEmpty(t, items[0].ID)
	assert.NotEqual(t, items[0].ID, items[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBatchEmptyIsNoop(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	require.NoError(t, repo.CreateBatch(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkReadOnlyOwnRows(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE notifications SET is_read = TRUE WHERE id = $1 AND recipient_id = $2")).
		WithArgs("n-1", "u-2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.MarkRead(context.Background(), "n-1", "u-2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRecipientsForCourseAudience(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewNotificationRepository(db)

	course := "c-1"
	mock.ExpectQuery(regexp.QuoteMeta("SELECT student_id AS id FROM enrollments WHERE course_id = $2")).
		WithArgs("t-1", "c-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("s-1").AddRow("s-2"))

	ids, err := repo.Recipients(context.Background(), models.Announcement{AuthorID: "t-1", TargetAudience: models.AudienceCourse, CourseID: &course})
	require.NoError(t, err)
	assert.Equal(t, []string{"s-1", "s-2"}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}
