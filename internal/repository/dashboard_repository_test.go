package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminCounts(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewDashboardRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("AS active_enrollments")).
		WillReturnRows(sqlmock.NewRows([]string{"students", "teachers", "admins", "active_courses", "active_enrollments", "average_gpa"}).
			AddRow(120, 14, 2, 30, 410, "3.12"))

	counts, err := repo.AdminCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 120, counts.Students)
	assert.Equal(t, 410, counts.ActiveEnrollments)
	assert.InDelta(t, 3.12, counts.AverageGPA, 1e-9)
	assert.NoError(t, mock.ExpectationsWereMet())
}
