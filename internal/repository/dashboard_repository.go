package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-ledger-api/internal/dto"
)

// DashboardRepository runs the aggregate queries behind the admin dashboard.
type DashboardRepository struct {
	db *sqlx.DB
}

// NewDashboardRepository constructs a dashboard repository.
func NewDashboardRepository(db *sqlx.DB) *DashboardRepository {
	return &DashboardRepository{db: db}
}

// AdminCounts returns institution-wide counters in a single round trip.
func (r *DashboardRepository) AdminCounts(ctx context.Context) (dto.AdminCounts, error) {
	const query = `SELECT
(SELECT COUNT(*) FROM users WHERE role = 'STUDENT' AND active = TRUE) AS students,
(SELECT COUNT(*) FROM users WHERE role = 'TEACHER' AND active = TRUE) AS teachers,
(SELECT COUNT(*) FROM users WHERE role = 'ADMIN' AND active = TRUE) AS admins,
(SELECT COUNT(*) FROM courses WHERE is_active = TRUE) AS active_courses,
(SELECT COUNT(*) FROM enrollments WHERE is_active = TRUE) AS active_enrollments,
(SELECT COALESCE(ROUND(AVG(gpa), 2), 0) FROM student_profiles) AS average_gpa`
	var counts dto.AdminCounts
	if err := conn(ctx, r.db).GetContext(ctx, &counts, query); err != nil {
		return counts, fmt.Errorf("admin dashboard counts: %w", err)
	}
	return counts, nil
}
