package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-ledger-api/internal/models"
)

// AttendanceRepository persists per-session attendance marks.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an attendance repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Upsert records the mark for (student, course, date); a repeated mark
// replaces presence and remarks.
func (r *AttendanceRepository) Upsert(ctx context.Context, a *models.Attendance) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO attendance (id, student_id, course_id, date, is_present, marked_by, remarks, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (student_id, course_id, date) DO UPDATE SET
is_present = EXCLUDED.is_present, marked_by = EXCLUDED.marked_by, remarks = EXCLUDED.remarks
RETURNING id, student_id, course_id, date, is_present, marked_by, remarks, created_at`
	err := conn(ctx, r.db).GetContext(ctx, a, query, a.ID, a.StudentID, a.CourseID, a.Date, a.IsPresent, a.MarkedBy, a.Remarks, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert attendance: %w", err)
	}
	return nil
}

func attendanceWhere(filter models.AttendanceFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		conditions = append(conditions, fmt.Sprintf("at.student_id = $%d", len(args)))
	}
	if filter.CourseID != "" {
		args = append(args, filter.CourseID)
		conditions = append(conditions, fmt.Sprintf("at.course_id = $%d", len(args)))
	}
	if filter.TeacherID != "" {
		args = append(args, filter.TeacherID)
		conditions = append(conditions, fmt.Sprintf("EXISTS (SELECT 1 FROM enrollments e WHERE e.student_id = at.student_id AND e.course_id = at.course_id AND e.teacher_id = $%d)", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("at.date >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("at.date <= $%d", len(args)))
	}
	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// List returns attendance rows matching filter, most recent sessions first.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.Attendance, int, error) {
	where, args := attendanceWhere(filter)
	_, pageSize, offset := models.Normalize(filter.Page, filter.PageSize)
	query := fmt.Sprintf(`SELECT at.id, at.student_id, at.course_id, at.date, at.is_present, at.marked_by, at.remarks, at.created_at
FROM attendance at%s ORDER BY at.date DESC, at.student_id LIMIT %d OFFSET %d`, where, pageSize, offset)

	var items []models.Attendance
	if err := conn(ctx, r.db).SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list attendance: %w", err)
	}
	var total int
	if err := conn(ctx, r.db).GetContext(ctx, &total, "SELECT COUNT(*) FROM attendance at"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count attendance: %w", err)
	}
	return items, total, nil
}

// Summary counts a student's sessions across all courses.
func (r *AttendanceRepository) Summary(ctx context.Context, studentID string) (models.AttendanceSummary, error) {
	const query = `SELECT COUNT(*) AS total, COUNT(*) FILTER (WHERE is_present) AS present FROM attendance WHERE student_id = $1`
	var s models.AttendanceSummary
	if err := conn(ctx, r.db).GetContext(ctx, &s, query, studentID); err != nil {
		return s, fmt.Errorf("attendance summary: %w", err)
	}
	return s, nil
}
