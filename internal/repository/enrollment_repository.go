package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-ledger-api/internal/models"
)

// ErrEnrollmentActive is returned when an active enrollment already exists
// for the student and course.
var ErrEnrollmentActive = errors.New("enrollment already active")

const enrollmentColumns = `id, student_id, course_id, teacher_id, is_active, enrolled_at`

// EnrollmentRepository handles persistence of enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Enroll inserts an active enrollment. An inactive row for the same student
// and course is reactivated and keeps its original teacher; an active one
// yields ErrEnrollmentActive. The unique (student_id, course_id) constraint
// serialises concurrent attempts so exactly one of them succeeds.
func (r *EnrollmentRepository) Enroll(ctx context.Context, e *models.Enrollment) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.EnrolledAt.IsZero() {
		e.EnrolledAt = time.Now().UTC()
	}
	query := `INSERT INTO enrollments (id, student_id, course_id, teacher_id, is_active, enrolled_at)
VALUES ($1, $2, $3, $4, TRUE, $5)
ON CONFLICT (student_id, course_id) DO UPDATE SET is_active = TRUE
WHERE enrollments.is_active = FALSE
RETURNING ` + enrollmentColumns
	if err := conn(ctx, r.db).GetContext(ctx, e, query, e.ID, e.StudentID, e.CourseID, e.TeacherID, e.EnrolledAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEnrollmentActive
		}
		return fmt.Errorf("enroll: %w", err)
	}
	return nil
}

// FindByID fetches an enrollment by id.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.Enrollment, error) {
	query := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE id = $1`
	var e models.Enrollment
	if err := conn(ctx, r.db).GetContext(ctx, &e, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find enrollment: %w", err)
	}
	return &e, nil
}

// HasActive reports whether the student is actively enrolled in the course.
func (r *EnrollmentRepository) HasActive(ctx context.Context, studentID, courseID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2 AND is_active = TRUE)`
	var ok bool
	if err := conn(ctx, r.db).GetContext(ctx, &ok, query, studentID, courseID); err != nil {
		return false, fmt.Errorf("check active enrollment: %w", err)
	}
	return ok, nil
}

// Teaches reports whether the teacher is assigned to any active enrollment
// of the student.
func (r *EnrollmentRepository) Teaches(ctx context.Context, teacherID, studentID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM enrollments WHERE teacher_id = $1 AND student_id = $2 AND is_active = TRUE)`
	var ok bool
	if err := conn(ctx, r.db).GetContext(ctx, &ok, query, teacherID, studentID); err != nil {
		return false, fmt.Errorf("check teaching enrollment: %w", err)
	}
	return ok, nil
}

// TeacherOf returns the teacher assigned to the student's active enrollment
// in the course, or sql.ErrNoRows when there is none.
func (r *EnrollmentRepository) TeacherOf(ctx context.Context, studentID, courseID string) (string, error) {
	const query = `SELECT teacher_id FROM enrollments WHERE student_id = $1 AND course_id = $2 AND is_active = TRUE`
	var teacherID string
	if err := conn(ctx, r.db).GetContext(ctx, &teacherID, query, studentID, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", err
		}
		return "", fmt.Errorf("find enrollment teacher: %w", err)
	}
	return teacherID, nil
}

// Deactivate clears the active flag of an enrollment.
func (r *EnrollmentRepository) Deactivate(ctx context.Context, id string) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `UPDATE enrollments SET is_active = FALSE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate enrollment: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// List returns enrollments filtered by the provided criteria.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	base := `FROM enrollments e
JOIN users s ON s.id = e.student_id
JOIN courses c ON c.id = e.course_id
JOIN users t ON t.id = e.teacher_id`
	var conditions []string
	var args []interface{}

	if filter.StudentID != "" {
		args = append(args, filter.StudentID)
		conditions = append(conditions, fmt.Sprintf("e.student_id = $%d", len(args)))
	}
	if filter.TeacherID != "" {
		args = append(args, filter.TeacherID)
		conditions = append(conditions, fmt.Sprintf("e.teacher_id = $%d", len(args)))
	}
	if filter.CourseID != "" {
		args = append(args, filter.CourseID)
		conditions = append(conditions, fmt.Sprintf("e.course_id = $%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		conditions = append(conditions, fmt.Sprintf("e.is_active = $%d", len(args)))
	}
	if len(conditions) > 0 {
		base += " WHERE " + strings.Join(conditions, " AND ")
	}

	_, pageSize, offset := models.Normalize(filter.Page, filter.PageSize)
	query := fmt.Sprintf(`SELECT e.id, e.student_id, e.course_id, e.teacher_id, e.is_active, e.enrolled_at,
s.full_name AS student_name, c.code AS course_code, c.name AS course_name, t.full_name AS teacher_name
%s ORDER BY e.enrolled_at DESC, e.id LIMIT %d OFFSET %d`, base, pageSize, offset)

	var items []models.EnrollmentDetail
	if err := conn(ctx, r.db).SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}

	var total int
	if err := conn(ctx, r.db).GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}
	return items, total, nil
}

// ActiveCourseIDs lists the courses a person is actively attached to, as the
// enrolled student or the assigned teacher.
func (r *EnrollmentRepository) ActiveCourseIDs(ctx context.Context, personID string) ([]string, error) {
	const query = `SELECT DISTINCT course_id FROM enrollments WHERE (student_id = $1 OR teacher_id = $1) AND is_active = TRUE`
	var ids []string
	if err := conn(ctx, r.db).SelectContext(ctx, &ids, query, personID); err != nil {
		return nil, fmt.Errorf("active course ids: %w", err)
	}
	return ids, nil
}
