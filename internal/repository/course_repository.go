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

	"github.com/noah-isme/campus-ledger-api/internal/dto"
	"github.com/noah-isme/campus-ledger-api/internal/models"
)

const courseColumns = `id, code, name, description, credits, department_id, semester, is_active, created_at`

// CourseRepository handles persistence for courses.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a course repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// List returns courses matching filter with the total count.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	where, args := courseWhere(filter)
	_, pageSize, offset := models.Normalize(filter.Page, filter.PageSize)

	query := fmt.Sprintf("SELECT %s FROM courses%s ORDER BY code LIMIT %d OFFSET %d", courseColumns, where, pageSize, offset)
	var items []models.Course
	if err := conn(ctx, r.db).SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}

	var total int
	if err := conn(ctx, r.db).GetContext(ctx, &total, "SELECT COUNT(*) FROM courses"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}
	return items, total, nil
}

func courseWhere(filter models.CourseFilter) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	if filter.DepartmentID != "" {
		args = append(args, filter.DepartmentID)
		conditions = append(conditions, fmt.Sprintf("department_id = $%d", len(args)))
	}
	if filter.Semester > 0 {
		args = append(args, filter.Semester)
		conditions = append(conditions, fmt.Sprintf("semester = $%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("(LOWER(code) LIKE $%d OR LOWER(name) LIKE $%d)", len(args), len(args)))
	}
	if len(conditions) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}

// FindByID fetches a course by id.
func (r *CourseRepository) FindByID(ctx context.Context, id string) (*models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`
	var c models.Course
	if err := conn(ctx, r.db).GetContext(ctx, &c, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find course: %w", err)
	}
	return &c, nil
}

// Eligible lists the active courses a student of the given department and
// semester may enroll in.
func (r *CourseRepository) Eligible(ctx context.Context, departmentID string, semester int) ([]models.Course, error) {
	query := `SELECT ` + courseColumns + ` FROM courses WHERE department_id = $1 AND semester = $2 AND is_active = TRUE ORDER BY code`
	var items []models.Course
	if err := conn(ctx, r.db).SelectContext(ctx, &items, query, departmentID, semester); err != nil {
		return nil, fmt.Errorf("eligible courses: %w", err)
	}
	return items, nil
}

// Create inserts a course.
func (r *CourseRepository) Create(ctx context.Context, c *models.Course) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO courses (id, code, name, description, credits, department_id, semester, is_active, created_at) VALUES (:id, :code, :name, :description, :credits, :department_id, :semester, :is_active, :created_at)`
	if _, err := conn(ctx, r.db).NamedExecContext(ctx, query, c); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update modifies a course.
func (r *CourseRepository) Update(ctx context.Context, c *models.Course) error {
	const query = `UPDATE courses SET code = :code, name = :name, description = :description, credits = :credits, department_id = :department_id, semester = :semester, is_active = :is_active WHERE id = :id`
	res, err := conn(ctx, r.db).NamedExecContext(ctx, query, c)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// TaughtBy lists courses where the teacher has active students, with the
// active student count.
func (r *CourseRepository) TaughtBy(ctx context.Context, teacherID string) ([]dto.TeacherCourseRow, error) {
	const query = `SELECT c.id AS course_id, c.code, c.name, COUNT(e.id) AS students
FROM courses c JOIN enrollments e ON e.course_id = c.id AND e.is_active = TRUE
WHERE e.teacher_id = $1
GROUP BY c.id, c.code, c.name ORDER BY c.code`
	var rows []dto.TeacherCourseRow
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, query, teacherID); err != nil {
		return nil, fmt.Errorf("courses taught by teacher: %w", err)
	}
	return rows, nil
}
