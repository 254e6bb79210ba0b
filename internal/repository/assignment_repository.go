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

const assignmentColumns = `id, course_id, teacher_id, title, description, kind, max_marks, due_at, is_active, created_at`

// AssignmentRepository handles persistence for assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs an assignment repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// FindByID fetches an assignment by id.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*models.Assignment, error) {
	query := `SELECT ` + assignmentColumns + ` FROM assignments WHERE id = $1`
	var a models.Assignment
	if err := conn(ctx, r.db).GetContext(ctx, &a, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find assignment: %w", err)
	}
	return &a, nil
}

// Create inserts an assignment.
func (r *AssignmentRepository) Create(ctx context.Context, a *models.Assignment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO assignments (id, course_id, teacher_id, title, description, kind, max_marks, due_at, is_active, created_at) VALUES (:id, :course_id, :teacher_id, :title, :description, :kind, :max_marks, :due_at, :is_active, :created_at)`
	if _, err := conn(ctx, r.db).NamedExecContext(ctx, query, a); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// List returns assignments matching filter, soonest due first.
func (r *AssignmentRepository) List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, int, error) {
	var conditions []string
	var args []interface{}
	if filter.CourseID != "" {
		args = append(args, filter.CourseID)
		conditions = append(conditions, fmt.Sprintf("course_id = $%d", len(args)))
	}
	if filter.TeacherID != "" {
		args = append(args, filter.TeacherID)
		conditions = append(conditions, fmt.Sprintf("teacher_id = $%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", len(args)))
	}
	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	_, pageSize, offset := models.Normalize(filter.Page, filter.PageSize)
	query := fmt.Sprintf("SELECT %s FROM assignments%s ORDER BY due_at ASC, id LIMIT %d OFFSET %d", assignmentColumns, where, pageSize, offset)
	var items []models.Assignment
	if err := conn(ctx, r.db).SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list assignments: %w", err)
	}

	var total int
	if err := conn(ctx, r.db).GetContext(ctx, &total, "SELECT COUNT(*) FROM assignments"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count assignments: %w", err)
	}
	return items, total, nil
}
