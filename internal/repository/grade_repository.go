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

const gradeColumns = `id, student_id, assignment_id, marks_obtained, feedback, graded_by, graded_at, updated_at`

// GradeRepository persists grades and reads them back as views.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository constructs a grade repository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

// Upsert writes the grade for (student, assignment). An existing row is
// overwritten in full by the latest write; g is refreshed from the stored row.
func (r *GradeRepository) Upsert(ctx context.Context, g *models.Grade) error {
	now := time.Now().UTC()
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.GradedAt.IsZero() {
		g.GradedAt = now
	}
	g.UpdatedAt = now

	query := `INSERT INTO grades (id, student_id, assignment_id, marks_obtained, feedback, graded_by, graded_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (student_id, assignment_id) DO UPDATE SET
marks_obtained = EXCLUDED.marks_obtained, feedback = EXCLUDED.feedback, graded_by = EXCLUDED.graded_by,
graded_at = EXCLUDED.graded_at, updated_at = EXCLUDED.updated_at
RETURNING ` + gradeColumns
	err := conn(ctx, r.db).GetContext(ctx, g, query,
		g.ID, g.StudentID, g.AssignmentID, g.MarksObtained, g.Feedback, g.GradedBy, g.GradedAt, g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert grade: %w", err)
	}
	return nil
}

const gradeViewSelect = `SELECT g.id, g.student_id, g.assignment_id, g.marks_obtained, g.feedback, g.graded_by, g.graded_at, g.updated_at,
u.full_name AS student_name, a.title AS assignment_title, a.kind AS assignment_kind, a.max_marks, a.teacher_id,
c.id AS course_id, c.code AS course_code, c.name AS course_name
FROM grades g
JOIN assignments a ON a.id = g.assignment_id
JOIN courses c ON c.id = a.course_id
JOIN users u ON u.id = g.student_id`

func gradeViewQuery(scope models.GradeScope) (string, []interface{}) {
	var conditions []string
	var args []interface{}
	if scope.StudentID != "" {
		args = append(args, scope.StudentID)
		conditions = append(conditions, fmt.Sprintf("g.student_id = $%d", len(args)))
	}
	if scope.TeacherID != "" {
		args = append(args, scope.TeacherID)
		conditions = append(conditions, fmt.Sprintf("a.teacher_id = $%d", len(args)))
	}
	query := gradeViewSelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY g.graded_at DESC, g.id"
	if scope.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", scope.Limit)
	}
	return query, args
}

// Each streams the grade views in scope, newest first, stopping early when fn
// returns false.
func (r *GradeRepository) Each(ctx context.Context, scope models.GradeScope, fn func(models.GradeView) bool) error {
	query, args := gradeViewQuery(scope)
	rows, err := conn(ctx, r.db).QueryxContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query grades: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var view models.GradeView
		if err := rows.StructScan(&view); err != nil {
			return fmt.Errorf("scan grade: %w", err)
		}
		if !fn(view) {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate grades: %w", err)
	}
	return nil
}

// Marks returns the raw marks of every grade a student holds.
func (r *GradeRepository) Marks(ctx context.Context, studentID string) ([]models.GradeMark, error) {
	const query = `SELECT g.marks_obtained, a.max_marks FROM grades g JOIN assignments a ON a.id = g.assignment_id WHERE g.student_id = $1`
	var marks []models.GradeMark
	if err := conn(ctx, r.db).SelectContext(ctx, &marks, query, studentID); err != nil {
		return nil, fmt.Errorf("grade marks: %w", err)
	}
	return marks, nil
}

// CountByTeacher counts grades on assignments the teacher authored.
func (r *GradeRepository) CountByTeacher(ctx context.Context, teacherID string) (int, error) {
	const query = `SELECT COUNT(*) FROM grades g JOIN assignments a ON a.id = g.assignment_id WHERE a.teacher_id = $1`
	var n int
	if err := conn(ctx, r.db).GetContext(ctx, &n, query, teacherID); err != nil {
		return 0, fmt.Errorf("count grades by teacher: %w", err)
	}
	return n, nil
}
