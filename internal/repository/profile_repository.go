package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-ledger-api/internal/models"
)

// ProfileRepository stores the role profiles attached to persons.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository constructs a profile repository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// NextNumber draws the next value of the shared profile number sequence.
func (r *ProfileRepository) NextNumber(ctx context.Context) (int64, error) {
	var n int64
	if err := conn(ctx, r.db).GetContext(ctx, &n, `SELECT nextval('profile_number_seq')`); err != nil {
		return 0, fmt.Errorf("next profile number: %w", err)
	}
	return n, nil
}

// CreateStudent inserts a student profile.
func (r *ProfileRepository) CreateStudent(ctx context.Context, p *models.StudentProfile) error {
	if p.EnrollmentDate.IsZero() {
		p.EnrollmentDate = time.Now().UTC()
	}
	const query = `INSERT INTO student_profiles (user_id, student_number, department_id, year, semester, gpa, enrollment_date) VALUES (:user_id, :student_number, :department_id, :year, :semester, :gpa, :enrollment_date)`
	if _, err := conn(ctx, r.db).NamedExecContext(ctx, query, p); err != nil {
		return fmt.Errorf("create student profile: %w", err)
	}
	return nil
}

// CreateTeacher inserts a teacher profile.
func (r *ProfileRepository) CreateTeacher(ctx context.Context, p *models.TeacherProfile) error {
	if p.JoinDate.IsZero() {
		p.JoinDate = time.Now().UTC()
	}
	const query = `INSERT INTO teacher_profiles (user_id, employee_number, department_id, designation, join_date) VALUES (:user_id, :employee_number, :department_id, :designation, :join_date)`
	if _, err := conn(ctx, r.db).NamedExecContext(ctx, query, p); err != nil {
		return fmt.Errorf("create teacher profile: %w", err)
	}
	return nil
}

// FindStudent returns a student joined with their person record.
func (r *ProfileRepository) FindStudent(ctx context.Context, userID string) (*models.Student, error) {
	const query = `SELECT sp.user_id, sp.student_number, sp.department_id, sp.year, sp.semester, sp.gpa, sp.gpa_updated_at, sp.enrollment_date, u.full_name, u.email, u.active
FROM student_profiles sp JOIN users u ON u.id = sp.user_id WHERE sp.user_id = $1`
	var s models.Student
	if err := conn(ctx, r.db).GetContext(ctx, &s, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &s, nil
}

// FindTeacher returns a teacher joined with their person record.
func (r *ProfileRepository) FindTeacher(ctx context.Context, userID string) (*models.Teacher, error) {
	const query = `SELECT tp.user_id, tp.employee_number, tp.department_id, tp.designation, tp.join_date, u.full_name, u.email, u.active
FROM teacher_profiles tp JOIN users u ON u.id = tp.user_id WHERE tp.user_id = $1`
	var t models.Teacher
	if err := conn(ctx, r.db).GetContext(ctx, &t, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find teacher: %w", err)
	}
	return &t, nil
}

// FirstTeacherInDepartment picks the longest-serving active teacher of a
// department, breaking join-date ties by id.
func (r *ProfileRepository) FirstTeacherInDepartment(ctx context.Context, departmentID string) (*models.TeacherProfile, error) {
	const query = `SELECT tp.user_id, tp.employee_number, tp.department_id, tp.designation, tp.join_date
FROM teacher_profiles tp JOIN users u ON u.id = tp.user_id
WHERE tp.department_id = $1 AND u.active = TRUE
ORDER BY tp.join_date ASC, tp.user_id ASC LIMIT 1`
	var t models.TeacherProfile
	if err := conn(ctx, r.db).GetContext(ctx, &t, query, departmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("first teacher in department: %w", err)
	}
	return &t, nil
}

// DepartmentOf resolves the department recorded on whichever profile the
// person holds. Admins and unassigned persons yield nil.
func (r *ProfileRepository) DepartmentOf(ctx context.Context, userID string) (*string, error) {
	const query = `SELECT COALESCE(
	(SELECT department_id FROM student_profiles WHERE user_id = $1),
	(SELECT department_id FROM teacher_profiles WHERE user_id = $1))`
	var dept sql.NullString
	if err := conn(ctx, r.db).GetContext(ctx, &dept, query, userID); err != nil {
		return nil, fmt.Errorf("department of user: %w", err)
	}
	if !dept.Valid {
		return nil, nil
	}
	return &dept.String, nil
}

// UpdateGPA writes a recomputed GPA.
func (r *ProfileRepository) UpdateGPA(ctx context.Context, userID string, gpa float64, at time.Time) error {
	const query = `UPDATE student_profiles SET gpa = $2, gpa_updated_at = $3 WHERE user_id = $1`
	if _, err := conn(ctx, r.db).ExecContext(ctx, query, userID, gpa, at); err != nil {
		return fmt.Errorf("update gpa: %w", err)
	}
	return nil
}
