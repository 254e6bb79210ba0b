package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/campus-ledger-api/internal/models"
)

// DepartmentRepository handles persistence for departments.
type DepartmentRepository struct {
	db *sqlx.DB
}

// NewDepartmentRepository constructs a department repository.
func NewDepartmentRepository(db *sqlx.DB) *DepartmentRepository {
	return &DepartmentRepository{db: db}
}

// List returns every department ordered by code.
func (r *DepartmentRepository) List(ctx context.Context) ([]models.Department, error) {
	const query = `SELECT id, code, name, description, created_at FROM departments ORDER BY code`
	var items []models.Department
	if err := conn(ctx, r.db).SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	return items, nil
}

// FindByID fetches a department by id.
func (r *DepartmentRepository) FindByID(ctx context.Context, id string) (*models.Department, error) {
	const query = `SELECT id, code, name, description, created_at FROM departments WHERE id = $1`
	var d models.Department
	if err := conn(ctx, r.db).GetContext(ctx, &d, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find department: %w", err)
	}
	return &d, nil
}

// Create inserts a department.
func (r *DepartmentRepository) Create(ctx context.Context, d *models.Department) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO departments (id, code, name, description, created_at) VALUES (:id, :code, :name, :description, :created_at)`
	if _, err := conn(ctx, r.db).NamedExecContext(ctx, query, d); err != nil {
		return fmt.Errorf("create department: %w", err)
	}
	return nil
}

// Update modifies a department's descriptive fields.
func (r *DepartmentRepository) Update(ctx context.Context, d *models.Department) error {
	const query = `UPDATE departments SET code = :code, name = :name, description = :description WHERE id = :id`
	res, err := conn(ctx, r.db).NamedExecContext(ctx, query, d)
	if err != nil {
		return fmt.Errorf("update department: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes a department.
func (r *DepartmentRepository) Delete(ctx context.Context, id string) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete department: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
