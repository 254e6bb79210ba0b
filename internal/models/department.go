package models

import "time"

// Department groups courses, students and teachers.
type Department struct {
	ID          string    `db:"id" json:"id"`
	Code        string    `db:"code" json:"code"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// DepartmentRequest creates or updates a department.
type DepartmentRequest struct {
	Code        string `json:"code" validate:"required,max=10"`
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description"`
}
