package models

import "time"

// Course is offered by a department in a given semester.
type Course struct {
	ID           string    `db:"id" json:"id"`
	Code         string    `db:"code" json:"code"`
	Name         string    `db:"name" json:"name"`
	Description  string    `db:"description" json:"description"`
	Credits      int       `db:"credits" json:"credits"`
	DepartmentID string    `db:"department_id" json:"department_id"`
	Semester     int       `db:"semester" json:"semester"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// CourseFilter narrows course listings.
type CourseFilter struct {
	DepartmentID string
	Semester     int
	Active       *bool
	Search       string
	Page         int
	PageSize     int
}

// CourseRequest creates or updates a course.
type CourseRequest struct {
	Code         string `json:"code" validate:"required,max=20"`
	Name         string `json:"name" validate:"required,max=200"`
	Description  string `json:"description"`
	Credits      int    `json:"credits" validate:"required,min=1,max=10"`
	DepartmentID string `json:"department_id" validate:"required,uuid"`
	Semester     int    `json:"semester" validate:"required,min=1,max=8"`
	IsActive     *bool  `json:"is_active"`
}
