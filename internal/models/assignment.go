package models

import "time"

// AssignmentKind classifies gradable work.
type AssignmentKind string

const (
	AssignmentQuiz     AssignmentKind = "quiz"
	AssignmentHomework AssignmentKind = "assignment"
	AssignmentMidterm  AssignmentKind = "midterm"
	AssignmentFinal    AssignmentKind = "final"
	AssignmentProject  AssignmentKind = "project"
)

// Assignment is authored by one teacher for one course. MaxMarks is always
// positive.
type Assignment struct {
	ID          string         `db:"id" json:"id"`
	CourseID    string         `db:"course_id" json:"course_id"`
	TeacherID   string         `db:"teacher_id" json:"teacher_id"`
	Title       string         `db:"title" json:"title"`
	Description string         `db:"description" json:"description"`
	Kind        AssignmentKind `db:"kind" json:"kind"`
	MaxMarks    float64        `db:"max_marks" json:"max_marks"`
	DueAt       time.Time      `db:"due_at" json:"due_at"`
	IsActive    bool           `db:"is_active" json:"is_active"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}

// AssignmentFilter narrows assignment listings.
type AssignmentFilter struct {
	CourseID  string
	TeacherID string
	Active    *bool
	Page      int
	PageSize  int
}

// AssignmentRequest creates an assignment.
type AssignmentRequest struct {
	CourseID    string         `json:"course_id" validate:"required,uuid"`
	Title       string         `json:"title" validate:"required,max=200"`
	Description string         `json:"description"`
	Kind        AssignmentKind `json:"kind" validate:"required,oneof=quiz assignment midterm final project"`
	MaxMarks    float64        `json:"max_marks" validate:"required,gt=0,lte=9999"`
	DueAt       time.Time      `json:"due_at" validate:"required"`
}
