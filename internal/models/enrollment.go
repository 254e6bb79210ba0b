package models

import "time"

// Enrollment links a student to a course and the teacher assigned to them.
// Only IsActive changes after creation.
type Enrollment struct {
	ID         string    `db:"id" json:"id"`
	StudentID  string    `db:"student_id" json:"student_id"`
	CourseID   string    `db:"course_id" json:"course_id"`
	TeacherID  string    `db:"teacher_id" json:"teacher_id"`
	IsActive   bool      `db:"is_active" json:"is_active"`
	EnrolledAt time.Time `db:"enrolled_at" json:"enrolled_at"`
}

// EnrollmentDetail enriches Enrollment with display names.
type EnrollmentDetail struct {
	Enrollment
	StudentName string `db:"student_name" json:"student_name"`
	CourseCode  string `db:"course_code" json:"course_code"`
	CourseName  string `db:"course_name" json:"course_name"`
	TeacherName string `db:"teacher_name" json:"teacher_name"`
}

// EnrollmentFilter provides filters for listing enrollments.
type EnrollmentFilter struct {
	StudentID string
	TeacherID string
	CourseID  string
	Active    *bool
	Page      int
	PageSize  int
}

// EnrollRequest asks for a student to be enrolled in a course.
type EnrollRequest struct {
	StudentID string `json:"student_id" validate:"required,uuid"`
	CourseID  string `json:"course_id" validate:"required,uuid"`
}
