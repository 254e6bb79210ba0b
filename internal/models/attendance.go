package models

import (
	"math"
	"time"
)

// Attendance records whether a student was present in a course on a date.
type Attendance struct {
	ID        string    `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	CourseID  string    `db:"course_id" json:"course_id"`
	Date      time.Time `db:"date" json:"date"`
	IsPresent bool      `db:"is_present" json:"is_present"`
	MarkedBy  string    `db:"marked_by" json:"marked_by"`
	Remarks   string    `db:"remarks" json:"remarks"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// AttendanceFilter narrows attendance listings.
type AttendanceFilter struct {
	StudentID string
	CourseID  string
	TeacherID string
	From      *time.Time
	To        *time.Time
	Page      int
	PageSize  int
}

// AttendanceEntry is one student's mark within a bulk request.
type AttendanceEntry struct {
	StudentID string `json:"student_id" validate:"required,uuid"`
	IsPresent bool   `json:"is_present"`
	Remarks   string `json:"remarks" validate:"max=100"`
}

// MarkAttendanceRequest marks a whole course session at once.
type MarkAttendanceRequest struct {
	CourseID string            `json:"course_id" validate:"required,uuid"`
	Date     string            `json:"date" validate:"required,datetime=2006-01-02"`
	Entries  []AttendanceEntry `json:"entries" validate:"required,min=1,dive"`
}

// AttendanceSummary counts sessions for rate computation.
type AttendanceSummary struct {
	Total   int `db:"total" json:"total"`
	Present int `db:"present" json:"present"`
}

// Rate is the present percentage rounded to two decimals; zero sessions yield zero.
func (s AttendanceSummary) Rate() float64 {
	if s.Total == 0 {
		return 0
	}
	return math.Round(float64(s.Present)*10000/float64(s.Total)) / 100
}
