package models

import "time"

// LetterGrade is the band a percentage falls into.
type LetterGrade string

const (
	GradeAPlus  LetterGrade = "A+"
	GradeA      LetterGrade = "A"
	GradeAMinus LetterGrade = "A-"
	GradeBPlus  LetterGrade = "B+"
	GradeB      LetterGrade = "B"
	GradeBMinus LetterGrade = "B-"
	GradeCPlus  LetterGrade = "C+"
	GradeC      LetterGrade = "C"
	GradeCMinus LetterGrade = "C-"
	GradeF      LetterGrade = "F"
)

// Grade is the single mark a student holds for an assignment.
type Grade struct {
	ID            string    `db:"id" json:"id"`
	StudentID     string    `db:"student_id" json:"student_id"`
	AssignmentID  string    `db:"assignment_id" json:"assignment_id"`
	MarksObtained float64   `db:"marks_obtained" json:"marks_obtained"`
	Feedback      *string   `db:"feedback" json:"feedback,omitempty"`
	GradedBy      string    `db:"graded_by" json:"graded_by"`
	GradedAt      time.Time `db:"graded_at" json:"graded_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// GradeView is a grade joined with its assignment and course, plus the
// derived percentage and letter.
type GradeView struct {
	Grade
	StudentName     string         `db:"student_name" json:"student_name"`
	AssignmentTitle string         `db:"assignment_title" json:"assignment_title"`
	AssignmentKind  AssignmentKind `db:"assignment_kind" json:"assignment_kind"`
	MaxMarks        float64        `db:"max_marks" json:"max_marks"`
	TeacherID       string         `db:"teacher_id" json:"teacher_id"`
	CourseID        string         `db:"course_id" json:"course_id"`
	CourseCode      string         `db:"course_code" json:"course_code"`
	CourseName      string         `db:"course_name" json:"course_name"`
	Percentage      float64        `db:"-" json:"percentage"`
	Letter          LetterGrade    `db:"-" json:"letter_grade"`
}

// GradeScope restricts which grades a query may return. Empty fields do not
// filter; a zero Limit returns every row.
type GradeScope struct {
	StudentID string
	TeacherID string
	Limit     int
}

// GradeMark is the raw pair a percentage is derived from.
type GradeMark struct {
	MarksObtained float64 `db:"marks_obtained"`
	MaxMarks      float64 `db:"max_marks"`
}

// RecordGradeRequest carries the marks a teacher awards.
type RecordGradeRequest struct {
	StudentID     string   `json:"student_id" validate:"required,uuid"`
	AssignmentID  string   `json:"assignment_id" validate:"required,uuid"`
	MarksObtained *float64 `json:"marks_obtained" validate:"required"`
	Feedback      *string  `json:"feedback" validate:"omitempty,max=2000"`
}

// GradeReport is a student's grade list with their current GPA.
type GradeReport struct {
	StudentID     string      `json:"student_id"`
	StudentNumber string      `json:"student_number"`
	FullName      string      `json:"full_name"`
	GPA           float64     `json:"gpa"`
	Grades        []GradeView `json:"grades"`
}
