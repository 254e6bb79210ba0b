package models

import "time"

// StudentProfile is created together with every STUDENT person.
type StudentProfile struct {
	UserID         string     `db:"user_id" json:"user_id"`
	StudentNumber  string     `db:"student_number" json:"student_number"`
	DepartmentID   *string    `db:"department_id" json:"department_id,omitempty"`
	Year           int        `db:"year" json:"year"`
	Semester       int        `db:"semester" json:"semester"`
	GPA            float64    `db:"gpa" json:"gpa"`
	GPAUpdatedAt   *time.Time `db:"gpa_updated_at" json:"gpa_updated_at,omitempty"`
	EnrollmentDate time.Time  `db:"enrollment_date" json:"enrollment_date"`
}

// TeacherProfile is created together with every TEACHER person.
type TeacherProfile struct {
	UserID         string    `db:"user_id" json:"user_id"`
	EmployeeNumber string    `db:"employee_number" json:"employee_number"`
	DepartmentID   *string   `db:"department_id" json:"department_id,omitempty"`
	Designation    string    `db:"designation" json:"designation"`
	JoinDate       time.Time `db:"join_date" json:"join_date"`
}

// Student joins a person with their student profile.
type Student struct {
	StudentProfile
	FullName string `db:"full_name" json:"full_name"`
	Email    string `db:"email" json:"email"`
	Active   bool   `db:"active" json:"active"`
}

// Teacher joins a person with their teacher profile.
type Teacher struct {
	TeacherProfile
	FullName string `db:"full_name" json:"full_name"`
	Email    string `db:"email" json:"email"`
	Active   bool   `db:"active" json:"active"`
}

// RegisterRequest creates a person and the profile matching their role.
type RegisterRequest struct {
	Email        string   `json:"email" validate:"required,email"`
	Password     string   `json:"password" validate:"required,min=8"`
	FullName     string   `json:"full_name" validate:"required,max=200"`
	Role         UserRole `json:"role" validate:"required,oneof=ADMIN TEACHER STUDENT"`
	DepartmentID *string  `json:"department_id" validate:"omitempty,uuid"`
	Year         int      `json:"year" validate:"omitempty,min=1,max=4"`
	Semester     int      `json:"semester" validate:"omitempty,min=1,max=8"`
	Designation  string   `json:"designation" validate:"omitempty,max=100"`
}

// Registration is the outcome of a successful registration.
type Registration struct {
	User    User            `json:"user"`
	Student *StudentProfile `json:"student_profile,omitempty"`
	Teacher *TeacherProfile `json:"teacher_profile,omitempty"`
}
