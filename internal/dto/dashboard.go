package dto

import (
	"time"

	"github.com/noah-isme/campus-ledger-api/internal/models"
)

// AdminDashboardResponse aggregates institution-wide counters.
type AdminDashboardResponse struct {
	Students          int       `json:"students"`
	Teachers          int       `json:"teachers"`
	Admins            int       `json:"admins"`
	ActiveCourses     int       `json:"activeCourses"`
	ActiveEnrollments int       `json:"activeEnrollments"`
	AverageGPA        float64   `json:"averageGpa"`
	GeneratedAt       time.Time `json:"generatedAt"`
}

// TeacherDashboardResponse summarises a teacher's workload.
type TeacherDashboardResponse struct {
	TeacherID      string             `json:"teacherId"`
	Courses        []TeacherCourseRow `json:"courses"`
	Assignments    int                `json:"assignments"`
	GradesRecorded int                `json:"gradesRecorded"`
	RecentGrades   []models.GradeView `json:"recentGrades"`
	GeneratedAt    time.Time          `json:"generatedAt"`
}

// TeacherCourseRow is a course the teacher has active students in.
type TeacherCourseRow struct {
	CourseID string `db:"course_id" json:"courseId"`
	Code     string `db:"code" json:"code"`
	Name     string `db:"name" json:"name"`
	Students int    `db:"students" json:"students"`
}

// StudentDashboardResponse is a student's landing page.
type StudentDashboardResponse struct {
	StudentID      string                    `json:"studentId"`
	Enrollments    []models.EnrollmentDetail `json:"enrollments"`
	Report         models.GradeReport        `json:"report"`
	AttendanceRate float64                   `json:"attendanceRate"`
	Announcements  []models.Announcement     `json:"announcements"`
	GeneratedAt    time.Time                 `json:"generatedAt"`
}

// AdminCounts is the raw aggregate row behind the admin dashboard.
type AdminCounts struct {
	Students          int     `db:"students"`
	Teachers          int     `db:"teachers"`
	Admins            int     `db:"admins"`
	ActiveCourses     int     `db:"active_courses"`
	ActiveEnrollments int     `db:"active_enrollments"`
	AverageGPA        float64 `db:"average_gpa"`
}
