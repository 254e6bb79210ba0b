package models

import "time"

// AnnouncementAudience defines who can see an announcement.
type AnnouncementAudience string

const (
	AudienceAll        AnnouncementAudience = "all"
	AudienceStudents   AnnouncementAudience = "students"
	AudienceTeachers   AnnouncementAudience = "teachers"
	AudienceDepartment AnnouncementAudience = "department"
	AudienceCourse     AnnouncementAudience = "course"
)

// RoleAudiences lists the role-wide audiences a role may read besides "all".
// Admins read every audience.
func RoleAudiences(role UserRole) []AnnouncementAudience {
	switch role {
	case RoleStudent:
		return []AnnouncementAudience{AudienceAll, AudienceStudents}
	case RoleTeacher:
		return []AnnouncementAudience{AudienceAll, AudienceTeachers}
	case RoleAdmin:
		return []AnnouncementAudience{AudienceAll, AudienceStudents, AudienceTeachers, AudienceDepartment, AudienceCourse}
	}
	return []AnnouncementAudience{AudienceAll}
}

// AnnouncementPriority orders announcements published at the same instant.
type AnnouncementPriority string

const (
	PriorityLow    AnnouncementPriority = "low"
	PriorityMedium AnnouncementPriority = "medium"
	PriorityHigh   AnnouncementPriority = "high"
	PriorityUrgent AnnouncementPriority = "urgent"
)

// Rank is the sort weight of the priority; higher sorts first.
func (p AnnouncementPriority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Announcement represents a persisted announcement row.
type Announcement struct {
	ID             string               `db:"id" json:"id"`
	Title          string               `db:"title" json:"title"`
	Content        string               `db:"content" json:"content"`
	AuthorID       string               `db:"author_id" json:"author_id"`
	Priority       AnnouncementPriority `db:"priority" json:"priority"`
	TargetAudience AnnouncementAudience `db:"target_audience" json:"target_audience"`
	DepartmentID   *string              `db:"department_id" json:"department_id,omitempty"`
	CourseID       *string              `db:"course_id" json:"course_id,omitempty"`
	IsActive       bool                 `db:"is_active" json:"is_active"`
	ExpiresAt      *time.Time           `db:"expires_at" json:"expires_at,omitempty"`
	CreatedAt      time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time            `db:"updated_at" json:"updated_at"`
}

// VisibleAt reports whether the announcement is live at t.
func (a Announcement) VisibleAt(t time.Time) bool {
	return a.IsActive && (a.ExpiresAt == nil || a.ExpiresAt.After(t))
}

// AnnouncementScope is the resolved visibility of one principal.
type AnnouncementScope struct {
	Audiences     []AnnouncementAudience
	DepartmentIDs []string
	CourseIDs     []string
	Now           time.Time
	Page          int
	PageSize      int
}

// AnnouncementRequest creates an announcement.
type AnnouncementRequest struct {
	Title          string               `json:"title" validate:"required,max=200"`
	Content        string               `json:"content" validate:"required"`
	Priority       AnnouncementPriority `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	TargetAudience AnnouncementAudience `json:"target_audience" validate:"required,oneof=all students teachers department course"`
	DepartmentID   *string              `json:"department_id" validate:"omitempty,uuid"`
	CourseID       *string              `json:"course_id" validate:"omitempty,uuid"`
	ExpiresAt      *time.Time           `json:"expires_at"`
}
