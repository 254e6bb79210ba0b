package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHasCapability(t *testing.T) {
	assert.True(t, HasCapability(RoleTeacher, CapRecordGrade))
	assert.False(t, HasCapability(RoleAdmin, CapRecordGrade))
	assert.False(t, HasCapability(RoleStudent, CapRecordGrade))
	assert.True(t, HasCapability(RoleStudent, CapEnroll))
	assert.False(t, HasCapability(RoleTeacher, CapEnroll))
	assert.True(t, HasCapability(RoleAdmin, CapManageEnrollments))
	assert.False(t, HasCapability(UserRole("GUEST"), CapViewGrades))
}

func TestPriorityRank(t *testing.T) {
	assert.Greater(t, PriorityUrgent.Rank(), PriorityHigh.Rank())
	assert.Greater(t, PriorityHigh.Rank(), PriorityMedium.Rank())
	assert.Greater(t, PriorityMedium.Rank(), PriorityLow.Rank())
	assert.Equal(t, 0, AnnouncementPriority("unknown").Rank())
}

func TestRoleAudiences(t *testing.T) {
	assert.ElementsMatch(t, []AnnouncementAudience{AudienceAll, AudienceStudents}, RoleAudiences(RoleStudent))
	assert.ElementsMatch(t, []AnnouncementAudience{AudienceAll, AudienceTeachers}, RoleAudiences(RoleTeacher))
	assert.Len(t, RoleAudiences(RoleAdmin), 5)
}

func TestAnnouncementVisibleAt(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	assert.True(t, Announcement{IsActive: true}.VisibleAt(now))
	assert.True(t, Announcement{IsActive: true, ExpiresAt: &future}.VisibleAt(now))
	assert.False(t, Announcement{IsActive: true, ExpiresAt: &past}.VisibleAt(now))
	assert.False(t, Announcement{IsActive: true, ExpiresAt: &now}.VisibleAt(now))
	assert.False(t, Announcement{IsActive: false}.VisibleAt(now))
}

func TestAttendanceRate(t *testing.T) {
	assert.Equal(t, 0.0, AttendanceSummary{}.Rate())
	assert.Equal(t, 66.67, AttendanceSummary{Total: 3, Present: 2}.Rate())
	assert.Equal(t, 100.0, AttendanceSummary{Total: 4, Present: 4}.Rate())
}

func TestNormalize(t *testing.T) {
	page, size, offset := Normalize(0, 0)
	assert.Equal(t, []int{1, 20, 0}, []int{page, size, offset})

	page, size, offset = Normalize(3, 500)
	assert.Equal(t, []int{3, 100, 200}, []int{page, size, offset})
}
