package models

import "sort"

// Capability names an action gated by role.
type Capability string

const (
	CapRecordGrade         Capability = "grade:record"
	CapViewGrades          Capability = "grade:view"
	CapExportTranscript    Capability = "transcript:export"
	CapEnroll              Capability = "enrollment:create"
	CapManageEnrollments   Capability = "enrollment:manage"
	CapManageCatalog       Capability = "catalog:manage"
	CapManageAssignments   Capability = "assignment:manage"
	CapMarkAttendance      Capability = "attendance:mark"
	CapPublishAnnouncement Capability = "announcement:publish"
	CapRegisterUsers       Capability = "user:register"
	CapViewAdminDashboard  Capability = "dashboard:admin"
)

var roleCapabilities = map[UserRole]map[Capability]struct{}{
	RoleAdmin: capabilitySet(
		CapViewGrades, CapExportTranscript, CapEnroll, CapManageEnrollments, CapManageCatalog,
		CapPublishAnnouncement, CapRegisterUsers, CapViewAdminDashboard,
	),
	RoleTeacher: capabilitySet(
		CapRecordGrade, CapViewGrades, CapManageAssignments, CapMarkAttendance, CapPublishAnnouncement,
	),
	RoleStudent: capabilitySet(
		CapViewGrades, CapExportTranscript, CapEnroll,
	),
}

func capabilitySet(caps ...Capability) map[Capability]struct{} {
	set := make(map[Capability]struct{}, len(caps))
	for _, c := range caps {
		set[c] = struct{}{}
	}
	return set
}

// HasCapability is the single source of truth for role permissions.
// Ownership rules (own grades, own assignments) are applied by the services
// on top of this check.
func HasCapability(role UserRole, c Capability) bool {
	_, ok := roleCapabilities[role][c]
	return ok
}

// Capabilities lists what role may do, in a stable order.
func Capabilities(role UserRole) []Capability {
	caps := make([]Capability, 0, len(roleCapabilities[role]))
	for c := range roleCapabilities[role] {
		caps = append(caps, c)
	}
	sort.Slice(caps, func(i, j int) bool { return caps[i] < caps[j] })
	return caps
}
