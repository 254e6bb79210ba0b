package models

// Principal is the authenticated actor a ledger operation runs on behalf of.
type Principal struct {
	ID   string
	Role UserRole
}

// IsAdmin reports whether the principal holds the admin role.
func (p Principal) IsAdmin() bool { return p.Role == RoleAdmin }

// IsTeacher reports whether the principal holds the teacher role.
func (p Principal) IsTeacher() bool { return p.Role == RoleTeacher }

// IsStudent reports whether the principal holds the student role.
func (p Principal) IsStudent() bool { return p.Role == RoleStudent }

// Can reports whether the principal's role grants capability c.
func (p Principal) Can(c Capability) bool { return HasCapability(p.Role, c) }
