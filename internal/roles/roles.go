// Package roles centralizes the portal's authorization policy. Handlers and
// services never compare role strings directly; they go through the
// capability predicates below.
package roles

// Role is the access level attached to a profile.
type Role string

const (
	Citizen  Role = "citizen"
	Official Role = "official"
	Admin    Role = "admin"
)

// Parse maps a stored role string to a Role, defaulting to Citizen for
// unknown or empty values.
func Parse(s string) Role {
	switch Role(s) {
	case Official:
		return Official
	case Admin:
		return Admin
	default:
		return Citizen
	}
}

func Valid(s string) bool {
	switch Role(s) {
	case Citizen, Official, Admin:
		return true
	}
	return false
}

// CanModerateReports covers triage: viewing all reports, changing status,
// severity and assignment.
func CanModerateReports(r Role) bool {
	return r == Official || r == Admin
}

// CanDeleteReports covers the irreversible hard delete.
func CanDeleteReports(r Role) bool {
	return r == Admin
}

// CanManageUsers covers listing users and changing roles.
func CanManageUsers(r Role) bool {
	return r == Admin
}

// CanManageProjects covers creating and updating projects.
func CanManageProjects(r Role) bool {
	return r == Admin
}

// CanRecordTransactions covers budget entries and project update posts.
func CanRecordTransactions(r Role) bool {
	return r == Official || r == Admin
}

// CanViewInternalComments covers non-public report comments (authors always
// see their own regardless of this).
func CanViewInternalComments(r Role) bool {
	return r == Official || r == Admin
}
