// Package auth answers who the caller is and whether they may act on a
// team's cluster. Route handlers map the returned error kinds onto
// transport status codes.
package auth

// Role is a platform user role
type Role string

// set of known platform roles
const (
	RoleAdmin       Role = "admin"
	RoleOrganizer   Role = "organizer"
	RoleJudge       Role = "judge"
	RoleParticipant Role = "participant"
)

// Bypass determines whether the role skips team membership checks
func (r Role) Bypass() bool {
	return r == RoleAdmin || r == RoleOrganizer
}

// Identity is an authenticated caller
type Identity struct {
	UserID string
	Role   Role
}
