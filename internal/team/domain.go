package team

import (
	"errors"

	"github.com/homeward-pm/homeward/internal/authz"
)

// Member is the team-directory view of a user.
type Member struct {
	ID        int64
	CompanyID int64
	Name      string
	Email     string
	Roles     []authz.Role
	Active    bool
}

// bestRank returns the highest authority rank among the member's roles.
func (m Member) bestRank() int {
	return authz.HighestRank(authz.Principal{Roles: m.Roles})
}

var (
	// ErrDenied indicates the actor may not see the requested member.
	ErrDenied = errors.New("team: access denied")
	// ErrLocked indicates another request is mutating the same tuple.
	ErrLocked = errors.New("team: assignment tuple locked")
)
