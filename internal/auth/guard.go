package auth

import (
	"context"
	"errors"

	"github.com/hackforge/atlasman/internal/errs"
	"github.com/hackforge/atlasman/internal/platform"
)

// Guard enforces team-scoped authorization with an admin bypass
type Guard struct {
	sessions Sessions
	teams    platform.TeamStore
}

// NewGuard returns a new authorization guard
func NewGuard(sessions Sessions, teams platform.TeamStore) *Guard {
	return &Guard{sessions: sessions, teams: teams}
}

// RequireTeamLeader resolves the caller and ensures they lead the team
func (g *Guard) RequireTeamLeader(ctx context.Context, teamID string) (Identity, error) {
	return g.require(ctx, teamID, func(team platform.Team, identity Identity) bool {
		return team.LeaderID != "" && team.LeaderID == identity.UserID
	})
}

// RequireTeamMember resolves the caller and ensures they belong to the
// team; the leader counts as a member
func (g *Guard) RequireTeamMember(ctx context.Context, teamID string) (Identity, error) {
	return g.require(ctx, teamID, func(team platform.Team, identity Identity) bool {
		return team.HasMember(identity.UserID)
	})
}

func (g *Guard) require(ctx context.Context, teamID string, allowed func(platform.Team, Identity) bool) (Identity, error) {
	identity, err := g.sessions.Current(ctx)
	if err != nil {
		return Identity{}, errs.Wrap(errs.KindUnauthorized, "authentication required", err)
	}

	if identity.Role.Bypass() {
		return identity, nil
	}

	// corrupt records occasionally reference no team at all
	if teamID == "" {
		return Identity{}, errs.New(errs.KindNotFound, "team could not be found")
	}

	team, err := g.teams.Team(ctx, teamID)
	if err != nil {
		if errors.Is(err, platform.ErrTeamNotFound) {
			return Identity{}, errs.Wrap(errs.KindNotFound, "team could not be found", err)
		}
		return Identity{}, err
	}

	if !allowed(team, identity) {
		return Identity{}, errs.Newf(errs.KindForbidden, "user is not authorized to act for team %s", teamID)
	}
	return identity, nil
}
