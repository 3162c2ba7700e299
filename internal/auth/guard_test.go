package auth_test

import (
	"context"
	"errors"
	"testing"

	"github.com/hackforge/atlasman/internal/auth"
	"github.com/hackforge/atlasman/internal/errs"
	"github.com/hackforge/atlasman/internal/platform"
	"github.com/hackforge/atlasman/internal/utils/test/assert"
	"github.com/hackforge/atlasman/internal/utils/test/mock"
)

func TestGuard(t *testing.T) {
	team := platform.Team{
		ID:       "team1",
		LeaderID: "leader1",
		Members:  []string{"member1"},
	}

	teams := mock.TeamStore{TeamFn: func(ctx context.Context, id string) (platform.Team, error) {
		if id == team.ID {
			return team, nil
		}
		return platform.Team{}, platform.ErrTeamNotFound
	}}

	sessionFor := func(identity auth.Identity) mock.Sessions {
		return mock.Sessions{CurrentFn: func(context.Context) (auth.Identity, error) {
			return identity, nil
		}}
	}

	for _, tc := range []struct {
		description  string
		sessions     auth.Sessions
		teamID       string
		requireLead  bool
		expectedKind errs.Kind
	}{
		{
			description:  "Should fail unauthorized without a session",
			sessions:     mock.Sessions{},
			teamID:       "team1",
			expectedKind: errs.KindUnauthorized,
		},
		{
			description: "Should let an admin lead a team they do not belong to",
			sessions:    sessionFor(auth.Identity{UserID: "admin1", Role: auth.RoleAdmin}),
			teamID:      "team1",
			requireLead: true,
		},
		{
			description: "Should let an organizer act for any team",
			sessions:    sessionFor(auth.Identity{UserID: "org1", Role: auth.RoleOrganizer}),
			teamID:      "team1",
			requireLead: true,
		},
		{
			description:  "Should forbid a participant outside the team",
			sessions:     sessionFor(auth.Identity{UserID: "outsider", Role: auth.RoleParticipant}),
			teamID:       "team1",
			expectedKind: errs.KindForbidden,
		},
		{
			description: "Should allow the leader to lead",
			sessions:    sessionFor(auth.Identity{UserID: "leader1", Role: auth.RoleParticipant}),
			teamID:      "team1",
			requireLead: true,
		},
		{
			description:  "Should forbid a plain member from leading",
			sessions:     sessionFor(auth.Identity{UserID: "member1", Role: auth.RoleParticipant}),
			teamID:       "team1",
			requireLead:  true,
			expectedKind: errs.KindForbidden,
		},
		{
			description: "Should count the leader as a member",
			sessions:    sessionFor(auth.Identity{UserID: "leader1", Role: auth.RoleParticipant}),
			teamID:      "team1",
		},
		{
			description: "Should allow a listed member",
			sessions:    sessionFor(auth.Identity{UserID: "member1", Role: auth.RoleParticipant}),
			teamID:      "team1",
		},
		{
			description:  "Should report a missing team as not found",
			sessions:     sessionFor(auth.Identity{UserID: "member1", Role: auth.RoleParticipant}),
			teamID:       "ghost",
			expectedKind: errs.KindNotFound,
		},
		{
			description:  "Should treat an empty team id as not found",
			sessions:     sessionFor(auth.Identity{UserID: "member1", Role: auth.RoleParticipant}),
			teamID:       "",
			expectedKind: errs.KindNotFound,
		},
	} {
		t.Run(tc.description, func(t *testing.T) {
			guard := auth.NewGuard(tc.sessions, teams)

			var err error
			if tc.requireLead {
				_, err = guard.RequireTeamLeader(context.Background(), tc.teamID)
			} else {
				_, err = guard.RequireTeamMember(context.Background(), tc.teamID)
			}

			if tc.expectedKind == errs.KindUnknown {
				assert.Nil(t, err)
				return
			}
			assert.Equal(t, tc.expectedKind, errs.KindOf(err))
		})
	}

	t.Run("Should let a static organizer session act for any team", func(t *testing.T) {
		session := auth.StaticSession{Identity: auth.Identity{UserID: "atlasman", Role: auth.RoleOrganizer}}
		guard := auth.NewGuard(session, teams)

		identity, err := guard.RequireTeamLeader(context.Background(), "team1")
		assert.Nil(t, err)
		assert.Equal(t, "atlasman", identity.UserID)
	})

	t.Run("Should surface unexpected team store failures", func(t *testing.T) {
		brokenTeams := mock.TeamStore{TeamFn: func(context.Context, string) (platform.Team, error) {
			return platform.Team{}, errors.New("connection reset")
		}}
		guard := auth.NewGuard(sessionFor(auth.Identity{UserID: "member1", Role: auth.RoleParticipant}), brokenTeams)

		_, err := guard.RequireTeamMember(context.Background(), "team1")
		assert.Equal(t, errs.KindUnknown, errs.KindOf(err))
		assert.NotNil(t, err)
	})
}

func TestStaticSession(t *testing.T) {
	t.Run("Should return the fixed identity", func(t *testing.T) {
		session := auth.StaticSession{Identity: auth.Identity{UserID: "atlasman", Role: auth.RoleOrganizer}}

		identity, err := session.Current(context.Background())
		assert.Nil(t, err)
		assert.Equal(t, auth.RoleOrganizer, identity.Role)
	})

	t.Run("Should fail without a user id", func(t *testing.T) {
		_, err := auth.StaticSession{}.Current(context.Background())
		assert.Equal(t, auth.ErrNoSession, err)
	})
}
