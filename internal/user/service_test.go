package user

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"teamdesk/internal/rbac"
	"teamdesk/internal/team"
)

// The mutation paths are Postgres-backed; end-to-end coverage belongs to
// integration tests against a real database. What we can safely unit-test
// without one:
// - the team-assignment invariant (resolveTeam, teamForRoleChange)
// - request validation ordering, which runs before any query
// - the self-protection checks on Delete

func TestResolveTeam(t *testing.T) {
	cases := []struct {
		role      rbac.Role
		requested int64
		want      int64
		check     bool
	}{
		{rbac.RoleAdmin, 0, team.AdminTeamID, false},
		{rbac.RoleAdmin, 5, team.AdminTeamID, false}, // supplied team ignored for admins
		{rbac.RoleUser, 0, team.DefaultTeamID, false},
		{rbac.RoleUser, 1, team.DefaultTeamID, false},
		{rbac.RoleModerator, 0, team.DefaultTeamID, false},
		{rbac.RoleUser, 7, 7, true}, // arbitrary team needs an existence check
	}
	for _, c := range cases {
		got, check := resolveTeam(c.role, c.requested)
		if got != c.want || check != c.check {
			t.Fatalf("resolveTeam(%v, %d) = (%d, %v), want (%d, %v)", c.role, c.requested, got, check, c.want, c.check)
		}
	}
}

func TestTeamForRoleChange(t *testing.T) {
	// promote to admin: always team 0
	if got := teamForRoleChange(User{Role: rbac.RoleUser, TeamID: 4}, rbac.RoleAdmin); got != team.AdminTeamID {
		t.Fatalf("promotion: got team %d, want %d", got, team.AdminTeamID)
	}
	// demote from admin: lands in default team
	if got := teamForRoleChange(User{Role: rbac.RoleAdmin, TeamID: 0}, rbac.RoleUser); got != team.DefaultTeamID {
		t.Fatalf("demotion: got team %d, want %d", got, team.DefaultTeamID)
	}
	// non-admin to non-admin: team untouched
	if got := teamForRoleChange(User{Role: rbac.RoleUser, TeamID: 4}, rbac.RoleModerator); got != 4 {
		t.Fatalf("lateral change: got team %d, want 4", got)
	}
}

func TestCreate_RejectsInvalidArgs(t *testing.T) {
	svc := NewService((*sql.DB)(nil))
	ctx := context.Background()

	cases := []CreateRequest{
		{Email: "a@b.c", Password: "secret1"},                                        // missing username
		{Username: "a", Password: "secret1"},                                        // missing email
		{Username: "a", Email: "a@b.c"},                                             // missing password
		{Username: "a", Email: "a@b.c", Password: "short"},                          // below minimum length
		{Username: "a", Email: "a@b.c", Password: "secret1", Role: rbac.Role("su")}, // out-of-enum role
	}
	for i, req := range cases {
		if _, err := svc.Create(ctx, req, 1); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("case %d: expected ErrInvalidArgument, got %v", i, err)
		}
	}
}

func TestAuthenticate_RejectsEmptyInput(t *testing.T) {
	svc := NewService((*sql.DB)(nil))

	if _, err := svc.Authenticate(context.Background(), "", "pw"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "alice", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestUpdateRole_RejectsUnknownRole(t *testing.T) {
	svc := NewService((*sql.DB)(nil))

	if _, err := svc.UpdateRole(context.Background(), 1, rbac.Role("root")); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestValidateTeamMove(t *testing.T) {
	// admins never leave team 0
	if err := validateTeamMove(User{Role: rbac.RoleAdmin, TeamID: team.AdminTeamID}, 3); !errors.Is(err, ErrInvalidOperation) {
		t.Fatalf("admin leaving team 0: expected ErrInvalidOperation, got %v", err)
	}
	// non-admins never enter team 0
	if err := validateTeamMove(User{Role: rbac.RoleUser, TeamID: 2}, team.AdminTeamID); !errors.Is(err, ErrInvalidOperation) {
		t.Fatalf("user entering team 0: expected ErrInvalidOperation, got %v", err)
	}
	if err := validateTeamMove(User{Role: rbac.RoleUser, TeamID: 2}, 3); err != nil {
		t.Fatalf("ordinary move: expected nil, got %v", err)
	}
	if err := validateTeamMove(User{Role: rbac.RoleAdmin, TeamID: team.AdminTeamID}, team.AdminTeamID); err != nil {
		t.Fatalf("admin staying put: expected nil, got %v", err)
	}
}

func TestDelete_SelfDeleteForbidden(t *testing.T) {
	svc := NewService((*sql.DB)(nil))

	// The self-check runs before any store access.
	if err := svc.Delete(context.Background(), 42, 42); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
