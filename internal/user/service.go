package user

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"teamdesk/internal/rbac"
	"teamdesk/internal/team"
	"teamdesk/pkg/utils"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrAlreadyExists      = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidReference   = errors.New("referenced team does not exist")
	ErrInvalidOperation   = errors.New("invalid operation")
	ErrForbidden          = errors.New("operation not permitted")
)

// Service provides user management.
//
// Team-assignment invariants (enforced here, at mutation time):
// - role=admin forces team 0, always.
// - a non-admin with no team (or team 0) lands in the default team.
// - any other referenced team must exist.
// - a role change to or from admin moves the team in the same statement.
type Service struct {
	db    *sql.DB
	clock func() time.Time
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db, clock: time.Now}
}

type CreateRequest struct {
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Password string    `json:"password"`
	Role     rbac.Role `json:"role"`
	TeamID   int64     `json:"team_id"`
}

// resolveTeam applies the creation-time team invariant. The returned bool
// reports whether the chosen team still needs an existence check.
func resolveTeam(role rbac.Role, requested int64) (int64, bool) {
	if role.IsAdmin() {
		return team.AdminTeamID, false
	}
	if requested == 0 {
		return team.DefaultTeamID, false
	}
	return requested, requested != team.DefaultTeamID
}

// teamForRoleChange picks the team that must accompany a role change.
func teamForRoleChange(current User, newRole rbac.Role) int64 {
	if newRole.IsAdmin() {
		return team.AdminTeamID
	}
	if current.Role.IsAdmin() {
		// Leaving the administrative scope lands in the default team.
		return team.DefaultTeamID
	}
	return current.TeamID
}

func (s *Service) Create(ctx context.Context, req CreateRequest, createdBy int64) (User, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return User{}, ErrInvalidArgument
	}
	if len(req.Password) < MinPasswordLen {
		return User{}, ErrInvalidArgument
	}
	if req.Role == "" {
		req.Role = rbac.RoleUser
	}
	if !req.Role.Valid() {
		return User{}, ErrInvalidArgument
	}

	teamID, check := resolveTeam(req.Role, req.TeamID)
	if check {
		ok, err := teamExists(ctx, s.db, teamID)
		if err != nil {
			return User{}, err
		}
		if !ok {
			return User{}, ErrInvalidReference
		}
	}

	exists, err := userExists(ctx, s.db, req.Username, req.Email)
	if err != nil {
		return User{}, err
	}
	if exists {
		return User{}, ErrAlreadyExists
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return User{}, err
	}

	u := User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         req.Role,
		TeamID:       teamID,
	}
	if createdBy != 0 {
		u.CreatedBy = sql.NullInt64{Int64: createdBy, Valid: true}
	}
	return insertUser(ctx, s.db, u)
}

// Authenticate verifies a username/password pair. Unknown user and wrong
// password are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, username, password string) (User, error) {
	if username == "" || password == "" {
		return User{}, ErrInvalidCredentials
	}
	u, err := findUserByUsername(ctx, s.db, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if !CheckPassword(password, u.PasswordHash) {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (User, error) {
	return findUserByID(ctx, s.db, id)
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return listUsers(ctx, s.db)
}

func (s *Service) ListByTeam(ctx context.Context, teamID int64) ([]User, error) {
	return listUsersByTeam(ctx, s.db, teamID)
}

// UpdateRole changes a subject's role. The matching team reassignment
// happens in the same UPDATE; a role is never changed on its own.
func (s *Service) UpdateRole(ctx context.Context, id int64, role rbac.Role) (User, error) {
	if !role.Valid() {
		return User{}, ErrInvalidArgument
	}

	var out User
	err := utils.WithTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		cur, err := findUserByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		out, err = updateRoleAndTeam(ctx, tx, id, string(role), teamForRoleChange(cur, role))
		return err
	})
	if err != nil {
		return User{}, err
	}
	return out, nil
}

// validateTeamMove applies the scope rule to an explicit team change:
// admins stay in team 0 and nobody else may enter it.
func validateTeamMove(current User, teamID int64) error {
	if current.Role.IsAdmin() && teamID != team.AdminTeamID {
		return ErrInvalidOperation
	}
	if !current.Role.IsAdmin() && teamID == team.AdminTeamID {
		return ErrInvalidOperation
	}
	return nil
}

// UpdateTeam moves a subject to another team. The row is locked for the
// read-check-update so a concurrent role change cannot slip a fresh admin
// out of team 0.
func (s *Service) UpdateTeam(ctx context.Context, id, teamID int64) (User, error) {
	if teamID != team.AdminTeamID {
		ok, err := teamExists(ctx, s.db, teamID)
		if err != nil {
			return User{}, err
		}
		if !ok {
			return User{}, ErrInvalidReference
		}
	}

	var out User
	err := utils.WithTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		cur, err := findUserByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := validateTeamMove(cur, teamID); err != nil {
			return err
		}
		out, err = updateUserTeam(ctx, tx, id, teamID)
		return err
	})
	if err != nil {
		return User{}, err
	}
	return out, nil
}

// Delete removes a user. A subject can never delete itself and admin
// accounts are not deletable through this surface.
func (s *Service) Delete(ctx context.Context, id, requesterID int64) error {
	if id == requesterID {
		return ErrForbidden
	}

	target, err := findUserByID(ctx, s.db, id)
	if err != nil {
		return err
	}
	if target.Role.IsAdmin() {
		return ErrForbidden
	}

	deleted, err := deleteUserRow(ctx, s.db, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}
