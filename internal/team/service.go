package team

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"teamdesk/internal/rbac"
	"teamdesk/pkg/utils"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound         = errors.New("team not found")
	ErrNameTaken        = errors.New("team name already exists")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrInvalidOperation = errors.New("invalid operation")
)

// Service provides team operations.
//
// Structural invariants:
// - Team 0 is the administrative scope; team 1 is the default team. Neither
//   can be deleted.
// - Deleting a team reassigns its members to the default team in the same
//   transaction as the row removal.
type Service struct {
	db    *sql.DB
	clock func() time.Time
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db, clock: time.Now}
}

func (s *Service) Get(ctx context.Context, id int64) (Team, error) {
	return findTeamByID(ctx, s.db, id)
}

func (s *Service) Create(ctx context.Context, name, description string) (Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Team{}, ErrInvalidArgument
	}
	t, err := insertTeam(ctx, s.db, name, description)
	if err != nil {
		return Team{}, mapUniqueViolation(err)
	}
	return t, nil
}

func (s *Service) Update(ctx context.Context, id int64, name, description string) (Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Team{}, ErrInvalidArgument
	}
	t, err := updateTeamRow(ctx, s.db, id, name, description)
	if err != nil {
		return Team{}, mapUniqueViolation(err)
	}
	return t, nil
}

// Delete removes a team after moving every member to the default team.
// The sentinel teams are never deletable: team 0 is the administrative
// scope and team 1 is the reassignment target the cascade depends on.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id == AdminTeamID || id == DefaultTeamID {
		return ErrInvalidOperation
	}

	return utils.WithTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		if err := reassignMembers(ctx, tx, id, DefaultTeamID); err != nil {
			return err
		}
		deleted, err := deleteTeamRow(ctx, tx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return ErrNotFound
		}
		return nil
	})
}

func (s *Service) All(ctx context.Context) ([]Team, error) {
	return listTeams(ctx, s.db)
}

// Accessible returns the teams visible to a subject: all of them for an
// admin, otherwise just their own.
func (s *Service) Accessible(ctx context.Context, role rbac.Role, teamID int64) ([]Team, error) {
	if role.IsAdmin() {
		return listTeams(ctx, s.db)
	}
	t, err := findTeamByID(ctx, s.db, teamID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return []Team{t}, nil
}

func (s *Service) Members(ctx context.Context, teamID int64) ([]Member, error) {
	if _, err := findTeamByID(ctx, s.db, teamID); err != nil {
		return nil, err
	}
	return listMembers(ctx, s.db, teamID)
}

func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrNameTaken
	}
	return err
}
