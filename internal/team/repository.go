package team

import (
	"context"
	"database/sql"
	"errors"
)

// NOTE: This repository assumes the following tables exist:
// - teams (id, name UNIQUE, description, created_at)
// - user_details (team_id references the team scope)
// Team 0 and team 1 are seeded sentinel rows; see migrations/0001_init.sql.

func findTeamByID(ctx context.Context, db *sql.DB, id int64) (Team, error) {
	const q = `
SELECT id, name, COALESCE(description, ''), created_at
FROM teams
WHERE id = $1
`
	var t Team
	if err := db.QueryRowContext(ctx, q, id).Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Team{}, ErrNotFound
		}
		return Team{}, err
	}
	return t, nil
}

func insertTeam(ctx context.Context, db *sql.DB, name, description string) (Team, error) {
	const q = `
INSERT INTO teams (name, description)
VALUES ($1, $2)
RETURNING id, name, COALESCE(description, ''), created_at
`
	var t Team
	if err := db.QueryRowContext(ctx, q, name, description).Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt); err != nil {
		return Team{}, err
	}
	return t, nil
}

func updateTeamRow(ctx context.Context, db *sql.DB, id int64, name, description string) (Team, error) {
	const q = `
UPDATE teams
SET name = $2, description = $3
WHERE id = $1
RETURNING id, name, COALESCE(description, ''), created_at
`
	var t Team
	if err := db.QueryRowContext(ctx, q, id, name, description).Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Team{}, ErrNotFound
		}
		return Team{}, err
	}
	return t, nil
}

// reassignMembers moves every member of one team to another. Runs inside the
// delete transaction so a deleted team never strands its members.
func reassignMembers(ctx context.Context, tx *sql.Tx, fromTeamID, toTeamID int64) error {
	const q = `UPDATE user_details SET team_id = $2 WHERE team_id = $1`
	_, err := tx.ExecContext(ctx, q, fromTeamID, toTeamID)
	return err
}

func deleteTeamRow(ctx context.Context, tx *sql.Tx, id int64) (bool, error) {
	const q = `DELETE FROM teams WHERE id = $1`
	res, err := tx.ExecContext(ctx, q, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func listTeams(ctx context.Context, db *sql.DB) ([]Team, error) {
	const q = `
SELECT id, name, COALESCE(description, ''), created_at
FROM teams
ORDER BY id
`
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Team
	for rows.Next() {
		var t Team
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func listMembers(ctx context.Context, db *sql.DB, teamID int64) ([]Member, error) {
	const q = `
SELECT id, username, email, role
FROM user_details
WHERE team_id = $1
ORDER BY username
`
	rows, err := db.QueryContext(ctx, q, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.Username, &m.Email, &m.Role); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
