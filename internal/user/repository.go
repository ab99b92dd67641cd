package user

import (
	"context"
	"database/sql"
	"errors"

	"teamdesk/internal/rbac"
)

// NOTE: This repository assumes the following tables exist:
// - user_details (id, username UNIQUE, email UNIQUE, password_hash, role,
//   team_id, created_by, created_at)
// - teams (referenced by team existence checks)
// See migrations/0001_init.sql.

const userColumns = `id, username, email, password_hash, role, team_id, created_by, created_at`

func scanUser(row *sql.Row) (User, error) {
	var u User
	var role string
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role, &u.TeamID, &u.CreatedBy, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	u.Role = rbac.Role(role)
	return u, nil
}

func findUserByID(ctx context.Context, db *sql.DB, id int64) (User, error) {
	const q = `SELECT ` + userColumns + ` FROM user_details WHERE id = $1`
	return scanUser(db.QueryRowContext(ctx, q, id))
}

func findUserByIDForUpdate(ctx context.Context, tx *sql.Tx, id int64) (User, error) {
	// Lock the row so role and team move together under concurrent updates.
	const q = `SELECT ` + userColumns + ` FROM user_details WHERE id = $1 FOR UPDATE`
	return scanUser(tx.QueryRowContext(ctx, q, id))
}

func findUserByUsername(ctx context.Context, db *sql.DB, username string) (User, error) {
	const q = `SELECT ` + userColumns + ` FROM user_details WHERE username = $1`
	return scanUser(db.QueryRowContext(ctx, q, username))
}

func userExists(ctx context.Context, db *sql.DB, username, email string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM user_details WHERE username = $1 OR email = $2)`
	var exists bool
	if err := db.QueryRowContext(ctx, q, username, email).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func teamExists(ctx context.Context, db *sql.DB, teamID int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM teams WHERE id = $1)`
	var exists bool
	if err := db.QueryRowContext(ctx, q, teamID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func insertUser(ctx context.Context, db *sql.DB, u User) (User, error) {
	const q = `
INSERT INTO user_details (username, email, password_hash, role, team_id, created_by)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + userColumns
	return scanUser(db.QueryRowContext(ctx, q, u.Username, u.Email, u.PasswordHash, string(u.Role), u.TeamID, u.CreatedBy))
}

// updateRoleAndTeam sets both columns in one statement, keeping the
// role/team pairing atomic.
func updateRoleAndTeam(ctx context.Context, tx *sql.Tx, id int64, role string, teamID int64) (User, error) {
	const q = `
UPDATE user_details
SET role = $2, team_id = $3
WHERE id = $1
RETURNING ` + userColumns
	return scanUser(tx.QueryRowContext(ctx, q, id, role, teamID))
}

func updateUserTeam(ctx context.Context, tx *sql.Tx, id, teamID int64) (User, error) {
	const q = `
UPDATE user_details
SET team_id = $2
WHERE id = $1
RETURNING ` + userColumns
	return scanUser(tx.QueryRowContext(ctx, q, id, teamID))
}

func deleteUserRow(ctx context.Context, db *sql.DB, id int64) (bool, error) {
	const q = `DELETE FROM user_details WHERE id = $1`
	res, err := db.ExecContext(ctx, q, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func listUsers(ctx context.Context, db *sql.DB) ([]User, error) {
	const q = `SELECT ` + userColumns + ` FROM user_details ORDER BY created_at DESC`
	return queryUsers(ctx, db, q)
}

func listUsersByTeam(ctx context.Context, db *sql.DB, teamID int64) ([]User, error) {
	const q = `SELECT ` + userColumns + ` FROM user_details WHERE team_id = $1 ORDER BY username`
	return queryUsers(ctx, db, q, teamID)
}

func queryUsers(ctx context.Context, db *sql.DB, q string, args ...any) ([]User, error) {
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []User
	for rows.Next() {
		var u User
		var role string
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role, &u.TeamID, &u.CreatedBy, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.Role = rbac.Role(role)
		out = append(out, u)
	}
	return out, rows.Err()
}
