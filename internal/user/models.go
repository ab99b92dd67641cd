package user

import (
	"database/sql"
	"time"

	"teamdesk/internal/rbac"
)

type User struct {
	ID       int64     `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Role     rbac.Role `json:"role"`
	TeamID   int64     `json:"team_id"`

	// PasswordHash never leaves the service boundary.
	PasswordHash string `json:"-"`

	CreatedBy sql.NullInt64 `json:"-"`
	CreatedAt time.Time     `json:"created_at"`
}
