package team

import "time"

const (
	// AdminTeamID is the reserved administrative scope. It is not an
	// ordinary team: it can never be deleted and admins always belong to it.
	AdminTeamID int64 = 0

	// DefaultTeamID is where non-admin users land when no team is given and
	// where members of a deleted team are reassigned.
	DefaultTeamID int64 = 1
)

type Team struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Member is the user summary exposed on team membership listings.
type Member struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}
