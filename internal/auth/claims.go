package auth

import "github.com/golang-jwt/jwt/v5"

// Claims are the only supported JWT claims shape for this service.
// The role and team_id values are a snapshot taken at issue time; the
// authoritative copies live in the user store and may drift for at most the
// token lifetime.
type Claims struct {
	jwt.RegisteredClaims

	UserID int64  `json:"user_id"`
	Role   string `json:"role"`
	TeamID int64  `json:"team_id"`
}
