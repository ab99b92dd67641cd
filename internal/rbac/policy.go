package rbac

import (
	"net/http"

	"teamdesk/internal/auth"
	"teamdesk/pkg/logger"

	"github.com/gin-gonic/gin"
)

// HasRole is an exact match; admin gets no implicit pass here.
func HasRole(role, required Role) bool { return role == required }

// HasAnyRole is a membership test over the allowed set.
func HasAnyRole(role Role, allowed ...Role) bool {
	for _, a := range allowed {
		if role == a {
			return true
		}
	}
	return false
}

// CanAccessTeam applies the team-scope rule: admin bypasses, everyone else
// may only touch resources owned by their own team.
func CanAccessTeam(role Role, subjectTeamID, resourceTeamID int64) bool {
	if role.IsAdmin() {
		return true
	}
	return subjectTeamID == resourceTeamID
}

// RequireRole allows only an exact role match.
func RequireRole(required Role) gin.HandlerFunc {
	return requireRoles(required)
}

// RequireAnyRole allows access if the caller has any of the provided roles.
func RequireAnyRole(allowed ...Role) gin.HandlerFunc {
	return requireRoles(allowed...)
}

func requireRoles(allowed ...Role) gin.HandlerFunc {
	allowedSet := make(map[Role]struct{}, len(allowed))
	for _, r := range allowed {
		allowedSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		id, err := auth.IdentityFrom(c.Request.Context())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing credential"})
			return
		}

		role, ok := ParseRole(id.Role)
		if !ok {
			// A claim carrying an unknown role never passes policy.
			logger.FromGin(c).Warn("authorization rejected", "user_id", id.UserID, "reason", "unknown role", "role", id.Role)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		if _, ok := allowedSet[role]; !ok {
			logger.FromGin(c).Warn("authorization rejected", "user_id", id.UserID, "reason", "insufficient role", "role", id.Role)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
