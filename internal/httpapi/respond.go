package httpapi

import (
	"errors"
	"net/http"

	"teamdesk/internal/team"
	"teamdesk/internal/user"
	"teamdesk/pkg/logger"

	"github.com/gin-gonic/gin"
)

// abortError maps service errors onto the public error vocabulary. Internal
// error text never reaches the caller; unexpected failures are logged and
// reported generically.
func abortError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, user.ErrInvalidCredentials):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, user.ErrForbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, user.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "user not found"})
	case errors.Is(err, team.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "team not found"})
	case errors.Is(err, user.ErrAlreadyExists):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "user already exists"})
	case errors.Is(err, team.ErrNameTaken):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "team name already exists"})
	case errors.Is(err, user.ErrInvalidReference):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "referenced team does not exist"})
	case errors.Is(err, user.ErrInvalidOperation), errors.Is(err, team.ErrInvalidOperation):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "operation violates a structural invariant"})
	case errors.Is(err, user.ErrInvalidArgument), errors.Is(err, team.ErrInvalidArgument):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid argument"})
	default:
		logger.FromGin(c).Error("request failed", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
