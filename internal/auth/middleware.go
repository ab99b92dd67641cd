package auth

import (
	"net/http"
	"strings"
	"time"

	"teamdesk/internal/session"
	"teamdesk/pkg/logger"

	"github.com/gin-gonic/gin"
)

const (
	// CookieName carries the session token for browser clients.
	CookieName = "token"

	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "
)

// TokenFromRequest locates the presented credential: cookie first, bearer
// header as fallback.
func TokenFromRequest(c *gin.Context) (string, bool) {
	if tok, err := c.Cookie(CookieName); err == nil && tok != "" {
		return tok, true
	}
	raw := strings.TrimSpace(c.GetHeader(authorizationHeader))
	if raw != "" && strings.HasPrefix(raw, bearerPrefix) {
		if tok := strings.TrimPrefix(raw, bearerPrefix); tok != "" {
			return tok, true
		}
	}
	return "", false
}

// RequireSession is the authentication gate: cryptographic verification
// followed by the registry liveness check. The registry step is what makes
// logout and forced sign-out effective before token expiry.
//
// Rejections carry a generic message; the real reason is logged with the
// subject id where one is known.
func RequireSession(m *Manager, reg session.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.FromGin(c)

		tok, ok := TokenFromRequest(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing credential"})
			return
		}

		claims, err := m.Verify(tok, time.Now())
		if err != nil {
			// Malformed, bad signature and expired are indistinguishable to
			// the caller to avoid an oracle.
			log.Warn("authentication rejected", "reason", err.Error())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		active, err := reg.IsActive(c.Request.Context(), claims.UserID, tok)
		if err != nil {
			log.Error("session registry unavailable", "user_id", claims.UserID, "err", err)
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "service unavailable"})
			return
		}
		if !active {
			log.Warn("authentication rejected", "user_id", claims.UserID, "reason", "session revoked or expired")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session revoked or expired"})
			return
		}

		ctx := WithIdentity(c.Request.Context(), Identity{
			UserID: claims.UserID,
			Role:   claims.Role,
			TeamID: claims.TeamID,
		})
		ctx = WithToken(ctx, tok)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
