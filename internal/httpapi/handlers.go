package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"teamdesk/internal/audit"
	"teamdesk/internal/auth"
	"teamdesk/internal/rbac"
	"teamdesk/internal/team"
	"teamdesk/internal/user"
	"teamdesk/pkg/logger"

	"github.com/gin-gonic/gin"
)

// UserStore is the user management surface the handlers depend on.
// *user.Service satisfies it; tests substitute fakes.
type UserStore interface {
	Create(ctx context.Context, req user.CreateRequest, createdBy int64) (user.User, error)
	Authenticate(ctx context.Context, username, password string) (user.User, error)
	GetByID(ctx context.Context, id int64) (user.User, error)
	List(ctx context.Context) ([]user.User, error)
	ListByTeam(ctx context.Context, teamID int64) ([]user.User, error)
	UpdateRole(ctx context.Context, id int64, role rbac.Role) (user.User, error)
	UpdateTeam(ctx context.Context, id, teamID int64) (user.User, error)
	Delete(ctx context.Context, id, requesterID int64) error
}

// TeamStore is the team management surface the handlers depend on.
type TeamStore interface {
	Get(ctx context.Context, id int64) (team.Team, error)
	Create(ctx context.Context, name, description string) (team.Team, error)
	Update(ctx context.Context, id int64, name, description string) (team.Team, error)
	Delete(ctx context.Context, id int64) error
	All(ctx context.Context) ([]team.Team, error)
	Accessible(ctx context.Context, role rbac.Role, teamID int64) ([]team.Team, error)
	Members(ctx context.Context, teamID int64) ([]team.Member, error)
}

// SessionRegistry matches session.Registry; redeclared here so handlers name
// only what they use.
type SessionRegistry interface {
	Open(ctx context.Context, userID int64, token string, ttl time.Duration) error
	Close(ctx context.Context, userID int64, token string) error
}

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Auth     *auth.Manager
	Sessions SessionRegistry
	Users    UserStore
	Teams    TeamStore
	Audit    *audit.Service

	CookieSecure bool
}

func (h Handlers) auditLog(c *gin.Context, fn func(ctx context.Context) error) {
	if h.Audit == nil {
		return
	}
	if err := fn(c.Request.Context()); err != nil {
		logger.FromGin(c).Warn("audit append failed", "err", err)
	}
}

// --- Auth ---

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login verifies credentials, mints a token and opens the session record.
// The registry write is best-effort: its failure degrades revocation for
// this session but does not fail a login that already verified.
func (h Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.Username == "" || req.Password == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "username and password required"})
		return
	}

	u, err := h.Users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.auditLog(c, func(ctx context.Context) error {
			return h.Audit.LogLoginFailed(ctx, req.Username, c.ClientIP())
		})
		abortError(c, err)
		return
	}

	now := time.Now()
	tok, err := h.Auth.Issue(now, u.ID, string(u.Role), u.TeamID)
	if err != nil {
		abortError(c, err)
		return
	}

	if err := h.Sessions.Open(c.Request.Context(), u.ID, tok, h.Auth.TTL()); err != nil {
		// Login still succeeds; revocation will not work for this session.
		logger.FromGin(c).Error("session open failed", "user_id", u.ID, "err", err)
	}

	h.auditLog(c, func(ctx context.Context) error {
		return h.Audit.LogLogin(ctx, u.ID, string(u.Role), c.ClientIP())
	})

	c.SetCookie(auth.CookieName, tok, int(h.Auth.TTL().Seconds()), "/", "", h.CookieSecure, true)

	// Team fields reflect the authoritative store at login time, not the
	// claim snapshot.
	resp := gin.H{"user": u, "token": tok}
	if t, err := h.Teams.Get(c.Request.Context(), u.TeamID); err == nil {
		resp["team"] = t
	}
	c.JSON(http.StatusOK, resp)
}

// Logout closes the presented session record. Runs behind the session gate,
// so the identity and raw token are already in context.
func (h Handlers) Logout(c *gin.Context) {
	id, err := auth.IdentityFrom(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing credential"})
		return
	}
	tok, err := auth.TokenFrom(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "no active session"})
		return
	}

	if err := h.Sessions.Close(c.Request.Context(), id.UserID, tok); err != nil {
		logger.FromGin(c).Error("session close failed", "user_id", id.UserID, "err", err)
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "service unavailable"})
		return
	}

	h.auditLog(c, func(ctx context.Context) error {
		return h.Audit.LogLogout(ctx, id.UserID, c.ClientIP())
	})

	c.SetCookie(auth.CookieName, "", -1, "/", "", h.CookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the authoritative user record, not the claim snapshot.
func (h Handlers) Me(c *gin.Context) {
	id, err := auth.IdentityFrom(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing credential"})
		return
	}
	u, err := h.Users.GetByID(c.Request.Context(), id.UserID)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

// Register creates a user. Admin-only; the route applies the role check.
func (h Handlers) Register(c *gin.Context) {
	id, err := auth.IdentityFrom(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing credential"})
		return
	}

	var req user.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	u, err := h.Users.Create(c.Request.Context(), req, id.UserID)
	if err != nil {
		abortError(c, err)
		return
	}

	h.auditLog(c, func(ctx context.Context) error {
		return h.Audit.LogAdminAction(ctx, id.UserID, id.Role, c.ClientIP(), "user registered", u.ID, u.TeamID)
	})

	c.JSON(http.StatusCreated, gin.H{"user": u})
}

// --- User management (admin) ---

func (h Handlers) ListUsers(c *gin.Context) {
	users, err := h.Users.List(c.Request.Context())
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

type updateRoleRequest struct {
	Role string `json:"role"`
}

func (h Handlers) UpdateUserRole(c *gin.Context) {
	targetID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req updateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	role, ok := rbac.ParseRole(req.Role)
	if !ok {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid role"})
		return
	}

	u, err := h.Users.UpdateRole(c.Request.Context(), targetID, role)
	if err != nil {
		abortError(c, err)
		return
	}

	if id, err := auth.IdentityFrom(c.Request.Context()); err == nil {
		h.auditLog(c, func(ctx context.Context) error {
			return h.Audit.LogAdminAction(ctx, id.UserID, id.Role, c.ClientIP(), "role changed to "+string(role), u.ID, u.TeamID)
		})
	}

	c.JSON(http.StatusOK, gin.H{"user": u})
}

type updateTeamRequest struct {
	TeamID int64 `json:"team_id"`
}

func (h Handlers) UpdateUserTeam(c *gin.Context) {
	targetID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req updateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	u, err := h.Users.UpdateTeam(c.Request.Context(), targetID, req.TeamID)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

func (h Handlers) DeleteUser(c *gin.Context) {
	targetID, ok := paramID(c, "id")
	if !ok {
		return
	}
	id, err := auth.IdentityFrom(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing credential"})
		return
	}

	if err := h.Users.Delete(c.Request.Context(), targetID, id.UserID); err != nil {
		abortError(c, err)
		return
	}

	h.auditLog(c, func(ctx context.Context) error {
		return h.Audit.LogAdminAction(ctx, id.UserID, id.Role, c.ClientIP(), "user deleted", targetID, 0)
	})

	c.JSON(http.StatusOK, gin.H{"message": "user deleted"})
}

func (h Handlers) UsersByTeam(c *gin.Context) {
	teamID, ok := paramID(c, "id")
	if !ok {
		return
	}
	users, err := h.Users.ListByTeam(c.Request.Context(), teamID)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// --- Teams ---

func (h Handlers) AccessibleTeams(c *gin.Context) {
	id, err := auth.IdentityFrom(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing credential"})
		return
	}
	role, _ := rbac.ParseRole(id.Role)
	teams, err := h.Teams.Accessible(c.Request.Context(), role, id.TeamID)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"teams": teams})
}

// GetTeam is team-scoped: non-admins may only read their own team.
func (h Handlers) GetTeam(c *gin.Context) {
	teamID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !h.requireTeamScope(c, teamID) {
		return
	}
	t, err := h.Teams.Get(c.Request.Context(), teamID)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"team": t})
}

func (h Handlers) TeamMembers(c *gin.Context) {
	teamID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !h.requireTeamScope(c, teamID) {
		return
	}
	members, err := h.Teams.Members(c.Request.Context(), teamID)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

func (h Handlers) ListTeams(c *gin.Context) {
	teams, err := h.Teams.All(c.Request.Context())
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"teams": teams})
}

type teamRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h Handlers) CreateTeam(c *gin.Context) {
	var req teamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	t, err := h.Teams.Create(c.Request.Context(), req.Name, req.Description)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"team": t})
}

func (h Handlers) UpdateTeam(c *gin.Context) {
	teamID, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req teamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	t, err := h.Teams.Update(c.Request.Context(), teamID, req.Name, req.Description)
	if err != nil {
		abortError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"team": t})
}

func (h Handlers) DeleteTeam(c *gin.Context) {
	teamID, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.Teams.Delete(c.Request.Context(), teamID); err != nil {
		abortError(c, err)
		return
	}

	if id, err := auth.IdentityFrom(c.Request.Context()); err == nil {
		h.auditLog(c, func(ctx context.Context) error {
			return h.Audit.LogAdminAction(ctx, id.UserID, id.Role, c.ClientIP(), "team deleted, members moved to default team", 0, teamID)
		})
	}

	c.JSON(http.StatusOK, gin.H{"message": "team deleted, members moved to default team"})
}

// --- Protected dashboard surface ---

// ValidateDashboardAccess runs behind the lockout guard; reaching it means
// the attempt was allowed.
func (h Handlers) ValidateDashboardAccess(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// --- helpers ---

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id < 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// requireTeamScope enforces the cross-team rule for read surfaces.
func (h Handlers) requireTeamScope(c *gin.Context, resourceTeamID int64) bool {
	id, err := auth.IdentityFrom(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing credential"})
		return false
	}
	role, _ := rbac.ParseRole(id.Role)
	if !rbac.CanAccessTeam(role, id.TeamID, resourceTeamID) {
		logger.FromGin(c).Warn("authorization rejected", "user_id", id.UserID, "reason", "cross-team access", "team_id", resourceTeamID)
		h.auditLog(c, func(ctx context.Context) error {
			return h.Audit.LogAccessDenied(ctx, id.UserID, id.Role, c.ClientIP(), resourceTeamID)
		})
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "cross-team access denied"})
		return false
	}
	return true
}
