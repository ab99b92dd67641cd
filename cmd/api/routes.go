package main

import (
	"teamdesk/internal/httpapi"
	"teamdesk/internal/rbac"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, sessionMW gin.HandlerFunc, guard *rbac.Guard) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	// AUTH routes. Login is the only public endpoint; logout must present a
	// live session so the registry record it closes is its own.
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/login", h.Login)
		authGroup.POST("/logout", sessionMW, h.Logout)
		authGroup.POST("/register", sessionMW, rbac.RequireRole(rbac.RoleAdmin), h.Register)
		authGroup.GET("/me", sessionMW, h.Me)
	}

	// USER management. Admin-only except /me.
	users := api.Group("/users")
	users.Use(sessionMW)
	{
		users.GET("/me", h.Me)

		admin := users.Group("")
		admin.Use(rbac.RequireRole(rbac.RoleAdmin))
		{
			admin.GET("", h.ListUsers)
			admin.PATCH("/:id/role", h.UpdateUserRole)
			admin.PATCH("/:id/team", h.UpdateUserTeam)
			admin.DELETE("/:id", h.DeleteUser)
			admin.GET("/teams/:id/users", h.UsersByTeam)
		}
	}

	// TEAM routes. Reads are team-scoped inside the handlers; mutations are
	// admin-only.
	teams := api.Group("/teams")
	teams.Use(sessionMW)
	{
		teams.GET("/accessible", h.AccessibleTeams)
		teams.GET("/:id", h.GetTeam)
		teams.GET("/:id/members", h.TeamMembers)

		admin := teams.Group("")
		admin.Use(rbac.RequireRole(rbac.RoleAdmin))
		{
			admin.GET("", h.ListTeams)
			admin.POST("", h.CreateTeam)
			admin.PUT("/:id", h.UpdateTeam)
			admin.DELETE("/:id", h.DeleteTeam)
		}
	}

	// Dashboard access validation: lockout guard instead of a plain role
	// check, so repeated non-admin probing escalates to a timed block.
	protected := api.Group("/protected")
	protected.Use(sessionMW)
	{
		protected.GET("/validate-dashboard-access", rbac.RequireDashboardAdmin(guard, h.Audit), h.ValidateDashboardAccess)
	}
}
