package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"teamdesk/internal/auth"

	"github.com/gin-gonic/gin"
)

func TestParseRole(t *testing.T) {
	if r, ok := ParseRole("admin"); !ok || r != RoleAdmin {
		t.Fatalf("expected admin, got %v ok=%v", r, ok)
	}
	if _, ok := ParseRole("superuser"); ok {
		t.Fatalf("expected unknown role rejected")
	}
	if _, ok := ParseRole(""); ok {
		t.Fatalf("expected empty role rejected")
	}
}

func TestCanAccessTeam(t *testing.T) {
	// user on team 1 cannot touch team 2, can touch team 1
	if CanAccessTeam(RoleUser, 1, 2) {
		t.Fatalf("expected cross-team denial")
	}
	if !CanAccessTeam(RoleUser, 1, 1) {
		t.Fatalf("expected own-team access")
	}
	// admin bypasses team scoping entirely
	if !CanAccessTeam(RoleAdmin, 0, 2) {
		t.Fatalf("expected admin bypass")
	}
}

func roleRouter(identity *auth.Identity, mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", func(c *gin.Context) {
		if identity != nil {
			c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), *identity))
		}
		c.Next()
	}, mw, func(c *gin.Context) {
		c.Status(200)
	})
	return r
}

func get(r *gin.Engine) int {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRequireRole_ExactMatch(t *testing.T) {
	r := roleRouter(&auth.Identity{UserID: 1, Role: "admin", TeamID: 0}, RequireRole(RoleAdmin))
	if code := get(r); code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}

	r = roleRouter(&auth.Identity{UserID: 2, Role: "user", TeamID: 1}, RequireRole(RoleAdmin))
	if code := get(r); code != 403 {
		t.Fatalf("expected 403, got %d", code)
	}
}

func TestRequireAnyRole_Membership(t *testing.T) {
	r := roleRouter(&auth.Identity{UserID: 3, Role: "moderator", TeamID: 1}, RequireAnyRole(RoleAdmin, RoleModerator))
	if code := get(r); code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}

	r = roleRouter(&auth.Identity{UserID: 4, Role: "user", TeamID: 1}, RequireAnyRole(RoleAdmin, RoleModerator))
	if code := get(r); code != 403 {
		t.Fatalf("expected 403, got %d", code)
	}
}

func TestRequireRole_MissingIdentity(t *testing.T) {
	r := roleRouter(nil, RequireRole(RoleAdmin))
	if code := get(r); code != 401 {
		t.Fatalf("expected 401, got %d", code)
	}
}

func TestRequireRole_UnknownClaimRole(t *testing.T) {
	// A forged or stale claim with an out-of-enum role never passes.
	r := roleRouter(&auth.Identity{UserID: 5, Role: "root", TeamID: 0}, RequireRole(RoleAdmin))
	if code := get(r); code != 403 {
		t.Fatalf("expected 403, got %d", code)
	}
}
