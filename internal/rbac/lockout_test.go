package rbac

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"teamdesk/internal/audit"
	"teamdesk/internal/auth"

	"github.com/gin-gonic/gin"
)

func guardAt(now *time.Time) *Guard {
	g := NewGuard()
	g.SetClock(func() time.Time { return *now })
	return g
}

func TestGuard_WarnThenBlock(t *testing.T) {
	now := time.Unix(1700000000, 0)
	g := guardAt(&now)

	if d := g.Check(1, false); d != DecisionWarn {
		t.Fatalf("attempt 1: expected warn, got %v", d)
	}
	if d := g.Check(1, false); d != DecisionBlock {
		t.Fatalf("attempt 2: expected block, got %v", d)
	}

	// Every attempt inside the window is rejected.
	now = now.Add(9 * time.Minute)
	if d := g.Check(1, false); d != DecisionBlock {
		t.Fatalf("expected block inside window, got %v", d)
	}
}

func TestGuard_BlockAppliesEvenToAdminRole(t *testing.T) {
	now := time.Unix(1700000000, 0)
	g := guardAt(&now)

	g.Check(1, false)
	g.Check(1, false)

	// A subject promoted to admin mid-block stays blocked until the window
	// lapses.
	if d := g.Check(1, true); d != DecisionBlock {
		t.Fatalf("expected block for admin inside window, got %v", d)
	}

	now = now.Add(11 * time.Minute)
	if d := g.Check(1, true); d != DecisionAllow {
		t.Fatalf("expected allow for admin after window, got %v", d)
	}
}

func TestGuard_AdminNeverTouchesCounter(t *testing.T) {
	now := time.Unix(1700000000, 0)
	g := guardAt(&now)

	for i := 0; i < 5; i++ {
		if d := g.Check(2, true); d != DecisionAllow {
			t.Fatalf("expected allow, got %v", d)
		}
	}
	// First non-admin attempt still starts at the warning.
	if d := g.Check(2, false); d != DecisionWarn {
		t.Fatalf("expected warn after admin attempts, got %v", d)
	}
}

func TestGuard_StateIsPerSubject(t *testing.T) {
	now := time.Unix(1700000000, 0)
	g := guardAt(&now)

	g.Check(1, false)
	g.Check(1, false)

	if d := g.Check(2, false); d != DecisionWarn {
		t.Fatalf("expected independent warn for second subject, got %v", d)
	}
}

func TestGuard_ConcurrentAttemptsWarnOnce(t *testing.T) {
	g := NewGuard()

	const n = 32
	results := make([]Decision, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			results[i] = g.Check(7, false)
		}(i)
	}
	wg.Wait()

	warns := 0
	for _, d := range results {
		if d == DecisionWarn {
			warns++
		}
	}
	if warns != 1 {
		t.Fatalf("expected exactly one warn, got %d", warns)
	}
}

func dashboardRouter(g *Guard, auditor *audit.Service, id auth.Identity) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/validate", func(c *gin.Context) {
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), id))
		c.Next()
	}, RequireDashboardAdmin(g, auditor), func(c *gin.Context) {
		c.JSON(200, gin.H{"success": true})
	})
	return r
}

func TestRequireDashboardAdmin_EscalatesForNonAdmin(t *testing.T) {
	g := NewGuard()
	events := audit.NewMemoryRepo()
	r := dashboardRouter(g, audit.NewService(events), auth.Identity{UserID: 9, Role: "user", TeamID: 1})

	for i, want := range []string{"admins only (warning issued)", "temporarily blocked", "temporarily blocked"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/validate", nil)
		r.ServeHTTP(w, req)
		if w.Code != 403 {
			t.Fatalf("attempt %d: expected 403, got %d", i+1, w.Code)
		}
		if body := w.Body.String(); !strings.Contains(body, want) {
			t.Fatalf("attempt %d: expected %q in body %q", i+1, want, body)
		}
	}

	// Blocked attempts land on the audit trail; the warning does not.
	evs := events.Events()
	if len(evs) != 2 {
		t.Fatalf("expected 2 audit events, got %d", len(evs))
	}
	for _, ev := range evs {
		if ev.Type != audit.EventTypeLockoutBlock || ev.ActorUserID != 9 {
			t.Fatalf("unexpected audit event: %+v", ev)
		}
	}
}

func TestRequireDashboardAdmin_AdminPasses(t *testing.T) {
	g := NewGuard()
	r := dashboardRouter(g, nil, auth.Identity{UserID: 10, Role: "admin", TeamID: 0})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/validate", nil)
	r.ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
