package rbac

import (
	"net/http"
	"sync"
	"time"

	"teamdesk/internal/audit"
	"teamdesk/internal/auth"
	"teamdesk/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Decision is the lockout guard's verdict for one access attempt.
type Decision int

const (
	DecisionAllow Decision = iota
	DecisionWarn
	DecisionBlock
)

func (d Decision) String() string {
	switch d {
	case DecisionAllow:
		return "allow"
	case DecisionWarn:
		return "warn"
	case DecisionBlock:
		return "block"
	default:
		return "unknown"
	}
}

// DefaultBlockDuration is how long repeated unauthorized probing locks a
// subject out of the guarded surface.
const DefaultBlockDuration = 10 * time.Minute

type lockoutEntry struct {
	count        int
	blockedUntil time.Time
}

// Guard tracks repeated unauthorized privileged-access attempts per subject
// and escalates to a timed block. State is process-local and resets on
// restart; it is a friction mechanism, not a strict security boundary.
type Guard struct {
	mu       sync.Mutex
	entries  map[int64]*lockoutEntry
	blockFor time.Duration
	clock    func() time.Time
}

func NewGuard() *Guard {
	return &Guard{
		entries:  make(map[int64]*lockoutEntry),
		blockFor: DefaultBlockDuration,
		clock:    time.Now,
	}
}

// SetClock replaces the time source. Tests only.
func (g *Guard) SetClock(clock func() time.Time) { g.clock = clock }

// Check runs one transition of the per-subject state machine. The whole
// transition happens under the lock so two concurrent attempts cannot both
// observe count=0.
//
// An active block rejects every attempt, even one that would otherwise pass
// role checks. An admin attempt outside a block always allows and never
// touches the counter.
func (g *Guard) Check(subjectID int64, isAdmin bool) Decision {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock()
	e := g.entries[subjectID]
	if e == nil {
		e = &lockoutEntry{}
		g.entries[subjectID] = e
	}

	if !e.blockedUntil.IsZero() && now.Before(e.blockedUntil) {
		return DecisionBlock
	}

	if isAdmin {
		return DecisionAllow
	}

	if e.count == 0 {
		e.count = 1
		return DecisionWarn
	}

	e.count = 2
	e.blockedUntil = now.Add(g.blockFor)
	return DecisionBlock
}

// RequireDashboardAdmin guards the dashboard access validation surface: the
// lockout state machine applied on top of the admin role check. Blocks are
// recorded on the audit trail when an auditor is provided; the audit write
// is best-effort and never changes the verdict.
func RequireDashboardAdmin(g *Guard, auditor *audit.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := auth.IdentityFrom(c.Request.Context())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing credential"})
			return
		}

		role, _ := ParseRole(id.Role)
		switch g.Check(id.UserID, role.IsAdmin()) {
		case DecisionAllow:
			c.Next()
		case DecisionWarn:
			logger.FromGin(c).Warn("dashboard access denied", "user_id", id.UserID, "reason", "warning issued")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admins only (warning issued)"})
		default:
			logger.FromGin(c).Warn("dashboard access denied", "user_id", id.UserID, "reason", "temporarily blocked")
			if auditor != nil {
				if err := auditor.LogLockoutBlock(c.Request.Context(), id.UserID, id.Role, c.ClientIP()); err != nil {
					logger.FromGin(c).Warn("audit append failed", "err", err)
				}
			}
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "temporarily blocked"})
		}
	}
}
