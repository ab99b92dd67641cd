package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only. No Update/Delete methods are provided by design.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service records security-relevant outcomes. Callers should treat audit
// logging as best-effort and never fail a request on an audit error.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}

	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

func (s *Service) LogLogin(ctx context.Context, userID int64, role, ip string) error {
	return s.Append(ctx, Event{Type: EventTypeLogin, ActorUserID: userID, ActorRole: role, IPAddress: ip})
}

func (s *Service) LogLoginFailed(ctx context.Context, username, ip string) error {
	return s.Append(ctx, Event{Type: EventTypeLoginFailed, IPAddress: ip, Message: "login failed for " + username})
}

func (s *Service) LogLogout(ctx context.Context, userID int64, ip string) error {
	return s.Append(ctx, Event{Type: EventTypeLogout, ActorUserID: userID, IPAddress: ip})
}

// LogAccessDenied records an authorization rejection, such as a cross-team
// read attempt.
func (s *Service) LogAccessDenied(ctx context.Context, userID int64, role, ip string, teamID int64) error {
	return s.Append(ctx, Event{
		Type:        EventTypeAccessDenied,
		ActorUserID: userID,
		ActorRole:   role,
		IPAddress:   ip,
		TeamID:      teamID,
		Message:     "cross-team access denied",
	})
}

// LogLockoutBlock records a rejection by the abuse lockout guard.
func (s *Service) LogLockoutBlock(ctx context.Context, userID int64, role, ip string) error {
	return s.Append(ctx, Event{
		Type:        EventTypeLockoutBlock,
		ActorUserID: userID,
		ActorRole:   role,
		IPAddress:   ip,
	})
}

// LogAdminAction records a privileged mutation (user/team management).
func (s *Service) LogAdminAction(ctx context.Context, actorUserID int64, actorRole, ip, message string, targetUserID, teamID int64) error {
	return s.Append(ctx, Event{
		Type:         EventTypeAdminAction,
		ActorUserID:  actorUserID,
		ActorRole:    actorRole,
		IPAddress:    ip,
		TargetUserID: targetUserID,
		TeamID:       teamID,
		Message:      message,
	})
}
