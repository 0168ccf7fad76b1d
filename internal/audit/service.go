package audit

import (
	"context"
	"errors"
	"time"

	"storefront/internal/rbac"
	"storefront/pkg/logger"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
// It is append-only: there are no Update/Delete methods.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service records auth events. Record is best-effort and never fails the caller;
// Append returns errors for callers that need them.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s == nil || s.repo == nil {
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

// Record appends e and logs, rather than returns, any failure. A nil Service is a no-op.
func (s *Service) Record(ctx context.Context, e Event) {
	if s == nil || s.repo == nil {
		return
	}
	if err := s.Append(ctx, e); err != nil {
		logger.From(ctx).Warn("audit append failed", "type", e.Type, "err", err)
	}
}

func (s *Service) LogLogin(ctx context.Context, userID, role, ip string) {
	s.Record(ctx, Event{Type: EventTypeLogin, ActorUserID: userID, ActorRole: role, IPAddress: ip})
}

func (s *Service) LogLoginFailed(ctx context.Context, email, ip, reason string) {
	s.Record(ctx, Event{Type: EventTypeLoginFailed, Email: email, IPAddress: ip, Message: reason})
}

func (s *Service) LogRegister(ctx context.Context, userID, ip string) {
	s.Record(ctx, Event{Type: EventTypeRegister, ActorUserID: userID, IPAddress: ip})
}

func (s *Service) LogAccessDenied(ctx context.Context, userID, role, ip, path string) {
	s.Record(ctx, Event{
		Type:        EventTypeAccessDenied,
		ActorUserID: userID,
		ActorRole:   role,
		IPAddress:   ip,
		Message:     path,
	})
}

func (s *Service) LogPrivilegeChange(ctx context.Context, actorUserID, targetUserID, ip string, isAdmin bool) {
	msg := "admin revoked"
	if isAdmin {
		msg = "admin granted"
	}
	s.Record(ctx, Event{
		Type:         EventTypePrivilegeChange,
		ActorUserID:  actorUserID,
		ActorRole:    rbac.RoleAdmin,
		TargetUserID: targetUserID,
		IPAddress:    ip,
		Message:      msg,
	})
}
