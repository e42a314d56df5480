package service

import (
	"context"
	"time"

	"gym-service/internal/domain"

	log "github.com/sirupsen/logrus"
)

const auditServiceName = "gym-service"

type AuditPublisher interface {
	Publish(ctx context.Context, event domain.AuditEvent) error
}

// AuditService mirrors notable outcomes to the audit topic. All methods
// are nil-safe and non-fatal: an unconfigured publisher or a publish
// failure never blocks the request that triggered the event.
type AuditService struct {
	publisher AuditPublisher
}

func NewAuditService(publisher AuditPublisher) *AuditService {
	return &AuditService{publisher: publisher}
}

func (s *AuditService) publish(ctx context.Context, event domain.AuditEvent) {
	if s == nil || s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.WithError(err).WithField("event_type", event.EventType).Warn("Failed to publish audit event")
	}
}

func (s *AuditService) RecordDoorAccess(ctx context.Context, event *domain.AccessEvent) {
	if event == nil {
		return
	}

	payload := map[string]interface{}{
		"location_id":   event.Location.ID,
		"location_name": event.Location.Name,
		"status":        event.Status,
		"access_time":   event.AccessTime,
	}
	if event.SessionID != nil {
		payload["session_id"] = *event.SessionID
	}

	s.publish(ctx, domain.AuditEvent{
		Service:    auditServiceName,
		EventType:  "door_access_" + event.Status,
		EntityID:   event.ID,
		Actor:      event.UserID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	})
}

func (s *AuditService) RecordPassActivated(ctx context.Context, pass *domain.Pass) {
	if pass == nil {
		return
	}

	s.publish(ctx, domain.AuditEvent{
		Service:    auditServiceName,
		EventType:  "pass_activated",
		EntityID:   pass.ID,
		Actor:      pass.UserID,
		OccurredAt: time.Now().UTC(),
		Payload: map[string]interface{}{
			"pass_type":   pass.Type,
			"price_cents": pass.PriceCents,
			"start_time":  pass.StartTime,
			"end_time":    pass.EndTime,
		},
	})
}

func (s *AuditService) RecordUserRegistered(ctx context.Context, user *domain.User) {
	if user == nil {
		return
	}

	s.publish(ctx, domain.AuditEvent{
		Service:    auditServiceName,
		EventType:  "user_registered",
		EntityID:   user.ID,
		Actor:      user.ID,
		OccurredAt: time.Now().UTC(),
		Payload: map[string]interface{}{
			"email":          user.Email,
			"username":       user.Username,
			"climbing_level": user.ClimbingLevel,
		},
	})
}
