package service

import (
	"context"
	"fmt"
	"time"

	"gym-service/internal/domain"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type PassRepository interface {
	Create(ctx context.Context, pass *domain.Pass) error
	ExpireActive(ctx context.Context, userID string, now time.Time) error
	GetCurrentActive(ctx context.Context, userID string, now time.Time) (*domain.Pass, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Pass, error)
}

// PassPricing computes pass prices in cents. The day pass drops to $10 on
// Fridays in the gym's local timezone.
type PassPricing struct {
	gymTZ *time.Location
	now   func() time.Time
}

func NewPassPricing(gymTZ *time.Location) *PassPricing {
	if gymTZ == nil {
		gymTZ = time.UTC
	}
	return &PassPricing{gymTZ: gymTZ, now: time.Now}
}

func (p *PassPricing) PriceCents(passType string) (int64, error) {
	return p.PriceCentsAt(passType, p.now())
}

func (p *PassPricing) PriceCentsAt(passType string, at time.Time) (int64, error) {
	switch passType {
	case domain.PassDay:
		if at.In(p.gymTZ).Weekday() == time.Friday {
			return 1000, nil
		}
		return 2500, nil
	case domain.PassWeek:
		return 7700, nil
	case domain.PassMonth:
		return 9000, nil
	case domain.PassYear:
		return 77700, nil
	default:
		return 0, domain.ErrInvalidPassType
	}
}

type PassService struct {
	passRepo PassRepository
	provider PaymentProvider
	pricing  *PassPricing
	audit    *AuditService

	now func() time.Time
}

func NewPassService(passRepo PassRepository, provider PaymentProvider, pricing *PassPricing, audit *AuditService) *PassService {
	return &PassService{
		passRepo: passRepo,
		provider: provider,
		pricing:  pricing,
		audit:    audit,
		now:      time.Now,
	}
}

// CurrentPass returns the user's newest still-valid active pass, or nil.
func (s *PassService) CurrentPass(ctx context.Context, userID string) (*domain.Pass, error) {
	return s.passRepo.GetCurrentActive(ctx, userID, s.now().UTC())
}

// ActivatePass creates an active pass after payment. When a payment intent
// id is supplied and retrievable, the charged amount wins over the
// computed price; a provider lookup failure falls back to the price table
// rather than blocking activation.
func (s *PassService) ActivatePass(ctx context.Context, userID string, req domain.ActivatePassRequest) (*domain.Pass, error) {
	duration, err := domain.PassDuration(req.PassType)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()

	price, err := s.pricing.PriceCentsAt(req.PassType, now)
	if err != nil {
		return nil, err
	}

	var paymentIntentID *string
	if req.PaymentIntentID != "" {
		paymentIntentID = &req.PaymentIntentID
		if s.provider != nil {
			intent, err := s.provider.RetrieveIntent(ctx, req.PaymentIntentID)
			if err != nil {
				log.WithError(err).WithField("intent_id", req.PaymentIntentID).
					Warn("Could not retrieve payment intent; falling back to computed price")
			} else if intent.AmountCents > 0 {
				price = intent.AmountCents
			}
		}
	}

	// A user holds at most one active pass: activating a new one expires
	// whatever is still running.
	if err := s.passRepo.ExpireActive(ctx, userID, now); err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Failed to expire previous passes")
		return nil, fmt.Errorf("failed to expire previous passes: %w", err)
	}

	pass := &domain.Pass{
		ID:              uuid.NewString(),
		UserID:          userID,
		Type:            req.PassType,
		StartTime:       now,
		EndTime:         now.Add(duration),
		PaymentIntentID: paymentIntentID,
		PriceCents:      price,
		Status:          domain.PassStatusActive,
		PurchasedAt:     now,
	}

	if err := s.passRepo.Create(ctx, pass); err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Failed to activate pass")
		return nil, fmt.Errorf("failed to activate pass: %w", err)
	}

	log.WithFields(log.Fields{
		"pass_id":   pass.ID,
		"user_id":   userID,
		"pass_type": pass.Type,
		"ends_at":   pass.EndTime,
	}).Info("Pass successfully activated")

	s.audit.RecordPassActivated(ctx, pass)

	return pass, nil
}

func (s *PassService) History(ctx context.Context, userID string, limit, offset int) ([]domain.Pass, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > domain.MaxListLimit {
		limit = domain.MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	passes, err := s.passRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list passes: %w", err)
	}

	return passes, nil
}
