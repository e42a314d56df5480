package domain

import (
	"errors"
	"time"
)

var (
	ErrPassNotFound    = errors.New("pass not found")
	ErrInvalidPassType = errors.New("invalid pass type")
)

// Pass type constants
const (
	PassDay   = "day"
	PassWeek  = "week"
	PassMonth = "month"
	PassYear  = "year"
)

// Pass status constants
const (
	PassStatusActive    = "active"
	PassStatusExpired   = "expired"
	PassStatusCancelled = "cancelled"
)

// ValidPassTypes returns list of valid pass types
func ValidPassTypes() []string {
	return []string{PassDay, PassWeek, PassMonth, PassYear}
}

// PassDuration returns how long a pass of the given type stays valid.
// The day pass covers a single 7-hour session.
func PassDuration(passType string) (time.Duration, error) {
	switch passType {
	case PassDay:
		return 7 * time.Hour, nil
	case PassWeek:
		return 7 * 24 * time.Hour, nil
	case PassMonth:
		return 30 * 24 * time.Hour, nil
	case PassYear:
		return 365 * 24 * time.Hour, nil
	default:
		return 0, ErrInvalidPassType
	}
}

type Pass struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Type            string    `json:"type"`
	StartTime       time.Time `json:"start_time"`
	EndTime         time.Time `json:"end_time"`
	PaymentIntentID *string   `json:"payment_intent_id,omitempty"`
	PriceCents      int64     `json:"price_cents"`
	Status          string    `json:"status"`
	PurchasedAt     time.Time `json:"purchased_at"`
}

type ActivatePassRequest struct {
	PassType        string `json:"passType"`
	PaymentIntentID string `json:"paymentIntentId,omitempty"`
}
