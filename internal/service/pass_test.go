package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"gym-service/internal/domain"
)

type fakePassRepo struct {
	passes []domain.Pass
}

func (f *fakePassRepo) Create(_ context.Context, pass *domain.Pass) error {
	f.passes = append(f.passes, *pass)
	return nil
}

func (f *fakePassRepo) ExpireActive(_ context.Context, userID string, now time.Time) error {
	for i := range f.passes {
		p := &f.passes[i]
		if p.UserID == userID && p.Status == domain.PassStatusActive && p.EndTime.After(now) {
			p.Status = domain.PassStatusExpired
		}
	}
	return nil
}

func (f *fakePassRepo) GetCurrentActive(_ context.Context, userID string, now time.Time) (*domain.Pass, error) {
	var current *domain.Pass
	for i := range f.passes {
		p := &f.passes[i]
		if p.UserID != userID || p.Status != domain.PassStatusActive || !p.EndTime.After(now) {
			continue
		}
		if current == nil || p.EndTime.After(current.EndTime) {
			current = p
		}
	}
	return current, nil
}

func (f *fakePassRepo) ListByUser(_ context.Context, userID string, limit, offset int) ([]domain.Pass, error) {
	var out []domain.Pass
	for _, p := range f.passes {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakePaymentProvider struct {
	intent      *PaymentIntent
	retrieveErr error
}

func (f *fakePaymentProvider) CreateCustomer(_ context.Context, _, _ string, _ map[string]string) (string, error) {
	return "cus_test", nil
}

func (f *fakePaymentProvider) CreateIntent(_ context.Context, amountCents int64, currency, _ string, _ map[string]string) (*PaymentIntent, error) {
	return &PaymentIntent{
		ID:           "pi_test",
		ClientSecret: "pi_test_secret",
		AmountCents:  amountCents,
		Currency:     currency,
		Status:       "requires_payment_method",
	}, nil
}

func (f *fakePaymentProvider) RetrieveIntent(_ context.Context, _ string) (*PaymentIntent, error) {
	if f.retrieveErr != nil {
		return nil, f.retrieveErr
	}
	return f.intent, nil
}

func montrealTZ(t *testing.T) *time.Location {
	t.Helper()
	tz, err := time.LoadLocation("America/Toronto")
	if err != nil {
		t.Fatalf("failed to load timezone: %v", err)
	}
	return tz
}

func TestPassPricing(t *testing.T) {
	pricing := NewPassPricing(montrealTZ(t))

	// 2025-06-06 is a Friday, 2025-06-02 a Monday.
	friday := time.Date(2025, 6, 6, 12, 0, 0, 0, time.UTC)
	monday := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		passType string
		at       time.Time
		want     int64
	}{
		{"day pass on Friday", domain.PassDay, friday, 1000},
		{"day pass on Monday", domain.PassDay, monday, 2500},
		{"week pass", domain.PassWeek, monday, 7700},
		{"month pass", domain.PassMonth, monday, 9000},
		{"year pass", domain.PassYear, monday, 77700},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pricing.PriceCentsAt(tt.passType, tt.at)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("PriceCentsAt(%s) = %d, want %d", tt.passType, got, tt.want)
			}
		})
	}
}

func TestPassPricingFridayIsLocalTime(t *testing.T) {
	pricing := NewPassPricing(montrealTZ(t))

	// Saturday 03:00 UTC is still Friday 23:00 in Montreal.
	lateFriday := time.Date(2025, 6, 7, 3, 0, 0, 0, time.UTC)

	price, err := pricing.PriceCentsAt(domain.PassDay, lateFriday)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if price != 1000 {
		t.Errorf("expected Friday deal in gym local time, got %d", price)
	}
}

func TestPassPricingRejectsUnknownType(t *testing.T) {
	pricing := NewPassPricing(montrealTZ(t))

	if _, err := pricing.PriceCentsAt("decade", time.Now()); !errors.Is(err, domain.ErrInvalidPassType) {
		t.Errorf("expected ErrInvalidPassType, got %v", err)
	}
}

func TestActivatePassDurations(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		passType string
		want     time.Duration
	}{
		{domain.PassDay, 7 * time.Hour},
		{domain.PassWeek, 7 * 24 * time.Hour},
		{domain.PassMonth, 30 * 24 * time.Hour},
		{domain.PassYear, 365 * 24 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.passType, func(t *testing.T) {
			repo := &fakePassRepo{}
			svc := NewPassService(repo, nil, NewPassPricing(time.UTC), NewAuditService(nil))
			svc.now = func() time.Time { return now }

			pass, err := svc.ActivatePass(context.Background(), "user-1", domain.ActivatePassRequest{
				PassType: tt.passType,
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if !pass.StartTime.Equal(now) {
				t.Errorf("expected start time %v, got %v", now, pass.StartTime)
			}
			if got := pass.EndTime.Sub(pass.StartTime); got != tt.want {
				t.Errorf("expected duration %v, got %v", tt.want, got)
			}
			if pass.Status != domain.PassStatusActive {
				t.Errorf("expected active status, got %s", pass.Status)
			}
			if len(repo.passes) != 1 {
				t.Errorf("expected 1 persisted pass, got %d", len(repo.passes))
			}
		})
	}
}

func TestActivatePassUsesChargedAmount(t *testing.T) {
	repo := &fakePassRepo{}
	provider := &fakePaymentProvider{
		intent: &PaymentIntent{ID: "pi_123", AmountCents: 1000, Currency: "usd", Status: "succeeded"},
	}
	svc := NewPassService(repo, provider, NewPassPricing(time.UTC), NewAuditService(nil))
	svc.now = func() time.Time { return time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC) }

	pass, err := svc.ActivatePass(context.Background(), "user-1", domain.ActivatePassRequest{
		PassType:        domain.PassDay,
		PaymentIntentID: "pi_123",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pass.PriceCents != 1000 {
		t.Errorf("expected charged amount 1000, got %d", pass.PriceCents)
	}
	if pass.PaymentIntentID == nil || *pass.PaymentIntentID != "pi_123" {
		t.Error("expected payment intent id recorded on the pass")
	}
}

func TestActivatePassFallsBackOnProviderError(t *testing.T) {
	repo := &fakePassRepo{}
	provider := &fakePaymentProvider{retrieveErr: errors.New("stripe unreachable")}
	svc := NewPassService(repo, provider, NewPassPricing(time.UTC), NewAuditService(nil))
	// A Monday, so the day pass lists at 2500.
	svc.now = func() time.Time { return time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC) }

	pass, err := svc.ActivatePass(context.Background(), "user-1", domain.ActivatePassRequest{
		PassType:        domain.PassDay,
		PaymentIntentID: "pi_123",
	})
	if err != nil {
		t.Fatalf("activation must not fail on provider lookup errors: %v", err)
	}
	if pass.PriceCents != 2500 {
		t.Errorf("expected list price fallback 2500, got %d", pass.PriceCents)
	}
}

func TestActivatePassRejectsUnknownType(t *testing.T) {
	repo := &fakePassRepo{}
	svc := NewPassService(repo, nil, NewPassPricing(time.UTC), NewAuditService(nil))

	_, err := svc.ActivatePass(context.Background(), "user-1", domain.ActivatePassRequest{
		PassType: "lifetime",
	})
	if !errors.Is(err, domain.ErrInvalidPassType) {
		t.Errorf("expected ErrInvalidPassType, got %v", err)
	}
	if len(repo.passes) != 0 {
		t.Error("invalid pass types must not be persisted")
	}
}

func TestActivatePassExpiresPreviousActive(t *testing.T) {
	repo := &fakePassRepo{}
	svc := NewPassService(repo, nil, NewPassPricing(time.UTC), NewAuditService(nil))
	svc.now = func() time.Time { return time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC) }

	yearPass, err := svc.ActivatePass(context.Background(), "user-1", domain.ActivatePassRequest{
		PassType: domain.PassYear,
	})
	if err != nil {
		t.Fatalf("failed to activate year pass: %v", err)
	}

	dayPass, err := svc.ActivatePass(context.Background(), "user-1", domain.ActivatePassRequest{
		PassType: domain.PassDay,
	})
	if err != nil {
		t.Fatalf("failed to activate day pass: %v", err)
	}

	current, err := svc.CurrentPass(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if current == nil || current.ID != dayPass.ID {
		t.Errorf("expected the newly activated day pass to be current, got %+v", current)
	}

	for _, p := range repo.passes {
		if p.ID == yearPass.ID && p.Status != domain.PassStatusExpired {
			t.Errorf("expected previous year pass expired, got status %s", p.Status)
		}
	}
}

func TestActivatePassDoesNotExpireOtherUsers(t *testing.T) {
	repo := &fakePassRepo{}
	svc := NewPassService(repo, nil, NewPassPricing(time.UTC), NewAuditService(nil))
	svc.now = func() time.Time { return time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC) }

	if _, err := svc.ActivatePass(context.Background(), "user-1", domain.ActivatePassRequest{
		PassType: domain.PassMonth,
	}); err != nil {
		t.Fatalf("failed to activate pass: %v", err)
	}
	if _, err := svc.ActivatePass(context.Background(), "user-2", domain.ActivatePassRequest{
		PassType: domain.PassDay,
	}); err != nil {
		t.Fatalf("failed to activate pass: %v", err)
	}

	current, err := svc.CurrentPass(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if current == nil || current.Type != domain.PassMonth {
		t.Errorf("expected user-1's month pass untouched, got %+v", current)
	}
}

func TestCurrentPassReturnsNilWhenNoneActive(t *testing.T) {
	repo := &fakePassRepo{}
	svc := NewPassService(repo, nil, NewPassPricing(time.UTC), NewAuditService(nil))

	pass, err := svc.CurrentPass(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if pass != nil {
		t.Errorf("expected nil pass, got %+v", pass)
	}
}
