package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"gym-service/internal/domain"
	"gym-service/internal/geo"
	"gym-service/internal/geofence"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Spam-protection windows for the door access check.
const (
	rateLimitWindow   = 5 * time.Minute
	rateLimitMax      = 3
	rateLimitWaitSecs = 300

	duplicateWindow   = time.Minute
	duplicateWaitSecs = 60
)

// AccessEventStore is the append-only log of door-access attempts.
type AccessEventStore interface {
	Insert(ctx context.Context, event *domain.AccessEvent) error
	CountAttemptsSince(ctx context.Context, userID, locationID string, since time.Time) (int, error)
	LatestSuccessSince(ctx context.Context, userID, locationID string, since time.Time) (*domain.AccessEvent, error)
	ListSuccessSince(ctx context.Context, locationID string, since time.Time, excludeUserID string) ([]domain.AccessEvent, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.AccessEvent, error)
	CountByUser(ctx context.Context, userID string) (int, error)
}

// AccessService decides and records door-access attempts. CheckAccess is a
// pure decision over store reads and leaves no state behind; RecordAccess
// is the only writer.
type AccessService struct {
	eventStore AccessEventStore
	catalog    *geofence.Catalog
	audit      *AuditService

	// now is the decision clock; swapped out in tests.
	now func() time.Time
}

func NewAccessService(eventStore AccessEventStore, catalog *geofence.Catalog, audit *AuditService) *AccessService {
	return &AccessService{
		eventStore: eventStore,
		catalog:    catalog,
		audit:      audit,
		now:        time.Now,
	}
}

// CheckAccess runs the door-access decision procedure for a user claiming
// to stand at a location. Check order is fixed: input validation, rate
// limit, geofence resolution, distance, duplicate suppression. Rate
// limiting runs before the spatial checks so coordinates cannot be used to
// probe radius boundaries indefinitely. Policy rejections come back as
// decisions, not errors; an error means the store failed and the caller
// must treat the attempt as denied.
func (s *AccessService) CheckAccess(ctx context.Context, userID, locationID string, userLocation *domain.UserLocation) (*domain.AccessDecision, error) {
	now := s.now().UTC()

	if locationID == "" {
		return &domain.AccessDecision{
			Code:    domain.CodeLocationRequired,
			Message: "Location ID is required",
		}, nil
	}

	// Geolocation is mandatory: besides rate limiting it is the only
	// authorization signal there is.
	if userLocation == nil || userLocation.Latitude == nil || userLocation.Longitude == nil {
		return &domain.AccessDecision{
			Code:    domain.CodeLocationRequired,
			Message: "User location is required for security verification",
		}, nil
	}

	attempts, err := s.eventStore.CountAttemptsSince(ctx, userID, locationID, now.Add(-rateLimitWindow))
	if err != nil {
		return nil, fmt.Errorf("failed to check access attempts: %w", err)
	}
	if attempts >= rateLimitMax {
		log.WithFields(log.Fields{
			"user_id":     userID,
			"location_id": locationID,
			"attempts":    attempts,
		}).Warn("Door access rate limited")
		return &domain.AccessDecision{
			Code:     domain.CodeRateLimited,
			Message:  "Too many access attempts. Please wait before trying again.",
			WaitTime: rateLimitWaitSecs,
		}, nil
	}

	location, err := s.catalog.Lookup(locationID)
	if err != nil {
		return &domain.AccessDecision{
			Code:    domain.CodeInvalidLocation,
			Message: "Invalid location ID",
		}, nil
	}

	distance := geo.Distance(
		*userLocation.Latitude,
		*userLocation.Longitude,
		location.Latitude,
		location.Longitude,
	)

	log.WithFields(log.Fields{
		"user_id":     userID,
		"location_id": locationID,
		"distance_m":  math.Round(distance),
		"radius_m":    location.Radius,
	}).Debug("Computed distance to door")

	if distance > location.Radius {
		return &domain.AccessDecision{
			Code: domain.CodeTooFar,
			Message: fmt.Sprintf(
				"You are too far from %s. You need to be within %.0f meters of the location.",
				location.Address, location.Radius,
			),
			Distance:    int(math.Round(distance)),
			MaxDistance: int(location.Radius),
			Location:    location,
		}, nil
	}

	recent, err := s.eventStore.LatestSuccessSince(ctx, userID, locationID, now.Add(-duplicateWindow))
	if err != nil {
		return nil, fmt.Errorf("failed to check recent access: %w", err)
	}
	if recent != nil {
		return &domain.AccessDecision{
			Code:     domain.CodeRecentAccess,
			Message:  "You recently opened this door. Please wait before trying again.",
			WaitTime: duplicateWaitSecs,
			Distance: int(math.Round(distance)),
			Location: location,
		}, nil
	}

	return &domain.AccessDecision{
		Authorized: true,
		Message:    "Access authorized",
		Distance:   int(math.Round(distance)),
		Location:   location,
	}, nil
}

// RecordAccess appends one immutable event to the access log. The access
// time is assigned from the server clock, never taken from the caller.
func (s *AccessService) RecordAccess(ctx context.Context, userID string, location domain.EventLocation, userLocation *domain.UserLocation, status string, sessionID *string) (*domain.AccessEvent, error) {
	if location.ID == "" || location.Name == "" || location.IP == "" {
		return nil, domain.ErrLocationInfoMissing
	}

	if status == "" {
		status = domain.AccessStatusSuccess
	}
	if !isValidAccessStatus(status) {
		return nil, domain.ErrInvalidAccessStatus
	}

	event := &domain.AccessEvent{
		ID:           uuid.NewString(),
		UserID:       userID,
		Location:     location,
		UserLocation: userLocation,
		AccessTime:   s.now().UTC(),
		Status:       status,
		SessionID:    sessionID,
	}

	if err := s.eventStore.Insert(ctx, event); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"user_id":     userID,
			"location_id": location.ID,
		}).Error("Failed to record door access")
		return nil, fmt.Errorf("failed to record door access: %w", err)
	}

	s.audit.RecordDoorAccess(ctx, event)

	return event, nil
}

// History returns a page of the user's own access events plus the total
// event count for pagination.
func (s *AccessService) History(ctx context.Context, userID string, limit, page int) ([]domain.AccessEvent, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > domain.MaxListLimit {
		limit = domain.MaxListLimit
	}
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	events, err := s.eventStore.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch access history: %w", err)
	}

	total, err := s.eventStore.CountByUser(ctx, userID)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count access history: %w", err)
	}

	return events, total, nil
}

func isValidAccessStatus(status string) bool {
	for _, s := range domain.ValidAccessStatuses() {
		if s == status {
			return true
		}
	}
	return false
}
