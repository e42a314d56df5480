package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gym-service/internal/domain"

	log "github.com/sirupsen/logrus"
)

// postgresAccessEventRepository persists door-access events as an
// append-only log: rows are inserted once and never updated or deleted.
type postgresAccessEventRepository struct {
	db *sql.DB
}

func NewPostgresAccessEventRepository(db *sql.DB) *postgresAccessEventRepository {
	return &postgresAccessEventRepository{db: db}
}

const accessEventColumns = `
	id, user_id, location_id, location_name, location_ip,
	user_latitude, user_longitude, user_accuracy,
	access_time, status, session_id
`

func scanAccessEvent(row interface{ Scan(...interface{}) error }) (*domain.AccessEvent, error) {
	var event domain.AccessEvent
	var lat, lon, accuracy sql.NullFloat64
	var sessionID sql.NullString

	err := row.Scan(
		&event.ID,
		&event.UserID,
		&event.Location.ID,
		&event.Location.Name,
		&event.Location.IP,
		&lat,
		&lon,
		&accuracy,
		&event.AccessTime,
		&event.Status,
		&sessionID,
	)
	if err != nil {
		return nil, err
	}

	if lat.Valid && lon.Valid {
		loc := &domain.UserLocation{
			Latitude:  &lat.Float64,
			Longitude: &lon.Float64,
		}
		if accuracy.Valid {
			loc.Accuracy = &accuracy.Float64
		}
		event.UserLocation = loc
	}
	if sessionID.Valid {
		event.SessionID = &sessionID.String
	}

	return &event, nil
}

func (r *postgresAccessEventRepository) Insert(ctx context.Context, event *domain.AccessEvent) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	log.WithFields(log.Fields{
		"event_id":    event.ID,
		"user_id":     event.UserID,
		"location_id": event.Location.ID,
		"status":      event.Status,
	}).Info("Recording door access event")

	var lat, lon, accuracy sql.NullFloat64
	if event.UserLocation != nil {
		if event.UserLocation.Latitude != nil {
			lat = sql.NullFloat64{Float64: *event.UserLocation.Latitude, Valid: true}
		}
		if event.UserLocation.Longitude != nil {
			lon = sql.NullFloat64{Float64: *event.UserLocation.Longitude, Valid: true}
		}
		if event.UserLocation.Accuracy != nil {
			accuracy = sql.NullFloat64{Float64: *event.UserLocation.Accuracy, Valid: true}
		}
	}

	query := `
		INSERT INTO access_events (
			id, user_id, location_id, location_name, location_ip,
			user_latitude, user_longitude, user_accuracy,
			access_time, status, session_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.UserID,
		event.Location.ID,
		event.Location.Name,
		event.Location.IP,
		lat,
		lon,
		accuracy,
		event.AccessTime,
		event.Status,
		nullStringPtr(event.SessionID),
	)

	if err != nil {
		log.WithError(err).WithField("event_id", event.ID).Error("Failed to record access event")
		return fmt.Errorf("failed to record access event: %w", err)
	}

	return nil
}

// CountAttemptsSince counts a user's attempts at a location since the given
// time, regardless of status. Feeds the rate-limit check.
func (r *postgresAccessEventRepository) CountAttemptsSince(ctx context.Context, userID, locationID string, since time.Time) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT COUNT(*)
		FROM access_events
		WHERE user_id = $1
		  AND location_id = $2
		  AND access_time >= $3
	`

	var count int
	if err := r.db.QueryRowContext(ctx, query, userID, locationID, since).Scan(&count); err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Failed to count access attempts")
		return 0, fmt.Errorf("failed to count access attempts: %w", err)
	}

	return count, nil
}

// LatestSuccessSince returns the most recent successful event for
// (user, location) at or after since, or nil when there is none. Feeds the
// duplicate-suppression check.
func (r *postgresAccessEventRepository) LatestSuccessSince(ctx context.Context, userID, locationID string, since time.Time) (*domain.AccessEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT ` + accessEventColumns + `
		FROM access_events
		WHERE user_id = $1
		  AND location_id = $2
		  AND access_time >= $3
		  AND status = $4
		ORDER BY access_time DESC
		LIMIT 1
	`

	event, err := scanAccessEvent(r.db.QueryRowContext(ctx, query, userID, locationID, since, domain.AccessStatusSuccess))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		log.WithError(err).WithField("user_id", userID).Error("Failed to query latest successful access")
		return nil, fmt.Errorf("failed to query latest successful access: %w", err)
	}

	return event, nil
}

// ListSuccessSince returns successful events at or after since, newest
// first. locationID filters to a single location when non-empty;
// excludeUserID drops one user's events when non-empty.
func (r *postgresAccessEventRepository) ListSuccessSince(ctx context.Context, locationID string, since time.Time, excludeUserID string) ([]domain.AccessEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT ` + accessEventColumns + `
		FROM access_events
		WHERE access_time >= $1
		  AND status = $2
		  AND ($3 = '' OR location_id = $3)
		  AND ($4 = '' OR user_id <> $4)
		ORDER BY access_time DESC
	`

	rows, err := r.db.QueryContext(ctx, query, since, domain.AccessStatusSuccess, locationID, excludeUserID)
	if err != nil {
		log.WithError(err).Error("Failed to list successful access events")
		return nil, fmt.Errorf("failed to list successful access events: %w", err)
	}
	defer rows.Close()

	var events []domain.AccessEvent
	for rows.Next() {
		event, err := scanAccessEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan access event row: %w", err)
		}
		events = append(events, *event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over access event rows: %w", err)
	}

	return events, nil
}

// ListByUser returns a page of the user's own events, newest first.
func (r *postgresAccessEventRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.AccessEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT ` + accessEventColumns + `
		FROM access_events
		WHERE user_id = $1
		ORDER BY access_time DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Failed to list user access events")
		return nil, fmt.Errorf("failed to list user access events: %w", err)
	}
	defer rows.Close()

	var events []domain.AccessEvent
	for rows.Next() {
		event, err := scanAccessEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan access event row: %w", err)
		}
		events = append(events, *event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over access event rows: %w", err)
	}

	return events, nil
}

func (r *postgresAccessEventRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `SELECT COUNT(*) FROM access_events WHERE user_id = $1`

	var count int
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Failed to count user access events")
		return 0, fmt.Errorf("failed to count user access events: %w", err)
	}

	return count, nil
}
