package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gym-service/internal/domain"

	log "github.com/sirupsen/logrus"
)

type postgresPassRepository struct {
	db *sql.DB
}

func NewPostgresPassRepository(db *sql.DB) *postgresPassRepository {
	return &postgresPassRepository{db: db}
}

const passColumns = `
	id, user_id, type, start_time, end_time,
	payment_intent_id, price_cents, status, purchased_at
`

func scanPass(row interface{ Scan(...interface{}) error }) (*domain.Pass, error) {
	var pass domain.Pass
	var paymentIntentID sql.NullString

	err := row.Scan(
		&pass.ID,
		&pass.UserID,
		&pass.Type,
		&pass.StartTime,
		&pass.EndTime,
		&paymentIntentID,
		&pass.PriceCents,
		&pass.Status,
		&pass.PurchasedAt,
	)
	if err != nil {
		return nil, err
	}

	if paymentIntentID.Valid {
		pass.PaymentIntentID = &paymentIntentID.String
	}

	return &pass, nil
}

func (r *postgresPassRepository) Create(ctx context.Context, pass *domain.Pass) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	log.WithFields(log.Fields{
		"pass_id":   pass.ID,
		"user_id":   pass.UserID,
		"pass_type": pass.Type,
	}).Info("Creating pass in database")

	query := `
		INSERT INTO passes (
			id, user_id, type, start_time, end_time,
			payment_intent_id, price_cents, status, purchased_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.ExecContext(ctx, query,
		pass.ID,
		pass.UserID,
		pass.Type,
		pass.StartTime,
		pass.EndTime,
		nullStringPtr(pass.PaymentIntentID),
		pass.PriceCents,
		pass.Status,
		pass.PurchasedAt,
	)

	if err != nil {
		log.WithError(err).WithField("pass_id", pass.ID).Error("Failed to create pass")
		return fmt.Errorf("failed to create pass: %w", err)
	}

	return nil
}

// ExpireActive marks all of the user's still-running active passes as
// expired. Runs before a new pass is created so at most one pass is active
// per user.
func (r *postgresPassRepository) ExpireActive(ctx context.Context, userID string, now time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		UPDATE passes SET status = $1
		WHERE user_id = $2
		  AND status = $3
		  AND end_time > $4
	`

	result, err := r.db.ExecContext(ctx, query, domain.PassStatusExpired, userID, domain.PassStatusActive, now)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Failed to expire active passes")
		return fmt.Errorf("failed to expire active passes: %w", err)
	}

	if expired, err := result.RowsAffected(); err == nil && expired > 0 {
		log.WithFields(log.Fields{
			"user_id": userID,
			"expired": expired,
		}).Info("Expired previous active passes")
	}

	return nil
}

// GetCurrentActive returns the user's active pass with the latest end time
// still in the future, or nil when the user has no active pass.
func (r *postgresPassRepository) GetCurrentActive(ctx context.Context, userID string, now time.Time) (*domain.Pass, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT ` + passColumns + `
		FROM passes
		WHERE user_id = $1
		  AND status = $2
		  AND end_time > $3
		ORDER BY end_time DESC
		LIMIT 1
	`

	pass, err := scanPass(r.db.QueryRowContext(ctx, query, userID, domain.PassStatusActive, now))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		log.WithError(err).WithField("user_id", userID).Error("Failed to get current pass")
		return nil, fmt.Errorf("failed to get current pass: %w", err)
	}

	return pass, nil
}

func (r *postgresPassRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]domain.Pass, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT ` + passColumns + `
		FROM passes
		WHERE user_id = $1
		ORDER BY purchased_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Failed to list passes")
		return nil, fmt.Errorf("failed to list passes: %w", err)
	}
	defer rows.Close()

	var passes []domain.Pass
	for rows.Next() {
		pass, err := scanPass(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pass row: %w", err)
		}
		passes = append(passes, *pass)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over pass rows: %w", err)
	}

	return passes, nil
}
