package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"gym-service/internal/domain"

	log "github.com/sirupsen/logrus"
)

type postgresProblemRepository struct {
	db *sql.DB
}

func NewPostgresProblemRepository(db *sql.DB) *postgresProblemRepository {
	return &postgresProblemRepository{db: db}
}

const problemColumns = `
	p.id, p.creator_id, u.username, p.name, p.description,
	p.grade, p.style, p.number_of_moves,
	p.image, p.wall_image, p.holds, p.created_at
`

func scanProblem(row interface{ Scan(...interface{}) error }) (*domain.Problem, error) {
	var problem domain.Problem
	var creatorName sql.NullString
	var description, numberOfMoves sql.NullString
	var holdsJSON []byte

	err := row.Scan(
		&problem.ID,
		&problem.CreatorID,
		&creatorName,
		&problem.Name,
		&description,
		&problem.Grade,
		&problem.Style,
		&numberOfMoves,
		&problem.Image,
		&problem.WallImage,
		&holdsJSON,
		&problem.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	problem.CreatorName = creatorName.String
	problem.Description = description.String
	problem.NumberOfMoves = numberOfMoves.String

	if len(holdsJSON) > 0 {
		if err := json.Unmarshal(holdsJSON, &problem.Holds); err != nil {
			return nil, fmt.Errorf("failed to decode problem holds: %w", err)
		}
	}

	return &problem, nil
}

func (r *postgresProblemRepository) Create(ctx context.Context, problem *domain.Problem) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	log.WithFields(log.Fields{
		"problem_id": problem.ID,
		"creator_id": problem.CreatorID,
		"grade":      problem.Grade,
	}).Info("Creating problem in database")

	holdsJSON, err := json.Marshal(problem.Holds)
	if err != nil {
		return fmt.Errorf("failed to encode problem holds: %w", err)
	}

	query := `
		INSERT INTO problems (
			id, creator_id, name, description, grade, style,
			number_of_moves, image, wall_image, holds
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err = r.db.ExecContext(ctx, query,
		problem.ID,
		problem.CreatorID,
		problem.Name,
		nullString(problem.Description),
		problem.Grade,
		problem.Style,
		nullString(problem.NumberOfMoves),
		problem.Image,
		problem.WallImage,
		holdsJSON,
	)

	if err != nil {
		log.WithError(err).WithField("problem_id", problem.ID).Error("Failed to create problem")
		return fmt.Errorf("failed to create problem: %w", err)
	}

	return nil
}

func (r *postgresProblemRepository) GetByID(ctx context.Context, id string) (*domain.Problem, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT ` + problemColumns + `
		FROM problems p
		JOIN users u ON u.id = p.creator_id
		WHERE p.id = $1
	`

	problem, err := scanProblem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrProblemNotFound
		}
		log.WithError(err).WithField("problem_id", id).Error("Failed to get problem")
		return nil, fmt.Errorf("failed to get problem: %w", err)
	}

	return problem, nil
}

// List returns the feed: newest problems first with creator usernames.
func (r *postgresProblemRepository) List(ctx context.Context, limit, offset int) ([]domain.Problem, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	query := `
		SELECT ` + problemColumns + `
		FROM problems p
		JOIN users u ON u.id = p.creator_id
		ORDER BY p.created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		log.WithError(err).Error("Failed to list problems")
		return nil, fmt.Errorf("failed to list problems: %w", err)
	}
	defer rows.Close()

	var problems []domain.Problem
	for rows.Next() {
		problem, err := scanProblem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan problem row: %w", err)
		}
		problems = append(problems, *problem)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over problem rows: %w", err)
	}

	return problems, nil
}
