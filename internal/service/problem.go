package service

import (
	"context"
	"fmt"

	"gym-service/internal/domain"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type ProblemRepository interface {
	Create(ctx context.Context, problem *domain.Problem) error
	GetByID(ctx context.Context, id string) (*domain.Problem, error)
	List(ctx context.Context, limit, offset int) ([]domain.Problem, error)
}

type ProblemService struct {
	problemRepo ProblemRepository
}

func NewProblemService(problemRepo ProblemRepository) *ProblemService {
	return &ProblemService{problemRepo: problemRepo}
}

func (s *ProblemService) CreateProblem(ctx context.Context, creatorID string, req domain.CreateProblemRequest) (*domain.Problem, error) {
	if err := domain.ValidateProblemName(req.Name); err != nil {
		return nil, err
	}
	if err := domain.ValidateGrade(req.Grade); err != nil {
		return nil, err
	}

	style := req.Style
	if style == "" {
		style = domain.StyleCrimpy
	}
	if err := domain.ValidateStyle(style); err != nil {
		return nil, err
	}

	if req.Image == "" || req.WallImage == "" {
		return nil, domain.ErrImageRequired
	}

	problem := &domain.Problem{
		ID:            uuid.NewString(),
		CreatorID:     creatorID,
		Name:          req.Name,
		Description:   req.Description,
		Grade:         req.Grade,
		Style:         style,
		NumberOfMoves: req.NumberOfMoves,
		Image:         req.Image,
		WallImage:     req.WallImage,
		Holds:         req.Holds,
	}

	if err := s.problemRepo.Create(ctx, problem); err != nil {
		log.WithError(err).WithField("creator_id", creatorID).Error("Failed to create problem")
		return nil, fmt.Errorf("failed to create problem: %w", err)
	}

	log.WithFields(log.Fields{
		"problem_id": problem.ID,
		"grade":      problem.Grade,
	}).Info("Problem successfully created")

	return problem, nil
}

func (s *ProblemService) GetProblem(ctx context.Context, id string) (*domain.Problem, error) {
	if id == "" {
		return nil, domain.ErrProblemNotFound
	}
	return s.problemRepo.GetByID(ctx, id)
}

func (s *ProblemService) ListProblems(ctx context.Context, limit, offset int) ([]domain.Problem, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > domain.MaxListLimit {
		limit = domain.MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	problems, err := s.problemRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list problems: %w", err)
	}

	return problems, nil
}
