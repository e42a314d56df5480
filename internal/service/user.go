package service

import (
	"context"
	"fmt"
	"regexp"

	"gym-service/internal/domain"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var (
	emailRegex    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,30}$`)
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error)
	Update(ctx context.Context, userID string, req domain.UpdateUserRequest) error
	SetStripeCustomerID(ctx context.Context, userID, customerID string) error
	List(ctx context.Context, limit, offset int) ([]domain.User, error)
}

type UserService struct {
	userRepo UserRepository
	audit    *AuditService
}

func NewUserService(userRepo UserRepository, audit *AuditService) *UserService {
	return &UserService{userRepo: userRepo, audit: audit}
}

func (s *UserService) Register(ctx context.Context, req domain.RegisterUserRequest) (*domain.User, error) {
	if !emailRegex.MatchString(req.Email) {
		return nil, domain.ErrInvalidEmail
	}
	if !usernameRegex.MatchString(req.Username) {
		return nil, domain.ErrInvalidUsername
	}

	level := req.ClimbingLevel
	if level == "" {
		level = domain.LevelBeginner
	}
	if !isValidClimbingLevel(level) {
		return nil, fmt.Errorf("invalid climbing level %q", req.ClimbingLevel)
	}

	if existing, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, domain.ErrEmailExists
	}
	if existing, err := s.userRepo.GetByUsername(ctx, req.Username); err == nil && existing != nil {
		return nil, domain.ErrUsernameExists
	}

	user := &domain.User{
		ID:               uuid.NewString(),
		Email:            req.Email,
		Username:         req.Username,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		MembershipType:   domain.MembershipBasic,
		MembershipStatus: domain.MembershipInactive,
		ClimbingLevel:    level,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		log.WithError(err).WithField("email", req.Email).Error("Failed to register user")
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	log.WithFields(log.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("User successfully registered")

	s.audit.RecordUserRegistered(ctx, user)

	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	if id == "" {
		return nil, fmt.Errorf("user ID is required")
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (s *UserService) UpdateUser(ctx context.Context, id string, req domain.UpdateUserRequest) (*domain.User, error) {
	if id == "" {
		return nil, fmt.Errorf("user ID is required")
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		if !emailRegex.MatchString(*req.Email) {
			return nil, domain.ErrInvalidEmail
		}
		if *req.Email != user.Email {
			if existing, err := s.userRepo.GetByEmail(ctx, *req.Email); err == nil && existing != nil {
				return nil, domain.ErrEmailExists
			}
		}
	}

	if req.Username != nil {
		if !usernameRegex.MatchString(*req.Username) {
			return nil, domain.ErrInvalidUsername
		}
		if *req.Username != user.Username {
			if existing, err := s.userRepo.GetByUsername(ctx, *req.Username); err == nil && existing != nil {
				return nil, domain.ErrUsernameExists
			}
		}
	}

	if req.ClimbingLevel != nil && !isValidClimbingLevel(*req.ClimbingLevel) {
		return nil, fmt.Errorf("invalid climbing level %q", *req.ClimbingLevel)
	}

	if err := s.userRepo.Update(ctx, id, req); err != nil {
		log.WithError(err).WithField("user_id", id).Error("Failed to update user")
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return s.userRepo.GetByID(ctx, id)
}

func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > domain.MaxListLimit {
		limit = domain.MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}

	users, err := s.userRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

func isValidClimbingLevel(level string) bool {
	for _, l := range domain.ValidClimbingLevels() {
		if l == level {
			return true
		}
	}
	return false
}
