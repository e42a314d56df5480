package service

import (
	"context"
	"fmt"
	"strings"

	"gym-service/internal/domain"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type GuildRepository interface {
	Create(ctx context.Context, guild *domain.Guild, ownerID string) error
	GetByID(ctx context.Context, id string) (*domain.Guild, error)
	GetByName(ctx context.Context, name string) (*domain.Guild, error)
	ListMembers(ctx context.Context, guildID string) ([]domain.GuildMemberSummary, error)
	ListInvites(ctx context.Context, guildID string) ([]domain.GuildMemberSummary, error)
	IsMember(ctx context.Context, guildID, userID string) (bool, error)
	IsInvited(ctx context.Context, guildID, userID string) (bool, error)
	AddMember(ctx context.Context, guildID, userID, role string) error
	RemoveMember(ctx context.Context, guildID, userID string) error
	AddInvite(ctx context.Context, guildID, userID string) error
	List(ctx context.Context, nameQuery string, limit int) ([]domain.Guild, error)
}

type GuildService struct {
	guildRepo GuildRepository
	userRepo  UserRepository
}

func NewGuildService(guildRepo GuildRepository, userRepo UserRepository) *GuildService {
	return &GuildService{guildRepo: guildRepo, userRepo: userRepo}
}

// CreateGuild creates a guild with the caller as its owner.
func (s *GuildService) CreateGuild(ctx context.Context, ownerID string, req domain.CreateGuildRequest) (*domain.Guild, error) {
	name := strings.TrimSpace(req.Name)
	if err := domain.ValidateGuildName(name); err != nil {
		return nil, err
	}

	if existing, err := s.guildRepo.GetByName(ctx, name); err == nil && existing != nil {
		return nil, domain.ErrGuildNameExists
	}

	guild := &domain.Guild{
		ID:   uuid.NewString(),
		Name: name,
	}

	if err := s.guildRepo.Create(ctx, guild, ownerID); err != nil {
		log.WithError(err).WithField("name", name).Error("Failed to create guild")
		return nil, fmt.Errorf("failed to create guild: %w", err)
	}

	log.WithFields(log.Fields{
		"guild_id": guild.ID,
		"name":     guild.Name,
		"owner_id": ownerID,
	}).Info("Guild successfully created")

	return guild, nil
}

// JoinGuild adds the caller as a member, consuming any pending invite.
func (s *GuildService) JoinGuild(ctx context.Context, guildID, userID string) (*domain.GuildDetails, error) {
	if _, err := s.guildRepo.GetByID(ctx, guildID); err != nil {
		return nil, err
	}

	member, err := s.guildRepo.IsMember(ctx, guildID, userID)
	if err != nil {
		return nil, err
	}
	if member {
		return nil, domain.ErrAlreadyGuildMember
	}

	if err := s.guildRepo.AddMember(ctx, guildID, userID, domain.GuildRoleMember); err != nil {
		return nil, fmt.Errorf("failed to join guild: %w", err)
	}

	log.WithFields(log.Fields{
		"guild_id": guildID,
		"user_id":  userID,
	}).Info("User joined guild")

	return s.GetGuild(ctx, guildID)
}

// InviteToGuild records an invite for a user who is not yet a member.
func (s *GuildService) InviteToGuild(ctx context.Context, guildID, userID string) error {
	if userID == "" {
		return fmt.Errorf("userId required")
	}

	if _, err := s.guildRepo.GetByID(ctx, guildID); err != nil {
		return err
	}
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return err
	}

	member, err := s.guildRepo.IsMember(ctx, guildID, userID)
	if err != nil {
		return err
	}
	invited, err := s.guildRepo.IsInvited(ctx, guildID, userID)
	if err != nil {
		return err
	}
	if member || invited {
		return domain.ErrAlreadyInvited
	}

	return s.guildRepo.AddInvite(ctx, guildID, userID)
}

func (s *GuildService) LeaveGuild(ctx context.Context, guildID, userID string) error {
	if _, err := s.guildRepo.GetByID(ctx, guildID); err != nil {
		return err
	}

	if err := s.guildRepo.RemoveMember(ctx, guildID, userID); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"guild_id": guildID,
		"user_id":  userID,
	}).Info("User left guild")

	return nil
}

// GetGuild returns the guild with its member and invite summaries.
func (s *GuildService) GetGuild(ctx context.Context, guildID string) (*domain.GuildDetails, error) {
	guild, err := s.guildRepo.GetByID(ctx, guildID)
	if err != nil {
		return nil, err
	}

	members, err := s.guildRepo.ListMembers(ctx, guildID)
	if err != nil {
		return nil, err
	}
	invites, err := s.guildRepo.ListInvites(ctx, guildID)
	if err != nil {
		return nil, err
	}

	return &domain.GuildDetails{
		Guild:   *guild,
		Members: members,
		Invites: invites,
	}, nil
}

func (s *GuildService) ListGuilds(ctx context.Context, nameQuery string) ([]domain.Guild, error) {
	guilds, err := s.guildRepo.List(ctx, strings.TrimSpace(nameQuery), 20)
	if err != nil {
		return nil, fmt.Errorf("failed to list guilds: %w", err)
	}
	return guilds, nil
}
