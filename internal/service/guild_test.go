package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gym-service/internal/domain"
)

type fakeGuildRepo struct {
	guilds  map[string]*domain.Guild
	members map[string]map[string]string // guild id -> user id -> role
	invites map[string]map[string]bool
}

func newFakeGuildRepo() *fakeGuildRepo {
	return &fakeGuildRepo{
		guilds:  make(map[string]*domain.Guild),
		members: make(map[string]map[string]string),
		invites: make(map[string]map[string]bool),
	}
}

func (f *fakeGuildRepo) Create(_ context.Context, guild *domain.Guild, ownerID string) error {
	f.guilds[guild.ID] = guild
	f.members[guild.ID] = map[string]string{ownerID: domain.GuildRoleOwner}
	f.invites[guild.ID] = make(map[string]bool)
	return nil
}

func (f *fakeGuildRepo) GetByID(_ context.Context, id string) (*domain.Guild, error) {
	if g, ok := f.guilds[id]; ok {
		return g, nil
	}
	return nil, domain.ErrGuildNotFound
}

func (f *fakeGuildRepo) GetByName(_ context.Context, name string) (*domain.Guild, error) {
	for _, g := range f.guilds {
		if g.Name == name {
			return g, nil
		}
	}
	return nil, domain.ErrGuildNotFound
}

func (f *fakeGuildRepo) ListMembers(_ context.Context, guildID string) ([]domain.GuildMemberSummary, error) {
	var out []domain.GuildMemberSummary
	for userID, role := range f.members[guildID] {
		out = append(out, domain.GuildMemberSummary{UserID: userID, Role: role})
	}
	return out, nil
}

func (f *fakeGuildRepo) ListInvites(_ context.Context, guildID string) ([]domain.GuildMemberSummary, error) {
	var out []domain.GuildMemberSummary
	for userID := range f.invites[guildID] {
		out = append(out, domain.GuildMemberSummary{UserID: userID})
	}
	return out, nil
}

func (f *fakeGuildRepo) IsMember(_ context.Context, guildID, userID string) (bool, error) {
	_, ok := f.members[guildID][userID]
	return ok, nil
}

func (f *fakeGuildRepo) IsInvited(_ context.Context, guildID, userID string) (bool, error) {
	return f.invites[guildID][userID], nil
}

func (f *fakeGuildRepo) AddMember(_ context.Context, guildID, userID, role string) error {
	f.members[guildID][userID] = role
	delete(f.invites[guildID], userID)
	return nil
}

func (f *fakeGuildRepo) RemoveMember(_ context.Context, guildID, userID string) error {
	if _, ok := f.members[guildID][userID]; !ok {
		return domain.ErrNotGuildMember
	}
	delete(f.members[guildID], userID)
	return nil
}

func (f *fakeGuildRepo) AddInvite(_ context.Context, guildID, userID string) error {
	f.invites[guildID][userID] = true
	return nil
}

func (f *fakeGuildRepo) List(_ context.Context, nameQuery string, limit int) ([]domain.Guild, error) {
	var out []domain.Guild
	for _, g := range f.guilds {
		if nameQuery == "" || strings.HasPrefix(strings.ToLower(g.Name), strings.ToLower(nameQuery)) {
			out = append(out, *g)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func seedGuildUser(t *testing.T, users *fakeUserRepo, email, username string) *domain.User {
	t.Helper()
	svc := NewUserService(users, NewAuditService(nil))
	user, err := svc.Register(context.Background(), domain.RegisterUserRequest{
		Email:    email,
		Username: username,
	})
	if err != nil {
		t.Fatalf("failed to seed user %s: %v", username, err)
	}
	return user
}

func TestCreateGuildMakesCallerOwner(t *testing.T) {
	repo := newFakeGuildRepo()
	svc := NewGuildService(repo, newFakeUserRepo())

	guild, err := svc.CreateGuild(context.Background(), "user-1", domain.CreateGuildRequest{Name: "Crimp Crew"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if guild.ID == "" {
		t.Error("expected generated guild id")
	}
	if role := repo.members[guild.ID]["user-1"]; role != domain.GuildRoleOwner {
		t.Errorf("expected creator to be owner, got role %q", role)
	}
}

func TestCreateGuildValidation(t *testing.T) {
	repo := newFakeGuildRepo()
	svc := NewGuildService(repo, newFakeUserRepo())

	if _, err := svc.CreateGuild(context.Background(), "user-1", domain.CreateGuildRequest{Name: "   "}); !errors.Is(err, domain.ErrInvalidGuildName) {
		t.Errorf("expected ErrInvalidGuildName, got %v", err)
	}

	long := strings.Repeat("x", 51)
	if _, err := svc.CreateGuild(context.Background(), "user-1", domain.CreateGuildRequest{Name: long}); !errors.Is(err, domain.ErrInvalidGuildName) {
		t.Errorf("expected ErrInvalidGuildName for long name, got %v", err)
	}

	if _, err := svc.CreateGuild(context.Background(), "user-1", domain.CreateGuildRequest{Name: "Crimp Crew"}); err != nil {
		t.Fatalf("failed to seed guild: %v", err)
	}
	if _, err := svc.CreateGuild(context.Background(), "user-2", domain.CreateGuildRequest{Name: "Crimp Crew"}); !errors.Is(err, domain.ErrGuildNameExists) {
		t.Errorf("expected ErrGuildNameExists, got %v", err)
	}
}

func TestJoinGuild(t *testing.T) {
	repo := newFakeGuildRepo()
	svc := NewGuildService(repo, newFakeUserRepo())

	guild, err := svc.CreateGuild(context.Background(), "owner", domain.CreateGuildRequest{Name: "Crimp Crew"})
	if err != nil {
		t.Fatalf("failed to seed guild: %v", err)
	}

	details, err := svc.JoinGuild(context.Background(), guild.ID, "user-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(details.Members) != 2 {
		t.Errorf("expected 2 members after join, got %d", len(details.Members))
	}

	if _, err := svc.JoinGuild(context.Background(), guild.ID, "user-2"); !errors.Is(err, domain.ErrAlreadyGuildMember) {
		t.Errorf("expected ErrAlreadyGuildMember, got %v", err)
	}

	if _, err := svc.JoinGuild(context.Background(), "missing", "user-2"); !errors.Is(err, domain.ErrGuildNotFound) {
		t.Errorf("expected ErrGuildNotFound, got %v", err)
	}
}

func TestInviteAndJoinConsumesInvite(t *testing.T) {
	repo := newFakeGuildRepo()
	users := newFakeUserRepo()
	svc := NewGuildService(repo, users)

	bob := seedGuildUser(t, users, "bob@example.com", "bob")

	guild, err := svc.CreateGuild(context.Background(), "owner", domain.CreateGuildRequest{Name: "Crimp Crew"})
	if err != nil {
		t.Fatalf("failed to seed guild: %v", err)
	}

	if err := svc.InviteToGuild(context.Background(), guild.ID, bob.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.InviteToGuild(context.Background(), guild.ID, bob.ID); !errors.Is(err, domain.ErrAlreadyInvited) {
		t.Errorf("expected ErrAlreadyInvited, got %v", err)
	}

	if _, err := svc.JoinGuild(context.Background(), guild.ID, bob.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.invites[guild.ID][bob.ID] {
		t.Error("expected invite consumed on join")
	}
}

func TestInviteUnknownUser(t *testing.T) {
	repo := newFakeGuildRepo()
	svc := NewGuildService(repo, newFakeUserRepo())

	guild, err := svc.CreateGuild(context.Background(), "owner", domain.CreateGuildRequest{Name: "Crimp Crew"})
	if err != nil {
		t.Fatalf("failed to seed guild: %v", err)
	}

	if err := svc.InviteToGuild(context.Background(), guild.ID, "ghost"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestLeaveGuild(t *testing.T) {
	repo := newFakeGuildRepo()
	svc := NewGuildService(repo, newFakeUserRepo())

	guild, err := svc.CreateGuild(context.Background(), "owner", domain.CreateGuildRequest{Name: "Crimp Crew"})
	if err != nil {
		t.Fatalf("failed to seed guild: %v", err)
	}
	if _, err := svc.JoinGuild(context.Background(), guild.ID, "user-2"); err != nil {
		t.Fatalf("failed to join: %v", err)
	}

	if err := svc.LeaveGuild(context.Background(), guild.ID, "user-2"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.LeaveGuild(context.Background(), guild.ID, "user-2"); !errors.Is(err, domain.ErrNotGuildMember) {
		t.Errorf("expected ErrNotGuildMember, got %v", err)
	}
}
