package domain

import (
	"errors"
	"strings"
	"time"
)

const maxGuildNameLength = 50

var (
	ErrGuildNotFound      = errors.New("guild not found")
	ErrGuildNameExists    = errors.New("guild name already exists")
	ErrInvalidGuildName   = errors.New("invalid guild name")
	ErrAlreadyGuildMember = errors.New("already a member")
	ErrAlreadyInvited     = errors.New("user already invited or member")
	ErrNotGuildMember     = errors.New("not a guild member")
)

// Guild role constants
const (
	GuildRoleOwner  = "owner"
	GuildRoleAdmin  = "admin"
	GuildRoleMember = "member"
)

type Guild struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GuildMemberSummary is the member view returned with a guild: the fields
// the clubhouse screen renders.
type GuildMemberSummary struct {
	UserID        string `json:"user_id"`
	Username      string `json:"username"`
	Role          string `json:"role"`
	ClimbingLevel string `json:"climbing_level"`
}

type GuildDetails struct {
	Guild
	Members []GuildMemberSummary `json:"members"`
	Invites []GuildMemberSummary `json:"invites"`
}

type CreateGuildRequest struct {
	Name string `json:"name"`
}

type InviteGuildRequest struct {
	UserID string `json:"userId"`
}

func ValidateGuildName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > maxGuildNameLength {
		return ErrInvalidGuildName
	}
	return nil
}
