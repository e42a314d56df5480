package domain

import (
	"errors"
	"time"
)

// MaxListLimit caps page sizes across list endpoints.
const MaxListLimit = 100

// User errors
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailExists     = errors.New("email already registered")
	ErrUsernameExists  = errors.New("username already taken")
	ErrInvalidEmail    = errors.New("invalid email format")
	ErrInvalidUsername = errors.New("invalid username")
)

// Membership type constants
const (
	MembershipBasic   = "basic"
	MembershipPremium = "premium"
	MembershipVIP     = "vip"
)

// Membership status constants
const (
	MembershipActive   = "active"
	MembershipInactive = "inactive"
	MembershipExpired  = "expired"
)

// Climbing level constants
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
	LevelExpert       = "expert"
)

// ValidClimbingLevels returns list of valid climbing levels
func ValidClimbingLevels() []string {
	return []string{LevelBeginner, LevelIntermediate, LevelAdvanced, LevelExpert}
}

type User struct {
	ID                  string     `json:"id"`
	Email               string     `json:"email"`
	Username            string     `json:"username"`
	FirstName           string     `json:"first_name,omitempty"`
	LastName            string     `json:"last_name,omitempty"`
	MembershipType      string     `json:"membership_type"`
	MembershipStatus    string     `json:"membership_status"`
	MembershipStartDate *time.Time `json:"membership_start_date,omitempty"`
	MembershipEndDate   *time.Time `json:"membership_end_date,omitempty"`
	ClimbingLevel       string     `json:"climbing_level"`
	GuildID             *string    `json:"guild_id,omitempty"`
	GuildRole           *string    `json:"guild_role,omitempty"`
	StripeCustomerID    *string    `json:"-"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// DisplayName returns the name shown in feeds and access statistics:
// "First Last" when available, otherwise the username.
func (u *User) DisplayName() string {
	name := u.FirstName
	if u.LastName != "" {
		if name != "" {
			name += " "
		}
		name += u.LastName
	}
	if name == "" {
		return u.Username
	}
	return name
}

type RegisterUserRequest struct {
	Email         string `json:"email"`
	Username      string `json:"username"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	ClimbingLevel string `json:"climbing_level"`
}

type UpdateUserRequest struct {
	Email         *string `json:"email,omitempty"`
	Username      *string `json:"username,omitempty"`
	FirstName     *string `json:"first_name,omitempty"`
	LastName      *string `json:"last_name,omitempty"`
	ClimbingLevel *string `json:"climbing_level,omitempty"`
}
