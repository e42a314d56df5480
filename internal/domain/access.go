package domain

import (
	"errors"
	"time"

	"gym-service/internal/geofence"
)

// Access errors (infrastructure and caller faults; policy rejections are
// carried in AccessDecision, not as errors)
var (
	ErrAccessEventNotFound = errors.New("access event not found")
	ErrInvalidAccessStatus = errors.New("invalid access status")
	ErrLocationInfoMissing = errors.New("location information required (id, name, ip)")
)

// Access event status constants
const (
	AccessStatusSuccess = "success"
	AccessStatusFailed  = "failed"
	AccessStatusTimeout = "timeout"
	AccessStatusDenied  = "denied"
)

// ValidAccessStatuses returns list of valid access event statuses
func ValidAccessStatuses() []string {
	return []string{AccessStatusSuccess, AccessStatusFailed, AccessStatusTimeout, AccessStatusDenied}
}

// Decision reason codes, stable across the API
const (
	CodeLocationRequired = "LOCATION_REQUIRED"
	CodeRateLimited      = "RATE_LIMITED"
	CodeInvalidLocation  = "INVALID_LOCATION"
	CodeTooFar           = "TOO_FAR"
	CodeRecentAccess     = "RECENT_ACCESS"
)

// EventLocation identifies the door a request targets.
type EventLocation struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	IP   string `json:"ip"`
}

// UserLocation is the caller-reported position. Latitude and longitude are
// pointers so that an absent coordinate is distinguishable from 0.
type UserLocation struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Accuracy  *float64 `json:"accuracy,omitempty"`
}

// AccessEvent is one door-access attempt in the append-only log. Created
// exactly once per attempt, never mutated, retained indefinitely.
type AccessEvent struct {
	ID           string        `json:"id"`
	UserID       string        `json:"user_id"`
	Location     EventLocation `json:"location"`
	UserLocation *UserLocation `json:"user_location,omitempty"`
	AccessTime   time.Time     `json:"access_time"`
	Status       string        `json:"status"`
	SessionID    *string       `json:"session_id,omitempty"`
}

// AccessDecision is the outcome of a check-access call. It is ephemeral:
// produced per request, never persisted. Denials carry a machine-readable
// Code plus enough context for the caller to explain itself to an end user.
type AccessDecision struct {
	Authorized  bool
	Code        string
	Message     string
	Distance    int // rounded meters, set once computed
	MaxDistance int // allowed radius in meters, set on TOO_FAR
	WaitTime    int // suggested wait in seconds, set on RATE_LIMITED / RECENT_ACCESS
	Location    *geofence.Location
}

type CheckAccessRequest struct {
	LocationID   string        `json:"locationId"`
	UserLocation *UserLocation `json:"userLocation"`
}

type LogAccessRequest struct {
	Location     EventLocation `json:"location"`
	UserLocation *UserLocation `json:"userLocation,omitempty"`
	Status       string        `json:"status,omitempty"`
	SessionID    *string       `json:"sessionId,omitempty"`
}

// LocationStats is the per-window summary for the stats endpoint.
type LocationStats struct {
	TotalAccesses int `json:"totalAccesses"`
	UniqueUsers   int `json:"uniqueUsers"`
}

// RecentAccess is one entry of the recent-accesses list, with the user's
// display name resolved.
type RecentAccess struct {
	ID         string        `json:"id"`
	User       AccessUser    `json:"user"`
	Location   EventLocation `json:"location"`
	AccessTime time.Time     `json:"accessTime"`
	Status     string        `json:"status"`
}

type AccessUser struct {
	Name     string `json:"name"`
	Username string `json:"username,omitempty"`
}

// DailyAccessStats is one calendar day of a location's usage breakdown.
type DailyAccessStats struct {
	Date          string `json:"date"` // YYYY-MM-DD in the gym's timezone
	TotalAccesses int    `json:"totalAccesses"`
	UniqueUsers   int    `json:"uniqueUsers"`
}
