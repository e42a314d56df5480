package domain

import (
	"errors"
	"time"
)

const maxProblemNameLength = 100

var (
	ErrProblemNotFound    = errors.New("problem not found")
	ErrInvalidProblemName = errors.New("invalid problem name")
	ErrInvalidGrade       = errors.New("invalid grade")
	ErrInvalidStyle       = errors.New("invalid style")
	ErrImageRequired      = errors.New("problem image is required")
)

// Problem style constants
const (
	StyleCrimpy    = "crimpy"
	StyleSlopey    = "slopey"
	StyleJuggy     = "juggy"
	StyleTechnical = "technical"
	StylePowerful  = "powerful"
	StyleDynamic   = "dynamic"
	StyleBalancy   = "balancy"
)

// ValidStyles returns list of valid problem styles
func ValidStyles() []string {
	return []string{StyleCrimpy, StyleSlopey, StyleJuggy, StyleTechnical, StylePowerful, StyleDynamic, StyleBalancy}
}

// ValidGrades returns the supported V-scale grades
func ValidGrades() []string {
	return []string{"V0", "V1", "V2", "V3", "V4", "V5", "V6", "V7", "V8", "V9", "V10", "V11", "V12"}
}

// Hold is one marked hold on a problem photo, in percent coordinates.
type Hold struct {
	XPercent float64 `json:"xPercent"`
	YPercent float64 `json:"yPercent"`
	Type     string  `json:"type"` // start, startBoth, finish, feet, normal
}

type Problem struct {
	ID            string    `json:"id"`
	CreatorID     string    `json:"creator_id"`
	CreatorName   string    `json:"creator_name,omitempty"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Grade         string    `json:"grade"`
	Style         string    `json:"style"`
	NumberOfMoves string    `json:"number_of_moves,omitempty"`
	Image         string    `json:"image"`
	WallImage     string    `json:"wall_image"`
	Holds         []Hold    `json:"holds"`
	CreatedAt     time.Time `json:"created_at"`
}

type CreateProblemRequest struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	Grade         string `json:"grade"`
	Style         string `json:"style"`
	NumberOfMoves string `json:"numberOfMoves"`
	Image         string `json:"image"`
	WallImage     string `json:"wallImage"`
	Holds         []Hold `json:"holds"`
}

func ValidateProblemName(name string) error {
	if name == "" || len(name) > maxProblemNameLength {
		return ErrInvalidProblemName
	}
	return nil
}

func ValidateGrade(grade string) error {
	for _, g := range ValidGrades() {
		if g == grade {
			return nil
		}
	}
	return ErrInvalidGrade
}

func ValidateStyle(style string) error {
	for _, s := range ValidStyles() {
		if s == style {
			return nil
		}
	}
	return ErrInvalidStyle
}
