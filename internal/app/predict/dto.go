package predict

import (
	"loopplanner/internal/domain/familiarity"
	"loopplanner/internal/domain/survival"
)

type Request struct {
	ProfileID string
	Actions   []string
	// Learning overrides the profile's stored learning when non-nil.
	Learning familiarity.State
}

type LearningSource string

const (
	LearningInline  LearningSource = "inline"
	LearningProfile LearningSource = "profile"
	LearningEmpty   LearningSource = "empty"
)

type Response struct {
	Timeline       []survival.StepResult `json:"timeline"`
	Summary        survival.Summary      `json:"summary"`
	Learning       familiarity.State     `json:"learning"`
	LearningSource LearningSource        `json:"learning_source"`
	Rejected       int                   `json:"rejected_steps"`
	Warnings       int                   `json:"warnings"`
}
