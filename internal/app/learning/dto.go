package learning

import (
	"io"

	"loopplanner/internal/domain/familiarity"
	"loopplanner/internal/domain/survival"
)

type ImportRequest struct {
	ProfileID string
	CSV       io.Reader
	// Strict fails the import when any identifier is missing from the catalog.
	Strict bool
}

type ImportResponse struct {
	ProfileID    string            `json:"profile_id"`
	Imported     int               `json:"imported"`
	Unknown      []string          `json:"unknown_actions,omitempty"`
	SkippedLines []int             `json:"skipped_lines,omitempty"`
	Stats        familiarity.Stats `json:"stats"`
}

type GetResponse struct {
	ProfileID string            `json:"profile_id"`
	Learning  familiarity.State `json:"learning"`
	Stats     familiarity.Stats `json:"stats"`
}

type CommitRequest struct {
	ProfileID string
	Actions   []string
}

type CommitResponse struct {
	ProfileID string            `json:"profile_id"`
	Summary   survival.Summary  `json:"summary"`
	Learning  familiarity.State `json:"learning"`
	Stats     familiarity.Stats `json:"stats"`
}
