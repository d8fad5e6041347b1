package ports

import (
	"context"
	"time"

	"loopplanner/internal/domain/familiarity"
)

// PlanRecord is a saved action list owned by one profile.
type PlanRecord struct {
	ID        string
	ProfileID string
	Name      string
	Actions   []string
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

type LearningRepository interface {
	Get(ctx context.Context, profileID string) (familiarity.State, error)
	Save(ctx context.Context, profileID string, state familiarity.State) error
}

type PlanRepository interface {
	GetByID(ctx context.Context, id string) (PlanRecord, error)
	ListByProfile(ctx context.Context, profileID string, limit int) ([]PlanRecord, error)
	SaveWithVersion(ctx context.Context, plan PlanRecord, expectedVersion int64) error
	Delete(ctx context.Context, id string) error
}
