package plan

import (
	"time"

	"loopplanner/internal/app/ports"
)

type Plan struct {
	ID        string    `json:"id"`
	ProfileID string    `json:"profile_id"`
	Name      string    `json:"name"`
	Actions   []string  `json:"actions"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func fromRecord(r ports.PlanRecord) Plan {
	return Plan{
		ID:        r.ID,
		ProfileID: r.ProfileID,
		Name:      r.Name,
		Actions:   append([]string(nil), r.Actions...),
		Version:   r.Version,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type SaveRequest struct {
	ID        string
	ProfileID string
	Name      string
	Actions   []string
	// Version is the version the caller last read; ignored for new plans.
	Version int64
}

type ListRequest struct {
	ProfileID string
	Limit     int
}
