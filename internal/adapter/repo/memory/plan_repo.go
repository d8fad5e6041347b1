package memory

import (
	"context"
	"sort"

	"loopplanner/internal/app/ports"
)

type PlanRepo struct {
	store *Store
}

func NewPlanRepo(store *Store) PlanRepo {
	return PlanRepo{store: store}
}

func (r PlanRepo) GetByID(_ context.Context, id string) (ports.PlanRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	p, ok := r.store.plans[id]
	if !ok {
		return ports.PlanRecord{}, ports.ErrNotFound
	}
	return clonePlan(p), nil
}

// ListByProfile returns the newest plans first.
func (r PlanRepo) ListByProfile(_ context.Context, profileID string, limit int) ([]ports.PlanRecord, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]ports.PlanRecord, 0)
	for _, p := range r.store.plans {
		if p.ProfileID == profileID {
			out = append(out, clonePlan(p))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].UpdatedAt.After(out[j].UpdatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r PlanRepo) SaveWithVersion(_ context.Context, plan ports.PlanRecord, expectedVersion int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	current, ok := r.store.plans[plan.ID]
	if !ok {
		if expectedVersion != 0 {
			return ports.ErrConflict
		}
		r.store.plans[plan.ID] = clonePlan(plan)
		return nil
	}
	if current.Version != expectedVersion {
		return ports.ErrConflict
	}
	r.store.plans[plan.ID] = clonePlan(plan)
	return nil
}

func (r PlanRepo) Delete(_ context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.plans[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.store.plans, id)
	return nil
}
