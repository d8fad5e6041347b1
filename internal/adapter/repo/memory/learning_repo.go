package memory

import (
	"context"

	"loopplanner/internal/app/ports"
	"loopplanner/internal/domain/familiarity"
)

type LearningRepo struct {
	store *Store
}

func NewLearningRepo(store *Store) LearningRepo {
	return LearningRepo{store: store}
}

func (r LearningRepo) Get(_ context.Context, profileID string) (familiarity.State, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	state, ok := r.store.learning[profileID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return state.Clone(), nil
}

func (r LearningRepo) Save(_ context.Context, profileID string, state familiarity.State) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.learning[profileID] = state.Clone()
	return nil
}
