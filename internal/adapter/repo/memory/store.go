package memory

import (
	"sync"

	"loopplanner/internal/app/ports"
	"loopplanner/internal/domain/familiarity"
)

// Store backs the in-memory repositories. txMu serializes RunInTx callers;
// mu guards the maps for reads outside a transaction.
type Store struct {
	txMu     sync.Mutex
	mu       sync.RWMutex
	learning map[string]familiarity.State
	plans    map[string]ports.PlanRecord
}

func NewStore() *Store {
	return &Store{
		learning: make(map[string]familiarity.State),
		plans:    make(map[string]ports.PlanRecord),
	}
}

func (s *Store) SeedLearning(profileID string, state familiarity.State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.learning[profileID] = state.Clone()
}

func clonePlan(p ports.PlanRecord) ports.PlanRecord {
	p.Actions = append([]string(nil), p.Actions...)
	return p
}
