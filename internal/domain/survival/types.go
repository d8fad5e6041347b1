package survival

type Vital string

const (
	VitalAir   Vital = "air"
	VitalWater Vital = "water"
	VitalFood  Vital = "food"
)

// AllVitals is the drain and failure priority order.
var AllVitals = []Vital{VitalAir, VitalWater, VitalFood}

type Vitals struct {
	Air   float64 `json:"air" yaml:"air"`
	Water float64 `json:"water" yaml:"water"`
	Food  float64 `json:"food" yaml:"food"`
}

func (v Vitals) Get(vital Vital) float64 {
	switch vital {
	case VitalAir:
		return v.Air
	case VitalWater:
		return v.Water
	case VitalFood:
		return v.Food
	default:
		return 0
	}
}

func (v *Vitals) Set(vital Vital, value float64) {
	switch vital {
	case VitalAir:
		v.Air = value
	case VitalWater:
		v.Water = value
	case VitalFood:
		v.Food = value
	}
}

func (v *Vitals) Add(vital Vital, delta float64) {
	v.Set(vital, v.Get(vital)+delta)
}

// GameState is owned by a single Evaluate call.
type GameState struct {
	Vitals        Vitals         `json:"vitals"`
	Capacities    Vitals         `json:"capacities"`
	Inventory     map[string]int `json:"inventory"`
	Location      string         `json:"location"`
	TimeElapsed   float64        `json:"time_elapsed"`
	LoopFailed    bool           `json:"loop_failed"`
	FailureReason string         `json:"failure_reason,omitempty"`
	FailureIndex  int            `json:"failure_index,omitempty"`
}

func newGameState(t Tuning) GameState {
	s := GameState{
		Vitals:     t.InitialVitals,
		Capacities: t.Capacities,
		Inventory:  map[string]int{},
		Location:   t.StartLocation,
	}
	for item, count := range t.StartingInventory {
		if count > 0 {
			s.Inventory[item] = count
		}
	}
	return s
}

func (s *GameState) AddItem(item string, count int) {
	if item == "" || count == 0 {
		return
	}
	if s.Inventory == nil {
		s.Inventory = map[string]int{}
	}
	next := s.Inventory[item] + count
	if next <= 0 {
		delete(s.Inventory, item)
		return
	}
	s.Inventory[item] = next
}

func (s GameState) inventoryCopy() map[string]int {
	out := make(map[string]int, len(s.Inventory))
	for k, v := range s.Inventory {
		out[k] = v
	}
	return out
}

// latchFailure records the first depletion only.
func (s *GameState) latchFailure(reason string, index int) {
	if s.LoopFailed {
		return
	}
	s.LoopFailed = true
	s.FailureReason = reason
	s.FailureIndex = index
}

func depletionReason(v Vital) string {
	switch v {
	case VitalAir:
		return "Air depleted"
	case VitalWater:
		return "Water depleted"
	case VitalFood:
		return "Food depleted"
	default:
		return string(v) + " depleted"
	}
}
