package survival

import (
	"loopplanner/internal/domain/arearesource"
	"loopplanner/internal/domain/familiarity"
)

const (
	DefaultVitalLevel      = 10.0
	BaseConsumptionPerSec  = 0.1
	DefaultHungerStartSec  = 60.0
	DefaultRestoreAmount   = 100.0
	DefaultStartLocation   = "Inside Talos"
	FallbackAreaAirInitial = 50.0
	FallbackAreaAirRate    = 0.5
)

// RestoreItem is consumed automatically when its vital goes negative.
type RestoreItem struct {
	Item   string  `json:"item" yaml:"item"`
	Vital  Vital   `json:"vital" yaml:"vital"`
	Amount float64 `json:"amount" yaml:"amount"`
}

type Tuning struct {
	InitialVitals         Vitals                    `json:"initial_vitals" yaml:"initial_vitals"`
	Capacities            Vitals                    `json:"capacities" yaml:"capacities"`
	ConsumptionRates      Vitals                    `json:"consumption_rates" yaml:"consumption_rates"`
	StartLocation         string                    `json:"start_location" yaml:"start_location"`
	StartingInventory     map[string]int            `json:"starting_inventory,omitempty" yaml:"starting_inventory,omitempty"`
	RestoreItems          []RestoreItem             `json:"restore_items" yaml:"restore_items"`
	HungerStartFallback   float64                   `json:"hunger_start_fallback" yaml:"hunger_start_fallback"`
	FallbackAreaResources []arearesource.PoolConfig `json:"fallback_area_resources" yaml:"fallback_area_resources"`
	Familiarity           familiarity.Params        `json:"familiarity" yaml:"familiarity"`
}

func DefaultTuning() Tuning {
	full := Vitals{Air: DefaultVitalLevel, Water: DefaultVitalLevel, Food: DefaultVitalLevel}
	maxAir := FallbackAreaAirInitial
	return Tuning{
		InitialVitals:    full,
		Capacities:       full,
		ConsumptionRates: Vitals{Air: BaseConsumptionPerSec, Water: BaseConsumptionPerSec, Food: BaseConsumptionPerSec},
		StartLocation:    DefaultStartLocation,
		RestoreItems: []RestoreItem{
			{Item: "Air Tank", Vital: VitalAir, Amount: DefaultRestoreAmount},
			{Item: "Water Bottle", Vital: VitalWater, Amount: DefaultRestoreAmount},
			{Item: "Food Ration", Vital: VitalFood, Amount: DefaultRestoreAmount},
		},
		HungerStartFallback: DefaultHungerStartSec,
		FallbackAreaResources: []arearesource.PoolConfig{{
			Location:       DefaultStartLocation,
			Resource:       string(VitalAir),
			Initial:        FallbackAreaAirInitial,
			Maximum:        &maxAir,
			GenerationRate: FallbackAreaAirRate,
		}},
		Familiarity: familiarity.DefaultParams(),
	}
}

// WithDefaults fills unset sections from DefaultTuning. A vitals block that is
// entirely zero counts as unset.
func (t Tuning) WithDefaults() Tuning {
	d := DefaultTuning()
	if t.InitialVitals == (Vitals{}) {
		t.InitialVitals = d.InitialVitals
	}
	if t.Capacities == (Vitals{}) {
		t.Capacities = d.Capacities
	}
	if t.ConsumptionRates == (Vitals{}) {
		t.ConsumptionRates = d.ConsumptionRates
	}
	if t.StartLocation == "" {
		t.StartLocation = d.StartLocation
	}
	if t.RestoreItems == nil {
		t.RestoreItems = d.RestoreItems
	}
	if t.HungerStartFallback <= 0 {
		t.HungerStartFallback = d.HungerStartFallback
	}
	if t.FallbackAreaResources == nil {
		t.FallbackAreaResources = d.FallbackAreaResources
	}
	if t.Familiarity == (familiarity.Params{}) {
		t.Familiarity = d.Familiarity
	}
	t.Familiarity = t.Familiarity.WithDefaults()
	return t
}
