package survival

import (
	"fmt"

	"loopplanner/internal/domain/arearesource"
	"loopplanner/internal/domain/familiarity"
	"loopplanner/internal/domain/worldevent"
)

// Logger is satisfied by *log.Logger from charmbracelet/log.
type Logger interface {
	Debug(msg any, keyvals ...any)
}

type nopLogger struct{}

func (nopLogger) Debug(any, ...any) {}

type StepResult struct {
	Index          int                                           `json:"index"`
	Action         string                                        `json:"action"`
	Vitals         Vitals                                        `json:"vitals"`
	Capacities     Vitals                                        `json:"capacities"`
	Inventory      map[string]int                                `json:"inventory"`
	Location       string                                        `json:"location"`
	TimeElapsed    float64                                       `json:"time_elapsed"`
	LoopFailed     bool                                          `json:"loop_failed"`
	FailureReason  *string                                       `json:"failure_reason"`
	FailureIndex   *int                                          `json:"failure_index"`
	ActionDuration float64                                       `json:"action_duration"`
	BaseDuration   float64                                       `json:"base_duration"`
	Learning       *familiarity.Record                           `json:"learning"`
	AreaResources  map[string]map[string]arearesource.PoolStatus `json:"area_resources"`
	Events         map[string]worldevent.Status                  `json:"events"`
	Triggered      []worldevent.Triggered                        `json:"triggered,omitempty"`
	Warning        string                                        `json:"warning,omitempty"`
	Rejected       bool                                          `json:"rejected,omitempty"`
}

type Summary struct {
	FinalVitals     Vitals            `json:"final_vitals"`
	Inventory       map[string]int    `json:"inventory"`
	Location        string            `json:"location"`
	LoopFailed      bool              `json:"loop_failed"`
	FailureReason   *string           `json:"failure_reason"`
	FailureIndex    *int              `json:"failure_index"`
	LoopLength      int               `json:"loop_length"`
	TimeElapsed     float64           `json:"time_elapsed"`
	TimeToDepletion map[Vital]float64 `json:"time_to_depletion,omitempty"`
}

type Result struct {
	Timeline []StepResult      `json:"timeline"`
	Summary  Summary           `json:"summary"`
	Learning familiarity.State `json:"learning"`
}

// Engine replays action lists. It holds no per-run state, so one Engine can
// serve concurrent Evaluate calls.
type Engine struct {
	Catalog Catalog
	Tuning  Tuning
	Logger  Logger
}

func NewEngine(catalog Catalog, tuning Tuning, logger Logger) Engine {
	if !catalog.normalized {
		catalog = catalog.Normalize()
	}
	return Engine{Catalog: catalog, Tuning: tuning.WithDefaults(), Logger: logger}
}

type run struct {
	catalog  Catalog
	tuning   Tuning
	logger   Logger
	state    GameState
	ledger   *arearesource.Ledger
	events   *worldevent.Timeline
	learning familiarity.State

	// sorted once per run for unknown-action suggestions
	actionNames []string
}

// Evaluate replays actions from the starting state. The caller's learning
// state is copied and normalized, never mutated.
func (e Engine) Evaluate(actions []string, learning familiarity.State) Result {
	r := e.newRun(learning)
	timeline := make([]StepResult, 0, len(actions))
	for i, name := range actions {
		timeline = append(timeline, r.step(i+1, name))
	}
	r.logger.Debug("evaluation finished",
		"steps", len(timeline),
		"time_elapsed", r.state.TimeElapsed,
		"loop_failed", r.state.LoopFailed,
	)
	return Result{
		Timeline: timeline,
		Summary:  r.summary(len(timeline)),
		Learning: r.learning,
	}
}

func (e Engine) newRun(learning familiarity.State) *run {
	catalog := e.Catalog
	if !catalog.normalized {
		catalog = catalog.Normalize()
	}
	tuning := e.Tuning.WithDefaults()
	logger := e.Logger
	if logger == nil {
		logger = nopLogger{}
	}
	r := &run{
		catalog:  catalog,
		tuning:   tuning,
		logger:   logger,
		state:    newGameState(tuning),
		ledger:   arearesource.NewLedger(catalog.AreaPools(tuning.FallbackAreaResources)),
		events:   worldevent.NewTimeline(catalog.Events, tuning.HungerStartFallback),
		learning: learning.Normalize(),

		actionNames: catalog.ActionNames(),
	}
	r.ledger.Reset()
	r.events.Reset()
	return r
}

func (r *run) step(index int, name string) StepResult {
	def, known := r.catalog.Action(name)
	warning := ""
	if !known {
		warning = unknownActionWarning(name, r.actionNames)
		r.logger.Debug("unknown action", "index", index, "action", name)
	}

	if def.LocationRequirement != "" && def.LocationRequirement != r.state.Location {
		return r.rejected(index, name, def, warning, fmt.Sprintf("Invalid location: must be in %s", def.LocationRequirement))
	}
	if def.Location != "" && !r.catalog.HasLocation(def.Location) {
		return r.rejected(index, name, def, warning, fmt.Sprintf("Invalid target location: %s is not a valid location", def.Location))
	}

	bypass := familiarity.ShouldBypassLearning(name)
	duration := def.Time
	if !bypass {
		record := r.learning.Lookup(name)
		duration = r.tuning.Familiarity.EffectiveDuration(def.Time, &record, def.LearningType)
	}

	triggered := r.events.Process(r.state.TimeElapsed, r.ledger)
	for _, ev := range triggered {
		r.logger.Debug("event triggered", "id", ev.ID, "time", ev.Time, "ignored", ev.Ignored)
	}
	r.ledger.GenerateAll(duration)
	r.drain(def, duration)
	r.autoConsume()

	r.state.TimeElapsed += duration
	for _, item := range def.Inventory {
		r.state.AddItem(item, 1)
	}
	if def.Location != "" {
		r.state.Location = def.Location
	}

	for _, v := range AllVitals {
		if r.state.Vitals.Get(v) < 0 {
			r.state.latchFailure(depletionReason(v), index)
			break
		}
	}

	if !bypass {
		familiarity.IncrementCompletion(r.learning, name)
	}

	out := r.snapshot(index, name)
	out.ActionDuration = duration
	out.BaseDuration = def.Time
	out.Triggered = triggered
	out.Warning = warning
	if rec, ok := r.learning[name]; ok {
		out.Learning = &rec
	}
	if r.state.LoopFailed {
		reason := r.state.FailureReason
		out.FailureReason = &reason
	}
	r.logger.Debug("step",
		"index", index,
		"action", name,
		"duration", duration,
		"time_elapsed", r.state.TimeElapsed,
	)
	return out
}

// rejected records a step that did not happen. State is left untouched.
func (r *run) rejected(index int, name string, def ActionDefinition, warning, reason string) StepResult {
	r.logger.Debug("step rejected", "index", index, "action", name, "reason", reason)
	out := r.snapshot(index, name)
	out.FailureReason = &reason
	out.BaseDuration = def.Time
	out.Warning = warning
	out.Rejected = true
	return out
}

func (r *run) snapshot(index int, name string) StepResult {
	out := StepResult{
		Index:         index,
		Action:        name,
		Vitals:        r.state.Vitals,
		Capacities:    r.state.Capacities,
		Inventory:     r.state.inventoryCopy(),
		Location:      r.state.Location,
		TimeElapsed:   r.state.TimeElapsed,
		LoopFailed:    r.state.LoopFailed,
		AreaResources: r.ledger.Dump(),
		Events:        r.events.Status(r.state.TimeElapsed),
	}
	if r.state.LoopFailed {
		failureIndex := r.state.FailureIndex
		out.FailureIndex = &failureIndex
	}
	return out
}

// drain takes each vital's cost from the area pool first and the remainder
// from the personal vital. Food is exempt until hunger starts.
func (r *run) drain(def ActionDefinition, duration float64) {
	for _, v := range AllVitals {
		if v == VitalFood && !r.events.IsHungerActive(r.state.TimeElapsed) {
			continue
		}
		total := r.tuning.ConsumptionRates.Get(v)*duration + def.ExtraConsumption[v]*duration
		fromArea := r.ledger.Consume(r.state.Location, string(v), total)
		r.state.Vitals.Add(v, -(total - fromArea))
	}
}

// autoConsume uses at most one restore item per negative vital.
func (r *run) autoConsume() {
	for _, v := range AllVitals {
		if r.state.Vitals.Get(v) >= 0 {
			continue
		}
		for _, item := range r.tuning.RestoreItems {
			if item.Vital != v || r.state.Inventory[item.Item] <= 0 {
				continue
			}
			r.state.Vitals.Add(v, item.Amount)
			r.state.AddItem(item.Item, -1)
			r.logger.Debug("auto consumed", "item", item.Item, "vital", v)
			break
		}
	}
}

func (r *run) summary(steps int) Summary {
	s := Summary{
		FinalVitals:     r.state.Vitals,
		Inventory:       r.state.inventoryCopy(),
		Location:        r.state.Location,
		LoopFailed:      r.state.LoopFailed,
		LoopLength:      steps,
		TimeElapsed:     r.state.TimeElapsed,
		TimeToDepletion: EstimateDepletion(r.state.Vitals, r.tuning.ConsumptionRates).Seconds,
	}
	if r.state.LoopFailed {
		reason := r.state.FailureReason
		index := r.state.FailureIndex
		s.FailureReason = &reason
		s.FailureIndex = &index
	}
	return s
}
