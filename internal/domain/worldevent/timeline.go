package worldevent

import (
	"math"
	"sort"
)

type EffectType string

const (
	EffectStartResourceDrain EffectType = "startResourceDrain"
	EffectStopAreaGeneration EffectType = "stopAreaGeneration"
)

type Effect struct {
	Type     EffectType `json:"type"`
	Resource string     `json:"resource,omitempty"`
	Location string     `json:"location,omitempty"`
}

type Definition struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	TriggerTime float64  `json:"triggerTime"`
	Visible     bool     `json:"visible,omitempty"`
	Effects     []Effect `json:"effects"`
}

// GenerationStopper is the part of the area ledger events can switch off.
type GenerationStopper interface {
	StopGeneration(location, resource string)
}

type Triggered struct {
	ID      string       `json:"id"`
	Name    string       `json:"name"`
	Time    float64      `json:"time"`
	Ignored []EffectType `json:"ignored,omitempty"`
}

type Status struct {
	Name          string  `json:"name"`
	TriggerTime   float64 `json:"trigger_time"`
	Triggered     bool    `json:"triggered"`
	TimeRemaining float64 `json:"time_remaining"`
	Visible       bool    `json:"visible"`
}

type entry struct {
	def       Definition
	triggered bool
}

// Timeline holds one-shot world events for a single simulation run.
type Timeline struct {
	entries     []*entry
	hungerStart float64
	drains      map[string]bool
}

// NewTimeline orders events by trigger time. The hunger threshold is the
// earliest event that starts food drain, or hungerFallback when none does.
func NewTimeline(defs []Definition, hungerFallback float64) *Timeline {
	t := &Timeline{
		entries:     make([]*entry, 0, len(defs)),
		hungerStart: math.Inf(1),
		drains:      map[string]bool{},
	}
	for _, d := range defs {
		d.Effects = append([]Effect(nil), d.Effects...)
		t.entries = append(t.entries, &entry{def: d})
	}
	sort.SliceStable(t.entries, func(i, j int) bool {
		return t.entries[i].def.TriggerTime < t.entries[j].def.TriggerTime
	})
	for _, e := range t.entries {
		if startsFoodDrain(e.def) {
			t.hungerStart = e.def.TriggerTime
			break
		}
	}
	if math.IsInf(t.hungerStart, 1) {
		t.hungerStart = hungerFallback
	}
	return t
}

func startsFoodDrain(d Definition) bool {
	for _, eff := range d.Effects {
		if eff.Type == EffectStartResourceDrain && eff.Resource == "food" {
			return true
		}
	}
	return false
}

func (t *Timeline) HungerStart() float64 { return t.hungerStart }

func (t *Timeline) Reset() {
	for _, e := range t.entries {
		e.triggered = false
	}
	t.drains = map[string]bool{}
}

// Process fires every pending event whose trigger time has been reached.
func (t *Timeline) Process(currentTime float64, ledger GenerationStopper) []Triggered {
	var fired []Triggered
	for _, e := range t.entries {
		if e.triggered || currentTime < e.def.TriggerTime {
			continue
		}
		e.triggered = true
		tr := Triggered{ID: e.def.ID, Name: e.def.Name, Time: currentTime}
		for _, eff := range e.def.Effects {
			if !t.apply(eff, ledger) {
				tr.Ignored = append(tr.Ignored, eff.Type)
			}
		}
		fired = append(fired, tr)
	}
	return fired
}

func (t *Timeline) apply(eff Effect, ledger GenerationStopper) bool {
	switch eff.Type {
	case EffectStartResourceDrain:
		t.drains[eff.Resource] = true
		return true
	case EffectStopAreaGeneration:
		if ledger != nil {
			ledger.StopGeneration(eff.Location, eff.Resource)
		}
		return true
	default:
		return false
	}
}

func (t *Timeline) IsHungerActive(currentTime float64) bool {
	return currentTime >= t.hungerStart
}

// ActiveDrains lists resources whose drain an event has switched on.
func (t *Timeline) ActiveDrains() []string {
	out := make([]string, 0, len(t.drains))
	for r := range t.drains {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}

func (t *Timeline) Status(currentTime float64) map[string]Status {
	out := make(map[string]Status, len(t.entries))
	for _, e := range t.entries {
		remaining := 0.0
		if !e.triggered {
			remaining = math.Max(0, e.def.TriggerTime-currentTime)
		}
		out[e.def.ID] = Status{
			Name:          e.def.Name,
			TriggerTime:   e.def.TriggerTime,
			Triggered:     e.triggered,
			TimeRemaining: remaining,
			Visible:       e.def.Visible,
		}
	}
	return out
}
