package familiarity

import (
	"fmt"
	"math"
)

type LearningType string

const (
	LearningFast LearningType = "fast"
	LearningSlow LearningType = "slow"
)

// Normalize maps anything other than "fast" to the slow learning curve.
func (t LearningType) Normalize() LearningType {
	if t == LearningFast {
		return LearningFast
	}
	return LearningSlow
}

type RecordKind string

const (
	KindCompletions   RecordKind = "completions"
	KindTimeCompleted RecordKind = "timeCompleted"
)

type Record struct {
	Type  RecordKind `json:"type" yaml:"type"`
	Value float64    `json:"value" yaml:"value"`
}

func Completions(n int) Record {
	if n < 0 {
		n = 0
	}
	return Record{Type: KindCompletions, Value: float64(n)}
}

func TimeCompleted(seconds float64) Record {
	if seconds < 0 {
		seconds = 0
	}
	return Record{Type: KindTimeCompleted, Value: math.Floor(seconds)}
}

// Normalize floors completions to a whole count and clamps negative values
// to zero. Records of an unknown kind are returned unchanged.
func (r Record) Normalize() Record {
	switch r.Type {
	case KindCompletions:
		if r.Value <= 0 {
			return Completions(0)
		}
		return Record{Type: KindCompletions, Value: math.Floor(r.Value)}
	case KindTimeCompleted:
		return TimeCompleted(r.Value)
	default:
		return r
	}
}

// Params holds the learning curve constants. The multiplier grows linearly up
// to SoftCap and then approaches SoftCap + FastRate/(1-ReductionFactor).
type Params struct {
	BaseMultiplier       float64 `json:"base_multiplier" yaml:"base_multiplier"`
	FastRate             float64 `json:"fast_rate" yaml:"fast_rate"`
	SlowRate             float64 `json:"slow_rate" yaml:"slow_rate"`
	FirstCompletionBonus float64 `json:"first_completion_bonus" yaml:"first_completion_bonus"`
	SoftCap              float64 `json:"soft_cap" yaml:"soft_cap"`
	ReductionFactor      float64 `json:"reduction_factor" yaml:"reduction_factor"`
	PartialBonusDivisor  float64 `json:"partial_bonus_divisor" yaml:"partial_bonus_divisor"`
}

func DefaultParams() Params {
	return Params{
		BaseMultiplier:       1.0,
		FastRate:             0.1,
		SlowRate:             0.01,
		FirstCompletionBonus: 0.2,
		SoftCap:              3.0,
		ReductionFactor:      0.925,
		PartialBonusDivisor:  1.1,
	}
}

// WithDefaults fills zero fields from DefaultParams.
func (p Params) WithDefaults() Params {
	d := DefaultParams()
	if p.BaseMultiplier <= 0 {
		p.BaseMultiplier = d.BaseMultiplier
	}
	if p.FastRate <= 0 {
		p.FastRate = d.FastRate
	}
	if p.SlowRate <= 0 {
		p.SlowRate = d.SlowRate
	}
	if p.FirstCompletionBonus < 0 {
		p.FirstCompletionBonus = d.FirstCompletionBonus
	}
	if p.SoftCap <= 0 {
		p.SoftCap = d.SoftCap
	}
	if p.ReductionFactor <= 0 || p.ReductionFactor >= 1 {
		p.ReductionFactor = d.ReductionFactor
	}
	if p.PartialBonusDivisor <= 0 {
		p.PartialBonusDivisor = d.PartialBonusDivisor
	}
	return p
}

// Ceiling is the value the multiplier approaches as completions grow.
func (p Params) Ceiling() float64 {
	return p.SoftCap + p.FastRate/(1-p.ReductionFactor)
}

func (p Params) rate(t LearningType) float64 {
	if t.Normalize() == LearningFast {
		return p.FastRate
	}
	return p.SlowRate
}

func (p Params) SpeedMultiplier(completions int, learningType LearningType) float64 {
	if completions <= 0 {
		return p.BaseMultiplier
	}
	rate := p.rate(learningType)
	linear := p.BaseMultiplier + float64(completions)*rate + p.FirstCompletionBonus
	if linear <= p.SoftCap {
		return linear
	}
	excess := (linear - p.SoftCap) / rate
	return p.SoftCap + p.FastRate*(1-math.Pow(p.ReductionFactor, excess))/(1-p.ReductionFactor)
}

func (p Params) EffectiveDuration(base float64, record *Record, learningType LearningType) float64 {
	if record == nil || record.Value <= 0 {
		return base
	}
	switch record.Type {
	case KindCompletions:
		return base / p.SpeedMultiplier(int(record.Value), learningType)
	case KindTimeCompleted:
		partial := math.Min(record.Value, base)
		return partial/p.PartialBonusDivisor + (base - partial)
	default:
		return base
	}
}

func SpeedMultiplier(completions int, learningType LearningType) float64 {
	return DefaultParams().SpeedMultiplier(completions, learningType)
}

func EffectiveDuration(base float64, record *Record, learningType LearningType) float64 {
	return DefaultParams().EffectiveDuration(base, record, learningType)
}

// ShouldBypassLearning reports whether the action never gets faster.
func ShouldBypassLearning(actionName string) bool {
	return actionName == "Wait" || actionName == "Meta.Wait"
}

// IncrementCompletion records one full completion of actionName in state.
// A partial (timeCompleted) record converts to a single completion.
func IncrementCompletion(state State, actionName string) Record {
	current, ok := state[actionName]
	if !ok {
		current = Completions(0)
	}
	var next Record
	if current.Type == KindTimeCompleted {
		next = Completions(1)
	} else {
		next = Record{Type: KindCompletions, Value: current.Value + 1}
	}
	state[actionName] = next
	return next
}

func Describe(record *Record, multiplier float64) string {
	if record == nil || record.Value <= 0 {
		return "No experience"
	}
	switch record.Type {
	case KindCompletions:
		return fmt.Sprintf("%d completions (%.2fx speed)", int(record.Value), multiplier)
	case KindTimeCompleted:
		return fmt.Sprintf("%ds partial (1.1x speed for first %ds)", int(record.Value), int(record.Value))
	default:
		return "Unknown learning state"
	}
}
