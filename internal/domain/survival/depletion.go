package survival

import "math"

type DepletionEstimate struct {
	Seconds   map[Vital]float64
	Depleted  []Vital
	FirstOut  Vital
	FirstTime float64
}

// EstimateDepletion projects how long each vital lasts at its base rate with
// no area shielding or restore items. Vitals with a zero rate never deplete
// and are left out.
func EstimateDepletion(vitals Vitals, rates Vitals) DepletionEstimate {
	out := DepletionEstimate{Seconds: map[Vital]float64{}, FirstTime: math.Inf(1)}
	for _, v := range AllVitals {
		level := vitals.Get(v)
		if level < 0 {
			out.Depleted = append(out.Depleted, v)
		}
		rate := rates.Get(v)
		if rate <= 0 {
			continue
		}
		secs := math.Max(0, level) / rate
		out.Seconds[v] = secs
		if secs < out.FirstTime {
			out.FirstTime = secs
			out.FirstOut = v
		}
	}
	if math.IsInf(out.FirstTime, 1) {
		out.FirstTime = 0
	}
	return out
}
