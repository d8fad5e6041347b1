package inmemory

import (
	"sync"

	"loopplanner/internal/domain/survival"
)

type Snapshot struct {
	PredictionTotal   uint64            `json:"prediction_total"`
	PredictionSuccess uint64            `json:"prediction_success"`
	PredictionFailure uint64            `json:"prediction_failure"`
	LoopsFailed       uint64            `json:"loops_failed"`
	RejectedSteps     uint64            `json:"rejected_steps"`
	SimulatedSeconds  float64           `json:"simulated_seconds"`
	ByFailureReason   map[string]uint64 `json:"by_failure_reason"`
}

type Recorder struct {
	mu        sync.Mutex
	success   uint64
	failure   uint64
	failed    uint64
	rejected  uint64
	simulated float64
	byReason  map[string]uint64
}

func NewRecorder() *Recorder {
	return &Recorder{
		byReason: map[string]uint64{},
	}
}

func (r *Recorder) RecordPrediction(summary survival.Summary, rejected int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.success++
	r.simulated += summary.TimeElapsed
	if rejected > 0 {
		r.rejected += uint64(rejected)
	}
	if summary.LoopFailed {
		r.failed++
		if summary.FailureReason != nil {
			r.byReason[*summary.FailureReason]++
		}
	}
}

func (r *Recorder) RecordFailure() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failure++
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Snapshot{
		PredictionSuccess: r.success,
		PredictionFailure: r.failure,
		PredictionTotal:   r.success + r.failure,
		LoopsFailed:       r.failed,
		RejectedSteps:     r.rejected,
		SimulatedSeconds:  r.simulated,
		ByFailureReason:   make(map[string]uint64, len(r.byReason)),
	}
	for k, v := range r.byReason {
		out.ByFailureReason[k] = v
	}
	return out
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}
