package familiarity

import (
	"math"
	"testing"
)

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSpeedMultiplier_NoCompletionsIsBase(t *testing.T) {
	for _, lt := range []LearningType{LearningFast, LearningSlow} {
		if got := SpeedMultiplier(0, lt); got != 1.0 {
			t.Fatalf("multiplier mismatch for %s: got=%v want=1", lt, got)
		}
		if got := SpeedMultiplier(-3, lt); got != 1.0 {
			t.Fatalf("negative completions should be base for %s: got=%v", lt, got)
		}
	}
}

func TestSpeedMultiplier_LinearRegionIncludesFirstCompletionBonus(t *testing.T) {
	if got, want := SpeedMultiplier(1, LearningSlow), 1.21; !approx(got, want) {
		t.Fatalf("slow first completion: got=%v want=%v", got, want)
	}
	if got, want := SpeedMultiplier(1, LearningFast), 1.3; !approx(got, want) {
		t.Fatalf("fast first completion: got=%v want=%v", got, want)
	}
	if got, want := SpeedMultiplier(10, LearningFast), 2.2; !approx(got, want) {
		t.Fatalf("fast ten completions: got=%v want=%v", got, want)
	}
}

func TestSpeedMultiplier_DiminishingReturnsBeyondSoftCap(t *testing.T) {
	p := DefaultParams()
	// 18 fast completions reach 3.0, the 19th is the first one past the cap.
	if got := p.SpeedMultiplier(18, LearningFast); !approx(got, 3.0) {
		t.Fatalf("soft cap boundary: got=%v want=3", got)
	}
	if got, want := p.SpeedMultiplier(19, LearningFast), 3.1; !approx(got, want) {
		t.Fatalf("first step past cap: got=%v want=%v", got, want)
	}
	if got := p.SpeedMultiplier(500, LearningFast); got > p.Ceiling() || got < 4.3 {
		t.Fatalf("large completions should approach ceiling %v: got=%v", p.Ceiling(), got)
	}
}

func TestSpeedMultiplier_MonotonicAndBounded(t *testing.T) {
	p := DefaultParams()
	for _, lt := range []LearningType{LearningFast, LearningSlow} {
		prev := p.SpeedMultiplier(0, lt)
		for c := 1; c <= 2000; c++ {
			got := p.SpeedMultiplier(c, lt)
			if got < prev {
				t.Fatalf("%s multiplier decreased at %d: prev=%v got=%v", lt, c, prev, got)
			}
			if got > p.Ceiling() {
				t.Fatalf("%s multiplier exceeded ceiling at %d: got=%v ceiling=%v", lt, c, got, p.Ceiling())
			}
			prev = got
		}
	}
}

func TestEffectiveDuration(t *testing.T) {
	if got := EffectiveDuration(10, nil, LearningSlow); got != 10 {
		t.Fatalf("nil record should keep base: got=%v", got)
	}
	zero := Completions(0)
	if got := EffectiveDuration(10, &zero, LearningFast); got != 10 {
		t.Fatalf("zero completions should keep base: got=%v", got)
	}

	one := Completions(1)
	if got, want := EffectiveDuration(12.1, &one, LearningSlow), 10.0; !approx(got, want) {
		t.Fatalf("completions duration: got=%v want=%v", got, want)
	}

	partial := TimeCompleted(4)
	// 4s at 1.1x plus 6s at base speed.
	if got, want := EffectiveDuration(10, &partial, LearningFast), 4/1.1+6; !approx(got, want) {
		t.Fatalf("partial duration: got=%v want=%v", got, want)
	}

	overshoot := TimeCompleted(30)
	if got, want := EffectiveDuration(10, &overshoot, LearningSlow), 10/1.1; !approx(got, want) {
		t.Fatalf("partial longer than base: got=%v want=%v", got, want)
	}
}

func TestShouldBypassLearning(t *testing.T) {
	if !ShouldBypassLearning("Wait") || !ShouldBypassLearning("Meta.Wait") {
		t.Fatalf("wait actions must bypass learning")
	}
	if ShouldBypassLearning("Take Food Ration") || ShouldBypassLearning("wait") {
		t.Fatalf("only the exact wait names bypass learning")
	}
}

func TestIncrementCompletion(t *testing.T) {
	state := State{}
	if got := IncrementCompletion(state, "Dig"); got != Completions(1) {
		t.Fatalf("absent record should become one completion: got=%+v", got)
	}
	if got := IncrementCompletion(state, "Dig"); got != Completions(2) {
		t.Fatalf("second increment mismatch: got=%+v", got)
	}

	state["Climb"] = TimeCompleted(42)
	if got := IncrementCompletion(state, "Climb"); got != Completions(1) {
		t.Fatalf("partial record should convert to one completion: got=%+v", got)
	}
	if state["Climb"].Type != KindCompletions {
		t.Fatalf("conversion must be stored in state: %+v", state["Climb"])
	}
}

func TestParamsWithDefaults(t *testing.T) {
	p := Params{SoftCap: 2.5}.WithDefaults()
	if p.SoftCap != 2.5 {
		t.Fatalf("explicit soft cap overwritten: %+v", p)
	}
	if p.FastRate != 0.1 || p.ReductionFactor != 0.925 || p.PartialBonusDivisor != 1.1 {
		t.Fatalf("defaults not applied: %+v", p)
	}
}

func TestDescribe(t *testing.T) {
	if got := Describe(nil, 1); got != "No experience" {
		t.Fatalf("nil describe mismatch: %q", got)
	}
	r := Completions(3)
	if got, want := Describe(&r, 1.23), "3 completions (1.23x speed)"; got != want {
		t.Fatalf("describe mismatch: got=%q want=%q", got, want)
	}
	p := TimeCompleted(5)
	if got, want := Describe(&p, 1), "5s partial (1.1x speed for first 5s)"; got != want {
		t.Fatalf("describe mismatch: got=%q want=%q", got, want)
	}
}
