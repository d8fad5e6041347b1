package survival

import (
	"math"
	"sort"
	"strings"
	"testing"

	"loopplanner/internal/domain/familiarity"
	"loopplanner/internal/domain/worldevent"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func testCatalog() Catalog {
	return Catalog{
		Actions: map[string]ActionDefinition{
			"Wait":             {Time: 2},
			"Take Food Ration": {Time: 5, LearningType: familiarity.LearningSlow, Inventory: ItemList{"Food Ration"}, LocationRequirement: "Inside Talos"},
			"Exit Talos":       {Time: 3, Location: "Outside", LocationRequirement: "Inside Talos"},
			"Enter Talos":      {Time: 3, Location: "Inside Talos", LocationRequirement: "Outside"},
			"Go To Atlantis":   {Time: 4, Location: "Atlantis"},
			"Sprint":           {Time: 10, LearningType: familiarity.LearningFast, ExtraConsumption: map[Vital]float64{VitalAir: 0.5}},
			"Grab Air Tank":    {Time: 1, Inventory: ItemList{"Air Tank"}},
		},
		Locations: []LocationDefinition{{Name: "Inside Talos"}, {Name: "Outside"}},
	}
}

func testEngine() Engine {
	return NewEngine(testCatalog(), DefaultTuning(), nil)
}

func TestEvaluate_EmptyActionList(t *testing.T) {
	res := testEngine().Evaluate(nil, nil)
	if len(res.Timeline) != 0 || res.Summary.LoopLength != 0 {
		t.Fatalf("expected empty timeline, got=%d", len(res.Timeline))
	}
	if res.Summary.TimeElapsed != 0 {
		t.Fatalf("time elapsed mismatch: got=%v want=0", res.Summary.TimeElapsed)
	}
	if res.Summary.FinalVitals != (Vitals{Air: 10, Water: 10, Food: 10}) {
		t.Fatalf("vitals mismatch: %+v", res.Summary.FinalVitals)
	}
	if res.Summary.LoopFailed || res.Summary.FailureReason != nil || res.Summary.FailureIndex != nil {
		t.Fatalf("empty run must not fail: %+v", res.Summary)
	}
}

func TestEvaluate_WaitDrainsAirAndWaterOnly(t *testing.T) {
	res := testEngine().Evaluate([]string{"Wait"}, familiarity.State{})
	got := res.Summary.FinalVitals
	if got.Air != 9.8 || got.Water != 9.8 || got.Food != 10 {
		t.Fatalf("vitals mismatch: got=%+v want={9.8 9.8 10}", got)
	}
	if res.Summary.TimeElapsed != 2 {
		t.Fatalf("time elapsed mismatch: got=%v want=2", res.Summary.TimeElapsed)
	}
	if res.Summary.LoopFailed {
		t.Fatalf("wait should not fail the loop")
	}
	if _, ok := res.Learning["Wait"]; ok {
		t.Fatalf("wait must not accumulate learning")
	}
	if res.Timeline[0].Index != 1 {
		t.Fatalf("index should be 1-based: got=%d", res.Timeline[0].Index)
	}
}

func TestEvaluate_LocationRequirementIsInert(t *testing.T) {
	res := testEngine().Evaluate([]string{"Enter Talos"}, nil)
	step := res.Timeline[0]
	if !step.Rejected || step.FailureReason == nil || *step.FailureReason != "Invalid location: must be in Outside" {
		t.Fatalf("rejection mismatch: %+v", step)
	}
	if step.ActionDuration != 0 || step.BaseDuration != 3 {
		t.Fatalf("durations mismatch: action=%v base=%v", step.ActionDuration, step.BaseDuration)
	}
	if step.Vitals != (Vitals{Air: 10, Water: 10, Food: 10}) || step.Location != "Inside Talos" || step.TimeElapsed != 0 || len(step.Inventory) != 0 {
		t.Fatalf("state mutated by rejected step: %+v", step)
	}
	if step.LoopFailed {
		t.Fatalf("soft failure must not latch the loop")
	}
	if _, ok := res.Learning["Enter Talos"]; ok {
		t.Fatalf("rejected step must not learn")
	}
}

func TestEvaluate_InvalidTargetLocationIsInert(t *testing.T) {
	res := testEngine().Evaluate([]string{"Wait", "Go To Atlantis", "Wait"}, nil)
	step := res.Timeline[1]
	if step.FailureReason == nil || *step.FailureReason != "Invalid target location: Atlantis is not a valid location" {
		t.Fatalf("reason mismatch: %+v", step.FailureReason)
	}
	if step.TimeElapsed != 2 || step.Location != "Inside Talos" {
		t.Fatalf("state changed: time=%v location=%s", step.TimeElapsed, step.Location)
	}
	if res.Summary.TimeElapsed != 4 {
		t.Fatalf("run should continue past soft failure: got=%v", res.Summary.TimeElapsed)
	}
}

func TestEvaluate_RepeatedActionGetsFaster(t *testing.T) {
	res := testEngine().Evaluate([]string{"Take Food Ration", "Take Food Ration", "Take Food Ration"}, nil)
	want := []float64{5, 5 / 1.21, 5 / 1.22}
	for i, step := range res.Timeline {
		if !near(step.ActionDuration, want[i]) {
			t.Fatalf("step %d duration mismatch: got=%v want=%v", i+1, step.ActionDuration, want[i])
		}
		if step.BaseDuration != 5 {
			t.Fatalf("base duration changed: %v", step.BaseDuration)
		}
		if i > 0 && !(step.ActionDuration < res.Timeline[i-1].ActionDuration) {
			t.Fatalf("duration not decreasing at step %d", i+1)
		}
		if step.Learning == nil || step.Learning.Value != float64(i+1) {
			t.Fatalf("learning snapshot mismatch at step %d: %+v", i+1, step.Learning)
		}
	}
	if res.Summary.Inventory["Food Ration"] != 3 {
		t.Fatalf("inventory mismatch: %+v", res.Summary.Inventory)
	}
}

func TestEvaluate_TimeIsConserved(t *testing.T) {
	actions := []string{"Wait", "Exit Talos", "Enter Talos", "Sprint", "Nope", "Take Food Ration", "Enter Talos"}
	res := testEngine().Evaluate(actions, nil)
	prev := 0.0
	for _, step := range res.Timeline {
		if step.TimeElapsed != prev+step.ActionDuration {
			t.Fatalf("step %d breaks conservation: prev=%v duration=%v got=%v", step.Index, prev, step.ActionDuration, step.TimeElapsed)
		}
		prev = step.TimeElapsed
	}
	if res.Summary.TimeElapsed != prev {
		t.Fatalf("summary time mismatch: got=%v want=%v", res.Summary.TimeElapsed, prev)
	}
}

func TestEvaluate_FailureLatches(t *testing.T) {
	res := testEngine().Evaluate([]string{"Sprint", "Sprint", "Grab Air Tank", "Wait"}, nil)
	if res.Timeline[0].LoopFailed {
		t.Fatalf("first sprint should survive: %+v", res.Timeline[0].Vitals)
	}
	for _, step := range res.Timeline[1:] {
		if !step.LoopFailed || step.FailureIndex == nil || *step.FailureIndex != 2 {
			t.Fatalf("latch lost at step %d: %+v", step.Index, step)
		}
		if step.FailureReason == nil || *step.FailureReason != "Air depleted" {
			t.Fatalf("reason mismatch at step %d", step.Index)
		}
	}
	last := res.Timeline[3]
	if last.Vitals.Air <= 0 {
		t.Fatalf("air tank should have restored air: %v", last.Vitals.Air)
	}
	if _, ok := last.Inventory["Air Tank"]; ok {
		t.Fatalf("air tank should be consumed: %+v", last.Inventory)
	}
	if !res.Summary.LoopFailed || *res.Summary.FailureIndex != 2 || *res.Summary.FailureReason != "Air depleted" {
		t.Fatalf("summary latch mismatch: %+v", res.Summary)
	}
}

func TestEvaluate_AreaResourceShieldsPersonalVital(t *testing.T) {
	cat := testCatalog()
	maxAir := 50.0
	cat.Locations[0].AreaResources = &AreaResourceConfig{
		Resources: map[string]ResourceSpec{"air": {Initial: 50, Maximum: &maxAir}},
	}
	res := NewEngine(cat, DefaultTuning(), nil).Evaluate([]string{"Wait"}, nil)
	step := res.Timeline[0]
	if step.Vitals.Air != 10 {
		t.Fatalf("personal air drained despite area air: %v", step.Vitals.Air)
	}
	if step.Vitals.Water != 9.8 {
		t.Fatalf("water mismatch: %v", step.Vitals.Water)
	}
	if pool := step.AreaResources["Inside Talos"]["air"]; !near(pool.Current, 49.8) {
		t.Fatalf("area air mismatch: %+v", pool)
	}
}

func TestEvaluate_EventStopsGeneration(t *testing.T) {
	cat := testCatalog()
	maxAir := 1.0
	cat.Locations[0].AreaResources = &AreaResourceConfig{
		Resources:  map[string]ResourceSpec{"air": {Initial: 1, Maximum: &maxAir}},
		Generators: map[string]float64{"air": 0.5},
	}
	cat.Events = []worldevent.Definition{{
		ID:          "carbon_filters_fail",
		Name:        "Carbon Filters Fail",
		TriggerTime: 2,
		Effects:     []worldevent.Effect{{Type: worldevent.EffectStopAreaGeneration, Location: "Inside Talos", Resource: "air"}},
	}}
	res := NewEngine(cat, DefaultTuning(), nil).Evaluate([]string{"Wait", "Wait"}, nil)

	first := res.Timeline[0].AreaResources["Inside Talos"]["air"]
	if !near(first.Current, 0.8) || first.Generation != 0.5 {
		t.Fatalf("first step pool mismatch: %+v", first)
	}
	second := res.Timeline[1]
	if len(second.Triggered) != 1 || second.Triggered[0].ID != "carbon_filters_fail" {
		t.Fatalf("event not reported on crossing step: %+v", second.Triggered)
	}
	pool := second.AreaResources["Inside Talos"]["air"]
	if !near(pool.Current, 0.6) || pool.Generation != 0 {
		t.Fatalf("generation should have stopped: %+v", pool)
	}
	if !second.Events["carbon_filters_fail"].Triggered {
		t.Fatalf("event status not latched")
	}
}

func TestEvaluate_HungerFallbackThreshold(t *testing.T) {
	tuning := DefaultTuning()
	tuning.HungerStartFallback = 2
	res := NewEngine(testCatalog(), tuning, nil).Evaluate([]string{"Wait", "Wait"}, nil)
	if res.Timeline[0].Vitals.Food != 10 {
		t.Fatalf("food drained before hunger: %v", res.Timeline[0].Vitals.Food)
	}
	if res.Timeline[1].Vitals.Food != 9.8 {
		t.Fatalf("food not drained after hunger: %v", res.Timeline[1].Vitals.Food)
	}
}

func TestEvaluate_AutoConsumeRestoresOnce(t *testing.T) {
	tuning := DefaultTuning()
	tuning.InitialVitals = Vitals{Air: 10, Water: 0.1, Food: 10}
	tuning.StartingInventory = map[string]int{"Water Bottle": 1}
	res := NewEngine(testCatalog(), tuning, nil).Evaluate([]string{"Wait"}, nil)
	if res.Summary.LoopFailed {
		t.Fatalf("water bottle should have prevented failure")
	}
	if !near(res.Summary.FinalVitals.Water, 99.9) {
		t.Fatalf("water mismatch: got=%v want=99.9", res.Summary.FinalVitals.Water)
	}
	if len(res.Summary.Inventory) != 0 {
		t.Fatalf("bottle should be gone: %+v", res.Summary.Inventory)
	}
}

func TestEvaluate_UnknownActionWarns(t *testing.T) {
	res := testEngine().Evaluate([]string{"Wiat"}, nil)
	step := res.Timeline[0]
	if !strings.Contains(step.Warning, `"Wait"`) {
		t.Fatalf("warning should suggest Wait: %q", step.Warning)
	}
	if step.ActionDuration != DefaultActionTime || step.Rejected {
		t.Fatalf("unknown action should run as a default action: %+v", step)
	}
	if res.Learning["Wiat"] != familiarity.Completions(1) {
		t.Fatalf("unknown action learning mismatch: %+v", res.Learning["Wiat"])
	}
}

func TestNewRun_SortsActionNamesOnce(t *testing.T) {
	e := testEngine()
	r := e.newRun(nil)
	want := e.Catalog.ActionNames()
	if len(r.actionNames) != len(want) || !sort.StringsAreSorted(r.actionNames) {
		t.Fatalf("action names mismatch: got=%v want=%v", r.actionNames, want)
	}
	first := &r.actionNames[0]
	r.step(1, "Wiat")
	r.step(2, "Wiat")
	if &r.actionNames[0] != first {
		t.Fatalf("action names rebuilt during the run")
	}
}

func TestEvaluate_DoesNotMutateCallerLearning(t *testing.T) {
	learning := familiarity.State{"Take Food Ration": familiarity.Completions(2)}
	res := testEngine().Evaluate([]string{"Take Food Ration"}, learning)
	if learning["Take Food Ration"] != familiarity.Completions(2) {
		t.Fatalf("caller learning mutated: %+v", learning)
	}
	if res.Learning["Take Food Ration"] != familiarity.Completions(3) {
		t.Fatalf("result learning mismatch: %+v", res.Learning)
	}
	if !near(res.Timeline[0].ActionDuration, 5/1.22) {
		t.Fatalf("prior learning ignored: %v", res.Timeline[0].ActionDuration)
	}
}

func TestEvaluate_PartialLearningConverts(t *testing.T) {
	learning := familiarity.State{"Take Food Ration": familiarity.TimeCompleted(3)}
	res := testEngine().Evaluate([]string{"Take Food Ration"}, learning)
	if !near(res.Timeline[0].ActionDuration, 3/1.1+2) {
		t.Fatalf("partial duration mismatch: %v", res.Timeline[0].ActionDuration)
	}
	if res.Learning["Take Food Ration"] != familiarity.Completions(1) {
		t.Fatalf("partial record should convert: %+v", res.Learning["Take Food Ration"])
	}
}

func TestEvaluate_UnnormalizedCatalogUsesDefaults(t *testing.T) {
	e := Engine{Catalog: Catalog{Actions: map[string]ActionDefinition{"Look": {}}}}
	res := e.Evaluate([]string{"Look"}, nil)
	if res.Timeline[0].BaseDuration != DefaultActionTime {
		t.Fatalf("default time not applied: %v", res.Timeline[0].BaseDuration)
	}
	if !near(res.Summary.FinalVitals.Water, 9.9) {
		t.Fatalf("default tuning not applied: %+v", res.Summary.FinalVitals)
	}
	if res.Summary.FinalVitals.Air != 10 {
		t.Fatalf("fallback area air should shield personal air: %v", res.Summary.FinalVitals.Air)
	}
	if pool := res.Timeline[0].AreaResources[DefaultStartLocation]["air"]; !near(pool.Current, 49.9) {
		t.Fatalf("fallback pool mismatch: %+v", pool)
	}
}

func TestEvaluate_SummaryProjectsDepletion(t *testing.T) {
	res := testEngine().Evaluate([]string{"Wait"}, nil)
	if got := res.Summary.TimeToDepletion[VitalAir]; !near(got, 98) {
		t.Fatalf("air depletion mismatch: got=%v want=98", got)
	}
}
