// SPDX-License-Identifier: BSD-3-Clause

package ledrun

import (
	"testing"

	"github.com/tuxedocomputers/tailord/internal/model"
)

func TestDecentLinearSteps(t *testing.T) {
	cases := []struct {
		transitionMs uint32
		diffs        []float64
		want         uint32
	}{
		{1000, []float64{0.0}, 1},
		{1000, []float64{150.0}, 10},
		{3000, []float64{150.0}, 17},
		{1000, []float64{75.0}, 5},
		{100, []float64{75.0}, 2},
	}
	for _, c := range cases {
		if got := decentLinearSteps(c.transitionMs, c.diffs); got != c.want {
			t.Errorf("decentLinearSteps(%d, %v) = %d, want %d", c.transitionMs, c.diffs, got, c.want)
		}
	}
}

func TestCompileStepsIdenticalColorsSingleStep(t *testing.T) {
	c := model.Color{R: 10, G: 20, B: 30}
	points := []model.ColorPoint{
		{Color: c, Transition: model.TransitionLinear, TransitionTimeMs: 2000},
		{Color: c, Transition: model.TransitionLinear, TransitionTimeMs: 2000},
	}
	steps := compileSteps(points)

	// Each transition holds identical endpoints, so diffRMS is 0 and
	// decentLinearSteps forces exactly one frame per transition.
	if len(steps) != 2 {
		t.Fatalf("expected 2 steps for 2 identical-color transitions, got %d", len(steps))
	}
	for _, s := range steps {
		if s.Color != c || s.Hold != 2000 {
			t.Errorf("got %+v, want color=%v hold=2000", s, c)
		}
	}
}

func TestCompileStepsSumOfHoldsMatchesTransitionTime(t *testing.T) {
	points := []model.ColorPoint{
		{Color: model.Color{R: 255, G: 0, B: 0}, Transition: model.TransitionLinear, TransitionTimeMs: 1000},
		{Color: model.Color{R: 0, G: 255, B: 0}, Transition: model.TransitionLinear, TransitionTimeMs: 1000},
	}
	steps := compileSteps(points)

	var total uint32
	for _, s := range steps {
		total += s.Hold
	}
	if total != 2000 {
		t.Fatalf("sum of step holds = %d, want 2000", total)
	}
}

func TestCompileStepsNoneTransitionHoldsColorVerbatim(t *testing.T) {
	points := []model.ColorPoint{
		{Color: model.Color{R: 1, G: 2, B: 3}, Transition: model.TransitionNone, TransitionTimeMs: 500},
	}
	steps := compileSteps(points)
	if len(steps) != 1 {
		t.Fatalf("expected exactly 1 step, got %d", len(steps))
	}
	if steps[0].Color != points[0].Color || steps[0].Hold != 500 {
		t.Fatalf("got %+v, want color=%v hold=500", steps[0], points[0].Color)
	}
}

func TestCompileStepsEmpty(t *testing.T) {
	if steps := compileSteps(nil); len(steps) != 0 {
		t.Fatalf("expected 0 steps for empty profile, got %d", len(steps))
	}
}

func TestF64ToU8Clamps(t *testing.T) {
	if f64ToU8(-10) != 0 {
		t.Error("negative value should clamp to 0")
	}
	if f64ToU8(300) != 255 {
		t.Error("value over 255 should clamp to 255")
	}
	if f64ToU8(127.6) != 128 {
		t.Error("should round to nearest")
	}
}
