// SPDX-License-Identifier: BSD-3-Clause

package ledrun

import (
	"math"

	"github.com/tuxedocomputers/tailord/internal/model"
)

// step is one compiled frame of a color animation: hold Color for Hold.
type step struct {
	Color model.Color
	Hold  uint32 // milliseconds
}

// maxStepMs is the shortest frame period used for a linear transition
// (at most 12.5fps): a transition is never split into frames shorter than
// this, and one shorter than maxStepMs is emitted as a single frame.
const maxStepMs = 80

// compileSteps expands a Multiple profile's ColorPoints into a cyclic
// sequence of constant-color frames. The color held immediately before
// the first point is the last point's color, matching the cyclic nature
// of playback.
func compileSteps(points []model.ColorPoint) []step {
	var steps []step
	if len(points) == 0 {
		return steps
	}
	prev := points[len(points)-1].Color

	for _, p := range points {
		switch p.Transition {
		case model.TransitionLinear:
			steps = appendLinearTransition(steps, p.Color, prev, p.TransitionTimeMs)
		default: // TransitionNone and any unrecognized value hold the color.
			steps = append(steps, step{Color: p.Color, Hold: p.TransitionTimeMs})
		}
		prev = p.Color
	}
	return steps
}

// appendLinearTransition subdivides a transition from prev to color over
// transitionMs into enough frames that the animation reads as continuous,
// without oversampling slow or barely-perceptible transitions.
func appendLinearTransition(steps []step, color, prev model.Color, transitionMs uint32) []step {
	frameCount := transitionMs / maxStepMs
	if frameCount == 0 {
		return append(steps, step{Color: color, Hold: transitionMs})
	}

	rDiff := float64(color.R) - float64(prev.R)
	gDiff := float64(color.G) - float64(prev.G)
	bDiff := float64(color.B) - float64(prev.B)

	decent := decentLinearSteps(transitionMs, []float64{rDiff, gDiff, bDiff})
	if decent < frameCount {
		frameCount = decent
	}

	stepMs := transitionMs / frameCount
	for idx := uint32(0); idx < frameCount; idx++ {
		percent := float64(idx) / float64(frameCount)
		c := model.Color{
			R: f64ToU8(float64(prev.R) + rDiff*percent),
			G: f64ToU8(float64(prev.G) + gDiff*percent),
			B: f64ToU8(float64(prev.B) + bDiff*percent),
		}
		hold := stepMs
		if idx == frameCount-1 {
			// The last frame absorbs the division remainder so the
			// frames add up to exactly transitionMs.
			hold += transitionMs % frameCount
		}
		steps = append(steps, step{Color: c, Hold: hold})
	}
	return steps
}

func f64ToU8(v float64) uint8 {
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}
	return uint8(math.Round(v))
}

// decentLinearSteps picks a frame count that stays below the threshold at
// which individual steps of a color transition become visible to the
// human eye, without wasting CPU on transitions too slow or too subtle to
// need it.
func decentLinearSteps(transitionMs uint32, diffs []float64) uint32 {
	var sumSquares float64
	for _, d := range diffs {
		sumSquares += d * d
	}
	diffRMS := math.Sqrt(sumSquares)

	if diffRMS <= epsilon {
		return 1
	}

	// A delta of 15 as an RGB channel value per second is barely visible.
	imperceivableSteps := diffRMS / 15.0

	// Slower transitions need fewer steps per second to stay smooth; cap
	// the scaling factor so very slow or very fast transitions don't
	// produce absurd step counts.
	timeFactor := math.Sqrt(float64(transitionMs) / 1000.0)
	if timeFactor < 0.4 {
		timeFactor = 0.4
	}
	if timeFactor > 5.0 {
		timeFactor = 5.0
	}

	steps := uint32(math.Round(imperceivableSteps * timeFactor))
	if steps < 1 {
		steps = 1
	}
	return steps
}

const epsilon = 2.220446049250313e-16
