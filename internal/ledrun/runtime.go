// SPDX-License-Identifier: BSD-3-Clause

// Package ledrun implements the per-zone LED animation engine. One
// Runtime drives exactly one LEDDevice zone, cycling a compiled sequence
// of color steps for a Multiple profile, holding a single color for a
// Single profile, or leaving the zone untouched (no writes) for None.
package ledrun

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tuxedocomputers/tailord/internal/model"
	"github.com/tuxedocomputers/tailord/pkg/hwdevice"
	"github.com/tuxedocomputers/tailord/pkg/state"
)

const overrideHoldTimeout = 500 * time.Millisecond

// Handle is the set of bounded, depth-1 channels a transport handler or
// the activation coordinator uses to drive one zone's Runtime.
type Handle struct {
	// ProfileIn replaces the active ColorProfile. Sends must block rather
	// than drop -- a configuration change is never superseded silently.
	ProfileIn chan model.ColorProfile
	// ColorIn delivers a manual color override. Senders should
	// try-send-and-drop-if-full: a newer override supersedes an unread
	// older one.
	ColorIn chan model.Color
}

// Runtime drives one LED zone's color according to the active
// ColorProfile.
type Runtime struct {
	device  hwdevice.LEDDevice
	logger  *slog.Logger
	suspend <-chan bool

	profile model.ColorProfile

	profileIn chan model.ColorProfile
	colorIn   chan model.Color

	// lifecycle tracks running/overriding/suspended for telemetry only; it
	// never gates behavior.
	lifecycle *state.FSM
}

// New creates the Runtime for one LED zone.
func New(ctx context.Context, device hwdevice.LEDDevice, profile model.ColorProfile, suspend <-chan bool, logger *slog.Logger) (*Handle, *Runtime) {
	profileIn := make(chan model.ColorProfile, 1)
	colorIn := make(chan model.Color, 1)

	rt := &Runtime{
		device:    device,
		logger:    logger,
		suspend:   suspend,
		profile:   profile,
		profileIn: profileIn,
		colorIn:   colorIn,
	}

	info := device.Info()
	lifecycle, err := state.NewRuntimeStateMachine(fmt.Sprintf("ledrun-%s-%s", info.DeviceName, info.Function))
	if err != nil {
		logger.WarnContext(ctx, "ledrun: lifecycle state machine unavailable, telemetry only", "zone", info, "error", err)
	} else if err := lifecycle.Start(ctx); err != nil {
		logger.WarnContext(ctx, "ledrun: failed starting lifecycle state machine", "zone", info, "error", err)
	} else {
		rt.lifecycle = lifecycle
	}

	return &Handle{ProfileIn: profileIn, ColorIn: colorIn}, rt
}

// fire best-effort-transitions the lifecycle machine; failures are logged,
// never propagated, since this tracking is observational only.
func (r *Runtime) fire(ctx context.Context, trigger string) {
	if r.lifecycle == nil {
		return
	}
	if err := r.lifecycle.Fire(ctx, trigger, nil); err != nil {
		r.logger.DebugContext(ctx, "ledrun: lifecycle transition failed", "zone", r.device.Info(), "trigger", trigger, "error", err)
	}
}

// Run executes the animation loop until ctx is canceled or ProfileIn is
// closed. Like fanrun.Runtime.Run, hardware write failures are logged and
// the loop continues rather than stopping.
func (r *Runtime) Run(ctx context.Context) {
	for {
		switch r.profile.Kind {
		case model.ColorProfileNone:
			if !r.waitForWork(ctx) {
				return
			}

		case model.ColorProfileSingle:
			r.setColor(ctx, r.profile.Single)
			if !r.waitForWork(ctx) {
				return
			}

		case model.ColorProfileMultiple:
			if !r.runAnimation(ctx, compileSteps(r.profile.Multiple)) {
				return
			}
		}
	}
}

// waitForWork blocks until a new profile, an override, or a suspend event
// arrives, or ctx is canceled. It returns false when the loop must stop.
func (r *Runtime) waitForWork(ctx context.Context) bool {
	select {
	case profile, ok := <-r.profileIn:
		if !ok {
			return false
		}
		r.profile = profile
		return true

	case color, ok := <-r.colorIn:
		if ok {
			r.runOverride(ctx, color)
		}
		return true

	case suspended, ok := <-r.suspend:
		if ok && suspended {
			r.waitForResume(ctx)
		}
		return true

	case <-ctx.Done():
		return false
	}
}

// runAnimation cycles steps, holding each color for its compiled
// duration, until a new profile arrives, an override interrupts it, or
// ctx is canceled. A profile with no steps (an empty Multiple list)
// behaves like None.
func (r *Runtime) runAnimation(ctx context.Context, steps []step) bool {
	if len(steps) == 0 {
		return r.waitForWork(ctx)
	}

	idx := 0
	for {
		cur := steps[idx]
		r.setColor(ctx, cur.Color)
		idx = (idx + 1) % len(steps)

		timer := time.NewTimer(time.Duration(cur.Hold) * time.Millisecond)

		select {
		case profile, ok := <-r.profileIn:
			timer.Stop()
			if !ok {
				return false
			}
			r.profile = profile
			return true

		case color, ok := <-r.colorIn:
			timer.Stop()
			if ok {
				r.runOverride(ctx, color)
				return true
			}

		case suspended, ok := <-r.suspend:
			timer.Stop()
			if ok && suspended {
				r.waitForResume(ctx)
			}

		case <-timer.C:
			// Advance to the next step.

		case <-ctx.Done():
			timer.Stop()
			return false
		}
	}
}

// setColor writes c to the device and reports whether the write
// succeeded; callers that must not spin on a failing device (runOverride)
// use the return value to exit rather than keep retrying.
func (r *Runtime) setColor(ctx context.Context, c model.Color) bool {
	if err := r.device.SetColor(ctx, c); err != nil {
		r.logger.ErrorContext(ctx, "ledrun: failed setting color", "zone", r.device.Info(), "error", err)
		return false
	}
	return true
}

// runOverride enters the manual-override sub-loop: write c, then hold for
// up to overrideHoldTimeout after the most recently received override. A
// failed write exits the sub-loop immediately rather than spinning.
func (r *Runtime) runOverride(ctx context.Context, c model.Color) {
	r.fire(ctx, "override_start")
	defer r.fire(ctx, "override_timeout")

	for {
		if !r.setColor(ctx, c) {
			return
		}

		timer := time.NewTimer(overrideHoldTimeout)
		select {
		case newC, ok := <-r.colorIn:
			timer.Stop()
			if !ok {
				return
			}
			c = newC
		case <-timer.C:
			return
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

// waitForResume blocks until a resume (false) suspend message arrives.
func (r *Runtime) waitForResume(ctx context.Context) {
	r.fire(ctx, "suspend")
	defer r.fire(ctx, "resume")

	for {
		select {
		case suspended, ok := <-r.suspend:
			if !ok || !suspended {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
