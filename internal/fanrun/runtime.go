// SPDX-License-Identifier: BSD-3-Clause

package fanrun

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/tuxedocomputers/tailord/internal/model"
	"github.com/tuxedocomputers/tailord/pkg/hwdevice"
	"github.com/tuxedocomputers/tailord/pkg/state"
)

const (
	overrideHoldTimeout = 1000 * time.Millisecond
	maxPressure         = 15
	// pressureTau is the per-unit exponent of the falling exponential
	// that maps pressure to poll delay: 0 -> 2000ms, 15 -> ~234ms.
	pressureTau = -1.0 / 7.0
	baseDelayMs = 2000.0
)

// Handle is the set of bounded, depth-1 channels a transport handler or the
// activation coordinator uses to drive one fan's Runtime. Both channels are
// single-producer/single-consumer from the Runtime's point of view.
type Handle struct {
	// ProfileIn replaces the active FanProfile. Sends to this channel
	// must block rather than drop -- a configuration change is never
	// superseded silently.
	ProfileIn chan model.FanProfile
	// OverrideIn delivers a manual fan-percentage override. Senders
	// should try-send-and-drop-if-full: a newer override supersedes an
	// unread older one.
	OverrideIn chan uint8
}

// Runtime drives one fan's speed to track the target implied by the
// current temperature and the loaded FanProfile.
type Runtime struct {
	fanIdx  int
	device  hwdevice.FanDevice
	logger  *slog.Logger
	suspend <-chan bool

	profile     model.FanProfile
	tempHistory temperatureBuffer
	fanSpeedPct uint8

	profileIn  chan model.FanProfile
	overrideIn chan uint8

	// lifecycle tracks running/overriding/suspended for telemetry only; it
	// never gates behavior. A nil lifecycle (construction failure) just
	// means transitions aren't observed.
	lifecycle *state.FSM
}

// New creates the Runtime for fan index idx and seeds it from the device's
// current speed and temperature, repeating the initial temperature across
// the whole history window so diffToMin starts at zero.
func New(ctx context.Context, idx int, device hwdevice.FanDevice, profile model.FanProfile, suspend <-chan bool, logger *slog.Logger) (*Handle, *Runtime, error) {
	speed, err := device.FanSpeedPercent(ctx, idx)
	if err != nil {
		logger.WarnContext(ctx, "fanrun: failed reading initial fan speed, assuming 0", "fan", idx, "error", err)
		speed = 0
	}
	temp, err := device.FanTemperature(ctx, idx)
	if err != nil {
		logger.WarnContext(ctx, "fanrun: failed reading initial temperature, assuming 0", "fan", idx, "error", err)
		temp = 0
	}

	profileIn := make(chan model.FanProfile, 1)
	overrideIn := make(chan uint8, 1)

	rt := &Runtime{
		fanIdx:      idx,
		device:      device,
		logger:      logger,
		suspend:     suspend,
		profile:     profile,
		tempHistory: newTemperatureBuffer(temp),
		fanSpeedPct: speed,
		profileIn:   profileIn,
		overrideIn:  overrideIn,
	}

	lifecycle, err := state.NewRuntimeStateMachine(fmt.Sprintf("fanrun-%d", idx))
	if err != nil {
		logger.WarnContext(ctx, "fanrun: lifecycle state machine unavailable, telemetry only", "fan", idx, "error", err)
	} else if err := lifecycle.Start(ctx); err != nil {
		logger.WarnContext(ctx, "fanrun: failed starting lifecycle state machine", "fan", idx, "error", err)
	} else {
		rt.lifecycle = lifecycle
	}

	return &Handle{ProfileIn: profileIn, OverrideIn: overrideIn}, rt, nil
}

// fire best-effort-transitions the lifecycle machine; failures are logged,
// never propagated, since this tracking is observational only.
func (r *Runtime) fire(ctx context.Context, trigger string) {
	if r.lifecycle == nil {
		return
	}
	if err := r.lifecycle.Fire(ctx, trigger, nil); err != nil {
		r.logger.DebugContext(ctx, "fanrun: lifecycle transition failed", "fan", r.fanIdx, "trigger", trigger, "error", err)
	}
}

// Run executes the control loop until ctx is canceled or ProfileIn is
// closed. It never returns an error: hardware failures are logged and the
// loop continues, because a noisy control loop beats a stopped one.
func (r *Runtime) Run(ctx context.Context) {
	for {
		delay := r.step(ctx)

		timer := time.NewTimer(delay)
		select {
		case profile, ok := <-r.profileIn:
			timer.Stop()
			if !ok {
				return
			}
			r.profile = profile

		case v, ok := <-r.overrideIn:
			timer.Stop()
			if ok {
				r.runOverride(ctx, v)
			}

		case suspended, ok := <-r.suspend:
			timer.Stop()
			if ok && suspended {
				r.waitForResume(ctx)
			}

		case <-timer.C:
			// Adaptive delay elapsed; loop back into step().

		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

// step reads the current temperature, advances the fan speed by one
// rate-limited increment toward the profile's target, and returns the
// adaptive delay to wait before the next step.
func (r *Runtime) step(ctx context.Context) time.Duration {
	currentTemp := r.updateTemp(ctx)
	target := r.profile.TargetFanSpeed(currentTemp)

	diff := absDiff(r.fanSpeedPct, target)
	increment := diff/4 + target/50

	var next uint8
	if target > r.fanSpeedPct {
		next = satAdd(r.fanSpeedPct, increment, 100)
	} else {
		next = satSub(r.fanSpeedPct, increment)
	}
	r.setSpeed(ctx, next)

	return suitableDelay(&r.tempHistory, diff)
}

func (r *Runtime) updateTemp(ctx context.Context) uint8 {
	temp, err := r.device.FanTemperature(ctx, r.fanIdx)
	if err != nil {
		r.logger.ErrorContext(ctx, "fanrun: failed reading temperature, keeping last sample", "fan", r.fanIdx, "error", err)
		return r.tempHistory.latest()
	}
	r.tempHistory.update(temp)
	return temp
}

func (r *Runtime) setSpeed(ctx context.Context, newSpeed uint8) {
	if newSpeed == r.fanSpeedPct {
		return
	}
	if err := r.device.SetFanSpeedPercent(ctx, r.fanIdx, newSpeed); err != nil {
		r.logger.ErrorContext(ctx, "fanrun: failed setting fan speed", "fan", r.fanIdx, "speed", newSpeed, "error", err)
		return
	}
	r.fanSpeedPct = newSpeed
}

// runOverride enters the manual-override sub-loop: write v, then hold for
// up to overrideHoldTimeout after the most recently received override.
func (r *Runtime) runOverride(ctx context.Context, v uint8) {
	r.fire(ctx, "override_start")
	defer r.fire(ctx, "override_timeout")

	for {
		if err := r.device.SetFanSpeedPercent(ctx, r.fanIdx, v); err != nil {
			r.logger.ErrorContext(ctx, "fanrun: failed writing override speed", "fan", r.fanIdx, "error", err)
			return
		}

		timer := time.NewTimer(overrideHoldTimeout)
		select {
		case newV, ok := <-r.overrideIn:
			timer.Stop()
			if !ok {
				return
			}
			v = newV
		case <-timer.C:
			return
		case <-ctx.Done():
			timer.Stop()
			return
		}
	}
}

// waitForResume blocks until a resume (false) suspend message arrives,
// then re-reads the device's actual current speed rather than assuming it
// held our last written value across sleep.
func (r *Runtime) waitForResume(ctx context.Context) {
	r.fire(ctx, "suspend")
	defer r.fire(ctx, "resume")

	for {
		select {
		case suspended, ok := <-r.suspend:
			if !ok || !suspended {
				speed, err := r.device.FanSpeedPercent(ctx, r.fanIdx)
				if err != nil {
					r.logger.WarnContext(ctx, "fanrun: failed re-reading speed on resume", "fan", r.fanIdx, "error", err)
					return
				}
				r.fanSpeedPct = speed
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// suitableDelay computes the adaptive poll interval from the recent
// temperature volatility and how far the fan is from its target.
func suitableDelay(temps *temperatureBuffer, fanDiff uint8) time.Duration {
	temperaturePressure := temps.diffToMin()
	fanDiffPressure := fanDiff / 2

	pressure := int(temperaturePressure) + int(fanDiffPressure)
	if pressure > maxPressure {
		pressure = maxPressure
	}

	delayMs := baseDelayMs * math.Exp(float64(pressure)*pressureTau)
	return time.Duration(delayMs) * time.Millisecond
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}

func satAdd(a, b, max uint8) uint8 {
	sum := int(a) + int(b)
	if sum > int(max) {
		return max
	}
	return uint8(sum)
}

func satSub(a, b uint8) uint8 {
	if int(a)-int(b) < 0 {
		return 0
	}
	return a - b
}
