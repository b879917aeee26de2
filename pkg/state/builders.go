// SPDX-License-Identifier: BSD-3-Clause

package state

import (
	"fmt"
	"time"
)

// NewStateMachine creates a basic state machine with the provided configuration.
func NewStateMachine(opts ...Option) (*FSM, error) {
	config := NewConfig(opts...)
	return New(config)
}

// NewRuntimeStateMachine creates a state machine modeling the lifecycle a fan or LED
// runtime goroutine moves through: running its normal control loop, temporarily
// overridden by an explicit caller-supplied value, or suspended while the host sleeps.
// The machine only tracks observable state for telemetry; the runtimes themselves
// still drive behavior through their own select loops.
func NewRuntimeStateMachine(name string, opts ...Option) (*FSM, error) {
	baseOpts := []Option{
		WithName(name),
		WithDescription("runtime lifecycle state machine"),
		WithInitialState("running"),
		WithStates("running", "overriding", "suspended"),
		WithTransition("running", "overriding", "override_start"),
		WithTransition("overriding", "running", "override_timeout"),
		WithTransition("running", "suspended", "suspend"),
		WithTransition("overriding", "suspended", "suspend"),
		WithTransition("suspended", "running", "resume"),
		WithStateTimeout(30 * time.Second),
	}

	allOpts := append(baseOpts, opts...)
	return NewStateMachine(allOpts...)
}

// NewActivationStateMachine creates a state machine tracking the activation coordinator's
// high-level status: idle between reloads, applying a newly activated global profile to
// the running fan/LED handles, or having failed the most recent apply attempt.
func NewActivationStateMachine(name string, opts ...Option) (*FSM, error) {
	baseOpts := []Option{
		WithName(name),
		WithDescription("profile activation state machine"),
		WithInitialState("idle"),
		WithStates("idle", "applying", "failed"),
		WithTransition("idle", "applying", "reload"),
		WithTransition("applying", "idle", "apply_complete"),
		WithTransition("applying", "failed", "apply_failed"),
		WithTransition("failed", "applying", "reload"),
		WithStateTimeout(10 * time.Second),
	}

	allOpts := append(baseOpts, opts...)
	return NewStateMachine(allOpts...)
}

// RuntimeBuilder provides a fluent interface for building fan/LED runtime state machines
// with optional actions run on override and suspend transitions.
type RuntimeBuilder struct {
	name          string
	opts          []Option
	onSuspend     ActionFunc
	onResume      ActionFunc
	onOverrideEnd ActionFunc
}

// NewRuntimeBuilder creates a new runtime state machine builder.
func NewRuntimeBuilder(name string) *RuntimeBuilder {
	return &RuntimeBuilder{
		name: name,
		opts: []Option{},
	}
}

// WithSuspendAction sets the action to execute when the runtime suspends.
func (b *RuntimeBuilder) WithSuspendAction(action ActionFunc) *RuntimeBuilder {
	b.onSuspend = action
	return b
}

// WithResumeAction sets the action to execute when the runtime resumes.
func (b *RuntimeBuilder) WithResumeAction(action ActionFunc) *RuntimeBuilder {
	b.onResume = action
	return b
}

// WithOverrideEndAction sets the action to execute when an override times out.
func (b *RuntimeBuilder) WithOverrideEndAction(action ActionFunc) *RuntimeBuilder {
	b.onOverrideEnd = action
	return b
}

// WithPersistence adds a persistence callback to the state machine.
func (b *RuntimeBuilder) WithPersistence(callback PersistenceCallback) *RuntimeBuilder {
	b.opts = append(b.opts, WithPersistence(callback))
	return b
}

// WithBroadcast adds a broadcast callback to the state machine.
func (b *RuntimeBuilder) WithBroadcast(callback BroadcastCallback) *RuntimeBuilder {
	b.opts = append(b.opts, WithBroadcast(callback))
	return b
}

// Build creates the configured runtime state machine.
func (b *RuntimeBuilder) Build() (*FSM, error) {
	opts := []Option{
		WithName(b.name),
		WithDescription(fmt.Sprintf("runtime lifecycle for %s", b.name)),
		WithInitialState("running"),
		WithStates("running", "overriding", "suspended"),
		WithTransition("running", "overriding", "override_start"),
	}

	if b.onOverrideEnd != nil {
		opts = append(opts, WithActionTransition("overriding", "running", "override_timeout", b.onOverrideEnd))
	} else {
		opts = append(opts, WithTransition("overriding", "running", "override_timeout"))
	}

	if b.onSuspend != nil {
		opts = append(opts, WithActionTransition("running", "suspended", "suspend", b.onSuspend))
		opts = append(opts, WithActionTransition("overriding", "suspended", "suspend", b.onSuspend))
	} else {
		opts = append(opts, WithTransition("running", "suspended", "suspend"))
		opts = append(opts, WithTransition("overriding", "suspended", "suspend"))
	}

	if b.onResume != nil {
		opts = append(opts, WithActionTransition("suspended", "running", "resume", b.onResume))
	} else {
		opts = append(opts, WithTransition("suspended", "running", "resume"))
	}

	opts = append(opts, b.opts...)

	return NewStateMachine(opts...)
}
