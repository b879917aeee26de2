// SPDX-License-Identifier: BSD-3-Clause

// Package coordinator implements the activation coordinator. It is the
// single place that reads the active global profile, resolves fan and LED
// profile names against the store, and pushes the resolved profiles into
// the running fan and LED runtimes. Every activation runs to completion on
// one goroutine before the next begins, which is what gives callers the
// ordering guarantee that two reloads never interleave their per-runtime
// sends.
package coordinator

import (
	"context"
	"log/slog"

	"github.com/nats-io/nats.go"
	"github.com/tuxedocomputers/tailord/internal/fanrun"
	"github.com/tuxedocomputers/tailord/internal/ledrun"
	"github.com/tuxedocomputers/tailord/internal/model"
	"github.com/tuxedocomputers/tailord/internal/store"
	"github.com/tuxedocomputers/tailord/pkg/hwdevice"
	"github.com/tuxedocomputers/tailord/pkg/log"
	"github.com/tuxedocomputers/tailord/pkg/state"
	"github.com/tuxedocomputers/tailord/service"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var _ service.Service = (*Coordinator)(nil)

// Config wires the coordinator to the store and to every runtime it
// drives. Fans is indexed by fan index, matching GlobalProfile.Fans[i].
// Leds is keyed by model.LedDeviceInfo.DeviceID() so assignments can be
// matched by {device_name, function}. PerformanceDevice may be nil on
// platforms with no ODM performance controller; a missing device is
// treated the same as DeviceUnavailable, logged and ignored.
type Config struct {
	Store             *store.Store
	Fans              []*fanrun.Handle
	Leds              map[string]*ledrun.Handle
	LedInfos          []model.LedDeviceInfo
	PerformanceDevice hwdevice.FanDevice
	Name              string
}

// Coordinator serializes activation: reading the active global profile,
// resolving referenced fan/LED profiles (substituting defaults for
// missing or invalid references), and republishing them to every runtime.
type Coordinator struct {
	cfg    Config
	logger *slog.Logger
	tracer trace.Tracer

	// reload is fed by service/profilemgr (explicit reload, activation of
	// a different profile, rename of the active profile) and by
	// store.Watch on the fan/LED namespaces (implicit reload when a
	// referenced profile is overwritten). Depth 1: a reload already
	// pending absorbs a second request for free.
	reload chan struct{}

	lifecycle *state.FSM
}

// New creates a Coordinator. Call TriggerReload to request an activation
// pass from outside Run (e.g. from service/profilemgr's reload handler).
func New(cfg Config) *Coordinator {
	if cfg.Name == "" {
		cfg.Name = "coordinator"
	}
	return &Coordinator{
		cfg:    cfg,
		reload: make(chan struct{}, 1),
	}
}

// Name implements service.Service.
func (c *Coordinator) Name() string { return c.cfg.Name }

// TriggerReload requests an activation pass. Non-blocking: a pending
// request already queued is not duplicated, matching the "coalesced
// reload" shape used by store.Watch elsewhere in this daemon.
func (c *Coordinator) TriggerReload() {
	select {
	case c.reload <- struct{}{}:
	default:
	}
}

// Run implements service.Service. It performs one activation pass on
// startup, then serves reload requests until ctx is canceled.
func (c *Coordinator) Run(ctx context.Context, _ nats.InProcessConnProvider) error {
	c.tracer = otel.Tracer(c.cfg.Name)
	c.logger = log.GetGlobalLogger().With("service", c.cfg.Name)

	lifecycle, err := state.NewActivationStateMachine(c.cfg.Name)
	if err != nil {
		c.logger.WarnContext(ctx, "coordinator: lifecycle state machine unavailable, telemetry only", "error", err)
	} else if err := lifecycle.Start(ctx); err != nil {
		c.logger.WarnContext(ctx, "coordinator: failed starting lifecycle state machine", "error", err)
	} else {
		c.lifecycle = lifecycle
	}

	c.watchNamespace(ctx, store.NamespaceFan)
	c.watchNamespace(ctx, store.NamespaceLED)

	c.activate(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.reload:
			c.activate(ctx)
		}
	}
}

// watchNamespace forwards store mutations on ns into a reload request.
// This is a coarse backstop: service/fanmgr and service/ledmgr already
// request a reload when a write touches a profile the active global
// profile references, so in the common case this fires on an activation
// already in flight and TriggerReload's coalescing absorbs it for free.
func (c *Coordinator) watchNamespace(ctx context.Context, ns store.Namespace) {
	changes := c.cfg.Store.Watch(ns)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-changes:
				c.TriggerReload()
			}
		}
	}()
}

func (c *Coordinator) fire(ctx context.Context, trigger string) {
	if c.lifecycle == nil {
		return
	}
	if err := c.lifecycle.Fire(ctx, trigger, nil); err != nil {
		c.logger.DebugContext(ctx, "coordinator: lifecycle transition failed", "trigger", trigger, "error", err)
	}
}

// activate resolves the active global profile and republishes it to every
// fan and LED runtime. It never fails outright: a missing or broken active
// pointer, a missing global profile, or a missing/invalid reference all
// fall back to defaults with a warning, matching section 4.3's "Missing
// references" rule and section 7's "never fail activation".
func (c *Coordinator) activate(ctx context.Context) {
	ctx, span := c.tracer.Start(ctx, "coordinator.activate")
	defer span.End()

	c.fire(ctx, "reload")

	global, activeName := c.resolveActiveProfile(ctx)

	span.SetAttributes(attribute.String("profile.active", activeName))

	if !c.applyFans(ctx, global) {
		c.fire(ctx, "apply_failed")
		return
	}
	if !c.applyLeds(ctx, global) {
		c.fire(ctx, "apply_failed")
		return
	}
	c.applyPerformanceProfile(ctx, global)

	c.fire(ctx, "apply_complete")
}

func (c *Coordinator) resolveActiveProfile(ctx context.Context) (model.GlobalProfile, string) {
	name, err := c.cfg.Store.GetActiveProfileName()
	if err != nil {
		c.logger.WarnContext(ctx, "coordinator: no active profile, using defaults", "error", err)
		return model.GlobalProfile{}, ""
	}

	global, err := c.cfg.Store.GetGlobalProfile(name)
	if err != nil {
		c.logger.WarnContext(ctx, "coordinator: active profile unreadable, using defaults", "profile", name, "error", err)
		return model.GlobalProfile{}, name
	}
	return global, name
}

// applyFans sends the resolved FanProfile to every fan runtime, in fan
// index order, blocking so a configuration change is never dropped.
// Returns false if ctx was canceled mid-activation.
func (c *Coordinator) applyFans(ctx context.Context, global model.GlobalProfile) bool {
	for idx, handle := range c.cfg.Fans {
		profile := model.DefaultFanProfile()
		if profileName := global.FanProfileName(idx); profileName != "" {
			resolved, err := c.cfg.Store.GetFanProfile(profileName)
			if err != nil {
				c.logger.WarnContext(ctx, "coordinator: fan profile reference unresolved, using default",
					"fan", idx, "profile", profileName, "error", err)
			} else {
				profile = resolved
			}
		}

		select {
		case handle.ProfileIn <- profile:
		case <-ctx.Done():
			return false
		}
	}
	return true
}

// applyLeds sends the resolved ColorProfile to every LED runtime, matching
// global profile assignments against running zones by {device_name,
// function}. Zones with no assignment, and assignments with no matching
// running zone, are both logged and otherwise ignored.
func (c *Coordinator) applyLeds(ctx context.Context, global model.GlobalProfile) bool {
	for _, info := range c.cfg.LedInfos {
		handle, ok := c.cfg.Leds[info.DeviceID()]
		if !ok {
			continue
		}

		profile := model.DefaultColorProfile()
		if profileName := global.LedProfileName(info); profileName != "" {
			resolved, err := c.cfg.Store.GetLedProfile(profileName)
			if err != nil {
				c.logger.WarnContext(ctx, "coordinator: led profile reference unresolved, using default",
					"zone", info.DeviceID(), "profile", profileName, "error", err)
			} else {
				profile = resolved
			}
		}

		select {
		case handle.ProfileIn <- profile:
		case <-ctx.Done():
			return false
		}
	}
	return true
}

func (c *Coordinator) applyPerformanceProfile(ctx context.Context, global model.GlobalProfile) {
	if global.PerformanceProfile == nil {
		return
	}
	if c.cfg.PerformanceDevice == nil {
		c.logger.WarnContext(ctx, "coordinator: performance profile requested but no controller available",
			"profile", *global.PerformanceProfile)
		return
	}
	if err := c.cfg.PerformanceDevice.SetODMPerformanceProfile(ctx, *global.PerformanceProfile); err != nil {
		c.logger.WarnContext(ctx, "coordinator: failed applying performance profile",
			"profile", *global.PerformanceProfile, "error", err)
	}
}
