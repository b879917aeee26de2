// SPDX-License-Identifier: BSD-3-Clause

package ledmgr

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/micro"
	"github.com/tuxedocomputers/tailord/internal/ledrun"
	"github.com/tuxedocomputers/tailord/internal/model"
	"github.com/tuxedocomputers/tailord/internal/store"
	"github.com/tuxedocomputers/tailord/pkg/ipc"
	"github.com/tuxedocomputers/tailord/pkg/log"
	"github.com/tuxedocomputers/tailord/pkg/telemetry"
	"github.com/tuxedocomputers/tailord/service"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var _ service.Service = (*LEDMgr)(nil)

// reloader is the subset of internal/coordinator.Coordinator this service
// needs: a way to request a republish after a store write that touches
// the active global profile's LED references.
type reloader interface {
	TriggerReload()
}

// LEDMgr is the NATS-facing surface over the LED profile store and the
// running LED animation runtimes: profile CRUD plus per-zone direct-color
// override and a zone listing.
type LEDMgr struct {
	config *config
	store  *store.Store
	zones  map[string]*ledrun.Handle
	infos  []model.LedDeviceInfo
	reload reloader

	nc           *nats.Conn
	microService micro.Service

	logger  *slog.Logger
	tracer  trace.Tracer
	mu      sync.RWMutex
	cancel  context.CancelFunc
	started bool
}

// New creates a LEDMgr over store, driving the given LED runtime handles
// (keyed by model.LedDeviceInfo.DeviceID()) and requesting coordinator
// reloads through reload. infos is the authoritative zone listing,
// ordered the way the device-listing endpoint should report them.
func New(st *store.Store, zones map[string]*ledrun.Handle, infos []model.LedDeviceInfo, reload reloader, opts ...Option) *LEDMgr {
	cfg := &config{
		serviceName:        DefaultServiceName,
		serviceDescription: DefaultServiceDescription,
		serviceVersion:     DefaultServiceVersion,
	}
	for _, opt := range opts {
		opt.apply(cfg)
	}

	return &LEDMgr{
		config: cfg,
		store:  st,
		zones:  zones,
		infos:  infos,
		reload: reload,
	}
}

// Name implements service.Service.
func (m *LEDMgr) Name() string { return m.config.serviceName }

// Run implements service.Service.
func (m *LEDMgr) Run(ctx context.Context, ipcConn nats.InProcessConnProvider) error {
	m.tracer = otel.Tracer(m.config.serviceName)

	ctx, span := m.tracer.Start(ctx, "ledmgr.Run")
	defer span.End()

	m.logger = log.GetGlobalLogger().With("service", m.config.serviceName)

	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return ErrServiceAlreadyStarted
	}
	m.started = true
	ctx, m.cancel = context.WithCancel(ctx)
	m.mu.Unlock()

	if err := m.config.Validate(); err != nil {
		span.RecordError(err)
		return err
	}

	nc, err := nats.Connect("", nats.InProcessServer(ipcConn))
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("%w: %w", ErrNATSConnectionFailed, err)
	}
	m.nc = nc
	defer nc.Drain() //nolint:errcheck

	m.microService, err = micro.AddService(nc, micro.Config{
		Name:        m.config.serviceName,
		Description: m.config.serviceDescription,
		Version:     m.config.serviceVersion,
	})
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("%w: %w", ErrMicroServiceCreationFailed, err)
	}

	if err := m.registerEndpoints(ctx); err != nil {
		span.RecordError(err)
		return err
	}

	m.logger.InfoContext(ctx, "LED manager service started", "zones", len(m.infos))
	span.SetAttributes(attribute.Int("zones.count", len(m.infos)))

	<-ctx.Done()

	err = ctx.Err()
	ctx = context.WithoutCancel(ctx)
	m.logger.InfoContext(ctx, "shutting down LED manager service")
	m.shutdown()

	return err
}

func (m *LEDMgr) registerEndpoints(ctx context.Context) error {
	groups := make(map[string]micro.Group)

	endpoints := []struct {
		subject string
		handler func(context.Context, micro.Request)
	}{
		{ipc.SubjectLEDProfileAdd, m.handleProfileAdd},
		{ipc.SubjectLEDProfileGet, m.handleProfileGet},
		{ipc.SubjectLEDProfileList, m.handleProfileList},
		{ipc.SubjectLEDProfileRemove, m.handleProfileRemove},
		{ipc.SubjectLEDProfileRename, m.handleProfileRename},
		{ipc.SubjectLEDOverride, m.handleOverride},
		{ipc.SubjectLEDDevices, m.handleDevices},
	}

	for _, e := range endpoints {
		if err := ipc.RegisterEndpointWithGroupCache(m.microService, e.subject,
			micro.HandlerFunc(m.createRequestHandler(ctx, e.handler)), groups); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrEndpointRegistrationFailed, e.subject, err)
		}
	}

	return nil
}

func (m *LEDMgr) createRequestHandler(parentCtx context.Context, handler func(context.Context, micro.Request)) micro.HandlerFunc {
	return func(req micro.Request) {
		ctx := telemetry.GetCtxFromReq(req)
		ctx = context.WithoutCancel(ctx)

		select {
		case <-parentCtx.Done():
			var cancel context.CancelFunc
			ctx, cancel = context.WithCancel(ctx)
			cancel()
		default:
		}

		if m.tracer != nil {
			_, span := m.tracer.Start(ctx, "ledmgr.handleRequest")
			span.SetAttributes(attribute.String("subject", req.Subject()))
			defer span.End()
		}

		handler(ctx, req) //nolint:contextcheck
	}
}

// triggerReloadIfActive requests a coordinator reload when any of names is
// currently referenced by the active global profile's LED assignments.
func (m *LEDMgr) triggerReloadIfActive(ctx context.Context, names ...string) {
	activeName, err := m.store.GetActiveProfileName()
	if err != nil {
		return
	}
	active, err := m.store.GetGlobalProfile(activeName)
	if err != nil {
		return
	}

	for _, assignment := range active.Leds {
		for _, name := range names {
			if assignment.Profile == name {
				m.logger.DebugContext(ctx, "LED profile write affects active profile, requesting reload", "name", name)
				m.reload.TriggerReload()
				return
			}
		}
	}
}

func (m *LEDMgr) shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		m.cancel()
	}
	m.started = false
}
