// SPDX-License-Identifier: BSD-3-Clause

package hwreport

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/micro"
	"github.com/tuxedocomputers/tailord/internal/store"
	"github.com/tuxedocomputers/tailord/pkg/hwdevice"
	"github.com/tuxedocomputers/tailord/pkg/ipc"
	"github.com/tuxedocomputers/tailord/pkg/log"
	"github.com/tuxedocomputers/tailord/pkg/telemetry"
	"github.com/tuxedocomputers/tailord/service"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var _ service.Service = (*HWReport)(nil)

// HWReport is the NATS-facing surface over a single best-effort snapshot
// endpoint: current fan temperatures/speeds, current LED zone colors, the
// current backlight brightness, and the active global profile name, read
// straight off the hardware and the store rather than through the fan/LED
// runtimes. It holds no state of its own and never feeds into the
// activation coordinator (see doc.go).
type HWReport struct {
	config    *config
	store     *store.Store
	fans      hwdevice.FanDevice
	leds      []hwdevice.LEDDevice
	backlight hwdevice.BacklightDevice

	nc           *nats.Conn
	microService micro.Service

	logger  *slog.Logger
	tracer  trace.Tracer
	mu      sync.RWMutex
	cancel  context.CancelFunc
	started bool
}

// New creates an HWReport reading fans (may be nil on a platform with no
// fan/performance controller), leds (the zones to report, in listing
// order) and backlight (may be nil) alongside st's active-profile pointer.
func New(st *store.Store, fans hwdevice.FanDevice, leds []hwdevice.LEDDevice, backlight hwdevice.BacklightDevice, opts ...Option) *HWReport {
	cfg := &config{
		serviceName:        DefaultServiceName,
		serviceDescription: DefaultServiceDescription,
		serviceVersion:     DefaultServiceVersion,
	}
	for _, opt := range opts {
		opt.apply(cfg)
	}

	return &HWReport{
		config:    cfg,
		store:     st,
		fans:      fans,
		leds:      leds,
		backlight: backlight,
	}
}

// Name implements service.Service.
func (m *HWReport) Name() string { return m.config.serviceName }

// Run implements service.Service.
func (m *HWReport) Run(ctx context.Context, ipcConn nats.InProcessConnProvider) error {
	m.tracer = otel.Tracer(m.config.serviceName)

	ctx, span := m.tracer.Start(ctx, "hwreport.Run")
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

	m.logger.InfoContext(ctx, "hardware report service started", "leds", len(m.leds))
	span.SetAttributes(attribute.Int("leds.count", len(m.leds)))

	<-ctx.Done()

	err = ctx.Err()
	ctx = context.WithoutCancel(ctx)
	m.logger.InfoContext(ctx, "shutting down hardware report service")
	m.shutdown()

	return err
}

func (m *HWReport) registerEndpoints(ctx context.Context) error {
	groups := make(map[string]micro.Group)

	endpoints := []struct {
		subject string
		handler func(context.Context, micro.Request)
	}{
		{ipc.SubjectHWReportSnapshot, m.handleSnapshot},
	}

	for _, e := range endpoints {
		if err := ipc.RegisterEndpointWithGroupCache(m.microService, e.subject,
			micro.HandlerFunc(m.createRequestHandler(ctx, e.handler)), groups); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrEndpointRegistrationFailed, e.subject, err)
		}
	}

	return nil
}

func (m *HWReport) createRequestHandler(parentCtx context.Context, handler func(context.Context, micro.Request)) micro.HandlerFunc {
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
			_, span := m.tracer.Start(ctx, "hwreport.handleRequest")
			span.SetAttributes(attribute.String("subject", req.Subject()))
			defer span.End()
		}

		handler(ctx, req) //nolint:contextcheck
	}
}

func (m *HWReport) shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		m.cancel()
	}
	m.started = false
}
