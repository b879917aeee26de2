// SPDX-License-Identifier: BSD-3-Clause

package operator

import (
	"log/slog"
	"time"

	"github.com/tuxedocomputers/tailord/service"
	"github.com/tuxedocomputers/tailord/service/ipc"
)

type config struct {
	name        string
	id          string
	disableLogo bool
	customLogo  string
	otelSetup   func()
	logger      *slog.Logger
	timeout     time.Duration
	// IPC service needs special handling
	ipc *ipc.IPC
	// Everything of type service.Service needs to be exported
	Coordinator  service.Service
	Fanmgr       service.Service
	Ledmgr       service.Service
	Profilemgr   service.Service
	Perfmgr      service.Service
	Backlightmgr service.Service
	Hwreport     service.Service

	extraServices []service.Service
}

type Option interface {
	apply(*config)
}

type nameOption struct {
	name string
}

func (o *nameOption) apply(c *config) {
	c.name = o.name
}

// WithName sets the name for the operator configuration.
func WithName(name string) Option {
	return &nameOption{
		name: name,
	}
}

type idOption struct {
	id string
}

func (o *idOption) apply(c *config) {
	c.id = o.id
}

// WithID sets the unique identifier for the operator configuration.
func WithID(id string) Option {
	return &idOption{
		id: id,
	}
}

type disableLogoOption struct {
	disableLogo bool
}

func (o *disableLogoOption) apply(c *config) {
	c.disableLogo = o.disableLogo
}

// WithDisableLogo controls whether the logo display is disabled.
// When set to true, the logo will not be shown during startup.
func WithDisableLogo(disableLogo bool) Option {
	return &disableLogoOption{
		disableLogo: disableLogo,
	}
}

type customLogoOption struct {
	customLogo string
}

func (o *customLogoOption) apply(c *config) {
	c.customLogo = o.customLogo
}

// WithCustomLogo sets a custom logo to be displayed instead of the default logo.
// The customLogo parameter is the logo content itself; it is logged as is.
func WithCustomLogo(customLogo string) Option {
	return &customLogoOption{
		customLogo: customLogo,
	}
}

type otelSetupOption struct {
	otelSetup func()
}

func (o *otelSetupOption) apply(c *config) {
	c.otelSetup = o.otelSetup
}

// WithOtelSetup sets up OpenTelemetry configuration by providing a setup function.
// The function will be called during operator initialization to configure telemetry.
func WithOtelSetup(otelSetup func()) Option {
	return &otelSetupOption{
		otelSetup: otelSetup,
	}
}

type loggerOption struct {
	logger *slog.Logger
}

func (o *loggerOption) apply(c *config) {
	c.logger = o.logger
}

// WithLogger stores a structured logger in the operator configuration.
// Run does not use it: the operator logs through log.GetGlobalLogger().
func WithLogger(logger *slog.Logger) Option {
	return &loggerOption{
		logger: logger,
	}
}

type timeoutOption struct {
	timeout time.Duration
}

func (o *timeoutOption) apply(c *config) {
	c.timeout = o.timeout
}

// WithTimeout sets the timeout duration for operator operations.
// This controls how long the operator will wait for operations to complete.
func WithTimeout(timeout time.Duration) Option {
	return &timeoutOption{
		timeout: timeout,
	}
}

type ipcOption struct {
	ipc *ipc.IPC
}

func (o *ipcOption) apply(c *config) {
	c.ipc = o.ipc
}

// WithIPC configures the Inter-Process Communication service with the provided options.
// This service handles communication between the daemon's components.
func WithIPC(opts ...ipc.Option) Option {
	return &ipcOption{
		ipc: ipc.New(opts...),
	}
}

type coordinatorOption struct {
	coordinator service.Service
}

func (o *coordinatorOption) apply(c *config) {
	c.Coordinator = o.coordinator
}

// WithCoordinator registers the activation coordinator, built at startup
// over the store and the fan/LED runtime handles (see cmd/tailord).
func WithCoordinator(coordinator service.Service) Option {
	return &coordinatorOption{
		coordinator: coordinator,
	}
}

type fanmgrOption struct {
	fanmgr service.Service
}

func (o *fanmgrOption) apply(c *config) {
	c.Fanmgr = o.fanmgr
}

// WithFanmgr registers the fan profile CRUD and override service.
func WithFanmgr(fanmgr service.Service) Option {
	return &fanmgrOption{
		fanmgr: fanmgr,
	}
}

type ledmgrOption struct {
	ledmgr service.Service
}

func (o *ledmgrOption) apply(c *config) {
	c.Ledmgr = o.ledmgr
}

// WithLedmgr registers the LED profile CRUD and override service.
func WithLedmgr(ledmgr service.Service) Option {
	return &ledmgrOption{
		ledmgr: ledmgr,
	}
}

type profilemgrOption struct {
	profilemgr service.Service
}

func (o *profilemgrOption) apply(c *config) {
	c.Profilemgr = o.profilemgr
}

// WithProfilemgr registers the global profile store and activation service.
func WithProfilemgr(profilemgr service.Service) Option {
	return &profilemgrOption{
		profilemgr: profilemgr,
	}
}

type perfmgrOption struct {
	perfmgr service.Service
}

func (o *perfmgrOption) apply(c *config) {
	c.Perfmgr = o.perfmgr
}

// WithPerfmgr registers the performance profile passthrough service. Leave
// unset on platforms with no ODM performance controller.
func WithPerfmgr(perfmgr service.Service) Option {
	return &perfmgrOption{
		perfmgr: perfmgr,
	}
}

type backlightmgrOption struct {
	backlightmgr service.Service
}

func (o *backlightmgrOption) apply(c *config) {
	c.Backlightmgr = o.backlightmgr
}

// WithBacklightmgr registers the display backlight passthrough service.
func WithBacklightmgr(backlightmgr service.Service) Option {
	return &backlightmgrOption{
		backlightmgr: backlightmgr,
	}
}

type hwreportOption struct {
	hwreport service.Service
}

func (o *hwreportOption) apply(c *config) {
	c.Hwreport = o.hwreport
}

// WithHwreport registers the best-effort hardware state snapshot service.
func WithHwreport(hwreport service.Service) Option {
	return &hwreportOption{
		hwreport: hwreport,
	}
}

type servicesOption struct {
	services []service.Service
}

func (o *servicesOption) apply(c *config) {
	c.extraServices = o.services
}

// WithExtraServices adds additional custom services to the operator configuration.
// These services will be managed alongside the standard set.
func WithExtraServices(services ...service.Service) Option {
	return &servicesOption{
		services: services,
	}
}
