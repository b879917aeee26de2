// SPDX-License-Identifier: BSD-3-Clause

package profilemgr

import (
	"fmt"

	"github.com/tuxedocomputers/tailord/internal/model"
)

const (
	DefaultServiceName        = "profilemgr"
	DefaultServiceDescription = "Global profile store, active-profile pointer, and reload trigger"
	DefaultServiceVersion     = "1.0.0"
)

type config struct {
	serviceName        string
	serviceDescription string
	serviceVersion     string
	numFans            int
	ledDevices         []model.LedDeviceInfo
}

func (c *config) Validate() error {
	if c.serviceName == "" {
		return fmt.Errorf("%w: service name must not be empty", ErrInvalidConfiguration)
	}
	return nil
}

// Option configures a ProfileMgr at construction time.
type Option interface {
	apply(*config)
}

type serviceNameOption struct{ name string }

func (o *serviceNameOption) apply(c *config) { c.serviceName = o.name }

// WithServiceName overrides the NATS micro service name.
func WithServiceName(name string) Option {
	return &serviceNameOption{name: name}
}

type serviceDescriptionOption struct{ description string }

func (o *serviceDescriptionOption) apply(c *config) { c.serviceDescription = o.description }

// WithServiceDescription overrides the NATS micro service description.
func WithServiceDescription(description string) Option {
	return &serviceDescriptionOption{description: description}
}

type serviceVersionOption struct{ version string }

func (o *serviceVersionOption) apply(c *config) { c.serviceVersion = o.version }

// WithServiceVersion overrides the reported service version.
func WithServiceVersion(version string) Option {
	return &serviceVersionOption{version: version}
}

type fanCountOption struct{ n int }

func (o *fanCountOption) apply(c *config) { c.numFans = o.n }

// WithFanCount sets the value reported by get_number_of_fans.
func WithFanCount(n int) Option {
	return &fanCountOption{n: n}
}

type ledDevicesOption struct{ infos []model.LedDeviceInfo }

func (o *ledDevicesOption) apply(c *config) { c.ledDevices = o.infos }

// WithLedDevices sets the zone listing reported by get_led_devices, in
// listing order.
func WithLedDevices(infos []model.LedDeviceInfo) Option {
	return &ledDevicesOption{infos: infos}
}
