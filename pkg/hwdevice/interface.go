// SPDX-License-Identifier: BSD-3-Clause

// Package hwdevice defines the small capability interfaces the fan and LED
// runtimes are driven through, plus concrete implementations: an
// ioctl-based and a hwmon-sysfs-based fan/performance device, a
// sysfs-class-LED based LED device, and a sysfs backlight device.
// Runtimes depend only on the interfaces; which implementation is
// injected is a startup-time decision (see cmd/tailord).
package hwdevice

import (
	"context"

	"github.com/tuxedocomputers/tailord/internal/model"
)

// FanDevice is the capability set the fan control loop and the performance
// passthrough need from the underlying hardware: read/write fan state and
// switch ODM performance profiles.
type FanDevice interface {
	// NumFans reports how many independently controlled fans the device
	// exposes.
	NumFans() int

	// FanTemperature returns the current temperature reading, in Celsius,
	// that drives fan index idx.
	FanTemperature(ctx context.Context, idx int) (uint8, error)

	// SetFanSpeedPercent writes a 0-100 target speed to fan idx.
	SetFanSpeedPercent(ctx context.Context, idx int, percent uint8) error

	// FanSpeedPercent reads the fan's current reported speed, 0-100.
	FanSpeedPercent(ctx context.Context, idx int) (uint8, error)

	// SetFansAuto releases all fans back to firmware automatic control.
	SetFansAuto(ctx context.Context) error

	// SetODMPerformanceProfile switches the ODM performance profile by
	// name. Returns ErrDeviceUnavailable on platforms with no performance
	// controller.
	SetODMPerformanceProfile(ctx context.Context, name string) error

	// AvailableODMPerformanceProfiles lists the performance profile names
	// this device accepts.
	AvailableODMPerformanceProfiles(ctx context.Context) ([]string, error)
}

// LEDDevice is one addressable LED zone: a color read/write pair plus the
// brightness range writes must be scaled into.
type LEDDevice interface {
	// Info identifies this zone for GlobalProfile LED-assignment lookups.
	Info() model.LedDeviceInfo

	// MaxBrightness is the device's maximum per-channel (or, for
	// monochrome devices, overall) brightness value.
	MaxBrightness() uint32

	// SetColor writes color to the device, scaled to MaxBrightness.
	SetColor(ctx context.Context, color model.Color) error

	// Color reads the device's current color back, scaled from
	// MaxBrightness.
	Color(ctx context.Context) (model.Color, error)
}

// BacklightDevice is the thin passthrough target for display backlight
// control.
type BacklightDevice interface {
	// MaxBrightness is the device's maximum brightness value.
	MaxBrightness(ctx context.Context) (int, error)

	// Brightness reads the device's current brightness.
	Brightness(ctx context.Context) (int, error)

	// SetBrightness writes a new brightness value, 0..MaxBrightness.
	SetBrightness(ctx context.Context, value int) error
}
