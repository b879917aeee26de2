// SPDX-License-Identifier: BSD-3-Clause

package hwdevice

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/tuxedocomputers/tailord/pkg/hwmon"
)

// SysfsFanDevice drives fans through a plain hwmon device's pwmN/tempN
// attribute files rather than the tuxedo_io ioctl. It is the fallback used
// on platforms where the clevo/uniwill misc device isn't present but a
// standard hwmon-exposed PWM fan controller is; the caller supplies the
// hwmon device directory. It has no ODM performance profile controller.
type SysfsFanDevice struct {
	devicePath string
	numFans    int
	pwmMax     int
}

// NewSysfsFanDevice wraps a discovered hwmon device directory, one PWM
// channel per fan (pwm1, pwm2, ...), with pwmMax (typically 255) defining
// the raw value corresponding to 100%.
func NewSysfsFanDevice(devicePath string, numFans, pwmMax int) *SysfsFanDevice {
	if pwmMax <= 0 {
		pwmMax = 255
	}
	return &SysfsFanDevice{devicePath: devicePath, numFans: numFans, pwmMax: pwmMax}
}

// NumFans implements FanDevice.
func (d *SysfsFanDevice) NumFans() int { return d.numFans }

// FanTemperature implements FanDevice.
func (d *SysfsFanDevice) FanTemperature(ctx context.Context, idx int) (uint8, error) {
	if idx < 0 || idx >= d.numFans {
		return 0, ErrFanIndex
	}
	milliC, err := hwmon.ReadIntCtx(ctx, filepath.Join(d.devicePath, fmt.Sprintf("temp%d_input", idx+1)))
	if err != nil {
		return 0, err
	}
	return uint8(milliC / 1000), nil
}

// SetFanSpeedPercent implements FanDevice.
func (d *SysfsFanDevice) SetFanSpeedPercent(ctx context.Context, idx int, percent uint8) error {
	if idx < 0 || idx >= d.numFans {
		return ErrFanIndex
	}
	if percent > 100 {
		percent = 100
	}
	raw := int(percent) * d.pwmMax / 100
	return hwmon.WriteIntCtx(ctx, filepath.Join(d.devicePath, fmt.Sprintf("pwm%d", idx+1)), raw)
}

// FanSpeedPercent implements FanDevice.
func (d *SysfsFanDevice) FanSpeedPercent(ctx context.Context, idx int) (uint8, error) {
	if idx < 0 || idx >= d.numFans {
		return 0, ErrFanIndex
	}
	raw, err := hwmon.ReadIntCtx(ctx, filepath.Join(d.devicePath, fmt.Sprintf("pwm%d", idx+1)))
	if err != nil {
		return 0, err
	}
	return uint8(raw * 100 / d.pwmMax), nil
}

// SetFansAuto implements FanDevice.
func (d *SysfsFanDevice) SetFansAuto(ctx context.Context) error {
	var firstErr error
	for i := 1; i <= d.numFans; i++ {
		if err := hwmon.WriteIntCtx(ctx, filepath.Join(d.devicePath, fmt.Sprintf("pwm%d_enable", i)), 2); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// SetODMPerformanceProfile implements FanDevice. Plain hwmon fan
// controllers have no ODM profile concept.
func (d *SysfsFanDevice) SetODMPerformanceProfile(context.Context, string) error {
	return ErrDeviceUnavailable
}

// AvailableODMPerformanceProfiles implements FanDevice.
func (d *SysfsFanDevice) AvailableODMPerformanceProfiles(context.Context) ([]string, error) {
	return nil, ErrDeviceUnavailable
}
