// SPDX-License-Identifier: BSD-3-Clause

package hwdevice

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tuxedocomputers/tailord/internal/model"
	"github.com/tuxedocomputers/tailord/pkg/hwmon"
)

// SysfsLEDDevice drives one /sys/class/leds zone. RGB zones expose a
// "multi_intensity" file holding three space-separated channel values and
// a "brightness" file that must be pinned to MaxBrightness so the
// intensities alone represent the color (mirrors the reference driver's
// "set brightness to 100% once" startup step). Monochrome zones have no
// multi_intensity file and are addressed through brightness alone.
type SysfsLEDDevice struct {
	info          model.LedDeviceInfo
	basePath      string
	maxBrightness uint32
	monochrome    bool
}

// NewSysfsLEDDevice opens the LED class device at basePath (e.g.
// "/sys/class/leds/tuxedo_keyboard::left") and pins its brightness to
// maxBrightness if it is an RGB zone.
func NewSysfsLEDDevice(ctx context.Context, info model.LedDeviceInfo, basePath string, monochrome bool) (*SysfsLEDDevice, error) {
	maxRaw, err := hwmon.ReadIntCtx(ctx, filepath.Join(basePath, "max_brightness"))
	if err != nil {
		return nil, fmt.Errorf("hwdevice: read max_brightness for %s: %w", basePath, err)
	}

	d := &SysfsLEDDevice{
		info:          info,
		basePath:      basePath,
		maxBrightness: uint32(maxRaw),
		monochrome:    monochrome,
	}

	if !monochrome {
		if err := hwmon.WriteIntCtx(ctx, filepath.Join(basePath, "brightness"), int(d.maxBrightness)); err != nil {
			return nil, fmt.Errorf("hwdevice: pin brightness for %s: %w", basePath, err)
		}
	}
	return d, nil
}

// Info implements LEDDevice.
func (d *SysfsLEDDevice) Info() model.LedDeviceInfo { return d.info }

// MaxBrightness implements LEDDevice.
func (d *SysfsLEDDevice) MaxBrightness() uint32 { return d.maxBrightness }

// SetColor implements LEDDevice.
func (d *SysfsLEDDevice) SetColor(ctx context.Context, color model.Color) error {
	if d.monochrome {
		return hwmon.WriteStringCtx(ctx, filepath.Join(d.basePath, "brightness"), color.SysfsMonochromeString(d.maxBrightness))
	}
	return hwmon.WriteStringCtx(ctx, filepath.Join(d.basePath, "multi_intensity"), color.SysfsRGBString(d.maxBrightness))
}

// Color implements LEDDevice.
func (d *SysfsLEDDevice) Color(ctx context.Context) (model.Color, error) {
	if d.monochrome {
		raw, err := hwmon.ReadIntCtx(ctx, filepath.Join(d.basePath, "brightness"))
		if err != nil {
			return model.Color{}, err
		}
		v := uint32(raw)
		return model.ColorFromSysfsRGB([3]uint32{v, v, v}, d.maxBrightness), nil
	}

	raw, err := hwmon.ReadStringCtx(ctx, filepath.Join(d.basePath, "multi_intensity"))
	if err != nil {
		return model.Color{}, err
	}
	values, err := parseIntTriple(raw)
	if err != nil {
		return model.Color{}, fmt.Errorf("hwdevice: parse multi_intensity for %s: %w", d.basePath, err)
	}
	return model.ColorFromSysfsRGB(values, d.maxBrightness), nil
}

func parseIntTriple(s string) ([3]uint32, error) {
	fields := strings.Fields(s)
	var out [3]uint32
	if len(fields) != 3 {
		return out, fmt.Errorf("expected 3 values, got %d", len(fields))
	}
	for i, f := range fields {
		v, err := strconv.ParseUint(f, 10, 32)
		if err != nil {
			return out, err
		}
		out[i] = uint32(v)
	}
	return out, nil
}

// SysfsBacklightDevice drives one /sys/class/backlight zone.
type SysfsBacklightDevice struct {
	basePath string
}

// NewSysfsBacklightDevice wraps the backlight class device at basePath
// (e.g. "/sys/class/backlight/amdgpu_bl0").
func NewSysfsBacklightDevice(basePath string) *SysfsBacklightDevice {
	return &SysfsBacklightDevice{basePath: basePath}
}

// MaxBrightness implements BacklightDevice.
func (d *SysfsBacklightDevice) MaxBrightness(ctx context.Context) (int, error) {
	return hwmon.ReadIntCtx(ctx, filepath.Join(d.basePath, "max_brightness"))
}

// Brightness implements BacklightDevice.
func (d *SysfsBacklightDevice) Brightness(ctx context.Context) (int, error) {
	return hwmon.ReadIntCtx(ctx, filepath.Join(d.basePath, "brightness"))
}

// SetBrightness implements BacklightDevice.
func (d *SysfsBacklightDevice) SetBrightness(ctx context.Context, value int) error {
	return hwmon.WriteIntCtx(ctx, filepath.Join(d.basePath, "brightness"), value)
}
