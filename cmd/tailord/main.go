// SPDX-License-Identifier: BSD-3-Clause

// Command tailord is the privileged laptop hardware management daemon: it
// discovers the local fan and LED controllers, starts a control loop per
// fan and an animation runtime per LED zone, and exposes profile CRUD,
// activation, and hardware passthrough over an embedded NATS bus.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/tuxedocomputers/tailord/internal/coordinator"
	"github.com/tuxedocomputers/tailord/internal/fanrun"
	"github.com/tuxedocomputers/tailord/internal/ledrun"
	"github.com/tuxedocomputers/tailord/internal/model"
	"github.com/tuxedocomputers/tailord/internal/store"
	"github.com/tuxedocomputers/tailord/pkg/hwdevice"
	"github.com/tuxedocomputers/tailord/pkg/log"
	"github.com/tuxedocomputers/tailord/pkg/suspend"
	"github.com/tuxedocomputers/tailord/service/backlightmgr"
	"github.com/tuxedocomputers/tailord/service/fanmgr"
	"github.com/tuxedocomputers/tailord/service/hwreport"
	"github.com/tuxedocomputers/tailord/service/ledmgr"
	"github.com/tuxedocomputers/tailord/service/operator"
	"github.com/tuxedocomputers/tailord/service/perfmgr"
	"github.com/tuxedocomputers/tailord/service/profilemgr"
)

func main() {
	storeDir := flag.String("store-dir", "/var/lib/tailord", "profile store root directory")
	fanCount := flag.Int("fan-count", 2, "number of fans exposed by the tuxedo_io controller")
	ledGlob := flag.String("led-glob", "/sys/class/leds/tuxedo_keyboard*", "glob matching one directory per addressable LED zone")
	backlightGlob := flag.String("backlight-glob", "/sys/class/backlight/*", "glob matching candidate backlight class devices; the first match is used")
	flag.Parse()

	logger := log.NewDefaultLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.New(*storeDir, logger)
	if err != nil {
		logger.Error("failed opening profile store", "dir", *storeDir, "error", err)
		os.Exit(1)
	}

	suspendBus := suspend.NewBus()
	// TODO: publish real transitions from a logind PrepareForSleep watch;
	// no D-Bus client is available in this daemon's dependency set yet, so
	// the bus is wired but nothing ever calls suspendBus.Publish.

	fanDevice, fanHandles := startFans(ctx, *fanCount, suspendBus, logger)
	ledDevices, ledHandles, ledInfos := startLeds(ctx, *ledGlob, suspendBus, logger)
	backlightDevice := openBacklight(*backlightGlob, logger)

	coord := coordinator.New(coordinator.Config{
		Store:             st,
		Fans:              fanHandles,
		Leds:              ledHandles,
		LedInfos:          ledInfos,
		PerformanceDevice: fanDevice,
	})

	fanSvc := fanmgr.New(st, fanHandles, coord)
	ledSvc := ledmgr.New(st, ledHandles, ledInfos, coord)
	profileSvc := profilemgr.New(st, coord,
		profilemgr.WithFanCount(*fanCount),
		profilemgr.WithLedDevices(ledInfos),
	)
	reportSvc := hwreport.New(st, fanDevice, ledDevices, backlightDevice)

	opts := []operator.Option{
		operator.WithName("tailord"),
		operator.WithCoordinator(coord),
		operator.WithFanmgr(fanSvc),
		operator.WithLedmgr(ledSvc),
		operator.WithProfilemgr(profileSvc),
		operator.WithHwreport(reportSvc),
	}
	if fanDevice != nil {
		opts = append(opts, operator.WithPerfmgr(perfmgr.New(fanDevice)))
	}
	if backlightDevice != nil {
		opts = append(opts, operator.WithBacklightmgr(backlightmgr.New(backlightDevice)))
	}

	if err := operator.New(opts...).Run(ctx, nil); err != nil {
		logger.Error("operator exited with error", "error", err)
		os.Exit(1)
	}
}

// startFans opens the tuxedo_io controller and starts one control loop per
// fan index. A platform with no controller runs with fanDevice nil and no
// fan handles; fan control, the performance passthrough, and the
// performance half of hwreport are all simply absent.
func startFans(ctx context.Context, fanCount int, suspendBus *suspend.Bus, logger *slog.Logger) (hwdevice.FanDevice, []*fanrun.Handle) {
	device, err := hwdevice.OpenIoctlFanDevice(fanCount)
	if err != nil {
		logger.Warn("no fan controller available, fan control disabled", "error", err)
		return nil, nil
	}

	handles := make([]*fanrun.Handle, fanCount)
	for idx := 0; idx < fanCount; idx++ {
		sub, _ := suspendBus.Subscribe()
		handle, rt, err := fanrun.New(ctx, idx, device, model.DefaultFanProfile(), sub, logger)
		if err != nil {
			logger.Error("failed starting fan runtime", "fan", idx, "error", err)
			continue
		}
		handles[idx] = handle
		go rt.Run(ctx)
	}
	return device, handles
}

// startLeds globs ledGlobPattern for LED zone directories, opens each as a
// SysfsLEDDevice, and starts an animation runtime per zone. Zone identity
// is derived from the sysfs class name "<device>::<function>"; a name
// with no "::" is treated as a single, monochrome zone with an empty
// function. A zone missing its multi_intensity file is treated as
// monochrome.
func startLeds(ctx context.Context, ledGlobPattern string, suspendBus *suspend.Bus, logger *slog.Logger) ([]hwdevice.LEDDevice, map[string]*ledrun.Handle, []model.LedDeviceInfo) {
	matches, err := filepath.Glob(ledGlobPattern)
	if err != nil {
		logger.Warn("invalid led glob pattern, no LED zones started", "pattern", ledGlobPattern, "error", err)
		return nil, nil, nil
	}

	devices := make([]hwdevice.LEDDevice, 0, len(matches))
	handles := make(map[string]*ledrun.Handle, len(matches))
	infos := make([]model.LedDeviceInfo, 0, len(matches))

	for _, dir := range matches {
		info := ledDeviceInfoFromPath(dir)
		monochrome := true
		if _, err := os.Stat(filepath.Join(dir, "multi_intensity")); err == nil {
			monochrome = false
		}

		device, err := hwdevice.NewSysfsLEDDevice(ctx, info, dir, monochrome)
		if err != nil {
			logger.Warn("failed opening LED zone, skipping", "zone", info, "path", dir, "error", err)
			continue
		}

		sub, _ := suspendBus.Subscribe()
		handle, rt := ledrun.New(ctx, device, model.DefaultColorProfile(), sub, logger)

		devices = append(devices, device)
		handles[info.DeviceID()] = handle
		infos = append(infos, info)
		go rt.Run(ctx)
	}
	return devices, handles, infos
}

func ledDeviceInfoFromPath(dir string) model.LedDeviceInfo {
	base := filepath.Base(dir)
	name, function, found := strings.Cut(base, "::")
	if !found {
		return model.LedDeviceInfo{DeviceName: base}
	}
	return model.LedDeviceInfo{DeviceName: name, Function: function}
}

// openBacklight picks the first match of backlightGlobPattern. Laptops
// expose at most one backlight class device; multiple matches (an
// external panel's backlight node, for instance) are logged and ignored
// beyond the first.
func openBacklight(backlightGlobPattern string, logger *slog.Logger) hwdevice.BacklightDevice {
	matches, err := filepath.Glob(backlightGlobPattern)
	if err != nil || len(matches) == 0 {
		logger.Warn("no backlight device found, backlight control disabled", "pattern", backlightGlobPattern, "error", err)
		return nil
	}
	if len(matches) > 1 {
		logger.Warn("multiple backlight devices found, using the first", "chosen", matches[0], "candidates", matches)
	}
	return hwdevice.NewSysfsBacklightDevice(matches[0])
}
