// SPDX-License-Identifier: BSD-3-Clause

package hwdevice

import (
	"context"
	"fmt"
	"os"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Tuxedo WMI clevo-interface ioctl layout: a single misc device exposing a
// read and a write command, each taking a (sub-command, argument) pair
// packed into the ioctl request.
const (
	tuxedoIoDeviceFile = "/dev/tuxedo_io"
	ioctlMagic         = 0xEC

	rCLHwCheck        = ioctlMagic<<8 | 0x01
	rCLFanInfo1       = ioctlMagic<<8 | 0x02
	rCLFanInfo2       = ioctlMagic<<8 | 0x03
	rCLFanInfo3       = ioctlMagic<<8 | 0x04
	rCLModeConvertTDP = ioctlMagic<<8 | 0x05

	wCLFanSpeed     = ioctlMagic<<8 | 0x10
	wCLFansAuto     = ioctlMagic<<8 | 0x11
	wCLPerfProfile  = ioctlMagic<<8 | 0x12
	wCLWebcam       = ioctlMagic<<8 | 0x13
	wCLEnableModeSet = ioctlMagic<<8 | 0x14

	maxFanSpeedRaw = 0xFF
)

var clevoPerformanceProfiles = []string{"quiet", "powersave", "entertainment", "performance"}

// IoctlFanDevice drives the fan and ODM-performance-profile controller
// through the tuxedo_io kernel misc device. One instance is shared by every
// FanRuntime; each call issues its own ioctl, there is no cached state.
type IoctlFanDevice struct {
	mu      sync.Mutex
	file    *os.File
	numFans int
}

// OpenIoctlFanDevice opens the tuxedo_io device file and verifies it
// responds to the hardware-check ioctl.
func OpenIoctlFanDevice(numFans int) (*IoctlFanDevice, error) {
	f, err := os.OpenFile(tuxedoIoDeviceFile, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("hwdevice: open %s: %w", tuxedoIoDeviceFile, err)
	}

	d := &IoctlFanDevice{file: f, numFans: numFans}
	if _, err := ioctlRead(f, rCLHwCheck, 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("hwdevice: hardware check failed: %w", err)
	}
	return d, nil
}

// NumFans implements FanDevice.
func (d *IoctlFanDevice) NumFans() int { return d.numFans }

// FanTemperature implements FanDevice.
func (d *IoctlFanDevice) FanTemperature(_ context.Context, idx int) (uint8, error) {
	if idx < 0 || idx >= d.numFans {
		return 0, ErrFanIndex
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	raw, err := ioctlRead(d.file, fanInfoCommand(idx), 0)
	if err != nil {
		return 0, fmt.Errorf("hwdevice: read fan %d temperature: %w", idx, err)
	}
	return uint8((raw >> 16) & 0xFF), nil
}

// SetFanSpeedPercent implements FanDevice.
func (d *IoctlFanDevice) SetFanSpeedPercent(_ context.Context, idx int, percent uint8) error {
	if idx < 0 || idx >= d.numFans {
		return ErrFanIndex
	}
	if percent > 100 {
		percent = 100
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	raw := uint32(float64(percent) * maxFanSpeedRaw / 100.0)
	arg := raw << (uint(idx) * 8)
	if err := ioctlWrite(d.file, wCLFanSpeed, arg); err != nil {
		return fmt.Errorf("hwdevice: set fan %d speed: %w", idx, err)
	}
	return nil
}

// FanSpeedPercent implements FanDevice.
func (d *IoctlFanDevice) FanSpeedPercent(_ context.Context, idx int) (uint8, error) {
	if idx < 0 || idx >= d.numFans {
		return 0, ErrFanIndex
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	raw, err := ioctlRead(d.file, fanInfoCommand(idx), 0)
	if err != nil {
		return 0, fmt.Errorf("hwdevice: read fan %d speed: %w", idx, err)
	}
	rawSpeed := raw & 0xFF
	return uint8((float64(rawSpeed) / maxFanSpeedRaw) * 100.0), nil
}

// SetFansAuto implements FanDevice.
func (d *IoctlFanDevice) SetFansAuto(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := ioctlWrite(d.file, wCLFansAuto, 0); err != nil {
		return fmt.Errorf("hwdevice: set fans auto: %w", err)
	}
	return nil
}

// SetODMPerformanceProfile implements FanDevice.
func (d *IoctlFanDevice) SetODMPerformanceProfile(_ context.Context, name string) error {
	arg, ok := clevoProfileArg(name)
	if !ok {
		return fmt.Errorf("%w: unknown performance profile %q", ErrDeviceUnavailable, name)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := ioctlWrite(d.file, wCLPerfProfile, arg); err != nil {
		return fmt.Errorf("hwdevice: set performance profile %q: %w", name, err)
	}
	return nil
}

// AvailableODMPerformanceProfiles implements FanDevice.
func (d *IoctlFanDevice) AvailableODMPerformanceProfiles(_ context.Context) ([]string, error) {
	out := make([]string, len(clevoPerformanceProfiles))
	copy(out, clevoPerformanceProfiles)
	return out, nil
}

// Close releases the underlying device file.
func (d *IoctlFanDevice) Close() error {
	return d.file.Close()
}

func fanInfoCommand(idx int) int {
	switch idx {
	case 0:
		return rCLFanInfo1
	case 1:
		return rCLFanInfo2
	default:
		return rCLFanInfo3
	}
}

func clevoProfileArg(name string) (uint32, bool) {
	for i, p := range clevoPerformanceProfiles {
		if p == name {
			return uint32(i), true
		}
	}
	return 0, false
}

// ioctlRead issues a read-direction ioctl, passing a pointer to a 32-bit
// argument initialized to sub, and returns the value the kernel wrote back
// into it.
func ioctlRead(f *os.File, cmd int, sub uint32) (uint32, error) {
	arg := sub
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), uintptr(cmd), uintptr(unsafe.Pointer(&arg)))
	if errno != 0 {
		return 0, errno
	}
	return arg, nil
}

// ioctlWrite issues a write-direction ioctl carrying arg as the command's
// single 32-bit payload.
func ioctlWrite(f *os.File, cmd int, arg uint32) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), uintptr(cmd), uintptr(arg))
	if errno != 0 {
		return errno
	}
	return nil
}
