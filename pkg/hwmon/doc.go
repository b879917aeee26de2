// SPDX-License-Identifier: BSD-3-Clause

// Package hwmon provides context-aware, error-mapped read/write primitives
// over individual hwmon and LED-class sysfs attribute files.
//
// # Overview
//
// The Linux hwmon subsystem exposes hardware monitoring and control
// attributes (temperature, PWM, brightness, and similar) as plain files
// under /sys/class/hwmon/ and /sys/class/leds/. This package supplies the
// four primitives pkg/hwdevice builds its sysfs-backed fan and LED devices
// on: reading and writing an integer-valued attribute file, and reading
// and writing a string-valued one. Every operation accepts a context and
// is canceled promptly rather than blocking on a wedged device.
//
// # Basic usage
//
//	raw, err := hwmon.ReadIntCtx(ctx, "/sys/class/hwmon/hwmon2/pwm1")
//	if err != nil {
//		log.Printf("failed reading pwm1: %v", err)
//		return
//	}
//
//	if err := hwmon.WriteIntCtx(ctx, "/sys/class/hwmon/hwmon2/pwm1", 128); err != nil {
//		log.Printf("failed writing pwm1: %v", err)
//	}
//
// # Error handling
//
// Failures are wrapped in one of the package's sentinel errors so callers
// can distinguish missing files, permission failures, malformed values,
// and timeouts:
//
//	if _, err := hwmon.ReadIntCtx(ctx, path); err != nil {
//		switch {
//		case errors.Is(err, hwmon.ErrFileNotFound):
//			// attribute not present on this device
//		case errors.Is(err, hwmon.ErrOperationTimeout):
//			// context expired before the read completed
//		default:
//			// permission, I/O, or malformed-value failure
//		}
//	}
package hwmon
