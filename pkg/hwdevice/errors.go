// SPDX-License-Identifier: BSD-3-Clause

package hwdevice

import "errors"

// ErrDeviceUnavailable is returned by methods in a hardware namespace that
// is absent on the running platform, e.g. calling SetODMPerformanceProfile
// on a laptop with no ODM performance controller.
var ErrDeviceUnavailable = errors.New("hwdevice: device unavailable on this platform")

// ErrFanIndex is returned when a caller addresses a fan index outside
// [0, NumFans()).
var ErrFanIndex = errors.New("hwdevice: fan index out of range")
