// SPDX-License-Identifier: BSD-3-Clause

// Package backlightmgr exposes display backlight control over NATS: a
// thin passthrough over hwdevice.BacklightDevice with no store and no
// reload trigger.
package backlightmgr
