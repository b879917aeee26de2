// SPDX-License-Identifier: BSD-3-Clause

package model

import "fmt"

// LedDeviceInfo stably identifies one addressable LED zone on the system,
// e.g. {"tuxedo_keyboard", "left"}. It is used both as the wire identity
// reported by GetLedDevices and as the map key a GlobalProfile's LED
// assignments resolve against.
type LedDeviceInfo struct {
	DeviceName string `json:"device_name"`
	Function   string `json:"function"`
}

// LedProfileAssignment binds one LedDeviceInfo to a named LED profile
// within a GlobalProfile.
type LedProfileAssignment struct {
	DeviceName string `json:"device_name"`
	Function   string `json:"function"`
	Profile    string `json:"profile"`
}

// DeviceID returns a stable string identity for the zone, suitable as a
// map key ("device_name::function").
func (i LedDeviceInfo) DeviceID() string {
	return fmt.Sprintf("%s::%s", i.DeviceName, i.Function)
}

// Info extracts the LedDeviceInfo half of the assignment.
func (a LedProfileAssignment) Info() LedDeviceInfo {
	return LedDeviceInfo{DeviceName: a.DeviceName, Function: a.Function}
}

// GlobalProfile bundles a fan profile name per fan index, an LED profile
// name per LED device, and an optional performance profile into one
// user-selectable configuration.
type GlobalProfile struct {
	Fans               []string               `json:"fans"`
	Leds               []LedProfileAssignment `json:"leds"`
	PerformanceProfile *string                `json:"performance_profile"`
}

// FanProfileName returns the profile name for fan index idx, or "" if the
// global profile has no entry for it (the caller should substitute the
// default fan profile in that case).
func (g GlobalProfile) FanProfileName(idx int) string {
	if idx < 0 || idx >= len(g.Fans) {
		return ""
	}
	return g.Fans[idx]
}

// LedProfileName returns the profile name assigned to info, or "" if the
// global profile carries no assignment for that device.
func (g GlobalProfile) LedProfileName(info LedDeviceInfo) string {
	for _, assignment := range g.Leds {
		if assignment.Info() == info {
			return assignment.Profile
		}
	}
	return ""
}
