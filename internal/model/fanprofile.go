// SPDX-License-Identifier: BSD-3-Clause

package model

// FanProfilePoint is one keyframe mapping a temperature to a fan
// percentage. Both fields are conceptually 0-100 and stored as uint8, so
// Temp can also hold readings above 100C (up to 255).
type FanProfilePoint struct {
	Temp uint8 `json:"temp"`
	Fan  uint8 `json:"fan"`
}

// FanProfile is an ordered sequence of FanProfilePoint, serialized as a
// bare JSON array. Values loaded from the store have already been
// normalized by Normalize; values constructed in-process (DefaultFanProfile)
// are normalized by construction.
type FanProfile []FanProfilePoint

// DefaultFanProfile is the fallback profile used whenever a referenced fan
// profile is missing, invalid, or unspecified.
func DefaultFanProfile() FanProfile {
	return FanProfile{
		{Temp: 25, Fan: 0},
		{Temp: 30, Fan: 10},
		{Temp: 40, Fan: 22},
		{Temp: 50, Fan: 35},
		{Temp: 60, Fan: 45},
		{Temp: 70, Fan: 62},
		{Temp: 80, Fan: 75},
		{Temp: 90, Fan: 100},
	}
}

// SafetyFloor returns the minimum permitted fan percentage at temp,
// max(0, (temp-50)*2) clamped to 100.
func SafetyFloor(temp uint8) uint8 {
	if temp <= 50 {
		return 0
	}
	floor := int(temp-50) * 2
	if floor > 100 {
		floor = 100
	}
	return uint8(floor)
}

// TargetFanSpeed computes the target fan percentage for the current
// temperature by linear interpolation between bracketing points. p must be
// normalized (strictly increasing temperatures, at least one point).
func (p FanProfile) TargetFanSpeed(currentTemp uint8) uint8 {
	if len(p) == 0 {
		return 100
	}

	if currentTemp <= p[0].Temp {
		return p[0].Fan
	}
	last := p[len(p)-1]
	if currentTemp >= last.Temp {
		return 100
	}

	for i := 1; i < len(p); i++ {
		if p[i].Temp >= currentTemp {
			prev := p[i-1]
			next := p[i]
			if next.Temp == currentTemp {
				return next.Fan
			}
			// Promote to 16 bits so the multiplication can't overflow.
			tempDiff := uint16(next.Temp - prev.Temp)
			currDiff := uint16(currentTemp - prev.Temp)
			fanDiff := uint16(next.Fan - prev.Fan)
			// Round to nearest rather than truncate: 85C on the default
			// profile interpolates to 87.5 and yields 88, not 87.
			return prev.Fan + uint8((fanDiff*currDiff+tempDiff/2)/tempDiff)
		}
	}
	return 100
}

// Equal reports whether two fan profiles carry identical points, used by
// round-trip tests.
func (p FanProfile) Equal(other FanProfile) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}
