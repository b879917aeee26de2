// SPDX-License-Identifier: BSD-3-Clause

package store

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/tuxedocomputers/tailord/internal/model"
)

// normalizeFanProfile applies the on-load normalization steps: reject
// empty, sort by strictly increasing temperature, clamp to 100, enforce
// non-decreasing fan percentage back-to-front, raise points below the
// safety floor, and append a (100, 100) point if the profile doesn't
// already end there. Violations are logged as warnings, never rejected --
// a profile that needed fixing up is still usable.
func normalizeFanProfile(name string, profile model.FanProfile, logger *slog.Logger) (model.FanProfile, error) {
	if len(profile) == 0 {
		return nil, fmt.Errorf("%w: fan profile %q has no points", ErrValidation, name)
	}

	points := append(model.FanProfile(nil), profile...)

	if !strictlyIncreasing(points) {
		logger.Warn("store: fan profile temperatures not strictly increasing, sorting", "name", name)
		sort.Slice(points, func(i, j int) bool { return points[i].Temp < points[j].Temp })
	}

	for i := range points {
		if points[i].Fan > 100 {
			logger.Warn("store: fan profile percentage above 100, clamping", "name", name, "temp", points[i].Temp)
			points[i].Fan = 100
		}
	}

	for i := len(points) - 2; i >= 0; i-- {
		if points[i].Fan > points[i+1].Fan {
			logger.Warn("store: fan profile not monotonic, lowering point", "name", name, "temp", points[i].Temp)
			points[i].Fan = points[i+1].Fan
		}
	}

	for i := range points {
		floor := model.SafetyFloor(points[i].Temp)
		if points[i].Fan < floor {
			logger.Warn("store: fan profile below safety floor, raising", "name", name, "temp", points[i].Temp, "floor", floor)
			points[i].Fan = floor
		}
	}

	if points[len(points)-1].Fan < 100 {
		logger.Warn("store: fan profile does not reach 100%, appending terminal point", "name", name)
		points = append(points, model.FanProfilePoint{Temp: 100, Fan: 100})
	}

	return points, nil
}

func strictlyIncreasing(points model.FanProfile) bool {
	for i := 1; i < len(points); i++ {
		if points[i].Temp <= points[i-1].Temp {
			return false
		}
	}
	return true
}
