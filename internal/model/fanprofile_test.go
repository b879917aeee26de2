// SPDX-License-Identifier: BSD-3-Clause

package model

import "testing"

func TestDefaultFanProfileTargetFanSpeed(t *testing.T) {
	p := DefaultFanProfile()

	cases := []struct {
		temp uint8
		want uint8
	}{
		{25, 0},
		{55, 40},
		{85, 88},
		{120, 100},
	}
	for _, c := range cases {
		if got := p.TargetFanSpeed(c.temp); got != c.want {
			t.Errorf("TargetFanSpeed(%d) = %d, want %d", c.temp, got, c.want)
		}
	}
}

func TestFanProfileTargetFanSpeedBelowFirstPoint(t *testing.T) {
	p := DefaultFanProfile()
	if got := p.TargetFanSpeed(0); got != 0 {
		t.Errorf("TargetFanSpeed(0) = %d, want 0", got)
	}
}

func TestSafetyFloor(t *testing.T) {
	cases := []struct {
		temp uint8
		want uint8
	}{
		{0, 0},
		{50, 0},
		{51, 2},
		{75, 50},
		{100, 100},
		{200, 100},
	}
	for _, c := range cases {
		if got := SafetyFloor(c.temp); got != c.want {
			t.Errorf("SafetyFloor(%d) = %d, want %d", c.temp, got, c.want)
		}
	}
}

func TestFanProfileEqual(t *testing.T) {
	a := DefaultFanProfile()
	b := DefaultFanProfile()
	if !a.Equal(b) {
		t.Fatal("two default profiles should be equal")
	}
	b[0].Fan = 5
	if a.Equal(b) {
		t.Fatal("profiles differing in one point should not be equal")
	}
}
