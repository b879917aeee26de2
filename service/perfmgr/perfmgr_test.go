// SPDX-License-Identifier: BSD-3-Clause

package perfmgr

import (
	"context"
	"errors"
	"testing"

	"github.com/tuxedocomputers/tailord/pkg/hwdevice"
	"github.com/tuxedocomputers/tailord/pkg/ipc"
)

func TestMapDeviceErrTranslatesUnavailable(t *testing.T) {
	err := mapDeviceErr(hwdevice.ErrDeviceUnavailable)
	if !errors.Is(err, ipc.ErrDeviceUnavailable) {
		t.Fatalf("got %v, want ipc.ErrDeviceUnavailable", err)
	}
}

func TestMapDeviceErrPassesThroughOtherErrors(t *testing.T) {
	other := errors.New("boom")
	if got := mapDeviceErr(other); got != other {
		t.Fatalf("got %v, want passthrough of %v", got, other)
	}
}

func TestSysfsFanDeviceHasNoPerformanceController(t *testing.T) {
	d := hwdevice.NewSysfsFanDevice(t.TempDir(), 1, 255)

	if err := d.SetODMPerformanceProfile(context.Background(), "turbo"); !errors.Is(err, hwdevice.ErrDeviceUnavailable) {
		t.Fatalf("SetODMPerformanceProfile error = %v, want ErrDeviceUnavailable", err)
	}
	if _, err := d.AvailableODMPerformanceProfiles(context.Background()); !errors.Is(err, hwdevice.ErrDeviceUnavailable) {
		t.Fatalf("AvailableODMPerformanceProfiles error = %v, want ErrDeviceUnavailable", err)
	}
}
