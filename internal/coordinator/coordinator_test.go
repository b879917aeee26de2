// SPDX-License-Identifier: BSD-3-Clause

package coordinator

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/tuxedocomputers/tailord/internal/fanrun"
	"github.com/tuxedocomputers/tailord/internal/ledrun"
	"github.com/tuxedocomputers/tailord/internal/model"
	"github.com/tuxedocomputers/tailord/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(t.TempDir(), testLogger())
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	return s
}

func recvProfile(t *testing.T, ch <-chan model.FanProfile) model.FanProfile {
	t.Helper()
	select {
	case p := <-ch:
		return p
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for fan profile")
		return nil
	}
}

func recvColorProfile(t *testing.T, ch <-chan model.ColorProfile) model.ColorProfile {
	t.Helper()
	select {
	case p := <-ch:
		return p
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for color profile")
		return model.ColorProfile{}
	}
}

func TestActivateSendsResolvedFanAndLedProfiles(t *testing.T) {
	s := newTestStore(t)

	custom := model.FanProfile{{Temp: 30, Fan: 0}, {Temp: 100, Fan: 100}}
	rawFan, _ := json.Marshal(custom)
	if err := s.AddFanProfile("quiet", rawFan); err != nil {
		t.Fatalf("AddFanProfile: %v", err)
	}

	ledProfile := model.NewSingleProfile(model.Color{R: 10, G: 20, B: 30})
	rawLed, _ := json.Marshal(ledProfile)
	if err := s.AddLedProfile("calm", rawLed); err != nil {
		t.Fatalf("AddLedProfile: %v", err)
	}

	zone := model.LedDeviceInfo{DeviceName: "tuxedo_keyboard", Function: "main"}
	global := model.GlobalProfile{
		Fans: []string{"quiet"},
		Leds: []model.LedProfileAssignment{{DeviceName: zone.DeviceName, Function: zone.Function, Profile: "calm"}},
	}
	rawGlobal, _ := json.Marshal(global)
	if err := s.AddGlobalProfile("work", rawGlobal); err != nil {
		t.Fatalf("AddGlobalProfile: %v", err)
	}
	if err := s.SetActiveProfileName("work"); err != nil {
		t.Fatalf("SetActiveProfileName: %v", err)
	}

	fanHandle := &fanrun.Handle{ProfileIn: make(chan model.FanProfile, 1), OverrideIn: make(chan uint8, 1)}
	ledHandle := &ledrun.Handle{ProfileIn: make(chan model.ColorProfile, 1), ColorIn: make(chan model.Color, 1)}

	c := New(Config{
		Store:    s,
		Fans:     []*fanrun.Handle{fanHandle},
		Leds:     map[string]*ledrun.Handle{zone.DeviceID(): ledHandle},
		LedInfos: []model.LedDeviceInfo{zone},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, nil) }()

	gotFan := recvProfile(t, fanHandle.ProfileIn)
	if !gotFan.Equal(custom) {
		t.Fatalf("fan profile = %+v, want %+v", gotFan, custom)
	}

	gotLed := recvColorProfile(t, ledHandle.ProfileIn)
	if !gotLed.Equal(ledProfile) {
		t.Fatalf("led profile = %+v, want %+v", gotLed, ledProfile)
	}

	cancel()
	<-done
}

func TestActivateFallsBackToDefaultsWhenNoActiveProfile(t *testing.T) {
	s := newTestStore(t)

	fanHandle := &fanrun.Handle{ProfileIn: make(chan model.FanProfile, 1), OverrideIn: make(chan uint8, 1)}

	c := New(Config{
		Store: s,
		Fans:  []*fanrun.Handle{fanHandle},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, nil) }()

	got := recvProfile(t, fanHandle.ProfileIn)
	if !got.Equal(model.DefaultFanProfile()) {
		t.Fatalf("fan profile = %+v, want default", got)
	}

	cancel()
	<-done
}

func TestTriggerReloadRunsActivateAgain(t *testing.T) {
	s := newTestStore(t)
	fanHandle := &fanrun.Handle{ProfileIn: make(chan model.FanProfile, 1), OverrideIn: make(chan uint8, 1)}

	c := New(Config{
		Store: s,
		Fans:  []*fanrun.Handle{fanHandle},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, nil) }()

	recvProfile(t, fanHandle.ProfileIn)

	// The fan profile is written last: a fan-namespace write triggers a
	// reload of its own (watchNamespace), which must already see "work"
	// active so every pass after this point resolves to custom.
	custom := model.FanProfile{{Temp: 10, Fan: 0}, {Temp: 100, Fan: 100}}
	global := model.GlobalProfile{Fans: []string{"quiet"}}
	rawGlobal, _ := json.Marshal(global)
	if err := s.AddGlobalProfile("work", rawGlobal); err != nil {
		t.Fatalf("AddGlobalProfile: %v", err)
	}
	if err := s.SetActiveProfileName("work"); err != nil {
		t.Fatalf("SetActiveProfileName: %v", err)
	}
	rawFan, _ := json.Marshal(custom)
	if err := s.AddFanProfile("quiet", rawFan); err != nil {
		t.Fatalf("AddFanProfile: %v", err)
	}

	c.TriggerReload()

	got := recvProfile(t, fanHandle.ProfileIn)
	if !got.Equal(custom) {
		t.Fatalf("fan profile after reload = %+v, want %+v", got, custom)
	}

	cancel()
	<-done
}
