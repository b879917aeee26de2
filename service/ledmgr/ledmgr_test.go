// SPDX-License-Identifier: BSD-3-Clause

package ledmgr

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/tuxedocomputers/tailord/internal/ledrun"
	"github.com/tuxedocomputers/tailord/internal/model"
	"github.com/tuxedocomputers/tailord/internal/store"
)

type fakeReloader struct{ count int }

func (f *fakeReloader) TriggerReload() { f.count++ }

func newTestLEDMgr(t *testing.T) (*LEDMgr, *fakeReloader, model.LedDeviceInfo) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := store.New(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	reload := &fakeReloader{}
	info := model.LedDeviceInfo{DeviceName: "tuxedo_keyboard", Function: "main"}
	handle := &ledrun.Handle{ProfileIn: make(chan model.ColorProfile, 1), ColorIn: make(chan model.Color, 1)}
	m := New(st, map[string]*ledrun.Handle{info.DeviceID(): handle}, []model.LedDeviceInfo{info}, reload)
	m.logger = logger
	return m, reload, info
}

func TestTriggerReloadIfActiveFiresForReferencedProfile(t *testing.T) {
	m, reload, info := newTestLEDMgr(t)

	raw, _ := json.Marshal(model.NewSingleProfile(model.Color{R: 1, G: 2, B: 3}))
	if err := m.store.AddLedProfile("calm", raw); err != nil {
		t.Fatalf("AddLedProfile: %v", err)
	}
	global := model.GlobalProfile{
		Leds: []model.LedProfileAssignment{{DeviceName: info.DeviceName, Function: info.Function, Profile: "calm"}},
	}
	rawGlobal, _ := json.Marshal(global)
	if err := m.store.AddGlobalProfile("work", rawGlobal); err != nil {
		t.Fatalf("AddGlobalProfile: %v", err)
	}
	if err := m.store.SetActiveProfileName("work"); err != nil {
		t.Fatalf("SetActiveProfileName: %v", err)
	}

	m.triggerReloadIfActive(context.Background(), "calm")
	if reload.count != 1 {
		t.Fatalf("reload count = %d, want 1", reload.count)
	}
}

func TestTriggerReloadIfActiveSkipsUnreferencedProfile(t *testing.T) {
	m, reload, _ := newTestLEDMgr(t)

	global := model.GlobalProfile{}
	rawGlobal, _ := json.Marshal(global)
	if err := m.store.AddGlobalProfile("work", rawGlobal); err != nil {
		t.Fatalf("AddGlobalProfile: %v", err)
	}
	if err := m.store.SetActiveProfileName("work"); err != nil {
		t.Fatalf("SetActiveProfileName: %v", err)
	}

	m.triggerReloadIfActive(context.Background(), "calm")
	if reload.count != 0 {
		t.Fatalf("reload count = %d, want 0", reload.count)
	}
}

func TestOverrideChannelDropsWhenFull(t *testing.T) {
	m, _, info := newTestLEDMgr(t)
	handle := m.zones[info.DeviceID()]

	handle.ColorIn <- model.Color{R: 1}

	select {
	case handle.ColorIn <- model.Color{R: 2}:
		t.Fatal("expected send to a full channel to need the try-send path")
	default:
	}

	got := <-handle.ColorIn
	if got.R != 1 {
		t.Fatalf("got %+v, want the first queued value", got)
	}
}
