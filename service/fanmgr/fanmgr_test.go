// SPDX-License-Identifier: BSD-3-Clause

package fanmgr

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/tuxedocomputers/tailord/internal/fanrun"
	"github.com/tuxedocomputers/tailord/internal/model"
	"github.com/tuxedocomputers/tailord/internal/store"
)

type fakeReloader struct{ count int }

func (f *fakeReloader) TriggerReload() { f.count++ }

func newTestFanMgr(t *testing.T) (*FanMgr, *fakeReloader) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := store.New(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	reload := &fakeReloader{}
	handle := &fanrun.Handle{ProfileIn: make(chan model.FanProfile, 1), OverrideIn: make(chan uint8, 1)}
	m := New(st, []*fanrun.Handle{handle}, reload)
	m.logger = logger
	return m, reload
}

func TestTriggerReloadIfActiveFiresForReferencedProfile(t *testing.T) {
	m, reload := newTestFanMgr(t)

	raw, _ := json.Marshal(model.DefaultFanProfile())
	if err := m.store.AddFanProfile("quiet", raw); err != nil {
		t.Fatalf("AddFanProfile: %v", err)
	}
	global := model.GlobalProfile{Fans: []string{"quiet"}}
	rawGlobal, _ := json.Marshal(global)
	if err := m.store.AddGlobalProfile("work", rawGlobal); err != nil {
		t.Fatalf("AddGlobalProfile: %v", err)
	}
	if err := m.store.SetActiveProfileName("work"); err != nil {
		t.Fatalf("SetActiveProfileName: %v", err)
	}

	m.triggerReloadIfActive(context.Background(), "quiet")
	if reload.count != 1 {
		t.Fatalf("reload count = %d, want 1", reload.count)
	}
}

func TestTriggerReloadIfActiveSkipsUnreferencedProfile(t *testing.T) {
	m, reload := newTestFanMgr(t)

	raw, _ := json.Marshal(model.DefaultFanProfile())
	if err := m.store.AddFanProfile("quiet", raw); err != nil {
		t.Fatalf("AddFanProfile: %v", err)
	}
	global := model.GlobalProfile{Fans: []string{"quiet"}}
	rawGlobal, _ := json.Marshal(global)
	if err := m.store.AddGlobalProfile("work", rawGlobal); err != nil {
		t.Fatalf("AddGlobalProfile: %v", err)
	}
	if err := m.store.SetActiveProfileName("work"); err != nil {
		t.Fatalf("SetActiveProfileName: %v", err)
	}

	m.triggerReloadIfActive(context.Background(), "gaming")
	if reload.count != 0 {
		t.Fatalf("reload count = %d, want 0", reload.count)
	}
}

func TestTriggerReloadIfActiveNoopWithoutActiveProfile(t *testing.T) {
	m, reload := newTestFanMgr(t)
	m.triggerReloadIfActive(context.Background(), "quiet")
	if reload.count != 0 {
		t.Fatalf("reload count = %d, want 0 with no active profile set", reload.count)
	}
}

func TestOverrideChannelDropsWhenFull(t *testing.T) {
	m, _ := newTestFanMgr(t)

	m.fans[0].OverrideIn <- 42

	select {
	case m.fans[0].OverrideIn <- 77:
		t.Fatal("expected send to a full channel to need the try-send path")
	default:
	}

	got := <-m.fans[0].OverrideIn
	if got != 42 {
		t.Fatalf("got %d, want the first queued value 42", got)
	}
}
