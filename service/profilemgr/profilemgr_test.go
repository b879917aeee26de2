// SPDX-License-Identifier: BSD-3-Clause

package profilemgr

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/nats-io/nats.go/micro"

	"github.com/tuxedocomputers/tailord/internal/model"
	"github.com/tuxedocomputers/tailord/internal/store"
)

type fakeReloader struct{ count int }

func (f *fakeReloader) TriggerReload() { f.count++ }

// fakeRequest is a micro.Request carrying a fixed body; responses are dropped.
type fakeRequest struct{ data []byte }

func (r *fakeRequest) Respond([]byte, ...micro.RespondOpt) error  { return nil }
func (r *fakeRequest) RespondJSON(any, ...micro.RespondOpt) error { return nil }
func (r *fakeRequest) Error(string, string, []byte, ...micro.RespondOpt) error {
	return nil
}
func (r *fakeRequest) Data() []byte           { return r.data }
func (r *fakeRequest) Headers() micro.Headers { return nil }
func (r *fakeRequest) Subject() string        { return "test" }
func (r *fakeRequest) Reply() string          { return "" }

func newTestProfileMgr(t *testing.T) (*ProfileMgr, *fakeReloader) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	st, err := store.New(t.TempDir(), logger)
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	reload := &fakeReloader{}
	m := New(st, reload)
	m.logger = logger
	return m, reload
}

func addGlobal(t *testing.T, m *ProfileMgr, name string, g model.GlobalProfile) {
	t.Helper()
	raw, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("marshal global profile: %v", err)
	}
	if err := m.store.AddGlobalProfile(name, raw); err != nil {
		t.Fatalf("AddGlobalProfile(%q): %v", name, err)
	}
}

func TestRenameActiveProfileTriggersReload(t *testing.T) {
	m, reload := newTestProfileMgr(t)
	addGlobal(t, m, "work", model.GlobalProfile{})
	if err := m.store.SetActiveProfileName("work"); err != nil {
		t.Fatalf("SetActiveProfileName: %v", err)
	}

	m.handleRename(context.Background(), &fakeRequest{data: []byte(`{"from":"work","to":"office"}`)})
	if _, err := m.store.GetGlobalProfile("office"); err != nil {
		t.Fatalf("GetGlobalProfile(office) after rename: %v", err)
	}

	if reload.count != 1 {
		t.Fatalf("reload count = %d, want 1", reload.count)
	}
}

func TestRenameInactiveProfileSkipsReload(t *testing.T) {
	m, reload := newTestProfileMgr(t)
	addGlobal(t, m, "work", model.GlobalProfile{})
	addGlobal(t, m, "gaming", model.GlobalProfile{})
	if err := m.store.SetActiveProfileName("work"); err != nil {
		t.Fatalf("SetActiveProfileName: %v", err)
	}

	m.handleRename(context.Background(), &fakeRequest{data: []byte(`{"from":"gaming","to":"benchmark"}`)})
	if _, err := m.store.GetGlobalProfile("benchmark"); err != nil {
		t.Fatalf("GetGlobalProfile(benchmark) after rename: %v", err)
	}
	active, err := m.store.GetActiveProfileName()
	if err != nil {
		t.Fatalf("GetActiveProfileName: %v", err)
	}
	if active != "work" {
		t.Fatalf("active = %q, want work", active)
	}

	if reload.count != 0 {
		t.Fatalf("reload count = %d, want 0", reload.count)
	}
}

func TestSetActiveAlwaysTriggersReload(t *testing.T) {
	m, reload := newTestProfileMgr(t)
	addGlobal(t, m, "work", model.GlobalProfile{})

	m.handleSetActive(context.Background(), &fakeRequest{data: []byte(`{"name":"work"}`)})
	active, err := m.store.GetActiveProfileName()
	if err != nil || active != "work" {
		t.Fatalf("active = %q (err %v), want work", active, err)
	}

	if reload.count != 1 {
		t.Fatalf("reload count = %d, want 1", reload.count)
	}
}

func TestListAndGetRoundtrip(t *testing.T) {
	m, _ := newTestProfileMgr(t)
	addGlobal(t, m, "work", model.GlobalProfile{Fans: []string{"quiet"}})

	names, err := m.store.ListGlobalProfiles()
	if err != nil {
		t.Fatalf("ListGlobalProfiles: %v", err)
	}
	if len(names) != 1 || names[0] != "work" {
		t.Fatalf("names = %v, want [work]", names)
	}

	got, err := m.store.GetGlobalProfile("work")
	if err != nil {
		t.Fatalf("GetGlobalProfile: %v", err)
	}
	if len(got.Fans) != 1 || got.Fans[0] != "quiet" {
		t.Fatalf("got = %+v, want Fans=[quiet]", got)
	}
}

func TestCopyProfile(t *testing.T) {
	m, _ := newTestProfileMgr(t)
	addGlobal(t, m, "work", model.GlobalProfile{Fans: []string{"quiet"}})

	if err := m.store.CopyGlobalProfile("work", "work-copy"); err != nil {
		t.Fatalf("CopyGlobalProfile: %v", err)
	}

	got, err := m.store.GetGlobalProfile("work-copy")
	if err != nil {
		t.Fatalf("GetGlobalProfile(work-copy): %v", err)
	}
	if len(got.Fans) != 1 || got.Fans[0] != "quiet" {
		t.Fatalf("got = %+v, want Fans=[quiet]", got)
	}
}

func TestRemoveProfile(t *testing.T) {
	m, _ := newTestProfileMgr(t)
	addGlobal(t, m, "work", model.GlobalProfile{})

	if err := m.store.RemoveGlobalProfile("work"); err != nil {
		t.Fatalf("RemoveGlobalProfile: %v", err)
	}

	if _, err := m.store.GetGlobalProfile("work"); err == nil {
		t.Fatal("expected error getting removed profile")
	}
}
