// SPDX-License-Identifier: BSD-3-Clause

package store

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/tuxedocomputers/tailord/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(t.TempDir(), testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestNormalizeNameRejectsReservedAndIllegalNames(t *testing.T) {
	cases := []string{"", "active_profile", "a/b", "a.b"}
	for _, name := range cases {
		if _, err := normalizeName(name); err == nil {
			t.Errorf("normalizeName(%q): expected error, got nil", name)
		}
	}
}

func TestNormalizeNameAppendsJSONSuffix(t *testing.T) {
	got, err := normalizeName("gaming")
	if err != nil {
		t.Fatalf("normalizeName: %v", err)
	}
	if got != "gaming.json" {
		t.Fatalf("got %q, want gaming.json", got)
	}
}

func TestGlobalProfileAddGetListRemove(t *testing.T) {
	s := newTestStore(t)

	profile := model.GlobalProfile{Fans: []string{"quiet"}}
	raw, _ := json.Marshal(profile)

	if err := s.AddGlobalProfile("work", raw); err != nil {
		t.Fatalf("AddGlobalProfile: %v", err)
	}

	got, err := s.GetGlobalProfile("work")
	if err != nil {
		t.Fatalf("GetGlobalProfile: %v", err)
	}
	if len(got.Fans) != 1 || got.Fans[0] != "quiet" {
		t.Fatalf("got %+v, want Fans=[quiet]", got)
	}

	names, err := s.ListGlobalProfiles()
	if err != nil {
		t.Fatalf("ListGlobalProfiles: %v", err)
	}
	if len(names) != 1 || names[0] != "work" {
		t.Fatalf("got %v, want [work]", names)
	}

	if err := s.RemoveGlobalProfile("work"); err != nil {
		t.Fatalf("RemoveGlobalProfile: %v", err)
	}
	if _, err := s.GetGlobalProfile("work"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after remove, got %v", err)
	}
}

func TestFanProfileNormalizationOnAdd(t *testing.T) {
	s := newTestStore(t)

	// Out of order, not ending at 100 -- normalization must sort and
	// append a terminal (100,100) point.
	points := model.FanProfile{
		{Temp: 50, Fan: 20},
		{Temp: 25, Fan: 0},
	}
	raw, _ := json.Marshal(points)

	if err := s.AddFanProfile("custom", raw); err != nil {
		t.Fatalf("AddFanProfile: %v", err)
	}

	got, err := s.GetFanProfile("custom")
	if err != nil {
		t.Fatalf("GetFanProfile: %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("got %d points, want 3 (sorted input + terminal point): %+v", len(got), got)
	}
	if got[0].Temp != 25 || got[1].Temp != 50 || got[2].Temp != 100 {
		t.Fatalf("points not sorted ascending: %+v", got)
	}
	if got[len(got)-1].Fan != 100 {
		t.Fatalf("last point fan = %d, want 100", got[len(got)-1].Fan)
	}
}

func TestFanProfileRejectsEmpty(t *testing.T) {
	s := newTestStore(t)
	raw, _ := json.Marshal(model.FanProfile{})
	if err := s.AddFanProfile("empty", raw); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for empty profile, got %v", err)
	}
}

func TestRenameFanProfileRewritesReferringGlobalProfiles(t *testing.T) {
	s := newTestStore(t)

	fanRaw, _ := json.Marshal(model.DefaultFanProfile())
	if err := s.AddFanProfile("quiet", fanRaw); err != nil {
		t.Fatalf("AddFanProfile: %v", err)
	}

	global := model.GlobalProfile{Fans: []string{"quiet"}}
	globalRaw, _ := json.Marshal(global)
	if err := s.AddGlobalProfile("work", globalRaw); err != nil {
		t.Fatalf("AddGlobalProfile: %v", err)
	}

	if _, err := s.RenameFanProfile("quiet", "silent"); err != nil {
		t.Fatalf("RenameFanProfile: %v", err)
	}

	updated, err := s.GetGlobalProfile("work")
	if err != nil {
		t.Fatalf("GetGlobalProfile: %v", err)
	}
	if len(updated.Fans) != 1 || updated.Fans[0] != "silent" {
		t.Fatalf("referring global profile not rewritten: %+v", updated)
	}

	if _, err := s.GetFanProfile("quiet"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected old fan profile name gone, got %v", err)
	}
}

func TestRenameFanProfileFailsIfTargetExists(t *testing.T) {
	s := newTestStore(t)

	raw, _ := json.Marshal(model.DefaultFanProfile())
	if err := s.AddFanProfile("a", raw); err != nil {
		t.Fatalf("AddFanProfile a: %v", err)
	}
	if err := s.AddFanProfile("b", raw); err != nil {
		t.Fatalf("AddFanProfile b: %v", err)
	}

	if _, err := s.RenameFanProfile("a", "b"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestActiveProfileSetGetRoundTrip(t *testing.T) {
	s := newTestStore(t)

	raw, _ := json.Marshal(model.GlobalProfile{})
	if err := s.AddGlobalProfile("daily", raw); err != nil {
		t.Fatalf("AddGlobalProfile: %v", err)
	}

	if err := s.SetActiveProfileName("daily"); err != nil {
		t.Fatalf("SetActiveProfileName: %v", err)
	}

	got, err := s.GetActiveProfileName()
	if err != nil {
		t.Fatalf("GetActiveProfileName: %v", err)
	}
	if got != "daily" {
		t.Fatalf("got %q, want daily", got)
	}
}

func TestSetActiveProfileNameFailsForMissingProfile(t *testing.T) {
	s := newTestStore(t)
	if err := s.SetActiveProfileName("nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRenameGlobalProfileUpdatesActivePointer(t *testing.T) {
	s := newTestStore(t)

	raw, _ := json.Marshal(model.GlobalProfile{})
	if err := s.AddGlobalProfile("daily", raw); err != nil {
		t.Fatalf("AddGlobalProfile: %v", err)
	}
	if err := s.SetActiveProfileName("daily"); err != nil {
		t.Fatalf("SetActiveProfileName: %v", err)
	}

	if err := s.RenameGlobalProfile("daily", "everyday"); err != nil {
		t.Fatalf("RenameGlobalProfile: %v", err)
	}

	got, err := s.GetActiveProfileName()
	if err != nil {
		t.Fatalf("GetActiveProfileName: %v", err)
	}
	if got != "everyday" {
		t.Fatalf("active pointer = %q, want everyday", got)
	}
}

func TestCopyGlobalProfileFailsIfTargetExists(t *testing.T) {
	s := newTestStore(t)
	raw, _ := json.Marshal(model.GlobalProfile{})

	if err := s.AddGlobalProfile("a", raw); err != nil {
		t.Fatalf("AddGlobalProfile a: %v", err)
	}
	if err := s.AddGlobalProfile("b", raw); err != nil {
		t.Fatalf("AddGlobalProfile b: %v", err)
	}

	if err := s.CopyGlobalProfile("a", "b"); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestWatchNotifiesOnMutation(t *testing.T) {
	s := newTestStore(t)
	ch := s.Watch(NamespaceGlobal)

	raw, _ := json.Marshal(model.GlobalProfile{})
	if err := s.AddGlobalProfile("daily", raw); err != nil {
		t.Fatalf("AddGlobalProfile: %v", err)
	}

	select {
	case <-ch:
	default:
		t.Fatal("expected a watch notification after mutation")
	}
}
