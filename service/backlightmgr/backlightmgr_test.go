// SPDX-License-Identifier: BSD-3-Clause

package backlightmgr

import (
	"context"
	"testing"
)

type fakeBacklight struct {
	value int
	max   int
}

func (f *fakeBacklight) MaxBrightness(ctx context.Context) (int, error) { return f.max, nil }
func (f *fakeBacklight) Brightness(ctx context.Context) (int, error)    { return f.value, nil }
func (f *fakeBacklight) SetBrightness(ctx context.Context, value int) error {
	f.value = value
	return nil
}

func TestBacklightMgrWiresFakeDevice(t *testing.T) {
	fake := &fakeBacklight{value: 50, max: 100}
	m := New(fake)

	if m.backlight != fake {
		t.Fatal("New did not store the provided device")
	}

	if err := m.backlight.SetBrightness(context.Background(), 80); err != nil {
		t.Fatalf("SetBrightness: %v", err)
	}
	got, err := m.backlight.Brightness(context.Background())
	if err != nil {
		t.Fatalf("Brightness: %v", err)
	}
	if got != 80 {
		t.Fatalf("Brightness = %d, want 80", got)
	}
}
