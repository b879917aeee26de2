// SPDX-License-Identifier: BSD-3-Clause

package ledrun

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/tuxedocomputers/tailord/internal/model"
)

type fakeLEDDevice struct {
	mu       sync.Mutex
	info     model.LedDeviceInfo
	colors   []model.Color
	failSet  bool
	setCalls int
}

func (f *fakeLEDDevice) Info() model.LedDeviceInfo { return f.info }
func (f *fakeLEDDevice) MaxBrightness() uint32     { return 255 }

func (f *fakeLEDDevice) SetColor(ctx context.Context, c model.Color) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setCalls++
	if f.failSet {
		return errors.New("fakeLEDDevice: forced SetColor failure")
	}
	f.colors = append(f.colors, c)
	return nil
}

func (f *fakeLEDDevice) setCallCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.setCalls
}

func (f *fakeLEDDevice) Color(ctx context.Context) (model.Color, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.colors) == 0 {
		return model.Color{}, nil
	}
	return f.colors[len(f.colors)-1], nil
}

func (f *fakeLEDDevice) last() (model.Color, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.colors) == 0 {
		return model.Color{}, 0
	}
	return f.colors[len(f.colors)-1], len(f.colors)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRuntimeSingleProfileHoldsColor(t *testing.T) {
	dev := &fakeLEDDevice{info: model.LedDeviceInfo{DeviceName: "left", Function: "keyboard"}}
	suspend := make(chan bool)
	want := model.Color{R: 10, G: 20, B: 30}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	handle, rt := New(ctx, dev, model.NewSingleProfile(want), suspend, testLogger())
	_ = handle

	rt.Run(ctx)

	got, n := dev.last()
	if n == 0 {
		t.Fatal("expected at least one SetColor call")
	}
	if got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestRuntimeProfileSwapInterruptsHold(t *testing.T) {
	dev := &fakeLEDDevice{info: model.LedDeviceInfo{DeviceName: "left", Function: "keyboard"}}
	suspend := make(chan bool)
	first := model.Color{R: 1, G: 1, B: 1}
	second := model.Color{R: 2, G: 2, B: 2}

	ctx, cancel := context.WithCancel(context.Background())
	handle, rt := New(ctx, dev, model.NewSingleProfile(first), suspend, testLogger())

	done := make(chan struct{})
	go func() {
		rt.Run(ctx)
		close(done)
	}()

	time.Sleep(10 * time.Millisecond)
	handle.ProfileIn <- model.NewSingleProfile(second)
	time.Sleep(10 * time.Millisecond)
	cancel()
	<-done

	got, _ := dev.last()
	if got != second {
		t.Fatalf("got %v, want %v after profile swap", got, second)
	}
}

func TestRuntimeOverrideThenExpiryResumesProfile(t *testing.T) {
	dev := &fakeLEDDevice{info: model.LedDeviceInfo{DeviceName: "left", Function: "keyboard"}}
	suspend := make(chan bool)
	base := model.Color{R: 5, G: 5, B: 5}
	override := model.Color{R: 9, G: 9, B: 9}

	ctx, cancel := context.WithCancel(context.Background())
	handle, rt := New(ctx, dev, model.NewSingleProfile(base), suspend, testLogger())

	done := make(chan struct{})
	go func() {
		rt.Run(ctx)
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	handle.ColorIn <- override
	time.Sleep(5 * time.Millisecond)

	got, _ := dev.last()
	if got != override {
		t.Fatalf("during override, got %v, want %v", got, override)
	}

	time.Sleep(overrideHoldTimeout + 100*time.Millisecond)

	got, _ = dev.last()
	if got != base {
		t.Fatalf("after override expiry, got %v, want %v", got, base)
	}

	cancel()
	<-done
}

func TestRuntimeNoneProfileNeverWrites(t *testing.T) {
	dev := &fakeLEDDevice{info: model.LedDeviceInfo{DeviceName: "left", Function: "keyboard"}}
	suspend := make(chan bool)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, rt := New(ctx, dev, model.NewNoneProfile(), suspend, testLogger())
	rt.Run(ctx)

	if _, n := dev.last(); n != 0 {
		t.Fatalf("None profile should never call SetColor, got %d calls", n)
	}
}

func TestRuntimeOverrideExitsOnWriteFailure(t *testing.T) {
	dev := &fakeLEDDevice{info: model.LedDeviceInfo{DeviceName: "left", Function: "keyboard"}, failSet: true}
	suspend := make(chan bool)
	base := model.Color{R: 5, G: 5, B: 5}
	override := model.Color{R: 9, G: 9, B: 9}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	handle, rt := New(ctx, dev, model.NewSingleProfile(base), suspend, testLogger())

	done := make(chan struct{})
	go func() {
		rt.Run(ctx)
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	handle.ColorIn <- override
	time.Sleep(20 * time.Millisecond)

	// The override sub-loop must exit after its first failed write rather
	// than spinning: one call for the base Single profile's initial
	// write, one for the override, and no more even though the test
	// keeps running well past overrideHoldTimeout.
	calls := dev.setCallCount()
	if calls > 2 {
		t.Fatalf("expected runOverride to exit on write failure without retrying, got %d SetColor calls", calls)
	}

	cancel()
	<-done
}

func TestRuntimeMultipleProfileCyclesSteps(t *testing.T) {
	dev := &fakeLEDDevice{info: model.LedDeviceInfo{DeviceName: "left", Function: "keyboard"}}
	suspend := make(chan bool)

	points := []model.ColorPoint{
		{Color: model.Color{R: 255, G: 0, B: 0}, Transition: model.TransitionNone, TransitionTimeMs: 5},
		{Color: model.Color{R: 0, G: 255, B: 0}, Transition: model.TransitionNone, TransitionTimeMs: 5},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 40*time.Millisecond)
	defer cancel()

	_, rt := New(ctx, dev, model.NewMultipleProfile(points), suspend, testLogger())
	rt.Run(ctx)

	_, n := dev.last()
	if n < 2 {
		t.Fatalf("expected animation to have stepped through multiple frames, got %d calls", n)
	}
}
