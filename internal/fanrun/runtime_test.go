// SPDX-License-Identifier: BSD-3-Clause

package fanrun

import (
	"testing"
)

func TestSuitableDelayBoundaries(t *testing.T) {
	buf := newTemperatureBuffer(20)

	if got := suitableDelay(&buf, 0); got.Milliseconds() != 2000 {
		t.Fatalf("pressure=0: got %v, want 2000ms", got)
	}

	if got := suitableDelay(&buf, 255); got.Milliseconds() < 200 || got.Milliseconds() > 260 {
		t.Fatalf("pressure=15 (max): got %v, want in [200,260]ms", got)
	}

	buf.update(21)
	gotDiff := suitableDelay(&buf, 0)
	if gotDiff.Milliseconds() >= 2000 {
		t.Fatalf("rising temperature should shorten delay below 2000ms, got %v", gotDiff)
	}
}

func TestSuitableDelayMonotonic(t *testing.T) {
	buf := newTemperatureBuffer(20)

	prev := suitableDelay(&buf, 0)
	for diff := uint8(2); diff <= 30; diff += 2 {
		d := suitableDelay(&buf, diff)
		if d > prev {
			t.Fatalf("delay should be non-increasing as pressure rises: diff=%d got %v > prev %v", diff, d, prev)
		}
		prev = d
	}
}

func TestTemperatureBufferDiffToMin(t *testing.T) {
	buf := newTemperatureBuffer(30)
	if got := buf.diffToMin(); got != 0 {
		t.Fatalf("fresh buffer: diffToMin = %d, want 0", got)
	}

	buf.update(45)
	if got := buf.diffToMin(); got != 15 {
		t.Fatalf("after rise to 45: diffToMin = %d, want 15", got)
	}

	if got := buf.latest(); got != 45 {
		t.Fatalf("latest() = %d, want 45", got)
	}
}

func TestAbsSatHelpers(t *testing.T) {
	if absDiff(10, 3) != 7 || absDiff(3, 10) != 7 {
		t.Fatal("absDiff should be symmetric")
	}
	if satAdd(98, 10, 100) != 100 {
		t.Fatal("satAdd should clamp to max")
	}
	if satSub(3, 10) != 0 {
		t.Fatal("satSub should clamp to 0")
	}
}
