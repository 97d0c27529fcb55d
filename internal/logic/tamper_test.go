package logic

import (
	"testing"
	"time"
)

const testThreshold = 1000

func newTestTamper(t *testing.T, base AccelSample, now time.Time) *TamperDetector {
	t.Helper()
	d := NewTamperDetector(testThreshold, 2*time.Second)
	if d.Check(base, now) {
		t.Fatal("first sample must never report tamper")
	}
	return d
}

func TestTamperIdenticalSamples(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := AccelSample{X: 2048, Y: 2048, Z: 2900}
	d := newTestTamper(t, s, now)

	for i := 0; i < 100; i++ {
		if d.Check(s, now.Add(time.Duration(i)*10*time.Millisecond)) {
			t.Fatalf("iteration %d: identical samples reported tamper", i)
		}
	}
}

func TestTamperThresholdIsStrict(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	base := AccelSample{X: 1000, Y: 1000, Z: 1000}

	d := newTestTamper(t, base, now)
	// delta = 400 + 300 + 300 = 1000
	if d.Check(AccelSample{X: 1400, Y: 700, Z: 1300}, now.Add(10*time.Millisecond)) {
		t.Error("delta exactly at threshold must not trigger")
	}
	if d.LastDelta() != 1000 {
		t.Errorf("expected delta 1000, got %d", d.LastDelta())
	}

	d = newTestTamper(t, base, now)
	// delta = 1001
	if !d.Check(AccelSample{X: 1400, Y: 700, Z: 1301}, now.Add(10*time.Millisecond)) {
		t.Error("delta one above threshold must trigger")
	}
}

func TestTamperTracksSlowDrift(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	d := newTestTamper(t, AccelSample{}, now)

	// 50 steps of 100 counts each: far beyond threshold in total, never in one tick.
	for i := 1; i <= 50; i++ {
		s := AccelSample{X: i * 100}
		if d.Check(s, now.Add(time.Duration(i)*10*time.Millisecond)) {
			t.Fatalf("step %d: slow drift reported tamper", i)
		}
	}
	base, _ := d.Baseline()
	if base.X != 5000 {
		t.Errorf("expected baseline to follow drift to 5000, got %d", base.X)
	}
}

func TestTamperCooldownHoldsBaseline(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	base := AccelSample{X: 2000, Y: 2000, Z: 2000}
	d := newTestTamper(t, base, now)

	shaken := AccelSample{X: 3500, Y: 2000, Z: 2000}
	if !d.Check(shaken, now.Add(10*time.Millisecond)) {
		t.Fatal("expected tamper")
	}
	got, _ := d.Baseline()
	if got != base {
		t.Errorf("baseline must not adopt disturbed sample, got %+v", got)
	}

	// Still shaking during cooldown: no cascading alarms.
	for i := 2; i < 100; i++ {
		at := now.Add(time.Duration(i) * 20 * time.Millisecond)
		if at.Sub(now) >= 2*time.Second {
			break
		}
		if d.Check(AccelSample{X: 500 * (i % 7)}, at) {
			t.Fatalf("tamper reported during cooldown at %v", at.Sub(now))
		}
	}
	if !d.InCooldown(now.Add(time.Second)) {
		t.Error("expected cooldown to be active 1s after tamper")
	}

	// First sample after the settle period becomes the new baseline.
	settled := AccelSample{X: 3500, Y: 2100, Z: 1900}
	after := now.Add(10*time.Millisecond + 2*time.Second)
	if d.Check(settled, after) {
		t.Error("resample after cooldown must not report tamper")
	}
	got, _ = d.Baseline()
	if got != settled {
		t.Errorf("expected fresh baseline %+v, got %+v", settled, got)
	}
	if d.InCooldown(after) {
		t.Error("cooldown should be over")
	}

	// Device at rest in new position: no further alarms.
	for i := 1; i <= 10; i++ {
		if d.Check(settled, after.Add(time.Duration(i)*10*time.Millisecond)) {
			t.Fatalf("alarm cascaded after settling (tick %d)", i)
		}
	}

	// A new jump is detected against the fresh baseline.
	if !d.Check(base, after.Add(time.Second)) {
		t.Error("expected tamper on second jump")
	}
}

func TestTamperFirstSampleSeeds(t *testing.T) {
	d := NewTamperDetector(testThreshold, time.Second)
	if _, ok := d.Baseline(); ok {
		t.Error("should have no baseline before first sample")
	}
	if d.Check(AccelSample{X: 4095, Y: 4095, Z: 4095}, time.Now()) {
		t.Error("first sample must not report tamper")
	}
	if _, ok := d.Baseline(); !ok {
		t.Error("expected baseline after first sample")
	}
}
