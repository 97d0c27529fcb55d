package logic

import "time"

// TamperDetector flags sudden accelerometer jumps.
//
// Calm samples (delta <= threshold) always become the new baseline, so slow
// drift is tracked. A jump reports tamper and starts a cooldown: the
// disturbed sample is not adopted, samples are ignored until the settle
// deadline, and the first sample after it becomes the fresh baseline.
type TamperDetector struct {
	threshold int
	settle    time.Duration

	last          AccelSample
	baselined     bool
	cooling       bool
	cooldownUntil time.Time
	lastDelta     int
}

// NewTamperDetector creates a detector. The first sample fed seeds the baseline.
func NewTamperDetector(threshold int, settle time.Duration) *TamperDetector {
	return &TamperDetector{
		threshold: threshold,
		settle:    settle,
	}
}

// Check processes one sample taken at now and reports whether it is a tamper event.
func (d *TamperDetector) Check(s AccelSample, now time.Time) bool {
	if !d.baselined {
		d.last = s
		d.baselined = true
		d.lastDelta = 0
		return false
	}

	if d.cooling {
		if now.Before(d.cooldownUntil) {
			return false
		}
		d.cooling = false
		d.last = s
		d.lastDelta = 0
		return false
	}

	d.lastDelta = l1(s, d.last)
	if d.lastDelta > d.threshold {
		d.cooling = true
		d.cooldownUntil = now.Add(d.settle)
		return true
	}

	d.last = s
	return false
}

// Baseline returns the last accepted sample.
func (d *TamperDetector) Baseline() (AccelSample, bool) {
	return d.last, d.baselined
}

// LastDelta returns the L1 distance computed by the most recent comparison.
func (d *TamperDetector) LastDelta() int {
	return d.lastDelta
}

// InCooldown reports whether samples taken at now would be ignored.
func (d *TamperDetector) InCooldown(now time.Time) bool {
	return d.cooling && now.Before(d.cooldownUntil)
}

func l1(a, b AccelSample) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y) + abs(a.Z-b.Z)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
