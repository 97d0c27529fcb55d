// Package led drives the doorbell's red and green status LEDs.
// The real implementation writes sysfs LEDs through periph.io.
// The fake implementation records every change for tests.
package led

import "time"

// Color selects one of the two status LEDs.
type Color string

const (
	Red   Color = "red"
	Green Color = "green"
)

// Driver switches LEDs on and off.
type Driver interface {
	Set(c Color, on bool) error
}

// Flash blinks c n times, evenly spread over total. Each period is half on,
// half off; the LED is left off.
func Flash(d Driver, c Color, n int, total time.Duration, sleep func(time.Duration)) {
	if n <= 0 || total <= 0 {
		return
	}
	period := total / time.Duration(n)
	half := period / 2
	for i := 0; i < n; i++ {
		d.Set(c, true)
		sleep(half)
		d.Set(c, false)
		sleep(period - half)
	}
}

// Blink toggles c n times with fixed on and off durations; the LED is left off.
func Blink(d Driver, c Color, n int, on, off time.Duration, sleep func(time.Duration)) {
	for i := 0; i < n; i++ {
		d.Set(c, true)
		sleep(on)
		d.Set(c, false)
		sleep(off)
	}
}

// AllOff switches both LEDs off.
func AllOff(d Driver) {
	d.Set(Green, false)
	d.Set(Red, false)
}
