package led

import "fmt"

// FakeDriver records LED changes for test assertions.
type FakeDriver struct {
	// State holds the current on/off state per color.
	State map[Color]bool

	// Changes records every Set call as "red:on", "green:off", ...
	Changes []string

	// SetError, if set, will be returned by Set (the change is still recorded).
	SetError error
}

// NewFakeDriver creates a FakeDriver with both LEDs off.
func NewFakeDriver() *FakeDriver {
	return &FakeDriver{State: make(map[Color]bool)}
}

// Set records the change.
func (f *FakeDriver) Set(c Color, on bool) error {
	f.State[c] = on
	state := "off"
	if on {
		state = "on"
	}
	f.Changes = append(f.Changes, fmt.Sprintf("%s:%s", c, state))
	return f.SetError
}

// Reset clears recorded changes.
func (f *FakeDriver) Reset() {
	f.Changes = nil
}
