package sound

import "sync"

// FakePlayer records playback requests for test assertions. Safe for
// concurrent use: the worker calls it from its own goroutine.
type FakePlayer struct {
	mu sync.Mutex

	// Played contains every asset passed to Play, in order.
	Played []string

	// Stops counts StopAll calls.
	Stops int

	// Calls records "play:<asset>" and "stop" in call order.
	Calls []string

	// PlayError, if set, will be returned by Play.
	PlayError error

	// Notify, if set, receives a value after every call (buffered by the test).
	Notify chan struct{}
}

// NewFakePlayer creates a FakePlayer.
func NewFakePlayer() *FakePlayer {
	return &FakePlayer{}
}

// Play records asset.
func (f *FakePlayer) Play(asset string) error {
	f.mu.Lock()
	f.Calls = append(f.Calls, "play:"+asset)
	err := f.PlayError
	if err == nil {
		f.Played = append(f.Played, asset)
	}
	f.mu.Unlock()
	f.signal()
	return err
}

// StopAll records a stop request.
func (f *FakePlayer) StopAll() error {
	f.mu.Lock()
	f.Stops++
	f.Calls = append(f.Calls, "stop")
	f.mu.Unlock()
	f.signal()
	return nil
}

// Snapshot returns a copy of the recorded calls.
func (f *FakePlayer) Snapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Calls...)
}

func (f *FakePlayer) signal() {
	if f.Notify != nil {
		f.Notify <- struct{}{}
	}
}
