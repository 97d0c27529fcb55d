package notify

import (
	"sync"

	"github.com/sweeney/smart-doorbell/internal/logic"
)

// FakeNotifier records published events.
type FakeNotifier struct {
	mu     sync.Mutex
	events []logic.Event

	// Err, if set, is returned by Publish after recording the event.
	Err error
}

// Publish records e.
func (f *FakeNotifier) Publish(e logic.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, e)
	return f.Err
}

// Events returns a copy of the recorded events.
func (f *FakeNotifier) Events() []logic.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]logic.Event, len(f.events))
	copy(out, f.events)
	return out
}

// Messages returns the message of each recorded event.
func (f *FakeNotifier) Messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	for i, e := range f.events {
		out[i] = e.Message
	}
	return out
}

// Reset clears the recorded events.
func (f *FakeNotifier) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = nil
}
