package logic

import "fmt"

// PinMatcher accumulates joystick symbols and compares them against a secret
// once the buffer is full. The caller owns debouncing: it must wait for the
// stick to be released between feeds.
type PinMatcher struct {
	secret []Direction
	buf    []Direction
}

// NewPinMatcher creates a matcher for the given secret. The secret must be
// non-empty and contain only Up/Down/Left/Right.
func NewPinMatcher(secret []Direction) (*PinMatcher, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("pin: empty secret")
	}
	for i, d := range secret {
		if !d.IsSymbol() {
			return nil, fmt.Errorf("pin: invalid symbol %s at position %d", d, i)
		}
	}
	s := make([]Direction, len(secret))
	copy(s, secret)
	return &PinMatcher{
		secret: s,
		buf:    make([]Direction, 0, len(s)),
	}, nil
}

// Feed appends d to the buffer. None and Center are ignored.
// When the buffer reaches the secret length it is compared, cleared, and
// the outcome returned with ok=true.
func (m *PinMatcher) Feed(d Direction) (outcome Outcome, ok bool) {
	if !d.IsSymbol() {
		return "", false
	}

	m.buf = append(m.buf, d)
	if len(m.buf) < len(m.secret) {
		return "", false
	}

	outcome = OutcomeGranted
	for i := range m.secret {
		if m.buf[i] != m.secret[i] {
			outcome = OutcomeDenied
			break
		}
	}
	m.buf = m.buf[:0]
	return outcome, true
}

// Len returns the number of buffered symbols.
func (m *PinMatcher) Len() int {
	return len(m.buf)
}

// InProgress reports whether a partial PIN has been entered.
func (m *PinMatcher) InProgress() bool {
	return len(m.buf) > 0
}

// Reset discards any partial entry.
func (m *PinMatcher) Reset() {
	m.buf = m.buf[:0]
}
