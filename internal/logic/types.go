// Package logic contains the pure decision logic of the doorbell: PIN and RFID
// matching, tamper detection and frame-differencing motion detection.
// This package has NO external dependencies (no GPIO, SPI, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import (
	"fmt"
	"strings"
	"time"
)

// Direction is a discrete joystick position, produced once per tick.
type Direction int

const (
	DirNone Direction = iota
	DirUp
	DirDown
	DirLeft
	DirRight
	DirCenter
)

func (d Direction) String() string {
	switch d {
	case DirNone:
		return "NONE"
	case DirUp:
		return "UP"
	case DirDown:
		return "DOWN"
	case DirLeft:
		return "LEFT"
	case DirRight:
		return "RIGHT"
	case DirCenter:
		return "CENTER"
	}
	return fmt.Sprintf("Direction(%d)", int(d))
}

// IsSymbol reports whether d can be part of a PIN.
func (d Direction) IsSymbol() bool {
	return d == DirUp || d == DirDown || d == DirLeft || d == DirRight
}

// ParsePin parses a PIN given either as letters ("LLUD") or as
// comma-separated words ("left,left,up,down"). Case-insensitive.
func ParsePin(s string) ([]Direction, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty pin")
	}

	var tokens []string
	if strings.Contains(s, ",") {
		for _, tok := range strings.Split(s, ",") {
			tokens = append(tokens, strings.TrimSpace(tok))
		}
	} else {
		for _, r := range s {
			tokens = append(tokens, string(r))
		}
	}

	pin := make([]Direction, 0, len(tokens))
	for _, tok := range tokens {
		switch strings.ToLower(tok) {
		case "u", "up":
			pin = append(pin, DirUp)
		case "d", "down":
			pin = append(pin, DirDown)
		case "l", "left":
			pin = append(pin, DirLeft)
		case "r", "right":
			pin = append(pin, DirRight)
		default:
			return nil, fmt.Errorf("invalid pin symbol %q", tok)
		}
	}
	return pin, nil
}

// Outcome is the result of a completed credential comparison.
type Outcome string

const (
	OutcomeGranted Outcome = "GRANTED"
	OutcomeDenied  Outcome = "DENIED"
)

// Method identifies which credential channel produced an outcome.
type Method string

const (
	MethodPIN  Method = "PIN"
	MethodRFID Method = "RFID"
)

// AccessEvent is a credential decision, consumed immediately by the controller.
type AccessEvent struct {
	Method  Method
	Outcome Outcome
}

// AccelSample is one raw accelerometer reading.
type AccelSample struct {
	X, Y, Z int
}

// Frame is a decoded camera still in packed RGB (3 bytes per pixel, row-major).
type Frame struct {
	Width  int
	Height int
	Pix    []byte
}

// Valid reports whether the frame has positive dimensions and enough pixel data.
func (f Frame) Valid() bool {
	return f.Width > 0 && f.Height > 0 && len(f.Pix) >= f.Width*f.Height*3
}

// EventType is the kind of notification the node emits.
type EventType string

const (
	EventDoorbell EventType = "DOORBELL"
	EventUnlocked EventType = "UNLOCKED"
	EventDenied   EventType = "DENIED"
	EventTamper   EventType = "TAMPER"
	EventMotion   EventType = "MOTION"
)

// Event is a notification to be published. Message is an opaque
// human-readable string; Method is empty for non-access events.
type Event struct {
	ID        string
	Timestamp time.Time
	Type      EventType
	Method    Method
	Message   string
}

// EventCounts tracks the number of each event type since startup.
type EventCounts struct {
	Doorbell int
	Granted  int
	Denied   int
	Tamper   int
	Motion   int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    EventCounts
}
