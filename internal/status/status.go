// Package status provides a thread-safe status tracker for the doorbell daemon.
// It is written by the run loop and read by HTTP handlers and MQTT lifecycle events.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/smart-doorbell/internal/logic"
)

// NetworkInfo contains network state. This is a local copy to avoid
// importing cmd-level helpers from status.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Channels reports which devices opened successfully at startup.
// A missing device disables its input or output; the loop keeps running.
type Channels struct {
	Button   bool
	Joystick bool
	RFID     bool
	Accel    bool
	Camera   bool
	LEDs     bool
	Audio    bool
	Notify   bool
}

// Config contains daemon configuration for display.
type Config struct {
	PollMs           int64
	MotionIntervalMs int64
	MotionQuietMs    int64
	HeartbeatMs      int64
	TamperThreshold  int
	PixelThreshold   int
	MotionRatio      float64
	PinLength        int
	Broker           string
	HTTPAddr         string
	NotifyAddr       string
	CameraHost       string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type; safe to use after the lock is released.
type Snapshot struct {
	PinEntered    int
	Counts        logic.EventCounts
	LastEvent     *logic.Event
	AudioDropped  uint64
	Channels      Channels
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// PinInProgress reports whether a PIN entry has started but not completed.
func (s Snapshot) PinInProgress() bool {
	return s.PinEntered > 0
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the PIN entry progress, event counts, most recent event and
// audio drop count. Called from runLoop on every tick.
func (t *Tracker) Update(pinEntered int, counts logic.EventCounts, last *logic.Event, audioDropped uint64) {
	var lastCopy *logic.Event
	if last != nil {
		e := *last
		lastCopy = &e
	}

	t.mu.Lock()
	t.snap.PinEntered = pinEntered
	t.snap.Counts = counts
	t.snap.LastEvent = lastCopy
	t.snap.AudioDropped = audioDropped
	t.mu.Unlock()
}

// SetChannels records which devices are available.
func (t *Tracker) SetChannels(c Channels) {
	t.mu.Lock()
	t.snap.Channels = c
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
