package door

import (
	"errors"
	"time"

	"github.com/sweeney/smart-doorbell/internal/logic"
)

// Feedback holds the LED timings used as user feedback.
type Feedback struct {
	KeyFlash        time.Duration // green blip per accepted stick symbol
	UnlockHold      time.Duration // green held on after a grant
	PinDenyFlashes  int
	PinDenyTotal    time.Duration
	RFIDDenyFlashes int
	RFIDDenyTotal   time.Duration
	TamperBlinks    int
	TamperOn        time.Duration
	TamperOff       time.Duration
}

// DefaultFeedback returns the standard feedback timings.
func DefaultFeedback() Feedback {
	return Feedback{
		KeyFlash:        100 * time.Millisecond,
		UnlockHold:      3 * time.Second,
		PinDenyFlashes:  3,
		PinDenyTotal:    500 * time.Millisecond,
		RFIDDenyFlashes: 2,
		RFIDDenyTotal:   200 * time.Millisecond,
		TamperBlinks:    5,
		TamperOn:        50 * time.Millisecond,
		TamperOff:       50 * time.Millisecond,
	}
}

// Config holds the credentials, detector thresholds and timings of a
// Controller. All values are fixed for the life of the process.
type Config struct {
	Pin     []logic.Direction
	RFIDTag string

	TamperThreshold int
	TamperSettle    time.Duration

	Motion         logic.MotionConfig
	MotionInterval time.Duration
	MotionQuiet    time.Duration
	CameraTimeout  time.Duration

	Feedback Feedback
}

// DefaultConfig returns the standard doorbell configuration.
func DefaultConfig() Config {
	return Config{
		Pin:             []logic.Direction{logic.DirLeft, logic.DirLeft, logic.DirUp, logic.DirDown},
		RFIDTag:         "5A5992",
		TamperThreshold: 1000,
		TamperSettle:    2 * time.Second,
		Motion:          logic.DefaultMotionConfig(),
		MotionInterval:  200 * time.Millisecond,
		MotionQuiet:     5 * time.Second,
		CameraTimeout:   time.Second,
		Feedback:        DefaultFeedback(),
	}
}

// Validate checks the configuration for values the controller cannot run with.
func (c Config) Validate() error {
	var errs []error
	if len(c.Pin) == 0 {
		errs = append(errs, errors.New("pin must not be empty"))
	}
	if c.RFIDTag == "" {
		errs = append(errs, errors.New("rfid tag must not be empty"))
	}
	if c.TamperThreshold < 0 {
		errs = append(errs, errors.New("tamper threshold must not be negative"))
	}
	if c.Motion.Ratio < 0 || c.Motion.Ratio >= 1 {
		errs = append(errs, errors.New("motion ratio must be in [0, 1)"))
	}
	if c.Motion.AdaptDivisor < 1 {
		errs = append(errs, errors.New("motion adapt divisor must be at least 1"))
	}
	if c.MotionInterval <= 0 {
		errs = append(errs, errors.New("motion interval must be positive"))
	}
	return errors.Join(errs...)
}
