// Package door is the doorbell's access-control loop. A Controller fuses
// the button, joystick, RFID line, accelerometer and camera into doorbell,
// grant, deny, tamper and motion decisions, driving LEDs, sounds and
// notifications.
//
// Tick never waits on an input: a held joystick is tracked as an explicit
// awaiting-release state and the motion quiet period and tamper settle time
// are deadlines. The only pauses are the short LED feedback sequences.
package door

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/sweeney/smart-doorbell/internal/led"
	"github.com/sweeney/smart-doorbell/internal/logic"
	"github.com/sweeney/smart-doorbell/internal/notify"
	"github.com/sweeney/smart-doorbell/internal/sound"
)

// Button reports the doorbell push button level.
type Button interface {
	Pressed() (bool, error)
}

// Stick produces discrete joystick directions.
type Stick interface {
	ReadDirection() logic.Direction
	IsReleased() bool
}

// Lines delivers RFID tokens without blocking.
type Lines interface {
	ReadLine() (string, bool)
}

// Accel reads the tamper accelerometer.
type Accel interface {
	Read() (logic.AccelSample, error)
}

// Camera fetches stills for motion detection.
type Camera interface {
	Fetch(ctx context.Context) (logic.Frame, error)
}

// SoundQueue accepts audio feedback without blocking.
type SoundQueue interface {
	Enqueue(c sound.Command) bool
}

// Sources are the controller's inputs. A nil source disables its feature.
type Sources struct {
	Button Button
	Stick  Stick
	Lines  Lines
	Accel  Accel
	Camera Camera
}

// Actuators are the controller's outputs. A nil actuator is skipped.
type Actuators struct {
	LEDs   led.Driver
	Sound  SoundQueue
	Notify notify.Notifier
}

// Option configures a Controller.
type Option func(*Controller)

// WithSleep replaces time.Sleep for the LED feedback sequences.
func WithSleep(sleep func(time.Duration)) Option {
	return func(c *Controller) { c.sleep = sleep }
}

// WithIDs replaces the event ID generator.
func WithIDs(next func() string) Option {
	return func(c *Controller) { c.newID = next }
}

// Controller runs the access-control state machine. It is not safe for
// concurrent use; one goroutine calls Tick.
type Controller struct {
	cfg   Config
	src   Sources
	act   Actuators
	sleep func(time.Duration)
	newID func() string

	pin    *logic.PinMatcher
	rfid   *logic.RFIDMatcher
	tamper *logic.TamperDetector
	motion *logic.MotionDetector

	buttonWas       bool
	awaitingRelease bool
	nextMotion      time.Time
	quietUntil      time.Time

	startTime     time.Time
	lastHeartbeat time.Time
	counts        logic.EventCounts
	last          *logic.Event

	failing map[string]bool
}

// New creates a Controller. startTime anchors uptime and the heartbeat.
func New(cfg Config, src Sources, act Actuators, startTime time.Time, opts ...Option) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	pin, err := logic.NewPinMatcher(cfg.Pin)
	if err != nil {
		return nil, fmt.Errorf("pin: %w", err)
	}

	c := &Controller{
		cfg:           cfg,
		src:           src,
		act:           act,
		sleep:         time.Sleep,
		newID:         uuid.NewString,
		pin:           pin,
		rfid:          logic.NewRFIDMatcher(cfg.RFIDTag),
		tamper:        logic.NewTamperDetector(cfg.TamperThreshold, cfg.TamperSettle),
		motion:        logic.NewMotionDetector(cfg.Motion),
		startTime:     startTime,
		lastHeartbeat: startTime,
		failing:       make(map[string]bool),
	}
	if c.act.LEDs == nil {
		c.act.LEDs = noLEDs{}
	}
	c.act.LEDs = checkedLEDs{d: c.act.LEDs, check: c.check}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Start puts the LEDs in the locked state: green off, red on.
func (c *Controller) Start() {
	led.AllOff(c.act.LEDs)
	c.act.LEDs.Set(led.Red, true)
}

// Close switches the LEDs off.
func (c *Controller) Close() {
	led.AllOff(c.act.LEDs)
}

// Tick polls every input once, in a fixed order.
func (c *Controller) Tick(ctx context.Context, now time.Time) {
	c.pollButton(now)
	c.pollStick(now)
	c.pollLines(now)
	c.pollAccel(now)
	c.pollCamera(ctx, now)
}

// Counts returns the number of events of each type so far.
func (c *Controller) Counts() logic.EventCounts {
	return c.counts
}

// LastEvent returns the most recent event, or nil.
func (c *Controller) LastEvent() *logic.Event {
	return c.last
}

// PinEntered returns the number of symbols in the current PIN attempt.
func (c *Controller) PinEntered() int {
	return c.pin.Len()
}

// PinInProgress reports whether a PIN attempt has started.
func (c *Controller) PinInProgress() bool {
	return c.pin.InProgress()
}

// AwaitingRelease reports whether the joystick must return to rest before
// another symbol is accepted.
func (c *Controller) AwaitingRelease() bool {
	return c.awaitingRelease
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if the interval has not elapsed,
// or if interval is <= 0 (disabled).
func (c *Controller) CheckHeartbeat(now time.Time, interval time.Duration) *logic.HeartbeatData {
	if interval <= 0 {
		return nil
	}
	if now.Sub(c.lastHeartbeat) < interval {
		return nil
	}

	c.lastHeartbeat = now
	return &logic.HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(c.startTime),
		Counts:    c.counts,
	}
}

func (c *Controller) pollButton(now time.Time) {
	if c.src.Button == nil {
		return
	}
	pressed, err := c.src.Button.Pressed()
	if !c.check("button", err) {
		return
	}
	if pressed && !c.buttonWas {
		c.play(sound.CmdDoorbell)
		c.emit(now, logic.EventDoorbell, "", "Doorbell Button Pressed")
	}
	c.buttonWas = pressed
}

func (c *Controller) pollStick(now time.Time) {
	if c.src.Stick == nil {
		return
	}
	if c.awaitingRelease {
		if !c.src.Stick.IsReleased() {
			return
		}
		c.awaitingRelease = false
	}

	dir := c.src.Stick.ReadDirection()
	if !dir.IsSymbol() {
		return
	}

	outcome, done := c.pin.Feed(dir)
	c.keyFlash()
	c.awaitingRelease = true

	if done {
		c.access(now, logic.AccessEvent{Method: logic.MethodPIN, Outcome: outcome})
	}
}

func (c *Controller) pollLines(now time.Time) {
	if c.src.Lines == nil {
		return
	}
	line, ok := c.src.Lines.ReadLine()
	if !ok {
		return
	}
	if outcome, done := c.rfid.Check(line); done {
		c.access(now, logic.AccessEvent{Method: logic.MethodRFID, Outcome: outcome})
	}
}

func (c *Controller) pollAccel(now time.Time) {
	if c.src.Accel == nil {
		return
	}
	s, err := c.src.Accel.Read()
	if !c.check("accelerometer", err) {
		return
	}
	if !c.tamper.Check(s, now) {
		return
	}

	c.play(sound.CmdAlarm)
	c.emit(now, logic.EventTamper, "", "TAMPER DETECTED: Device Shaken!")

	fb := c.cfg.Feedback
	led.Blink(c.act.LEDs, led.Red, fb.TamperBlinks, fb.TamperOn, fb.TamperOff, c.sleep)
	c.act.LEDs.Set(led.Red, true)
}

func (c *Controller) pollCamera(ctx context.Context, now time.Time) {
	if c.src.Camera == nil || now.Before(c.nextMotion) {
		return
	}
	c.nextMotion = now.Add(c.cfg.MotionInterval)

	if c.pin.InProgress() || now.Before(c.quietUntil) {
		return
	}

	if c.cfg.CameraTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.CameraTimeout)
		defer cancel()
	}
	frame, err := c.src.Camera.Fetch(ctx)
	if !c.check("camera", err) {
		return
	}

	if c.motion.Check(frame) {
		c.emit(now, logic.EventMotion, "", "Motion Detected at Front Door")
		c.quietUntil = now.Add(c.cfg.MotionQuiet)
	}
}

// access runs the feedback for a credential decision.
func (c *Controller) access(now time.Time, ev logic.AccessEvent) {
	fb := c.cfg.Feedback

	if ev.Outcome == logic.OutcomeGranted {
		c.play(sound.CmdCorrect)
		c.emit(now, logic.EventUnlocked, ev.Method, "Door Unlocked by "+string(ev.Method))

		c.act.LEDs.Set(led.Red, false)
		c.act.LEDs.Set(led.Green, true)
		c.sleep(fb.UnlockHold)
		c.act.LEDs.Set(led.Green, false)
		c.act.LEDs.Set(led.Red, true)
		return
	}

	c.play(sound.CmdIncorrect)
	c.emit(now, logic.EventDenied, ev.Method, "Access Denied via "+string(ev.Method))

	n, total := fb.PinDenyFlashes, fb.PinDenyTotal
	if ev.Method == logic.MethodRFID {
		n, total = fb.RFIDDenyFlashes, fb.RFIDDenyTotal
	}
	led.Flash(c.act.LEDs, led.Red, n, total, c.sleep)
	c.act.LEDs.Set(led.Red, true)
}

func (c *Controller) keyFlash() {
	c.act.LEDs.Set(led.Red, false)
	c.act.LEDs.Set(led.Green, true)
	c.sleep(c.cfg.Feedback.KeyFlash)
	c.act.LEDs.Set(led.Green, false)
	c.act.LEDs.Set(led.Red, true)
}

func (c *Controller) play(cmd sound.Command) {
	if c.act.Sound == nil {
		return
	}
	c.act.Sound.Enqueue(cmd)
}

func (c *Controller) emit(now time.Time, typ logic.EventType, method logic.Method, msg string) {
	e := logic.Event{
		ID:        c.newID(),
		Timestamp: now,
		Type:      typ,
		Method:    method,
		Message:   msg,
	}

	switch typ {
	case logic.EventDoorbell:
		c.counts.Doorbell++
	case logic.EventUnlocked:
		c.counts.Granted++
	case logic.EventDenied:
		c.counts.Denied++
	case logic.EventTamper:
		c.counts.Tamper++
	case logic.EventMotion:
		c.counts.Motion++
	}
	c.last = &e

	log.Printf("door: event %s (%s)", e.Type, e.Message)
	if c.act.Notify == nil {
		return
	}
	if err := c.act.Notify.Publish(e); err != nil {
		log.Printf("door: notify %s: %v", e.Type, err)
	}
}

// check reports whether a source read succeeded, logging the first failure
// of a streak and the recovery after it.
func (c *Controller) check(name string, err error) bool {
	if err != nil {
		if !c.failing[name] {
			log.Printf("door: %s unavailable: %v", name, err)
			c.failing[name] = true
		}
		return false
	}
	if c.failing[name] {
		log.Printf("door: %s recovered", name)
		delete(c.failing, name)
	}
	return true
}

type noLEDs struct{}

func (noLEDs) Set(led.Color, bool) error { return nil }

// checkedLEDs logs LED write failures once per failure streak.
type checkedLEDs struct {
	d     led.Driver
	check func(name string, err error) bool
}

func (l checkedLEDs) Set(col led.Color, on bool) error {
	err := l.d.Set(col, on)
	l.check("leds", err)
	return err
}
