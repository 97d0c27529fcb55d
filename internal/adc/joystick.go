package adc

import (
	"fmt"
	"time"

	"github.com/sweeney/smart-doorbell/internal/logic"
)

// DefaultDeadZone is the distance from center (in ADC counts) the stick must
// move before a direction registers.
const DefaultDeadZone = 1000

// Joystick maps the two stick axes to discrete directions.
type Joystick struct {
	adc      Reader
	centerX  int
	centerY  int
	deadZone int
}

// NewJoystick creates a joystick assuming a mid-scale rest position.
// Call Calibrate to measure the real rest position.
func NewJoystick(r Reader) *Joystick {
	return &Joystick{
		adc:      r,
		centerX:  (MaxValue + 1) / 2,
		centerY:  (MaxValue + 1) / 2,
		deadZone: DefaultDeadZone,
	}
}

// Calibrate averages up to samples readings taken interval apart, with the
// stick assumed at rest. Failed readings are skipped; if none succeed the
// mid-scale default is kept and ok is false.
func (j *Joystick) Calibrate(samples int, interval time.Duration, sleep func(time.Duration)) (ok bool) {
	var sumX, sumY, n int
	for i := 0; i < samples; i++ {
		x, y, err := j.ReadRaw()
		if err == nil {
			sumX += x
			sumY += y
			n++
		}
		if i < samples-1 {
			sleep(interval)
		}
	}
	if n == 0 {
		return false
	}
	j.centerX = sumX / n
	j.centerY = sumY / n
	return true
}

// Center returns the calibrated rest position.
func (j *Joystick) Center() (x, y int) {
	return j.centerX, j.centerY
}

// ReadRaw returns the raw axis conversions.
func (j *Joystick) ReadRaw() (x, y int, err error) {
	x, err = j.adc.ReadChannel(ChannelJoystickX)
	if err != nil {
		return 0, 0, fmt.Errorf("read joystick x: %w", err)
	}
	y, err = j.adc.ReadChannel(ChannelJoystickY)
	if err != nil {
		return 0, 0, fmt.Errorf("read joystick y: %w", err)
	}
	return x, y, nil
}

// ReadDirection samples the stick. Read errors yield DirNone.
func (j *Joystick) ReadDirection() logic.Direction {
	x, y, err := j.ReadRaw()
	if err != nil {
		return logic.DirNone
	}
	return Classify(x-j.centerX, y-j.centerY, j.deadZone)
}

// IsReleased reports whether the stick is back at rest.
func (j *Joystick) IsReleased() bool {
	return j.ReadDirection() == logic.DirNone
}

// Classify maps an offset from center to a direction. The vertical axis wins
// ties; positive dy is Up and positive dx is Right.
func Classify(dx, dy, deadZone int) logic.Direction {
	adx, ady := dx, dy
	if adx < 0 {
		adx = -adx
	}
	if ady < 0 {
		ady = -ady
	}

	switch {
	case ady > deadZone && ady >= adx:
		if dy > 0 {
			return logic.DirUp
		}
		return logic.DirDown
	case adx > deadZone && adx > ady:
		if dx > 0 {
			return logic.DirRight
		}
		return logic.DirLeft
	}
	return logic.DirNone
}
