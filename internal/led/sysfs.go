package led

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/host/v3"
	"periph.io/x/host/v3/sysfs"
)

// Default sysfs LED names on the board.
const (
	DefaultGreen = "ACT"
	DefaultRed   = "PWR"
)

// SysfsDriver drives LEDs exposed under /sys/class/leds.
type SysfsDriver struct {
	leds map[Color]*sysfs.LED
}

// NewSysfsDriver looks up the green and red LEDs by their sysfs names.
func NewSysfsDriver(green, red string) (*SysfsDriver, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}

	g, err := sysfs.LEDByName(green)
	if err != nil {
		return nil, fmt.Errorf("find led %s: %w", green, err)
	}
	r, err := sysfs.LEDByName(red)
	if err != nil {
		return nil, fmt.Errorf("find led %s: %w", red, err)
	}

	return &SysfsDriver{
		leds: map[Color]*sysfs.LED{Green: g, Red: r},
	}, nil
}

// Set switches the LED for c.
func (s *SysfsDriver) Set(c Color, on bool) error {
	l, ok := s.leds[c]
	if !ok {
		return fmt.Errorf("unknown led color %q", c)
	}
	level := gpio.Low
	if on {
		level = gpio.High
	}
	if err := l.Out(level); err != nil {
		return fmt.Errorf("set led %s: %w", c, err)
	}
	return nil
}

// Close switches both LEDs off.
func (s *SysfsDriver) Close() error {
	var errs []error
	for c := range s.leds {
		if err := s.Set(c, false); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
