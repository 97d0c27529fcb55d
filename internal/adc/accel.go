package adc

import (
	"fmt"

	"github.com/sweeney/smart-doorbell/internal/logic"
)

// Accelerometer reads an analog 3-axis accelerometer wired to the ADC.
type Accelerometer struct {
	adc Reader
}

// NewAccelerometer creates an accelerometer on the standard channels.
func NewAccelerometer(r Reader) *Accelerometer {
	return &Accelerometer{adc: r}
}

// Read returns one (x, y, z) sample. Any channel failure fails the whole sample.
func (a *Accelerometer) Read() (logic.AccelSample, error) {
	x, err := a.adc.ReadChannel(ChannelAccelX)
	if err != nil {
		return logic.AccelSample{}, fmt.Errorf("read accel x: %w", err)
	}
	y, err := a.adc.ReadChannel(ChannelAccelY)
	if err != nil {
		return logic.AccelSample{}, fmt.Errorf("read accel y: %w", err)
	}
	z, err := a.adc.ReadChannel(ChannelAccelZ)
	if err != nil {
		return logic.AccelSample{}, fmt.Errorf("read accel z: %w", err)
	}
	return logic.AccelSample{X: x, Y: y, Z: z}, nil
}
