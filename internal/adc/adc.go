// Package adc reads the doorbell's analog inputs (joystick and
// accelerometer) through an SPI analog-to-digital converter.
// The real implementation drives an MCP3208 via periph.io.
// The fake implementation allows testing without hardware.
package adc

// Reader reads raw ADC conversions.
type Reader interface {
	// ReadChannel returns the 12-bit conversion (0-4095) of channel ch (0-7).
	ReadChannel(ch int) (int, error)

	// Close releases the SPI device.
	Close() error
}

// Channel assignments on the doorbell board.
const (
	ChannelAccelZ    = 0
	ChannelAccelY    = 1
	ChannelAccelX    = 2
	ChannelJoystickX = 6
	ChannelJoystickY = 7
)

// MaxValue is the largest conversion a 12-bit ADC returns.
const MaxValue = 4095

// Defaults for the SPI device.
const (
	DefaultDevice = "/dev/spidev0.0"
	DefaultHz     = 1000000
)
