// Package gpio provides the doorbell push-button input with hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Button reads the doorbell push button.
type Button interface {
	// Pressed returns the logical button state (true = pressed).
	// The line is active low: the button pulls it to ground.
	Pressed() (bool, error)

	// Close releases GPIO resources.
	Close() error
}

// Default line for the joystick push button (SEL).
const (
	DefaultChip = "gpiochip1"
	DefaultLine = 41
)
