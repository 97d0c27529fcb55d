package adc

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"
)

// MCP3208 reads an MCP3208 8-channel 12-bit ADC over SPI.
// Not safe for concurrent use; the control loop is its only caller.
type MCP3208 struct {
	port spi.PortCloser
	conn spi.Conn
}

// OpenMCP3208 opens the SPI device (e.g. "/dev/spidev0.0" or "SPI0.0") in
// mode 0 with 8-bit words at the given clock rate.
func OpenMCP3208(device string, hz int64) (*MCP3208, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init periph host: %w", err)
	}

	port, err := spireg.Open(device)
	if err != nil {
		return nil, fmt.Errorf("open spi %s: %w", device, err)
	}

	conn, err := port.Connect(physic.Frequency(hz)*physic.Hertz, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("connect spi %s: %w", device, err)
	}

	return &MCP3208{port: port, conn: conn}, nil
}

// ReadChannel performs one single-ended conversion on ch.
func (m *MCP3208) ReadChannel(ch int) (int, error) {
	tx, err := command(ch)
	if err != nil {
		return 0, err
	}
	rx := make([]byte, len(tx))
	if err := m.conn.Tx(tx, rx); err != nil {
		return 0, fmt.Errorf("spi transfer ch %d: %w", ch, err)
	}
	return decode(rx), nil
}

// Close releases the SPI port.
func (m *MCP3208) Close() error {
	if m.port == nil {
		return nil
	}
	return m.port.Close()
}

// command builds the 3-byte request: start bit, single-ended mode, channel.
func command(ch int) ([]byte, error) {
	if ch < 0 || ch > 7 {
		return nil, fmt.Errorf("invalid adc channel %d", ch)
	}
	return []byte{
		byte(0x06 | ((ch & 0x04) >> 2)),
		byte((ch & 0x03) << 6),
		0x00,
	}, nil
}

// decode extracts the 12-bit result from the response.
func decode(rx []byte) int {
	return int(rx[1]&0x0F)<<8 | int(rx[2])
}
