// Package uart delivers text lines from the RFID reader's serial link.
// Reading happens on a background goroutine; the control loop polls for
// complete lines without blocking.
package uart

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"go.bug.st/serial"
)

// LineReader delivers newline-terminated tokens.
type LineReader interface {
	// ReadLine returns the next complete line, or ok=false if none is ready.
	// It never blocks.
	ReadLine() (line string, ok bool)

	// Close releases the serial port.
	Close() error
}

// Defaults for the RFID reader link.
const (
	DefaultDevice = "/dev/ttyAMA0"
	DefaultBaud   = 9600
)

const (
	// idleTimeout bounds each port read. A partial line still pending when a
	// read times out is delivered as-is, for readers that send no terminator.
	idleTimeout = 100 * time.Millisecond

	lineQueue = 8
)

// SerialReader reads lines from a serial port (8N1, raw).
type SerialReader struct {
	port  io.ReadCloser
	lines chan string

	closeOnce sync.Once
	closing   chan struct{}
	done      chan struct{}
}

// OpenSerial opens device at baud (8 data bits, no parity, 1 stop bit) and
// starts reading.
func OpenSerial(device string, baud int) (*SerialReader, error) {
	port, err := serial.Open(device, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial %s: %w", device, err)
	}
	if err := port.SetReadTimeout(idleTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout: %w", err)
	}
	if err := port.ResetInputBuffer(); err != nil {
		log.Printf("uart: reset input buffer: %v", err)
	}
	return newSerialReader(port), nil
}

func newSerialReader(port io.ReadCloser) *SerialReader {
	s := &SerialReader{
		port:    port,
		lines:   make(chan string, lineQueue),
		closing: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go s.readLoop()
	return s
}

// ReadLine returns the next complete line without blocking.
func (s *SerialReader) ReadLine() (string, bool) {
	select {
	case line := <-s.lines:
		return line, true
	default:
		return "", false
	}
}

// Close closes the port and waits for the reader goroutine to exit.
func (s *SerialReader) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.closing)
		err = s.port.Close()
		<-s.done
	})
	return err
}

func (s *SerialReader) readLoop() {
	defer close(s.done)

	var sp splitter
	buf := make([]byte, 64)
	for {
		n, err := s.port.Read(buf)
		if n > 0 {
			for _, line := range sp.feed(buf[:n]) {
				s.deliver(line)
			}
		} else if err == nil {
			// Read timed out with nothing new.
			if line, ok := sp.flush(); ok {
				s.deliver(line)
			}
		}

		if err != nil {
			if line, ok := sp.flush(); ok {
				s.deliver(line)
			}
			select {
			case <-s.closing:
			default:
				if !errors.Is(err, io.EOF) {
					log.Printf("uart: read error: %v", err)
				}
			}
			return
		}
	}
}

func (s *SerialReader) deliver(line string) {
	select {
	case s.lines <- line:
	default:
		log.Printf("uart: line queue full, dropping %q", line)
	}
}
