// Package notify delivers doorbell events to remote listeners.
package notify

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/sweeney/smart-doorbell/internal/logic"
)

// DefaultAddr is the listener that receives plain-text alerts.
const DefaultAddr = "127.0.0.1:7070"

// Notifier publishes an event. Implementations must not block for long;
// callers log and drop errors.
type Notifier interface {
	Publish(e logic.Event) error
}

// UDPSender sends each event's message as a single datagram.
type UDPSender struct {
	mu   sync.Mutex
	conn *net.UDPConn
	addr string
}

// DialUDP resolves addr and opens a connected UDP socket to it.
func DialUDP(addr string) (*UDPSender, error) {
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", addr, err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &UDPSender{conn: conn, addr: addr}, nil
}

// Addr returns the destination address.
func (s *UDPSender) Addr() string {
	return s.addr
}

// Publish sends e.Message. Empty messages are skipped.
func (s *UDPSender) Publish(e logic.Event) error {
	if e.Message == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return errors.New("udp sender closed")
	}
	if _, err := s.conn.Write([]byte(e.Message)); err != nil {
		return fmt.Errorf("send to %s: %w", s.addr, err)
	}
	return nil
}

// Close releases the socket.
func (s *UDPSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}

// Multi fans an event out to several notifiers. Every notifier is tried;
// failures are joined.
type Multi []Notifier

// Publish sends e to all notifiers.
func (m Multi) Publish(e logic.Event) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Publish(e); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
