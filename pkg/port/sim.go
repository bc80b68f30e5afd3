package port

import (
	"sync"
	"time"
)

const (
	simZero = 27 * time.Microsecond
	simOne  = 70 * time.Microsecond
	simAck  = 80 * time.Microsecond
	// simPolls is the number of high reads before the simulated sensor pulls the line low.
	simPolls = 2
)

// Sim emulates a sensor on a line, for testing without hardware.
// Each start signal (Output followed by Input) is answered with the current frame.
type Sim struct {
	mu        sync.Mutex
	pin       int
	frame     [5]byte
	connected bool
	mode      string

	polls  int
	pulses []time.Duration
	// Starts counts the start signals received.
	Starts int
}

// NewSim returns a connected sensor emulation sending frame.
func NewSim(pin int, frame [5]byte) *Sim {
	return &Sim{pin: pin, frame: frame, connected: true}
}

// SetFrame changes the frame sent on the next start signal.
// The checksum byte is sent as given.
func (s *Sim) SetFrame(frame [5]byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame = frame
}

// SetConnected attaches or detaches the emulated sensor.
func (s *Sim) SetConnected(c bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = c
}

// Mode returns the last line mode: opendrain, output or input.
func (s *Sim) Mode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *Sim) OpenDrain() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = "opendrain"
}

func (s *Sim) Output() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = "output"
	s.pulses = nil
}

func (s *Sim) Input() {
	s.mu.Lock()
	defer s.mu.Unlock()

	started := s.mode == "output"
	s.mode = "input"
	if !started || !s.connected {
		return
	}

	s.Starts++
	s.polls = simPolls
	s.pulses = append(s.pulses[:0], simAck)
	for _, b := range s.frame {
		for i := 7; i >= 0; i-- {
			if b&(1<<i) != 0 {
				s.pulses = append(s.pulses, simOne)
			} else {
				s.pulses = append(s.pulses, simZero)
			}
		}
	}
}

func (s *Sim) Read() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.mode == "output":
		return false
	case len(s.pulses) == 0:
		return true
	case s.polls > 0:
		s.polls--
		return true
	default:
		return false
	}
}

func (s *Sim) Pulse() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pulses) == 0 {
		return PulseTimeout
	}
	p := s.pulses[0]
	s.pulses = s.pulses[1:]
	return p
}

func (s *Sim) Pin() int {
	return s.pin
}

func (s *Sim) Close() error {
	return nil
}
