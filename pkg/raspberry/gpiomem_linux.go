//go:build linux

package raspberry

import (
	"time"

	"github.com/warthog618/gpio"

	"dhtl/pkg/port"
)

// memLine accesses the gpio registers directly.
// The registers have no open-drain mode, so it's emulated:
// low is driven as output, high is an input with pull-up.
type memLine struct {
	pin *gpio.Pin
}

func newMemLine(n int) *memLine {
	return &memLine{pin: gpio.NewPin(n)}
}

func (l *memLine) OpenDrain() {
	l.pin.PullUp()
	l.pin.Input()
}

// Output drives the line low, the level is set before the direction
// to avoid a high spike on the line.
func (l *memLine) Output() {
	l.pin.Low()
	l.pin.Output()
}

func (l *memLine) Input() {
	l.pin.Input()
}

func (l *memLine) Read() bool {
	return bool(l.pin.Read())
}

func (l *memLine) Pulse() time.Duration {
	return port.MeasurePulse(l.Read, port.MaxPulse)
}

func (l *memLine) Pin() int {
	return l.pin.Pin()
}

// Close leaves the pin as input.
func (l *memLine) Close() error {
	l.pin.Input()
	return nil
}
