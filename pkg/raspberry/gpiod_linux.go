//go:build linux

package raspberry

import (
	"time"

	"github.com/warthog618/gpiod"
	"github.com/womat/debug"

	"dhtl/pkg/port"
)

// Line configurations of the open-drain data line.
var (
	openDrainConfig = []gpiod.LineConfigOption{gpiod.AsOutput(1), gpiod.AsOpenDrain, gpiod.WithPullUp}
	outputConfig    = []gpiod.LineConfigOption{gpiod.AsOutput(0)}
	inputConfig     = []gpiod.LineConfigOption{gpiod.AsInput, gpiod.WithPullUp}
)

// gpiodLine is a line of the gpio character device.
type gpiodLine struct {
	line   *gpiod.Line
	offset int
}

func newGpiodLine(c *gpiod.Chip, offset int) (*gpiodLine, error) {
	l, err := c.RequestLine(offset, gpiod.AsInput, gpiod.WithPullUp)
	if err != nil {
		return nil, err
	}
	return &gpiodLine{line: l, offset: offset}, nil
}

// OpenDrain sets the line as open-drain output, released to the pull-up.
func (l *gpiodLine) OpenDrain() {
	l.reconfigure("open drain", openDrainConfig...)
}

// Output drives the line low.
func (l *gpiodLine) Output() {
	l.reconfigure("output", outputConfig...)
}

// Input releases the line.
func (l *gpiodLine) Input() {
	l.reconfigure("input", inputConfig...)
}

func (l *gpiodLine) reconfigure(mode string, options ...gpiod.LineConfigOption) {
	if err := l.line.Reconfigure(options...); err != nil {
		debug.ErrorLog.Printf("gpio %v: can't set %s: %v", l.offset, mode, err)
	}
}

// Read returns the line level, a failed read is reported as high (idle line).
func (l *gpiodLine) Read() bool {
	v, err := l.line.Value()
	if err != nil {
		debug.ErrorLog.Printf("gpio %v: can't read value: %v", l.offset, err)
		return true
	}
	return v != 0
}

func (l *gpiodLine) Pulse() time.Duration {
	return port.MeasurePulse(l.Read, port.MaxPulse)
}

// Pin returns the pin number that this Line represents.
func (l *gpiodLine) Pin() int {
	return l.offset
}

// Close releases all resources held by the requested line.
func (l *gpiodLine) Close() error {
	return l.line.Close()
}
