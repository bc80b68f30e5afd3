//go:build linux

package raspberry

import (
	"fmt"
	"time"

	"github.com/womat/debug"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"

	"dhtl/pkg/port"
)

type periphLine struct {
	pin gpio.PinIO
	n   int
}

func newPeriphLine(n int) (port.Line, error) {
	p := gpioreg.ByName(fmt.Sprintf("GPIO%d", n))
	if p == nil {
		return nil, fmt.Errorf("%w: unknown pin GPIO%d", ErrInvalidParam, n)
	}
	return &periphLine{pin: p, n: n}, nil
}

func (l *periphLine) OpenDrain() {
	l.Input()
}

func (l *periphLine) Output() {
	if err := l.pin.Out(gpio.Low); err != nil {
		debug.ErrorLog.Printf("%s: can't set output: %v", l.pin, err)
	}
}

func (l *periphLine) Input() {
	if err := l.pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		debug.ErrorLog.Printf("%s: can't set input: %v", l.pin, err)
	}
}

func (l *periphLine) Read() bool {
	return l.pin.Read() == gpio.High
}

func (l *periphLine) Pulse() time.Duration {
	return port.MeasurePulse(l.Read, port.MaxPulse)
}

func (l *periphLine) Pin() int {
	return l.n
}

func (l *periphLine) Close() error {
	return l.pin.Halt()
}
