// Package raspberry provides the gpio lines of a Raspberry Pi as port.Line.
//
// Drivers:
//  * gpiod   - gpio character device /dev/gpiochipN (default)
//  * gpiomem - memory mapped registers /dev/gpiomem, shortest read latency
//  * periph  - periph.io host drivers
//  * sim     - emulated sensor, available on every platform
package raspberry

import (
	"errors"
	"fmt"
	"strings"

	"dhtl/pkg/port"
)

var (
	ErrInvalidParam = errors.New("invalid parameters")
	ErrUnsupported  = errors.New("gpio not supported on this platform")
)

// consumer is the label of requested lines shown by gpioinfo.
const consumer = "dhtl"

const (
	Gpiod   = "gpiod"
	GpioMem = "gpiomem"
	Periph  = "periph"
	Sim     = "sim"
)

// SimFrame is sent by the emulated sensor: 50.0%RH and 21.5°C as DHT21/DHT22 frame.
var SimFrame = [5]byte{0x01, 0xf4, 0x00, 0xd7, 0xcc}

// Chip represents the gpio controller accessed by one driver.
type Chip struct {
	driver string
	name   string
	// lines holds the requested lines by BCM gpio number
	lines map[int]port.Line
	// closer releases the driver
	closer func() error
	// newLine requests a single line from the driver
	newLine func(gpio int) (port.Line, error)
}

// ParseDriver checks the driver name, an empty name selects gpiod.
func ParseDriver(s string) (string, error) {
	switch d := strings.ToLower(strings.TrimSpace(s)); d {
	case "":
		return Gpiod, nil
	case Gpiod, GpioMem, Periph, Sim:
		return d, nil
	default:
		return "", fmt.Errorf("%w: unknown gpio driver %q", ErrInvalidParam, s)
	}
}

// Open opens the gpio controller with the given driver.
// The chip name (e.g. gpiochip0) is only used by the gpiod driver.
func Open(driver, chip string) (*Chip, error) {
	driver, err := ParseDriver(driver)
	if err != nil {
		return nil, err
	}

	c := &Chip{driver: driver, name: chip, lines: map[int]port.Line{}}
	if driver == Sim {
		c.newLine = func(n int) (port.Line, error) { return port.NewSim(n, SimFrame), nil }
		return c, nil
	}

	if err = c.open(); err != nil {
		return nil, err
	}
	return c, nil
}

// Driver returns the name of the driver.
func (c *Chip) Driver() string { return c.driver }

// NewLine requests control of a single line.
// The gpio number is the BCM gpio number.
// If granted, control is maintained until the Line is closed.
func (c *Chip) NewLine(gpio int) (port.Line, error) {
	if gpio < 0 {
		return nil, fmt.Errorf("%w: gpio %v", ErrInvalidParam, gpio)
	}
	if _, ok := c.lines[gpio]; ok {
		return nil, fmt.Errorf("gpio %v already used", gpio)
	}

	l, err := c.newLine(gpio)
	if err != nil {
		return nil, fmt.Errorf("can't request gpio %v (%s): %w", gpio, c.driver, err)
	}

	c.lines[gpio] = l
	return l, nil
}

// Close releases all lines and the Chip.
func (c *Chip) Close() error {
	for n, l := range c.lines {
		_ = l.Close()
		delete(c.lines, n)
	}

	if c.closer == nil {
		return nil
	}
	return c.closer()
}
