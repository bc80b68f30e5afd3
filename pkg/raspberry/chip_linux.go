//go:build linux

package raspberry

import (
	"github.com/warthog618/gpio"
	"github.com/warthog618/gpiod"
	"periph.io/x/host/v3"

	"dhtl/pkg/port"
)

// open initializes the hardware driver.
func (c *Chip) open() error {
	switch c.driver {
	case Gpiod:
		if c.name == "" {
			c.name = "gpiochip0"
		}
		gc, err := gpiod.NewChip(c.name, gpiod.WithConsumer(consumer))
		if err != nil {
			return err
		}
		c.closer = gc.Close
		c.newLine = func(n int) (port.Line, error) { return newGpiodLine(gc, n) }

	case GpioMem:
		if err := gpio.Open(); err != nil {
			return err
		}
		c.closer = gpio.Close
		c.newLine = func(n int) (port.Line, error) { return newMemLine(n), nil }

	case Periph:
		if _, err := host.Init(); err != nil {
			return err
		}
		c.newLine = newPeriphLine

	default:
		return ErrUnsupported
	}

	return nil
}
