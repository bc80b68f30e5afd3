package app

import (
	"github.com/womat/debug"

	"dhtl/pkg/port"
	"dhtl/pkg/raspberry"
)

// openLine opens the gpio controller and requests the sensor line.
func (app *App) openLine() (port.Line, error) {
	var err error
	c := app.config.Sensor

	if app.chip, err = raspberry.Open(c.Driver, c.Chip); err != nil {
		debug.ErrorLog.Printf("can't open gpio (%s): %v", c.Driver, err)
		return nil, err
	}

	line, err := app.chip.NewLine(c.Gpio)
	if err != nil {
		debug.ErrorLog.Printf("can't open pin: %v", err)
		return nil, err
	}

	debug.InfoLog.Printf("%v connected to gpio %v (%s)", c.Variant, line.Pin(), app.chip.Driver())
	return line, nil
}
