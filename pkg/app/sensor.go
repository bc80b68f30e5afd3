package app

import (
	"errors"
	"time"

	"github.com/womat/debug"

	"dhtl/pkg/dht"
	"dhtl/pkg/port"
)

// readSensor reads the sensor every interval until the app is closed.
// A failed read is retried at the next interval.
func (app *App) readSensor() {
	defer close(app.done)

	ticker := time.NewTicker(app.config.Sensor.Interval)
	defer ticker.Stop()

	for {
		app.measure()

		select {
		case <-app.quit:
			return
		case <-ticker.C:
		}
	}
}

// measure reads the sensor once and distributes an accepted frame
// to the web handlers, the history, the metrics and the mqtt broker.
func (app *App) measure() {
	changed, r, err := app.read()
	app.metrics.observeRead(err)
	if err != nil {
		debug.ErrorLog.Printf("gpio %v: %v (code %v)", app.config.Sensor.Gpio, err, dht.Code(err))
		return
	}

	f := app.logger.NewFrame(time.Now(), changed, r)
	if err = app.logger.Check(f); err != nil {
		app.metrics.rejected.Inc()
		debug.ErrorLog.Printf("gpio %v: frame rejected: %v", app.config.Sensor.Gpio, err)
		return
	}

	debug.DebugLog.Printf("Frame: %+v", f)

	app.data.Lock()
	app.data.frame = f
	app.data.Unlock()

	app.metrics.set(f)

	if app.store != nil {
		if err = app.store.Add(f); err != nil {
			debug.ErrorLog.Printf("can't save frame: %v", err)
		}
	}

	app.validateMeasurements(f)
}

// read performs one timing critical read of the sensor line.
func (app *App) read() (int, dht.Reading, error) {
	app.lineLock.Lock()
	defer app.lineLock.Unlock()

	n, r, err := app.sensor.ReadLocked()
	if errors.Is(err, dht.ErrHandshake) {
		// a line stuck low points to a short circuit, high to a missing sensor
		debug.TraceLog.Printf("gpio %v: line is %v after the start signal", app.config.Sensor.Gpio, port.State(app.line.Read()))
	}
	return n, r, err
}

// lineLevel returns the idle level of the sensor line.
func (app *App) lineLevel() port.StateType {
	if app.line == nil {
		return port.Invalid
	}

	app.lineLock.Lock()
	defer app.lineLock.Unlock()
	return port.State(app.line.Read())
}
