// Package dht is the decoder of the single-wire protocol of the DHT11, DHT21 (AM2301)
// and DHT22 (AM2302) humidity and temperature sensors.
//
// Circuit: sensor pin 1 VCC, pin 2 DATA to the gpio line, pin 4 GND.
// The data line needs a pull-up resistor to VCC; most sensor modules have one built in.
//
// A read is synchronous and blocks for about 25ms. The timing windows are a few
// microseconds wide, so the caller must not read the same line from two goroutines.
package dht

import (
	"errors"
	"time"

	"dhtl/pkg/port"
)

const (
	// startSignal is how long the host holds the line low to wake up the sensor.
	startSignal = 18 * time.Millisecond
	// pullUp is the poll period while waiting for the sensor's response.
	pullUp = 4 * time.Microsecond
	// retries is the number of polls before the response is given up.
	retries = 16
	// Threshold separates a 0 bit (26-28µs high) from a 1 bit (70µs high).
	Threshold = 60 * time.Microsecond

	frameSize = 5
)

var (
	// ErrChecksum indicates a corrupted frame.
	ErrChecksum = errors.New("dht: checksum error")
	// ErrHandshake indicates that the sensor didn't respond to the start signal.
	ErrHandshake = errors.New("dht: response pulse error")
)

// Code maps the result of Read to the numeric error codes of the sensor family
// drivers: 0 for success, -1 for a checksum error and -2 for a handshake error.
func Code(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrChecksum):
		return -1
	case errors.Is(err, ErrHandshake):
		return -2
	default:
		return -3
	}
}

// Decoder reads one sensor on one line and keeps the latest reading.
type Decoder struct {
	line    port.Line
	variant Variant
	// sleep holds millisecond delays.
	sleep func(time.Duration)
	// spin holds microsecond delays.
	spin func(time.Duration)
	// last is the latest valid reading.
	last Reading
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithSleep replaces the millisecond delay (default time.Sleep).
func WithSleep(f func(time.Duration)) Option {
	return func(d *Decoder) { d.sleep = f }
}

// WithSpin replaces the microsecond delay (default port.Spin).
func WithSpin(f func(time.Duration)) Option {
	return func(d *Decoder) { d.spin = f }
}

// New binds a decoder to line and configures the line as open-drain.
func New(line port.Line, v Variant, opts ...Option) *Decoder {
	d := &Decoder{
		line:    line,
		variant: v,
		sleep:   time.Sleep,
		spin:    port.Spin,
	}
	for _, o := range opts {
		o(d)
	}

	d.line.OpenDrain()
	return d
}

// Variant returns the sensor type the decoder was created for.
func (d *Decoder) Variant() Variant { return d.variant }

// Humidity returns the latest humidity reading (%RH).
func (d *Decoder) Humidity() float64 { return d.last.Humidity }

// Temperature returns the latest temperature reading (°C).
func (d *Decoder) Temperature() float64 { return d.last.Temperature }

// Reading returns the latest reading.
func (d *Decoder) Reading() Reading { return d.last }

// Read reads humidity and temperature from the sensor.
// It returns the number of changed values (0-2) and the new reading, or
// ErrHandshake / ErrChecksum. On error the latest reading is kept.
// The line is left in input mode.
func (d *Decoder) Read() (int, Reading, error) {
	// issue start signal and wait for the sensor to respond
	d.line.Output()
	d.sleep(startSignal)
	d.line.Input()

	for retry := retries; ; {
		d.spin(pullUp)
		if !d.line.Read() {
			break
		}
		if retry--; retry == 0 {
			return 0, Reading{}, ErrHandshake
		}
	}
	if d.line.Pulse() < Threshold {
		return 0, Reading{}, ErrHandshake
	}

	// each bit is pulse width coded: low for 50µs, then high for 26-28µs (0) or 70µs (1)
	var f Frame
	var sum byte
	for i := 0; i < frameSize; i++ {
		var v byte
		for j := 0; j < 8; j++ {
			v = v<<1 | Classify(d.line.Pulse())
		}
		f[i] = v
		if i < frameSize-1 {
			sum += v
		}
	}

	if sum != f[4] {
		return 0, Reading{}, ErrChecksum
	}

	r := f.Decode(d.variant)

	n := 0
	if r.Humidity != d.last.Humidity {
		n++
	}
	if r.Temperature != d.last.Temperature {
		n++
	}
	// both values come from the same frame, so both are replaced
	if n > 0 {
		d.last = r
	}

	return n, r, nil
}

// Classify returns the bit value of a pulse width.
// Widths up to Threshold (including port.PulseTimeout) are 0, longer ones 1.
func Classify(width time.Duration) byte {
	if width > Threshold {
		return 1
	}
	return 0
}
