// Package datalogger checks the plausibility of sensor readings before they are logged.
package datalogger

import (
	"errors"
	"fmt"
	"time"

	"dhtl/pkg/dht"
)

var (
	ErrInvalidHumidity    = errors.New("invalid humidity")
	ErrInvalidTemperature = errors.New("invalid temperature")
	ErrUnsupportedDevice  = errors.New("unsupported device")
)

const (
	// max difference to the last accepted frame
	maxDeltaTemperature = 20
	maxDeltaHumidity    = 40

	// the delta check is skipped if the last accepted frame is older than maxAge
	maxAge = 10 * time.Minute
)

// limit is the measuring range of a sensor.
type limit struct {
	hMin, hMax float64
	tMin, tMax float64
}

var limits = map[dht.Variant]limit{
	dht.DHT11: {hMin: 0, hMax: 100, tMin: 0, tMax: 50},
	dht.DHT21: {hMin: 0, hMax: 100, tMin: -40, tMax: 80},
	dht.DHT22: {hMin: 0, hMax: 100, tMin: -40, tMax: 80},
}

// Frame is one successful read of a sensor.
type Frame struct {
	TimeStamp   time.Time
	Sensor      string
	Humidity    float64 // %RH
	Temperature float64 // °C
	// Changed is the number of values that differ from the previous read (0-2)
	Changed int
}

// Handler checks the frames of one sensor.
type Handler struct {
	variant   dht.Variant
	limit     limit
	lastValue Frame
}

// New generates a new handler for a sensor type.
func New(v dht.Variant) (*Handler, error) {
	l, ok := limits[v]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedDevice, v)
	}
	return &Handler{variant: v, limit: l}, nil
}

// NewFrame builds the frame of a successful read.
func (h *Handler) NewFrame(ts time.Time, changed int, r dht.Reading) Frame {
	return Frame{
		TimeStamp:   ts,
		Sensor:      h.variant.String(),
		Humidity:    r.Humidity,
		Temperature: r.Temperature,
		Changed:     changed,
	}
}

// Check accepts a frame if
//  * the values are within the measuring range of the sensor
//  * and the difference to the last accepted values is less than maxDelta.
// An accepted frame becomes the last value.
func (h *Handler) Check(f Frame) error {
	if f.Humidity < h.limit.hMin || f.Humidity > h.limit.hMax {
		return fmt.Errorf("%w: %.1f%%", ErrInvalidHumidity, f.Humidity)
	}
	if f.Temperature < h.limit.tMin || f.Temperature > h.limit.tMax {
		return fmt.Errorf("%w: %.1f°C", ErrInvalidTemperature, f.Temperature)
	}

	if last := h.lastValue; !last.TimeStamp.IsZero() && f.TimeStamp.Sub(last.TimeStamp) < maxAge {
		if abs(f.Humidity-last.Humidity) > maxDeltaHumidity {
			return fmt.Errorf("%w: jump from %.1f%% to %.1f%%", ErrInvalidHumidity, last.Humidity, f.Humidity)
		}
		if abs(f.Temperature-last.Temperature) > maxDeltaTemperature {
			return fmt.Errorf("%w: jump from %.1f°C to %.1f°C", ErrInvalidTemperature, last.Temperature, f.Temperature)
		}
	}

	h.lastValue = f
	return nil
}

// Last returns the last accepted frame.
func (h *Handler) Last() Frame {
	return h.lastValue
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
