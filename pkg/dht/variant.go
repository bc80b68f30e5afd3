package dht

import (
	"errors"
	"strings"
	"time"
)

// ErrUnknownVariant is returned by ParseVariant for unsupported sensor names.
var ErrUnknownVariant = errors.New("unknown sensor type")

// Variant identifies the member of the sensor family.
// It only changes how the data bytes are scaled.
type Variant int

const (
	// DHT11 reports integer humidity and temperature in data bytes 0 and 2.
	DHT11 Variant = 11
	// DHT21 (AM2301) reports 16 bit values in tenths, temperature with sign bit.
	DHT21 Variant = 21
	// DHT22 (AM2302) uses the same encoding as DHT21.
	DHT22 Variant = 22
)

// ParseVariant returns the Variant for names like dht11, dht22 or am2302.
func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dht11", "11":
		return DHT11, nil
	case "dht21", "am2301", "21":
		return DHT21, nil
	case "dht22", "am2302", "22":
		return DHT22, nil
	default:
		return 0, ErrUnknownVariant
	}
}

func (v Variant) String() string {
	switch v {
	case DHT11:
		return "DHT11"
	case DHT21:
		return "DHT21"
	case DHT22:
		return "DHT22"
	default:
		return "unknown"
	}
}

// MinInterval is the shortest period between two reads the sensor supports.
func (v Variant) MinInterval() time.Duration {
	if v == DHT11 {
		return time.Second
	}
	return 2 * time.Second
}
