package dht

// Frame is the raw data of one transmission: four data bytes and the checksum.
type Frame [5]byte

// Reading is a humidity (%RH) and temperature (°C) pair.
type Reading struct {
	Humidity    float64
	Temperature float64
}

// Fahrenheit returns the temperature in °F.
func (r Reading) Fahrenheit() float64 {
	return r.Temperature*9/5 + 32
}

// Sum returns the low byte of the sum of the data bytes.
func (f Frame) Sum() byte {
	return f[0] + f[1] + f[2] + f[3]
}

// Valid reports whether the transmitted checksum matches the data bytes.
func (f Frame) Valid() bool {
	return f.Sum() == f[4]
}

// Decode converts the data bytes to physical units.
//  DHT11:        humidity = byte 0, temperature = byte 2
//  DHT21, DHT22: humidity = (byte 0 << 8 | byte 1) / 10
//                temperature = (byte 2 & 0x7f << 8 | byte 3) / 10, negative if bit 7 of byte 2 is set
func (f Frame) Decode(v Variant) Reading {
	if v == DHT11 {
		return Reading{
			Humidity:    float64(f[0]),
			Temperature: float64(f[2]),
		}
	}

	r := Reading{
		Humidity:    float64(uint16(f[0])<<8|uint16(f[1])) / 10.0,
		Temperature: float64(uint16(f[2]&0x7f)<<8|uint16(f[3])) / 10.0,
	}
	if f[2]&0x80 != 0 {
		r.Temperature *= -1
	}
	return r
}
