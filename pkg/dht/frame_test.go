package dht

import (
	"errors"
	"testing"
	"time"
)

func TestFrameDecode(t *testing.T) {
	tests := []struct {
		name    string
		variant Variant
		frame   Frame
		want    Reading
	}{
		{"dht11", DHT11, Frame{60, 0, 25, 0, 85}, Reading{60, 25}},
		{"dht11 ignores fraction bytes", DHT11, Frame{45, 9, 21, 3, 78}, Reading{45, 21}},
		{"dht22", DHT22, Frame{0x02, 0x8c, 0x01, 0x5f, 0}, Reading{65.2, 35.1}},
		{"dht22 negative", DHT22, Frame{0x02, 0x0a, 0x81, 0x04, 0}, Reading{52.2, -26.0}},
		{"dht21 negative", DHT21, Frame{0x03, 0xe8, 0x80, 0x65, 0}, Reading{100.0, -10.1}},
		{"dht22 zero", DHT22, Frame{0, 0, 0, 0, 0}, Reading{0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.frame.Decode(tt.variant); got != tt.want {
				t.Fatalf("Decode = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFrameChecksum(t *testing.T) {
	if f := (Frame{60, 0, 25, 0, 85}); !f.Valid() {
		t.Fatalf("%v: valid frame rejected", f)
	}
	if f := (Frame{0xff, 0xff, 0xff, 0xff, 0xfc}); !f.Valid() {
		t.Fatalf("%v: sum must wrap at 256", f)
	}
	if f := (Frame{60, 0, 25, 0, 86}); f.Valid() {
		t.Fatalf("%v: invalid frame accepted", f)
	}
}

func TestReadingFahrenheit(t *testing.T) {
	if f := (Reading{Temperature: 25}).Fahrenheit(); f != 77 {
		t.Fatalf("Fahrenheit(25) = %v", f)
	}
	if f := (Reading{Temperature: -40}).Fahrenheit(); f != -40 {
		t.Fatalf("Fahrenheit(-40) = %v", f)
	}
}

func TestParseVariant(t *testing.T) {
	for s, want := range map[string]Variant{
		"dht11":  DHT11,
		"DHT21":  DHT21,
		"am2301": DHT21,
		"dht22":  DHT22,
		"AM2302": DHT22,
		" 22 ":   DHT22,
	} {
		got, err := ParseVariant(s)
		if err != nil || got != want {
			t.Fatalf("ParseVariant(%q) = %v, %v; want %v", s, got, err, want)
		}
	}

	if _, err := ParseVariant("dht12"); !errors.Is(err, ErrUnknownVariant) {
		t.Fatalf("ParseVariant(dht12) err = %v", err)
	}
}

func TestVariant(t *testing.T) {
	if DHT11.String() != "DHT11" || DHT21.String() != "DHT21" || DHT22.String() != "DHT22" || Variant(0).String() != "unknown" {
		t.Fatalf("String failed")
	}
	if DHT11.MinInterval() != time.Second || DHT22.MinInterval() != 2*time.Second {
		t.Fatalf("MinInterval failed")
	}
}
