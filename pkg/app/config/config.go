package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/womat/debug"
	"gopkg.in/yaml.v2"

	"dhtl/pkg/dht"
	"dhtl/pkg/raspberry"
)

// Config defines the struct of global config and the struct of the configuration file
type Config struct {
	Flag      FlagConfig      `yaml:"-"`
	Sensor    SensorConfig    `yaml:"sensor"`
	DataFile  string          `yaml:"datafile"`
	Debug     DebugConfig     `yaml:"debug"`
	Webserver WebserverConfig `yaml:"webserver"`
	MQTT      MQTTConfig      `yaml:"mqtt"`
}

// FlagConfig defines the configured flags (parameters)
type FlagConfig struct {
	LogLevel   string
	ConfigFile string
}

// SensorConfig defines the sensor and the gpio line it is connected to.
type SensorConfig struct {
	Type        string        `yaml:"type"`
	Variant     dht.Variant   `yaml:"-"`
	Gpio        int           `yaml:"gpio"`
	Driver      string        `yaml:"driver"`
	Chip        string        `yaml:"chip"`
	IntervalInt int           `yaml:"interval"`
	Interval    time.Duration `yaml:"-"`
}

// WebserverConfig defines the struct of the webserver and webservice configuration and configuration file
type WebserverConfig struct {
	URL         string          `yaml:"url"`
	Webservices map[string]bool `yaml:"webservices"`
}

// MQTTConfig defines the struct of the mqtt client configuration and configuration file
type MQTTConfig struct {
	Connection  string        `yaml:"connection"`
	ClientID    string        `yaml:"clientid"`
	Interval    time.Duration `yaml:"-"`
	IntervalInt int           `yaml:"interval"`
	// Topic defaults to /dhtl/<sensor type>, e.g. /dhtl/dht22.
	Topic string `yaml:"topic"`

	// DeltaHumidity and DeltaTemperature force a message before the interval is expired.
	DeltaHumidity    float64 `yaml:"deltahumidity"`
	DeltaTemperature float64 `yaml:"deltatemperature"`
}

// DebugConfig defines the struct of the debug configuration and configuration file
type DebugConfig struct {
	File       io.WriteCloser `yaml:"-"`
	Flag       int            `yaml:"-"`
	FlagString string         `yaml:"flag"`
	FileString string         `yaml:"file"`
}

func NewConfig() *Config {
	return &Config{
		Flag: FlagConfig{},
		Sensor: SensorConfig{
			Type:        "dht22",
			Variant:     dht.DHT22,
			Gpio:        4,
			Driver:      raspberry.Gpiod,
			Chip:        "gpiochip0",
			IntervalInt: 5,
		},
		Debug: DebugConfig{
			FileString: "stderr",
			FlagString: "standard",
		},
		Webserver: WebserverConfig{
			URL: "http://0.0.0.0:4000",
			Webservices: map[string]bool{
				"version": true,
				"health":  true,
				"data":    true,
				"history": true,
				"metrics": true,
			},
		},
		MQTT: MQTTConfig{
			Connection:       "tcp://127.0.0.1:1883",
			ClientID:         "dhtl",
			IntervalInt:      300,
			DeltaHumidity:    2,
			DeltaTemperature: 0.5,
		},
	}
}

func (c *Config) LoadConfig() error {
	if err := c.readConfigFile(); err != nil {
		return fmt.Errorf("error reading config file %q: %w", c.Flag.ConfigFile, err)
	}

	if c.Flag.LogLevel != "" {
		c.Debug.FlagString = c.Flag.LogLevel
	}
	if err := c.setDebugConfig(); err != nil {
		return fmt.Errorf("unable to open debug file %q: %w", c.Debug.FileString, err)
	}

	return c.setSensorConfig()
}

func (c *Config) readConfigFile() error {
	file, err := os.Open(c.Flag.ConfigFile)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	decoder := yaml.NewDecoder(file)
	if err = decoder.Decode(c); err != nil {
		return err
	}

	return nil
}

// setSensorConfig checks the sensor section and converts the intervals.
// The sensor interval is never shorter than the sensor's minimal sampling period.
func (c *Config) setSensorConfig() (err error) {
	if c.Sensor.Variant, err = dht.ParseVariant(c.Sensor.Type); err != nil {
		return fmt.Errorf("sensor type %q: %w", c.Sensor.Type, err)
	}
	if c.Sensor.Driver, err = raspberry.ParseDriver(c.Sensor.Driver); err != nil {
		return err
	}

	c.Sensor.Interval = time.Duration(c.Sensor.IntervalInt) * time.Second
	if minInterval := c.Sensor.Variant.MinInterval(); c.Sensor.Interval < minInterval {
		debug.InfoLog.Printf("sensor interval %v is too short for %v, use %v", c.Sensor.Interval, c.Sensor.Variant, minInterval)
		c.Sensor.Interval = minInterval
	}

	c.MQTT.Interval = time.Duration(c.MQTT.IntervalInt) * time.Second
	if c.MQTT.Topic == "" {
		c.MQTT.Topic = "/dhtl/" + strings.ToLower(c.Sensor.Variant.String())
	}
	return nil
}

func (c *Config) setDebugConfig() (err error) {
	// defines Debug section of global.Config
	switch c.Debug.FlagString {
	case "trace", "full":
		c.Debug.Flag = debug.Full
	case "debug":
		c.Debug.Flag = debug.Warning | debug.Info | debug.Error | debug.Fatal | debug.Debug
	default:
		c.Debug.Flag = debug.Standard
	}

	switch c.Debug.FileString {
	case "stderr":
		c.Debug.File = os.Stderr
	case "stdout":
		c.Debug.File = os.Stdout
	default:
		if c.Debug.File, err = os.OpenFile(c.Debug.FileString, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o666); err != nil {
			return
		}
	}

	return
}
