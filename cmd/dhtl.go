package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/urfave/cli/v2"
	"github.com/womat/debug"

	"dhtl/pkg/app"
	"dhtl/pkg/app/config"
	"dhtl/pkg/dht"
	"dhtl/pkg/raspberry"
)

const defaultConfigFile = "/opt/womat/config/" + app.MODULE + ".yaml"

func main() {
	exitCode := 1
	defer func() {
		os.Exit(exitCode)
	}()

	// cfg holds the application configuration
	cfg := config.NewConfig()

	cliApp := &cli.App{
		Name:    app.MODULE,
		Usage:   "Data logger for DHT11, DHT21 (AM2301) and DHT22 (AM2302) humidity and temperature sensors",
		Version: app.VERSION,
		Description: "Read humidity and temperature of a DHT sensor connected to a gpio line and write values to mqtt" +
			"\n the sensor is read by the single-wire protocol (bit banged) every interval," +
			"\n the latest reading is available at /data, the history at /history and metrics at /metrics.",
		UsageText: "dhtl [--config <file>] [--log error|debug|trace] [read]" +
			"\n\nEXAMPLE:" +
			"\n\tstart the data logger and use the configuration file dhtl.yaml" +
			"\n\t\tdhtl --config /opt/womat/dhtl.yaml" +
			"\n\tread the sensor once and print the values" +
			"\n\t\tdhtl --config /opt/womat/dhtl.yaml read",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Destination: &cfg.Flag.ConfigFile, Value: defaultConfigFile, Usage: "load configuration from `FILE`"},
			&cli.StringFlag{Name: "log", Aliases: []string{"l"}, Destination: &cfg.Flag.LogLevel, Value: "", Usage: "`LEVEL` defines the log level (standard|debug|trace)"},
		},
		Commands: []*cli.Command{
			{
				Name:   "read",
				Usage:  "read the sensor once and print humidity and temperature as json",
				Action: func(ctx *cli.Context) error { return readOnce(cfg) },
			},
		},
		Action: func(ctx *cli.Context) error {
			if err := cfg.LoadConfig(); err != nil {
				return err
			}

			debug.SetDebug(cfg.Debug.File, cfg.Debug.Flag)
			defer func() {
				debug.InfoLog.Printf("closing debug file %s", cfg.Debug.FileString)
				_ = cfg.Debug.File.Close()
			}()

			a, err := app.New(cfg)
			defer func() {
				debug.InfoLog.Printf("closing app %s", app.Version())
				_ = a.Close()
			}()

			if err != nil {
				return err
			}

			debug.InfoLog.Printf("starting app %s", app.Version())
			if err = a.Run(); err != nil {
				return err
			}

			// capture exit signals to ensure resources are released on exit.
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			// wait for am os.Interrupt signal (CTRL C)
			sig := <-quit
			debug.InfoLog.Printf("Got %s signal. Aborting...", sig)

			return nil
		},
	}

	// we expect to have more command line flags in the future - sort them
	sort.Sort(cli.FlagsByName(cliApp.Flags))
	sort.Sort(cli.CommandsByName(cliApp.Commands))

	err := cliApp.Run(os.Args)
	if err != nil {
		debug.FatalLog.Print(err)
		exitCode = 1
		return
	}

	exitCode = 0
}

// readOnce reads the configured sensor once and prints the result.
// It fails with the decoder's error if the sensor doesn't answer or the frame is corrupted.
func readOnce(cfg *config.Config) error {
	if err := cfg.LoadConfig(); err != nil {
		return err
	}
	debug.SetDebug(cfg.Debug.File, cfg.Debug.Flag)

	chip, err := raspberry.Open(cfg.Sensor.Driver, cfg.Sensor.Chip)
	if err != nil {
		return err
	}
	defer func() { _ = chip.Close() }()

	line, err := chip.NewLine(cfg.Sensor.Gpio)
	if err != nil {
		return err
	}

	n, r, err := dht.New(line, cfg.Sensor.Variant).ReadLocked()
	if err != nil {
		return fmt.Errorf("%v on gpio %v: %w (code %v)", cfg.Sensor.Variant, cfg.Sensor.Gpio, err, dht.Code(err))
	}

	b, err := json.Marshal(struct {
		Sensor      string
		Humidity    float64
		Temperature float64
		Fahrenheit  float64
		Changed     int
	}{cfg.Sensor.Variant.String(), r.Humidity, r.Temperature, r.Fahrenheit(), n})
	if err != nil {
		return err
	}

	fmt.Println(string(b))
	return nil
}
