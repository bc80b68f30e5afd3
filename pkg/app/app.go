package app

import (
	"net/url"
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/womat/debug"

	"dhtl/pkg/app/config"
	"dhtl/pkg/datalogger"
	"dhtl/pkg/dht"
	"dhtl/pkg/mqtt"
	"dhtl/pkg/port"
	"dhtl/pkg/raspberry"
	"dhtl/pkg/store"
)

// App is the main application struct.
// App is where the application is wired up.
type App struct {
	// web is the fiber web framework instance
	web *fiber.App

	// config is the application configuration
	config *config.Config

	// urlParsed contains the parsed Config.Url parameter
	// and makes it easier to get params out of e.g.
	// url: https://0.0.0.0:7844/?minTls=1.2&bodyLimit=50MB
	urlParsed *url.URL

	// mqtt is the handler to the mqtt broker
	mqtt *mqtt.Handler

	// chip is the handler to the gpio controller
	chip *raspberry.Chip

	// line is the sensor line, sensor is its protocol decoder
	line   port.Line
	sensor *dht.Decoder
	// lineLock serializes the reads of the sensor line
	lineLock sync.Mutex

	// logger checks the plausibility of the sensor frames
	logger *datalogger.Handler

	// store is the history database, nil if no datafile is configured
	store *store.Store

	// metrics are exposed at /metrics
	metrics *metrics

	// data is the last accepted frame
	data frameBuffer
	// mqttData is the last frame sent to the mqtt broker
	mqttData frameBuffer

	// quit stops the sensor loop, done signals that it is stopped
	quit    chan struct{}
	done    chan struct{}
	running bool
}

// frameBuffer is a frame shared between the sensor loop and the web handlers.
type frameBuffer struct {
	sync.RWMutex
	frame datalogger.Frame
}

// New checks the Web server URL and initialize the main app structure
func New(config *config.Config) (*App, error) {
	u, err := url.Parse(config.Webserver.URL)
	if err != nil {
		debug.ErrorLog.Printf("Error parsing url %q: %s", config.Webserver.URL, err.Error())
		return &App{}, err
	}

	logger, err := datalogger.New(config.Sensor.Variant)
	if err != nil {
		debug.ErrorLog.Printf("can't create data logger: %v", err)
		return &App{}, err
	}

	return &App{
		config:    config,
		urlParsed: u,

		web:     fiber.New(fiber.Config{DisableStartupMessage: true}),
		mqtt:    mqtt.New(),
		logger:  logger,
		metrics: newMetrics(config.Sensor.Variant, config.Sensor.Gpio),

		quit: make(chan struct{}),
		done: make(chan struct{}),
	}, nil
}

// Run starts the application.
func (app *App) Run() error {
	if err := app.init(); err != nil {
		return err
	}

	go app.mqtt.Service()
	go app.runWebServer()
	app.running = true
	go app.readSensor()

	return nil
}

// init initializes the application.
func (app *App) init() (err error) {
	var line port.Line

	if line, err = app.openLine(); err != nil {
		return err
	}
	app.attach(line)

	if app.config.DataFile != "" {
		if app.store, err = store.Open(app.config.DataFile); err != nil {
			debug.ErrorLog.Printf("can't open datafile %q: %v", app.config.DataFile, err)
			return err
		}
	}

	if err = app.mqtt.Connect(app.config.MQTT.Connection, app.config.MQTT.ClientID); err != nil {
		debug.ErrorLog.Printf("can't open mqtt broker %v", err)
		return err
	}

	// initDefaultRoutes should be always called last because it may access things like app.store
	// which must be initialized before
	app.initDefaultRoutes()

	return nil
}

// attach binds the protocol decoder to the sensor line.
func (app *App) attach(line port.Line, opts ...dht.Option) {
	app.line = line
	app.sensor = dht.New(line, app.config.Sensor.Variant, opts...)
}

// Close stops the sensor loop and releases all resources.
func (app *App) Close() error {
	if app.quit == nil {
		return nil
	}

	if app.running {
		close(app.quit)
		<-app.done
		app.running = false
	}

	if app.web != nil {
		_ = app.web.Shutdown()
	}

	if app.mqtt != nil {
		// the sensor loop is stopped, nothing sends to C anymore
		close(app.mqtt.C)
		_ = app.mqtt.Disconnect()
	}

	if app.store != nil {
		_ = app.store.Close()
	}

	if app.chip != nil {
		_ = app.chip.Close()
	}

	app.quit = nil
	return nil
}
