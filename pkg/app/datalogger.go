package app

import (
	"math"

	"github.com/womat/debug"

	"dhtl/pkg/datalogger"
	"dhtl/pkg/mqtt"
)

// validateMeasurements checks the frame against the last frame sent to mqtt.
// The frame is sent if it is the first frame, if the mqtt interval is expired
// or if a value changed by at least deltaHumidity/deltaTemperature.
func (app *App) validateMeasurements(f datalogger.Frame) {
	app.mqttData.Lock()
	defer app.mqttData.Unlock()

	m := app.mqttData.frame
	c := app.config.MQTT

	deltaT := f.TimeStamp.Sub(m.TimeStamp)
	deltaH := math.Abs(f.Humidity - m.Humidity)
	deltaK := math.Abs(f.Temperature - m.Temperature)

	switch {
	case m.TimeStamp.IsZero(), deltaT >= c.Interval:
	case f.Changed > 0 && (deltaH >= c.DeltaHumidity || deltaK >= c.DeltaTemperature):
	default:
		return
	}

	app.sendMQTT(c.Topic, f)
	app.mqttData.frame = f
}

// sendMQTT queues message struct for the mqtt broker.
// If the queue is full, the message is dropped.
func (app *App) sendMQTT(topic string, message interface{}) {
	debug.TraceLog.Printf("prepare mqtt message %v %v", topic, message)

	msg, err := mqtt.NewJSONMessage(topic, message)
	if err != nil {
		debug.ErrorLog.Printf("sendMQTT marshal: %v", err)
		return
	}

	select {
	case app.mqtt.C <- msg:
	default:
		debug.ErrorLog.Printf("mqtt queue is full, drop message to topic %v", topic)
	}
}
