// Package mqtt publishes messages to a mqtt broker.
package mqtt

import (
	"encoding/json"
	"time"

	mqttlib "github.com/eclipse/paho.mqtt.golang"
	"github.com/womat/debug"
)

const (
	// quiesce is the specified number of milliseconds to wait for existing work to be completed.
	quiesce = 250
	// connectTimeout bounds a (re)connect to the broker.
	connectTimeout = 10 * time.Second
	// queueSize is the number of messages C buffers while the broker is (re)connected.
	queueSize = 16
)

// Handler contains the handler of the mqtt broker.
type Handler struct {
	client mqttlib.Client
	// C is the channel to service the mqtt message
	// sending a message to channel C will send the message.
	// Messages are published in the order they are sent to C.
	C chan Message
}

// Message contains the properties of the mqtt message.
type Message struct {
	Topic    string
	Payload  []byte
	Qos      byte
	Retained bool
}

// New generates a new mqtt broker client.
func New() *Handler {
	return &Handler{
		C: make(chan Message, queueSize),
	}
}

// NewJSONMessage marshals v as retained message to topic.
func NewJSONMessage(topic string, v interface{}) (Message, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return Message{}, err
	}

	return Message{Topic: topic, Payload: b, Retained: true}, nil
}

// Connect connects to the mqtt broker, e.g. tcp://127.0.0.1:1883
// If no broker is defined, no mqtt message are sent.
func (m *Handler) Connect(broker, clientID string) error {
	if broker == "" {
		return nil
	}

	opts := mqttlib.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetConnectTimeout(connectTimeout).
		SetAutoReconnect(false)
	m.client = mqttlib.NewClient(opts)
	return m.ReConnect()
}

// ReConnect reconnects to the defined mqtt broker.
func (m *Handler) ReConnect() error {
	t := m.client.Connect()
	<-t.Done()
	return t.Error()
}

// Disconnect will end the connection to the broker.
func (m *Handler) Disconnect() error {
	if m.client == nil {
		return nil
	}

	m.client.Disconnect(quiesce)
	return nil
}

// Service listens to messages on channel C and publishes them.
// If no broker or topic is defined, the message is dropped.
// Service returns when C is closed.
func (m *Handler) Service() {
	for msg := range m.C {
		if m.client == nil || msg.Topic == "" {
			debug.TraceLog.Printf("mqtt disabled, drop message to topic %q", msg.Topic)
			continue
		}

		if !m.client.IsConnected() {
			debug.DebugLog.Printf("mqtt broker isn't connected, reconnect it")

			if err := m.ReConnect(); err != nil {
				debug.ErrorLog.Printf("can't reconnect to mqtt broker %v", err)
				continue
			}
		}

		debug.DebugLog.Printf("publishing %v bytes to topic %v", len(msg.Payload), msg.Topic)
		t := m.client.Publish(msg.Topic, msg.Qos, msg.Retained, msg.Payload)

		// the asynchronous nature of this library makes it easy to forget to check for errors.
		go func(topic string) {
			<-t.Done()
			if err := t.Error(); err != nil {
				debug.ErrorLog.Printf("publishing topic %v: %v", topic, err)
			}
		}(msg.Topic)
	}
}
