package sink

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/cwsl/rtlsensor/internal/protocol"
)

// MQTTConfig is the subset of the optional `-config` YAML settings that
// configures the MQTT sink (SPEC_FULL.md's domain-stack wiring of
// github.com/eclipse/paho.mqtt.golang, grounded on the donor's
// mqtt_publisher.go).
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Topic    string `yaml:"topic"`
}

// MQTTSink publishes each decoded reading as a retained JSON message,
// tagging every message with a per-run correlation ID the way the donor
// tags sessions with a generated uuid.
type MQTTSink struct {
	client mqtt.Client
	topic  string
	runID  string
}

// mqttReading is the wire payload for one decoded reading.
type mqttReading struct {
	RunID      string `json:"run_id"`
	Protocol   string `json:"protocol"`
	ID         int    `json:"id"`
	RandomID   int    `json:"rid,omitempty"`
	Channel    int    `json:"channel,omitempty"`
	Button     bool   `json:"button,omitempty"`
	FirstRead  bool   `json:"first_reading,omitempty"`
	TempTenths int    `json:"temp_tenths"`
	Timestamp  int64  `json:"timestamp"`
}

// NewMQTTSink connects to cfg.Broker and returns a ready-to-publish sink.
func NewMQTTSink(cfg MQTTConfig) (*MQTTSink, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID("rtlsensor_" + uuid.NewString())
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(10 * time.Second)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		log.Println("mqtt: connected to broker")
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Printf("mqtt: connection lost: %v", err)
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect to mqtt broker %q: %w", cfg.Broker, token.Error())
	}

	topic := cfg.Topic
	if topic == "" {
		topic = "rtlsensor/readings"
	}

	return &MQTTSink{client: client, topic: topic, runID: uuid.NewString()}, nil
}

// Publish implements pipeline.Sink.
func (m *MQTTSink) Publish(r protocol.Reading) {
	payload, err := json.Marshal(mqttReading{
		RunID:      m.runID,
		Protocol:   r.Kind.String(),
		ID:         r.ID,
		RandomID:   r.RandomID,
		Channel:    r.Channel,
		Button:     r.Button,
		FirstRead:  r.FirstRead,
		TempTenths: r.TempTenths,
		Timestamp:  time.Now().Unix(),
	})
	if err != nil {
		log.Printf("mqtt: marshal reading: %v", err)
		return
	}
	token := m.client.Publish(m.topic, 0, true, payload)
	if token.Wait() && token.Error() != nil {
		log.Printf("mqtt: publish failed: %v", token.Error())
	}
}

// Close disconnects from the broker.
func (m *MQTTSink) Close() {
	m.client.Disconnect(250)
}
