package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/SahinShazi/HealthSync/internal"
)

const publishTimeout = 2 * time.Second

// mqttClient is the subset of mqtt.Client the publisher needs.
type mqttClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTPublisher sends snapshots as JSON to healthsync/<patient>/metrics.
type MQTTPublisher struct {
	client mqttClient
	qos    byte
}

func NewMQTTPublisher(client mqttClient, qos byte) *MQTTPublisher {
	return &MQTTPublisher{client: client, qos: qos}
}

func (p *MQTTPublisher) Name() string { return "mqtt" }

func Topic(patientID string) string {
	return fmt.Sprintf("healthsync/%s/metrics", patientID)
}

func (p *MQTTPublisher) Publish(ctx context.Context, s Snapshot) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("feed: encode snapshot: %w", err)
	}
	token := p.client.Publish(Topic(s.PatientID), p.qos, false, payload)
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(publishTimeout):
		return fmt.Errorf("feed: mqtt publish timed out after %s", publishTimeout)
	}
}

// DialMQTT connects to broker with auto-reconnect enabled.
func DialMQTT(broker, clientID string, logger internal.Logger) (mqtt.Client, error) {
	if logger == nil {
		logger = internal.NopLogger()
	}
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetCleanSession(true)
	opts.OnConnect = func(mqtt.Client) {
		logger.Infof("feed: mqtt connected to %s", broker)
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		logger.Warnf("feed: mqtt connection lost: %v", err)
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); !token.WaitTimeout(5*time.Second) || token.Error() != nil {
		err := token.Error()
		if err == nil {
			err = errors.New("timed out")
		}
		return nil, fmt.Errorf("feed: mqtt connect %s: %w", broker, err)
	}
	return client, nil
}
